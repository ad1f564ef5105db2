package model

// swagger:model Course
type Course struct {
	BaseModel
	Name      string `gorm:"size:200;uniqueIndex;not null" json:"name"`
	CreatorID uint   `gorm:"index;not null" json:"creatorId"`

	Chapters []Chapter `gorm:"foreignKey:CourseID" json:"chapters,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Chapter
type Chapter struct {
	BaseModel
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"size:1000" json:"description"`
	CourseID    uint   `gorm:"index;not null" json:"courseId"`

	Pages []Page `gorm:"foreignKey:ChapterID" json:"pages,omitempty"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// swagger:model Page
type Page struct {
	BaseModel
	Title     string `gorm:"size:200;not null" json:"title"`
	Content   string `gorm:"type:text;not null" json:"content"`
	ChapterID uint   `gorm:"index;not null" json:"chapterId"`

	Attachments []PageAttachment `gorm:"foreignKey:PageID" json:"attachments,omitempty"`
}

func (Page) TableName() string {
	return "pages"
}
