package model

// PageAttachment 记录页面附件在对象存储中的位置
// swagger:model PageAttachment
type PageAttachment struct {
	BaseModel
	PageID      uint   `gorm:"index;not null" json:"pageId"`
	ObjectKey   string `gorm:"size:255;not null" json:"-"`
	FileName    string `gorm:"size:255;not null" json:"fileName"`
	ContentType string `gorm:"size:100" json:"contentType"`
	Size        int64  `json:"size"`
	URL         string `gorm:"size:500" json:"url"`
}

func (PageAttachment) TableName() string {
	return "page_attachments"
}
