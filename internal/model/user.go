package model

type UserRole string

const (
	Educator UserRole = "educator"
	Student  UserRole = "student"
)

func (r UserRole) Valid() bool {
	return r == Educator || r == Student
}

// swagger:model User
type User struct {
	BaseModel
	FirstName string   `gorm:"size:100;not null" json:"firstName"`
	LastName  string   `gorm:"size:100" json:"lastName"`
	Email     string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string   `gorm:"size:100;not null" json:"-"`
	Role      UserRole `gorm:"size:20;not null;default:'student'" json:"role"`
}

func (User) TableName() string {
	return "users"
}
