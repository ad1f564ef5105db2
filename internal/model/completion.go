package model

import "time"

// Completion marks a page as read by a student.
// swagger:model Completion
type Completion struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_completion_user_page;not null" json:"userId"`
	PageID    uint      `gorm:"uniqueIndex:idx_completion_user_page;index;not null" json:"pageId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Completion) TableName() string {
	return "completions"
}
