package model

import (
	"time"
)

// BaseModel carries no soft-delete column: catalog deletes cascade as hard
// deletes so unique indexes (course names, enrollment pairs) stay reusable.
// swagger:model
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
