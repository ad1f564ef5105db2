package model

import "time"

// Enrollment is a student's membership in a course, one row per pair.
// swagger:model Enrollment
type Enrollment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID  uint      `gorm:"uniqueIndex:idx_enrollment_user_course;index;not null" json:"courseId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
