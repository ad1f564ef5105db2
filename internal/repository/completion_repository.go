package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompletionRepository struct {
	DB *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

// InsertIfAbsent marks the page as read; see EnrollmentRepository.InsertIfAbsent.
func (r *CompletionRepository) InsertIfAbsent(ctx context.Context, userID, pageID uint) (bool, error) {
	c := &model.Completion{UserID: userID, PageID: pageID}
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(c)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// PageIDsInCourse 获取用户在课程内已完成的页面
func (r *CompletionRepository) PageIDsInCourse(ctx context.Context, userID, courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Completion{}).
		Joins("JOIN pages ON pages.id = completions.page_id").
		Joins("JOIN chapters ON chapters.id = pages.chapter_id").
		Where("completions.user_id = ? AND chapters.course_id = ?", userID, courseID).
		Order("completions.page_id").
		Pluck("completions.page_id", &ids).Error
	return ids, err
}
