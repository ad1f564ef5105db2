package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type AttachmentRepository struct {
	DB *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{DB: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *model.PageAttachment) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *AttachmentRepository) FindByID(ctx context.Context, id uint) (*model.PageAttachment, error) {
	var a model.PageAttachment
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttachmentRepository) ListByPage(ctx context.Context, pageID uint) ([]model.PageAttachment, error) {
	var list []model.PageAttachment
	err := r.DB.WithContext(ctx).Where("page_id = ?", pageID).Order("id").Find(&list).Error
	return list, err
}

func (r *AttachmentRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.PageAttachment{}, id).Error
}
