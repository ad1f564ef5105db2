package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttachmentService stores files attached to pages. Only the owning educator
// may add or remove them.
type AttachmentService struct {
	Repo        *repository.AttachmentRepository
	Access      *AccessService
	Storage     *StorageService
	MaxUploadMB int64
}

func NewAttachmentService(repo *repository.AttachmentRepository, access *AccessService, storage *StorageService, maxUploadMB int64) *AttachmentService {
	return &AttachmentService{
		Repo:        repo,
		Access:      access,
		Storage:     storage,
		MaxUploadMB: maxUploadMB,
	}
}

type UploadInput struct {
	FileName string
	Size     int64
	Reader   io.Reader
}

func (s *AttachmentService) maxBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return s.MaxUploadMB << 20
}

func (s *AttachmentService) Upload(ctx context.Context, actor Actor, pageID uint, in UploadInput) (*model.PageAttachment, error) {
	if _, err := s.Access.CanManage(ctx, actor, PageRef(pageID)); err != nil {
		return nil, err
	}
	if in.Size <= 0 {
		return nil, &util.ValidationError{Fields: []string{"file"}}
	}
	if in.Size > s.maxBytes() {
		return nil, fmt.Errorf("%w: file exceeds %d MB", util.ErrFileTooLarge, s.maxBytes()>>20)
	}

	// 读取文件头做类型检测，再把读过的部分拼回去
	head := make([]byte, util.SniffLen)
	n, err := io.ReadFull(in.Reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	head = head[:n]
	mimeType, err := util.DetectAllowedType(head, util.AllowedAttachmentTypes)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(strings.TrimSpace(in.FileName))
	key := path.Join("attachments", fmt.Sprint(pageID), uuid.NewString()+strings.ToLower(filepath.Ext(name)))
	url, err := s.Storage.Upload(ctx, key, io.MultiReader(bytes.NewReader(head), in.Reader), in.Size, mimeType)
	if err != nil {
		return nil, err
	}

	a := &model.PageAttachment{
		PageID:      pageID,
		ObjectKey:   key,
		FileName:    name,
		ContentType: mimeType,
		Size:        in.Size,
		URL:         url,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		if delErr := s.Storage.Delete(ctx, key); delErr != nil {
			logger.Log.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return a, nil
}

func (s *AttachmentService) List(ctx context.Context, pageID uint) ([]model.PageAttachment, error) {
	return s.Repo.ListByPage(ctx, pageID)
}

func (s *AttachmentService) Delete(ctx context.Context, actor Actor, attachmentID uint) error {
	if _, err := s.Access.CanManage(ctx, actor, AttachmentRef(attachmentID)); err != nil {
		return err
	}
	a, err := s.Repo.FindByID(ctx, attachmentID)
	if err != nil {
		return notFound(err, "attachment %d", attachmentID)
	}
	if err := s.Repo.Delete(ctx, attachmentID); err != nil {
		return err
	}
	if err := s.Storage.Delete(ctx, a.ObjectKey); err != nil {
		logger.Log.Warn("failed to remove attachment object", zap.String("key", a.ObjectKey), zap.Error(err))
	}
	return nil
}
