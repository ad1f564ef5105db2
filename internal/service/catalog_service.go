package service

import (
	"context"
	"errors"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService authors the Course -> Chapter -> Page tree. Every mutation
// goes through AccessService.CanManage first.
type CatalogService struct {
	CourseRepo *repository.CourseRepository
	Access     *AccessService
	Storage    *StorageService
	DB         *gorm.DB
}

func NewCatalogService(courseRepo *repository.CourseRepository, access *AccessService, storage *StorageService, db *gorm.DB) *CatalogService {
	return &CatalogService{
		CourseRepo: courseRepo,
		Access:     access,
		Storage:    storage,
		DB:         db,
	}
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.NotFoundf(format, args...)
	}
	return err
}

func (s *CatalogService) CreateCourse(ctx context.Context, actor Actor, name string) (*model.Course, error) {
	if !Authorize(actor, model.Educator) {
		return nil, util.ErrForbidden
	}
	name = strings.TrimSpace(name)
	if err := util.Require(map[string]string{"name": name}); err != nil {
		return nil, err
	}

	taken, err := s.CourseRepo.CourseNameExists(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrCourseNameTaken
	}

	course := &model.Course{Name: name, CreatorID: actor.UserID}
	if err := s.CourseRepo.CreateCourse(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrCourseNameTaken
		}
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) RenameCourse(ctx context.Context, actor Actor, courseID uint, name string) (*model.Course, error) {
	if _, err := s.Access.CanManage(ctx, actor, CourseRef(courseID)); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := util.Require(map[string]string{"name": name}); err != nil {
		return nil, err
	}
	taken, err := s.CourseRepo.CourseNameExists(ctx, name, courseID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrCourseNameTaken
	}
	if err := s.CourseRepo.UpdateCourseName(ctx, courseID, name); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrCourseNameTaken
		}
		return nil, err
	}
	course, err := s.CourseRepo.FindCourseByID(ctx, courseID)
	return course, notFound(err, "course %d", courseID)
}

// DeleteCourse removes the course and everything under it in one transaction.
func (s *CatalogService) DeleteCourse(ctx context.Context, actor Actor, courseID uint) error {
	if _, err := s.Access.CanManage(ctx, actor, CourseRef(courseID)); err != nil {
		return err
	}
	var keys []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		keys, err = s.CourseRepo.WithTx(tx).DeleteCourse(ctx, courseID)
		return err
	})
	if err != nil {
		return err
	}
	s.removeObjects(ctx, keys)
	return nil
}

func (s *CatalogService) CreateChapter(ctx context.Context, actor Actor, courseID uint, name, description string) (*model.Chapter, error) {
	if _, err := s.Access.CanManage(ctx, actor, CourseRef(courseID)); err != nil {
		return nil, err
	}
	if err := util.Require(map[string]string{"chapterName": name}); err != nil {
		return nil, err
	}
	chapter := &model.Chapter{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CourseID:    courseID,
	}
	if err := s.CourseRepo.CreateChapter(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

func (s *CatalogService) UpdateChapter(ctx context.Context, actor Actor, chapterID uint, name, description string) (*model.Chapter, error) {
	if _, err := s.Access.CanManage(ctx, actor, ChapterRef(chapterID)); err != nil {
		return nil, err
	}
	if err := util.Require(map[string]string{"chapterName": name}); err != nil {
		return nil, err
	}
	chapter, err := s.CourseRepo.FindChapterByID(ctx, chapterID)
	if err != nil {
		return nil, notFound(err, "chapter %d", chapterID)
	}
	chapter.Name = strings.TrimSpace(name)
	chapter.Description = strings.TrimSpace(description)
	if err := s.CourseRepo.UpdateChapter(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

func (s *CatalogService) DeleteChapter(ctx context.Context, actor Actor, chapterID uint) error {
	if _, err := s.Access.CanManage(ctx, actor, ChapterRef(chapterID)); err != nil {
		return err
	}
	var keys []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		keys, err = s.CourseRepo.WithTx(tx).DeleteChapters(ctx, []uint{chapterID})
		return err
	})
	if err != nil {
		return err
	}
	s.removeObjects(ctx, keys)
	return nil
}

func (s *CatalogService) CreatePage(ctx context.Context, actor Actor, chapterID uint, title, content string) (*model.Page, error) {
	if _, err := s.Access.CanManage(ctx, actor, ChapterRef(chapterID)); err != nil {
		return nil, err
	}
	if err := util.Require(map[string]string{"title": title, "content": content}); err != nil {
		return nil, err
	}
	page := &model.Page{Title: strings.TrimSpace(title), Content: content, ChapterID: chapterID}
	if err := s.CourseRepo.CreatePage(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *CatalogService) UpdatePage(ctx context.Context, actor Actor, pageID uint, title, content string) (*model.Page, error) {
	if _, err := s.Access.CanManage(ctx, actor, PageRef(pageID)); err != nil {
		return nil, err
	}
	if err := util.Require(map[string]string{"title": title, "content": content}); err != nil {
		return nil, err
	}
	page, err := s.CourseRepo.FindPageByID(ctx, pageID)
	if err != nil {
		return nil, notFound(err, "page %d", pageID)
	}
	page.Title = strings.TrimSpace(title)
	page.Content = content
	if err := s.CourseRepo.UpdatePage(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *CatalogService) DeletePage(ctx context.Context, actor Actor, pageID uint) error {
	if _, err := s.Access.CanManage(ctx, actor, PageRef(pageID)); err != nil {
		return err
	}
	var keys []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		keys, err = s.CourseRepo.WithTx(tx).DeletePages(ctx, []uint{pageID})
		return err
	})
	if err != nil {
		return err
	}
	s.removeObjects(ctx, keys)
	return nil
}

// removeObjects deletes stored attachment files after their rows are gone.
// Failures only leave orphaned objects behind, so they are logged.
func (s *CatalogService) removeObjects(ctx context.Context, keys []string) {
	if s.Storage == nil {
		return
	}
	for _, key := range keys {
		if err := s.Storage.Delete(ctx, key); err != nil {
			logger.Log.Warn("failed to remove attachment object", zap.String("key", key), zap.Error(err))
		}
	}
}

// ---- reads ----

func (s *CatalogService) ListMyCourses(ctx context.Context, actor Actor) ([]model.Course, error) {
	if !Authorize(actor, model.Educator) {
		return nil, util.ErrForbidden
	}
	return s.CourseRepo.ListCoursesByCreator(ctx, actor.UserID)
}

// ListChaptersForEditing backs the add-pages form: it only lists chapters of
// courses the educator owns.
func (s *CatalogService) ListChaptersForEditing(ctx context.Context, actor Actor, courseID uint) ([]model.Chapter, error) {
	if _, err := s.Access.CanManage(ctx, actor, CourseRef(courseID)); err != nil {
		return nil, err
	}
	return s.CourseRepo.ListChapters(ctx, courseID)
}

func (s *CatalogService) GetOutline(ctx context.Context, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindOutline(ctx, courseID)
	return course, notFound(err, "course %d", courseID)
}

func (s *CatalogService) GetPage(ctx context.Context, pageID uint) (*model.Page, error) {
	page, err := s.CourseRepo.FindPageByID(ctx, pageID)
	return page, notFound(err, "page %d", pageID)
}
