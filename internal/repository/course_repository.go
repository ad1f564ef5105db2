package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

// CourseRepository covers the Course -> Chapter -> Page hierarchy.
type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

// ResourceKind names an entity that sits under a course.
type ResourceKind string

const (
	KindCourse     ResourceKind = "course"
	KindChapter    ResourceKind = "chapter"
	KindPage       ResourceKind = "page"
	KindQuestion   ResourceKind = "question"
	KindAttachment ResourceKind = "attachment"
)

// Ownership is the root of an ownership chain.
type Ownership struct {
	CourseID  uint
	CreatorID uint
}

// FindOwnership resolves the course and its creator for any catalog entity in
// a single query. It returns gorm.ErrRecordNotFound for dangling ids.
func (r *CourseRepository) FindOwnership(ctx context.Context, kind ResourceKind, id uint) (*Ownership, error) {
	q := r.DB.WithContext(ctx).Table("courses").Select("courses.id AS course_id, courses.creator_id AS creator_id")
	switch kind {
	case KindCourse:
		q = q.Where("courses.id = ?", id)
	case KindChapter:
		q = q.Joins("JOIN chapters ON chapters.course_id = courses.id").
			Where("chapters.id = ?", id)
	case KindPage:
		q = q.Joins("JOIN chapters ON chapters.course_id = courses.id").
			Joins("JOIN pages ON pages.chapter_id = chapters.id").
			Where("pages.id = ?", id)
	case KindQuestion:
		q = q.Joins("JOIN chapters ON chapters.course_id = courses.id").
			Joins("JOIN quiz_questions ON quiz_questions.chapter_id = chapters.id").
			Where("quiz_questions.id = ?", id)
	case KindAttachment:
		q = q.Joins("JOIN chapters ON chapters.course_id = courses.id").
			Joins("JOIN pages ON pages.chapter_id = chapters.id").
			Joins("JOIN page_attachments ON page_attachments.page_id = pages.id").
			Where("page_attachments.id = ?", id)
	default:
		return nil, gorm.ErrRecordNotFound
	}

	var rows []Ownership
	if err := q.Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// ---- courses ----

func (r *CourseRepository) CreateCourse(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

func (r *CourseRepository) FindCourseByID(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) CourseNameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Course{}).
		Where("name = ? AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) UpdateCourseName(ctx context.Context, id uint, name string) error {
	return r.DB.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).Update("name", name).Error
}

func (r *CourseRepository) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).Order("id").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListCoursesByCreator(ctx context.Context, creatorID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).Where("creator_id = ?", creatorID).Order("id").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListCoursesByIDs(ctx context.Context, ids []uint) ([]model.Course, error) {
	var courses []model.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&courses).Error
	return courses, err
}

// ListCoursesExcluding returns every course whose id is not in ids.
func (r *CourseRepository) ListCoursesExcluding(ctx context.Context, ids []uint) ([]model.Course, error) {
	if len(ids) == 0 {
		return r.ListCourses(ctx)
	}
	var courses []model.Course
	err := r.DB.WithContext(ctx).Where("id NOT IN ?", ids).Order("id").Find(&courses).Error
	return courses, err
}

// FindOutline loads a course with its chapters and their pages, ordered by id.
func (r *CourseRepository) FindOutline(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB { return db.Order("chapters.id") }).
		Preload("Chapters.Pages", func(db *gorm.DB) *gorm.DB { return db.Order("pages.id") }).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ---- chapters ----

func (r *CourseRepository) CreateChapter(ctx context.Context, chapter *model.Chapter) error {
	return r.DB.WithContext(ctx).Create(chapter).Error
}

func (r *CourseRepository) FindChapterByID(ctx context.Context, id uint) (*model.Chapter, error) {
	var chapter model.Chapter
	if err := r.DB.WithContext(ctx).First(&chapter, id).Error; err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (r *CourseRepository) UpdateChapter(ctx context.Context, chapter *model.Chapter) error {
	return r.DB.WithContext(ctx).Model(chapter).
		Select("name", "description").
		Updates(chapter).Error
}

func (r *CourseRepository) ListChapters(ctx context.Context, courseID uint) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.DB.WithContext(ctx).Where("course_id = ?", courseID).Order("id").Find(&chapters).Error
	return chapters, err
}

func (r *CourseRepository) ChapterIDs(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Chapter{}).Where("course_id = ?", courseID).Pluck("id", &ids).Error
	return ids, err
}

// ---- pages ----

func (r *CourseRepository) CreatePage(ctx context.Context, page *model.Page) error {
	return r.DB.WithContext(ctx).Create(page).Error
}

func (r *CourseRepository) FindPageByID(ctx context.Context, id uint) (*model.Page, error) {
	var page model.Page
	if err := r.DB.WithContext(ctx).Preload("Attachments").First(&page, id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *CourseRepository) UpdatePage(ctx context.Context, page *model.Page) error {
	return r.DB.WithContext(ctx).Model(page).
		Select("title", "content").
		Updates(page).Error
}

func (r *CourseRepository) PageIDsByChapters(ctx context.Context, chapterIDs []uint) ([]uint, error) {
	var ids []uint
	if len(chapterIDs) == 0 {
		return ids, nil
	}
	err := r.DB.WithContext(ctx).Model(&model.Page{}).Where("chapter_id IN ?", chapterIDs).Pluck("id", &ids).Error
	return ids, err
}

func (r *CourseRepository) CountPagesInCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Page{}).
		Joins("JOIN chapters ON chapters.id = pages.chapter_id").
		Where("chapters.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

// ---- cascade ----

// DeleteChapters removes the given chapters with their pages, quiz questions
// and quiz attempts, plus completions and attachments of those pages. It
// returns the storage keys of the removed attachments. Run it inside a
// transaction.
func (r *CourseRepository) DeleteChapters(ctx context.Context, chapterIDs []uint) ([]string, error) {
	if len(chapterIDs) == 0 {
		return nil, nil
	}
	pageIDs, err := r.PageIDsByChapters(ctx, chapterIDs)
	if err != nil {
		return nil, err
	}
	keys, err := r.DeletePages(ctx, pageIDs)
	if err != nil {
		return nil, err
	}

	db := r.DB.WithContext(ctx)
	if err := db.Where("chapter_id IN ?", chapterIDs).Delete(&model.QuizAttempt{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("chapter_id IN ?", chapterIDs).Delete(&model.QuizQuestion{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("id IN ?", chapterIDs).Delete(&model.Chapter{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// DeletePages removes pages with their completions and attachments.
func (r *CourseRepository) DeletePages(ctx context.Context, pageIDs []uint) ([]string, error) {
	if len(pageIDs) == 0 {
		return nil, nil
	}
	db := r.DB.WithContext(ctx)

	var keys []string
	if err := db.Model(&model.PageAttachment{}).Where("page_id IN ?", pageIDs).Pluck("object_key", &keys).Error; err != nil {
		return nil, err
	}
	if err := db.Where("page_id IN ?", pageIDs).Delete(&model.PageAttachment{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("page_id IN ?", pageIDs).Delete(&model.Completion{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("id IN ?", pageIDs).Delete(&model.Page{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteCourse removes a course, its enrollments and its whole chapter tree.
func (r *CourseRepository) DeleteCourse(ctx context.Context, courseID uint) ([]string, error) {
	chapterIDs, err := r.ChapterIDs(ctx, courseID)
	if err != nil {
		return nil, err
	}
	keys, err := r.DeleteChapters(ctx, chapterIDs)
	if err != nil {
		return nil, err
	}

	db := r.DB.WithContext(ctx)
	if err := db.Where("course_id = ?", courseID).Delete(&model.Enrollment{}).Error; err != nil {
		return nil, err
	}
	if err := db.Delete(&model.Course{}, courseID).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
