package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) WithTx(tx *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: tx}
}

func (r *QuizRepository) CreateQuestion(ctx context.Context, q *model.QuizQuestion) error {
	return r.DB.WithContext(ctx).Create(q).Error
}

func (r *QuizRepository) DeleteQuestion(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.QuizQuestion{}, id).Error
}

func (r *QuizRepository) ListQuestions(ctx context.Context, chapterID uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.WithContext(ctx).Where("chapter_id = ?", chapterID).Order("id").Find(&questions).Error
	return questions, err
}

type chapterCount struct {
	ChapterID uint
	Count     int
}

// QuestionCountsByCourse maps each chapter of the course that has a quiz to
// its question count. Chapters without questions are absent.
func (r *QuizRepository) QuestionCountsByCourse(ctx context.Context, courseID uint) (map[uint]int, error) {
	var rows []chapterCount
	err := r.DB.WithContext(ctx).Model(&model.QuizQuestion{}).
		Select("quiz_questions.chapter_id AS chapter_id, COUNT(*) AS count").
		Joins("JOIN chapters ON chapters.id = quiz_questions.chapter_id").
		Where("chapters.course_id = ?", courseID).
		Group("quiz_questions.chapter_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.ChapterID] = row.Count
	}
	return counts, nil
}

func (r *QuizRepository) FindAttempt(ctx context.Context, userID, chapterID uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND chapter_id = ?", userID, chapterID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AttemptsInCourse returns the user's attempts keyed by chapter id.
func (r *QuizRepository) AttemptsInCourse(ctx context.Context, userID, courseID uint) (map[uint]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.WithContext(ctx).
		Joins("JOIN chapters ON chapters.id = quiz_attempts.chapter_id").
		Where("quiz_attempts.user_id = ? AND chapters.course_id = ?", userID, courseID).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]model.QuizAttempt, len(attempts))
	for _, a := range attempts {
		out[a.ChapterID] = a
	}
	return out, nil
}

// LockAttempt creates the attempt row if needed and reads it back under a row
// lock, serializing graders of the same (user, chapter). Call inside a
// transaction.
func (r *QuizRepository) LockAttempt(ctx context.Context, userID, chapterID uint) (attempt *model.QuizAttempt, created bool, err error) {
	db := r.DB.WithContext(ctx)
	res := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.QuizAttempt{UserID: userID, ChapterID: chapterID})
	if res.Error != nil {
		return nil, false, res.Error
	}

	var a model.QuizAttempt
	err = db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND chapter_id = ?", userID, chapterID).
		First(&a).Error
	if err != nil {
		return nil, false, err
	}
	return &a, res.RowsAffected == 1, nil
}

func (r *QuizRepository) SaveGrade(ctx context.Context, a *model.QuizAttempt) error {
	return r.DB.WithContext(ctx).Model(a).
		Select("score", "total", "attempts_used").
		Updates(a).Error
}
