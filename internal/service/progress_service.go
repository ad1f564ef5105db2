package service

import (
	"context"
	"math"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
)

type ProgressService struct {
	CourseRepo     *repository.CourseRepository
	CompletionRepo *repository.CompletionRepository
	QuizRepo       *repository.QuizRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Policy         *LearningPolicy
}

func NewProgressService(
	courseRepo *repository.CourseRepository,
	completionRepo *repository.CompletionRepository,
	quizRepo *repository.QuizRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	policy *LearningPolicy,
) *ProgressService {
	return &ProgressService{
		CourseRepo:     courseRepo,
		CompletionRepo: completionRepo,
		QuizRepo:       quizRepo,
		EnrollmentRepo: enrollmentRepo,
		Policy:         policy,
	}
}

// CourseProgress is the derived, never-stored view of a student's progress.
type CourseProgress struct {
	CourseID         uint   `json:"courseId"`
	Percent          int    `json:"percent"`
	CompletedPages   int    `json:"completedPages"`
	TotalPages       int    `json:"totalPages"`
	UnpassedQuizzes  int    `json:"unpassedQuizzes"`
	CompletedPageIDs []uint `json:"completedPageIds"`
}

// ProgressPercent applies the progress formula: completed share of pages
// rounded to a whole percent, minus penalty for each unpassed quiz, floored
// at zero.
func ProgressPercent(completed, total, unpassedQuizzes, penalty int) int {
	base := 0
	if total > 0 {
		base = int(math.Round(100 * float64(completed) / float64(total)))
	}
	p := base - unpassedQuizzes*penalty
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ComputeProgress returns the percentage for userID in courseID.
func (s *ProgressService) ComputeProgress(ctx context.Context, userID, courseID uint) (int, error) {
	p, err := s.Detail(ctx, userID, courseID)
	if err != nil {
		return 0, err
	}
	return p.Percent, nil
}

func (s *ProgressService) Detail(ctx context.Context, userID, courseID uint) (*CourseProgress, error) {
	total, err := s.CourseRepo.CountPagesInCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	completedIDs, err := s.CompletionRepo.PageIDsInCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.QuizRepo.QuestionCountsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.QuizRepo.AttemptsInCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	unpassed := 0
	for chapterID := range quizzes {
		a, ok := attempts[chapterID]
		if !ok || !a.Passed() {
			unpassed++
		}
	}

	return &CourseProgress{
		CourseID:         courseID,
		Percent:          ProgressPercent(len(completedIDs), int(total), unpassed, s.Policy.Get().UnpassedQuizPenalty),
		CompletedPages:   len(completedIDs),
		TotalPages:       int(total),
		UnpassedQuizzes:  unpassed,
		CompletedPageIDs: completedIDs,
	}, nil
}

// ForViewer returns progress only for an enrolled student; other viewers get
// nil without error.
func (s *ProgressService) ForViewer(ctx context.Context, actor Actor, courseID uint) (*CourseProgress, error) {
	if !Authorize(actor, model.Student) {
		return nil, nil
	}
	enrolled, err := s.EnrollmentRepo.Exists(ctx, actor.UserID, courseID)
	if err != nil || !enrolled {
		return nil, err
	}
	return s.Detail(ctx, actor.UserID, courseID)
}
