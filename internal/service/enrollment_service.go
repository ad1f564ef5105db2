package service

import (
	"context"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/monitoring"
)

type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
}

func NewEnrollmentService(enrollmentRepo *repository.EnrollmentRepository, courseRepo *repository.CourseRepository) *EnrollmentService {
	return &EnrollmentService{EnrollmentRepo: enrollmentRepo, CourseRepo: courseRepo}
}

// EnrollResult reports whether this call created the membership. Both
// outcomes are successes.
type EnrollResult struct {
	CourseID uint `json:"courseId"`
	Created  bool `json:"created"`
}

func (s *EnrollmentService) Enroll(ctx context.Context, actor Actor, courseID uint) (*EnrollResult, error) {
	if !Authorize(actor, model.Student) {
		return nil, util.ErrForbidden
	}
	if _, err := s.CourseRepo.FindCourseByID(ctx, courseID); err != nil {
		return nil, notFound(err, "course %d", courseID)
	}

	created, err := s.EnrollmentRepo.InsertIfAbsent(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, err
	}
	monitoring.EnrollmentCounter.WithLabelValues(monitoring.Outcome(created)).Inc()
	return &EnrollResult{CourseID: courseID, Created: created}, nil
}

func (s *EnrollmentService) ListEnrolledCourseIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.EnrollmentRepo.CourseIDsByUser(ctx, userID)
}

func (s *EnrollmentService) ListEnrolledCourses(ctx context.Context, userID uint) ([]model.Course, error) {
	ids, err := s.EnrollmentRepo.CourseIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.CourseRepo.ListCoursesByIDs(ctx, ids)
}

// ListAvailableCourses is every course minus the ones the user already joined.
func (s *EnrollmentService) ListAvailableCourses(ctx context.Context, userID uint) ([]model.Course, error) {
	ids, err := s.EnrollmentRepo.CourseIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.CourseRepo.ListCoursesExcluding(ctx, ids)
}
