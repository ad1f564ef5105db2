package service

import (
	"context"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"golang.org/x/sync/errgroup"
)

// reportConcurrency bounds the per-course goroutines of one report.
const reportConcurrency = 4

type ReportService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Progress       *ProgressService
}

func NewReportService(courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository, progress *ProgressService) *ReportService {
	return &ReportService{
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		Progress:       progress,
	}
}

type CourseEnrollmentStats struct {
	CourseID        uint    `json:"courseId"`
	CourseName      string  `json:"courseName"`
	Enrollments     int     `json:"enrollments"`
	AverageProgress float64 `json:"averageProgress"`
}

// EnrollmentReport summarizes every course the educator owns. Courses are
// processed concurrently; the first failure cancels the rest.
func (s *ReportService) EnrollmentReport(ctx context.Context, actor Actor) ([]CourseEnrollmentStats, error) {
	if !Authorize(actor, model.Educator) {
		return nil, util.ErrForbidden
	}
	courses, err := s.CourseRepo.ListCoursesByCreator(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	stats := make([]CourseEnrollmentStats, len(courses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)
	for i := range courses {
		i := i
		g.Go(func() error {
			st, err := s.courseStats(gctx, &courses[i])
			if err != nil {
				return err
			}
			stats[i] = *st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *ReportService) courseStats(ctx context.Context, course *model.Course) (*CourseEnrollmentStats, error) {
	count, err := s.EnrollmentRepo.CountByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	st := &CourseEnrollmentStats{CourseID: course.ID, CourseName: course.Name, Enrollments: int(count)}
	if count == 0 {
		return st, nil
	}
	userIDs, err := s.EnrollmentRepo.UserIDsByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	sum := 0
	for _, uid := range userIDs {
		pct, err := s.Progress.ComputeProgress(ctx, uid, course.ID)
		if err != nil {
			return nil, err
		}
		sum += pct
	}
	st.AverageProgress = float64(sum) / float64(len(userIDs))
	return st, nil
}
