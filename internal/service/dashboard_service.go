package service

import (
	"context"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
)

type DashboardService struct {
	Enrollment *EnrollmentService
	Catalog    *CatalogService
	Progress   *ProgressService
}

func NewDashboardService(enrollment *EnrollmentService, catalog *CatalogService, progress *ProgressService) *DashboardService {
	return &DashboardService{
		Enrollment: enrollment,
		Catalog:    catalog,
		Progress:   progress,
	}
}

type CourseSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Progress *int   `json:"progress,omitempty"`
}

type Dashboard struct {
	Role      model.UserRole  `json:"role"`
	Enrolled  []CourseSummary `json:"enrolled,omitempty"`
	Available []CourseSummary `json:"available,omitempty"`
	MyCourses []CourseSummary `json:"myCourses,omitempty"`
}

// GetDashboard builds the landing view: a student sees enrolled courses with
// progress plus the courses still open to them, an educator sees the courses
// they created.
func (s *DashboardService) GetDashboard(ctx context.Context, actor Actor) (*Dashboard, error) {
	switch actor.Role {
	case model.Student:
		return s.studentDashboard(ctx, actor)
	case model.Educator:
		courses, err := s.Catalog.ListMyCourses(ctx, actor)
		if err != nil {
			return nil, err
		}
		return &Dashboard{Role: actor.Role, MyCourses: summarize(courses)}, nil
	default:
		return nil, util.ErrForbidden
	}
}

func (s *DashboardService) studentDashboard(ctx context.Context, actor Actor) (*Dashboard, error) {
	enrolled, err := s.Enrollment.ListEnrolledCourses(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	available, err := s.Enrollment.ListAvailableCourses(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Role:      actor.Role,
		Enrolled:  summarize(enrolled),
		Available: summarize(available),
	}
	for i := range d.Enrolled {
		pct, err := s.Progress.ComputeProgress(ctx, actor.UserID, d.Enrolled[i].ID)
		if err != nil {
			return nil, err
		}
		d.Enrolled[i].Progress = &pct
	}
	return d, nil
}

func summarize(courses []model.Course) []CourseSummary {
	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		out = append(out, CourseSummary{ID: c.ID, Name: c.Name})
	}
	return out
}
