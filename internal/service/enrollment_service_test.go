package service

import (
	"context"
	"errors"
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/testutil"
	"learnhub_backend/internal/util"
)

func TestEnroll_Idempotent(t *testing.T) {
	s := newServices(t)
	f := testutil.NewFixture(t, s.db, 1)
	ctx := context.Background()

	first, err := s.enrollment.Enroll(ctx, actorOf(f.Student), f.Course.ID)
	if err != nil || !first.Created {
		t.Fatalf("first enroll: %+v, %v", first, err)
	}
	second, err := s.enrollment.Enroll(ctx, actorOf(f.Student), f.Course.ID)
	if err != nil || second.Created {
		t.Fatalf("second enroll should report created=false: %+v, %v", second, err)
	}
	var n int64
	s.db.Model(&model.Enrollment{}).Where("user_id = ? AND course_id = ?", f.Student.ID, f.Course.ID).Count(&n)
	if n != 1 {
		t.Fatalf("expected one enrollment row, got %d", n)
	}
}

func TestEnroll_Rules(t *testing.T) {
	s := newServices(t)
	f := testutil.NewFixture(t, s.db, 1)
	ctx := context.Background()

	if _, err := s.enrollment.Enroll(ctx, actorOf(f.Educator), f.Course.ID); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("educators cannot enroll, got %v", err)
	}
	if _, err := s.enrollment.Enroll(ctx, actorOf(f.Student), 31337); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnroll_AvailableExcludesEnrolled(t *testing.T) {
	s := newServices(t)
	f := testutil.NewFixture(t, s.db, 1)
	_, _, other := testutil.SeedCourse(t, s.db, f.Educator, "Second", 1)
	ctx := context.Background()
	mustEnroll(t, s, f.Student, f.Course.ID)

	ids, err := s.enrollment.ListEnrolledCourseIDs(ctx, f.Student.ID)
	if err != nil || len(ids) != 1 || ids[0] != f.Course.ID {
		t.Fatalf("unexpected enrolled ids %v, %v", ids, err)
	}
	available, err := s.enrollment.ListAvailableCourses(ctx, f.Student.ID)
	if err != nil || len(available) != 1 || available[0].ID != other.ID {
		t.Fatalf("unexpected available courses %+v, %v", available, err)
	}
}

func TestMarkComplete_IdempotentAndRequiresEnrollment(t *testing.T) {
	s := newServices(t)
	f := testutil.NewFixture(t, s.db, 1)
	ctx := context.Background()
	page := f.Pages[0].ID

	if _, err := s.completion.MarkComplete(ctx, actorOf(f.Student), page); !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
	if _, err := s.completion.MarkComplete(ctx, actorOf(f.Educator), page); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for educator, got %v", err)
	}

	mustEnroll(t, s, f.Student, f.Course.ID)
	first, err := s.completion.MarkComplete(ctx, actorOf(f.Student), page)
	if err != nil || !first.Created || first.CourseID != f.Course.ID {
		t.Fatalf("first completion: %+v, %v", first, err)
	}
	second, err := s.completion.MarkComplete(ctx, actorOf(f.Student), page)
	if err != nil || second.Created {
		t.Fatalf("second completion: %+v, %v", second, err)
	}
	var n int64
	s.db.Model(&model.Completion{}).Where("user_id = ? AND page_id = ?", f.Student.ID, page).Count(&n)
	if n != 1 {
		t.Fatalf("expected one completion row, got %d", n)
	}
}

func TestDashboard_ByRole(t *testing.T) {
	s := newServices(t)
	f := testutil.NewFixture(t, s.db, 2)
	testutil.SeedCourse(t, s.db, f.Educator, "Elective", 1)
	ctx := context.Background()
	mustEnroll(t, s, f.Student, f.Course.ID)
	completeAll(t, s, f.Student, f.Pages[:1])

	d, err := s.dashboard.GetDashboard(ctx, actorOf(f.Student))
	if err != nil {
		t.Fatalf("student dashboard: %v", err)
	}
	if len(d.Enrolled) != 1 || d.Enrolled[0].Progress == nil || *d.Enrolled[0].Progress != 50 {
		t.Fatalf("unexpected enrolled summary %+v", d.Enrolled)
	}
	if len(d.Available) != 1 || d.Available[0].Name != "Elective" {
		t.Fatalf("unexpected available %+v", d.Available)
	}

	d, err = s.dashboard.GetDashboard(ctx, actorOf(f.Educator))
	if err != nil {
		t.Fatalf("educator dashboard: %v", err)
	}
	if len(d.MyCourses) != 2 || len(d.Enrolled) != 0 {
		t.Fatalf("unexpected educator dashboard %+v", d)
	}
}
