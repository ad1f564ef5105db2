package repository

import (
	"context"
	"errors"
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/testutil"

	"gorm.io/gorm"
)

func TestFindOwnership_ResolvesEveryKind(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db, 1)
	q := testutil.AddQuestion(t, db, fx.Chapters[0].ID, "Q", "A")
	att := &model.PageAttachment{PageID: fx.Pages[0].ID, ObjectKey: "k", FileName: "f.pdf"}
	if err := db.Create(att).Error; err != nil {
		t.Fatalf("create attachment: %v", err)
	}

	repo := NewCourseRepository(db)
	ctx := context.Background()
	cases := []struct {
		kind ResourceKind
		id   uint
	}{
		{KindCourse, fx.Course.ID},
		{KindChapter, fx.Chapters[0].ID},
		{KindPage, fx.Pages[0].ID},
		{KindQuestion, q.ID},
		{KindAttachment, att.ID},
	}
	for _, tc := range cases {
		own, err := repo.FindOwnership(ctx, tc.kind, tc.id)
		if err != nil {
			t.Fatalf("%s: %v", tc.kind, err)
		}
		if own.CourseID != fx.Course.ID || own.CreatorID != fx.Educator.ID {
			t.Fatalf("%s: unexpected ownership %+v", tc.kind, own)
		}
	}

	if _, err := repo.FindOwnership(ctx, KindPage, 9999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found for dangling page, got %v", err)
	}
}

func TestDeleteCourse_CascadesOnlyWithinCourse(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db, 2, 1)
	otherChapters, otherPages, other := testutil.SeedCourse(t, db, fx.Educator, "Other", 1)

	testutil.AddQuestion(t, db, fx.Chapters[0].ID, "Q1", "A1")
	testutil.AddQuestion(t, db, otherChapters[0].ID, "Q2", "A2")
	db.Create(&model.Completion{UserID: fx.Student.ID, PageID: fx.Pages[0].ID})
	db.Create(&model.Completion{UserID: fx.Student.ID, PageID: otherPages[0].ID})
	db.Create(&model.Enrollment{UserID: fx.Student.ID, CourseID: fx.Course.ID})
	db.Create(&model.Enrollment{UserID: fx.Student.ID, CourseID: other.ID})
	db.Create(&model.QuizAttempt{UserID: fx.Student.ID, ChapterID: fx.Chapters[0].ID, Total: 1})
	db.Create(&model.PageAttachment{PageID: fx.Pages[1].ID, ObjectKey: "pages/1/a.pdf", FileName: "a.pdf"})

	var keys []string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		keys, err = NewCourseRepository(db).WithTx(tx).DeleteCourse(context.Background(), fx.Course.ID)
		return err
	})
	if err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	if len(keys) != 1 || keys[0] != "pages/1/a.pdf" {
		t.Fatalf("expected removed attachment key, got %v", keys)
	}

	counts := map[string]interface{}{
		"courses":        &model.Course{},
		"chapters":       &model.Chapter{},
		"pages":          &model.Page{},
		"quiz_questions": &model.QuizQuestion{},
		"completions":    &model.Completion{},
		"enrollments":    &model.Enrollment{},
		"quiz_attempts":  &model.QuizAttempt{},
	}
	for table, m := range counts {
		var n int64
		db.Model(m).Count(&n)
		if table == "quiz_attempts" {
			if n != 0 {
				t.Fatalf("%s: expected 0 rows left, got %d", table, n)
			}
			continue
		}
		if n != 1 {
			t.Fatalf("%s: expected only the other course's row, got %d", table, n)
		}
	}
}

func TestCountPagesInCourse(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db, 2, 3, 0)
	testutil.SeedCourse(t, db, fx.Educator, "Noise", 4)

	n, err := NewCourseRepository(db).CountPagesInCourse(context.Background(), fx.Course.ID)
	if err != nil {
		t.Fatalf("CountPagesInCourse: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 pages, got %d", n)
	}
}
