// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema. The
// pool is pinned to one connection so transactions serialize the way row
// locks do on the production drivers.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, email string, role model.UserRole) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &model.User{FirstName: "Test", LastName: string(role), Email: email, Password: string(hash), Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Fixture is a small course tree owned by Educator.
type Fixture struct {
	Educator *model.User
	Student  *model.User
	Course   *model.Course
	Chapters []model.Chapter
	Pages    []model.Page
}

// SeedCourse creates a course with the given number of pages per chapter.
func SeedCourse(t *testing.T, db *gorm.DB, educator *model.User, name string, pagesPerChapter ...int) ([]model.Chapter, []model.Page, *model.Course) {
	t.Helper()
	course := &model.Course{Name: name, CreatorID: educator.ID}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	var chapters []model.Chapter
	var pages []model.Page
	for i, n := range pagesPerChapter {
		ch := model.Chapter{Name: name + " chapter", Description: "d", CourseID: course.ID}
		if err := db.Create(&ch).Error; err != nil {
			t.Fatalf("create chapter %d: %v", i, err)
		}
		chapters = append(chapters, ch)
		for j := 0; j < n; j++ {
			p := model.Page{Title: "page", Content: "content", ChapterID: ch.ID}
			if err := db.Create(&p).Error; err != nil {
				t.Fatalf("create page: %v", err)
			}
			pages = append(pages, p)
		}
	}
	return chapters, pages, course
}

// NewFixture seeds one educator, one student and a course laid out by pagesPerChapter.
func NewFixture(t *testing.T, db *gorm.DB, pagesPerChapter ...int) *Fixture {
	t.Helper()
	educator := CreateUser(t, db, "teacher-"+uuid.NewString()[:8]+"@example.com", model.Educator)
	student := CreateUser(t, db, "student-"+uuid.NewString()[:8]+"@example.com", model.Student)
	chapters, pages, course := SeedCourse(t, db, educator, "Course "+uuid.NewString()[:8], pagesPerChapter...)
	return &Fixture{Educator: educator, Student: student, Course: course, Chapters: chapters, Pages: pages}
}

// AddQuestion attaches a quiz question to a chapter.
func AddQuestion(t *testing.T, db *gorm.DB, chapterID uint, question, answer string) *model.QuizQuestion {
	t.Helper()
	q := &model.QuizQuestion{ChapterID: chapterID, Question: question, Answer: answer}
	if err := db.Create(q).Error; err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}
