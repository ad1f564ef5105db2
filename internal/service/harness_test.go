package service

import (
	"context"
	"testing"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/testutil"

	"gorm.io/gorm"
)

type services struct {
	db         *gorm.DB
	cfg        *config.Config
	policy     *LearningPolicy
	access     *AccessService
	auth       *AuthService
	tokens     *TokenService
	catalog    *CatalogService
	enrollment *EnrollmentService
	completion *CompletionService
	quiz       *QuizService
	progress   *ProgressService
	dashboard  *DashboardService
	report     *ReportService
	importer   *ImportService
	attach     *AttachmentService
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		JWT:      config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Storage:  config.StorageConfig{Type: "local", LocalPath: t.TempDir(), MaxUploadMB: 1},
		Learning: config.LearningConfig{QuizAttemptLimit: 3, UnpassedQuizPenalty: 5},
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	s := &services{db: db, cfg: cfg}
	s.policy = NewLearningPolicy(cfg.Learning)
	storage := NewStorageService(&cfg.Storage)
	s.tokens = NewTokenService(testutil.NewMemoryStore(), time.Hour)
	s.access = NewAccessService(courseRepo, enrollmentRepo)
	s.auth = NewAuthService(userRepo, s.tokens, cfg)
	s.catalog = NewCatalogService(courseRepo, s.access, storage, db)
	s.enrollment = NewEnrollmentService(enrollmentRepo, courseRepo)
	s.completion = NewCompletionService(completionRepo, s.access)
	s.quiz = NewQuizService(quizRepo, s.access, s.policy, db)
	s.progress = NewProgressService(courseRepo, completionRepo, quizRepo, enrollmentRepo, s.policy)
	s.dashboard = NewDashboardService(s.enrollment, s.catalog, s.progress)
	s.report = NewReportService(courseRepo, enrollmentRepo, s.progress)
	s.importer = NewImportService(courseRepo, quizRepo, db)
	s.attach = NewAttachmentService(attachmentRepo, s.access, storage, cfg.Storage.MaxUploadMB)
	return s
}

func actorOf(u *model.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func mustEnroll(t *testing.T, s *services, student *model.User, courseID uint) {
	t.Helper()
	if _, err := s.enrollment.Enroll(context.Background(), actorOf(student), courseID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
}
