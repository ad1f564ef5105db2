package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/controller"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/configwatcher"
	"learnhub_backend/pkg/database"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/security"
	"learnhub_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	// ConfigDir is watched for learning-policy changes while running.
	ConfigDir string

	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	enrollment *repository.EnrollmentRepository
	completion *repository.CompletionRepository
	quiz       *repository.QuizRepository
	attachment *repository.AttachmentRepository
}

type services struct {
	policy     *service.LearningPolicy
	tokens     *service.TokenService
	access     *service.AccessService
	auth       *service.AuthService
	storage    *service.StorageService
	catalog    *service.CatalogService
	enrollment *service.EnrollmentService
	completion *service.CompletionService
	quiz       *service.QuizService
	progress   *service.ProgressService
	dashboard  *service.DashboardService
	report     *service.ReportService
	importer   *service.ImportService
	attachment *service.AttachmentService
}

type controllers struct {
	auth       *controller.AuthController
	catalog    *controller.CatalogController
	learning   *controller.LearningController
	quiz       *controller.QuizController
	attachment *controller.AttachmentController
	dashboard  *controller.DashboardController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		completion: repository.NewCompletionRepository(db),
		quiz:       repository.NewQuizRepository(db),
		attachment: repository.NewAttachmentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, store service.TokenStore) *services {
	s := &services{}

	s.policy = service.NewLearningPolicy(cfg.Learning)
	s.tokens = service.NewTokenService(store, cfg.Security.CSRFTTL)
	s.access = service.NewAccessService(repos.course, repos.enrollment)
	s.auth = service.NewAuthService(repos.user, s.tokens, cfg)
	s.storage = service.NewStorageService(&cfg.Storage)
	s.catalog = service.NewCatalogService(repos.course, s.access, s.storage, db)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.course)
	s.completion = service.NewCompletionService(repos.completion, s.access)
	s.quiz = service.NewQuizService(repos.quiz, s.access, s.policy, db)
	s.progress = service.NewProgressService(repos.course, repos.completion, repos.quiz, repos.enrollment, s.policy)
	s.dashboard = service.NewDashboardService(s.enrollment, s.catalog, s.progress)
	s.report = service.NewReportService(repos.course, repos.enrollment, s.progress)
	s.importer = service.NewImportService(repos.course, repos.quiz, db)
	s.attachment = service.NewAttachmentService(repos.attachment, s.access, s.storage, cfg.Storage.MaxUploadMB)

	// 只有学习策略支持热更新
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.policy.Set(newCfg.Learning)
		logger.Log.Info("Learning policy updated",
			zap.Int("quiz_attempt_limit", newCfg.Learning.QuizAttemptLimit),
			zap.Int("unpassed_quiz_penalty", newCfg.Learning.UnpassedQuizPenalty))
	})
	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, s.tokens),
		catalog:    controller.NewCatalogController(s.catalog, s.importer),
		learning:   controller.NewLearningController(s.catalog, s.enrollment, s.completion, s.progress),
		quiz:       controller.NewQuizController(s.quiz),
		attachment: controller.NewAttachmentController(s.attachment),
		dashboard:  controller.NewDashboardController(s.dashboard, s.report),
		health:     controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) guards(s *services) middleware.Guards {
	g := middleware.Guards{Tokens: s.auth}
	if a.Config.Security.CSRFEnabled {
		g.CSRF = s.tokens
	}
	return g
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(tracing.ServiceName))
	}

	router.Use(monitoring.MetricsMiddleware())
}

// build assembles the HTTP application on already-opened infrastructure.
func build(cfg *config.Config, db *gorm.DB, rdb *redis.Client, store service.TokenStore) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, store)
	controllers := app.initControllers(app.services)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, app.guards(app.services))

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}
	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.MigrateOnly || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := build(cfg, db, rdb, service.NewRedisTokenStore(rdb))

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}
	return app
}

func (a *App) watchConfig(ctx context.Context) {
	if a.ConfigDir == "" {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, a.ConfigDir, func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	a.watchConfig(ctx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	logger.Sync()
}
