package app

import (
	"net/http"

	"learnhub_backend/docs"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// route binds one endpoint to the policy that guards it.
type route struct {
	method  string
	path    string
	policy  middleware.Policy
	handler gin.HandlerFunc
}

// routeTable is the single authorization table of the API. Ownership of the
// addressed course, chapter, page or question is checked in the services.
func routeTable(c *controllers) []route {
	const (
		GET  = http.MethodGet
		POST = http.MethodPost
	)
	return []route{
		// 公共路由(无需登录)
		{GET, "/health", middleware.Public, c.health.HealthCheck},
		{POST, "/signup", middleware.Public, c.auth.SignUp},
		{POST, "/signin", middleware.Public, c.auth.SignIn},

		// 任意已登录用户
		{POST, "/signout", middleware.SignedIn, c.auth.SignOut},
		{GET, "/csrf-token", middleware.SignedIn, c.auth.CSRFToken},
		{GET, "/profile", middleware.SignedIn, c.auth.GetProfile},
		{GET, "/dashboard", middleware.SignedIn, c.dashboard.GetDashboard},
		{GET, "/courses/:courseId", middleware.SignedIn, c.learning.GetCourse},
		{GET, "/pages/:pageId", middleware.SignedIn, c.learning.GetPage},

		// 学生
		{POST, "/enroll/:courseId", middleware.StudentOnly, c.learning.Enroll},
		{POST, "/pages/:pageId/complete", middleware.StudentOnly, c.learning.CompletePage},
		{GET, "/chapters/:chapterId/quiz", middleware.StudentOnly, c.quiz.GetQuiz},
		{POST, "/chapters/:chapterId/quiz", middleware.StudentOnly, c.quiz.SubmitQuiz},

		// 教师，且必须是课程创建者
		{GET, "/mycourses", middleware.EducatorOnly, c.catalog.MyCourses},
		{POST, "/createnewcourse", middleware.EducatorOnly, c.catalog.CreateCourse},
		{POST, "/courses/import", middleware.EducatorOnly, c.catalog.ImportCourse},
		{GET, "/addchapters", middleware.EducatorOnly, c.catalog.AddChaptersForm},
		{POST, "/addchapters", middleware.EducatorOnly, c.catalog.AddChapter},
		{GET, "/addpages", middleware.EducatorOnly, c.catalog.AddPagesForm},
		{POST, "/addpages", middleware.EducatorOnly, c.catalog.AddPage},
		{POST, "/courses/:courseId/edit", middleware.EducatorOnly, c.catalog.EditCourse},
		{POST, "/courses/:courseId/delete", middleware.EducatorOnly, c.catalog.DeleteCourse},
		{POST, "/chapters/:chapterId/edit", middleware.EducatorOnly, c.catalog.EditChapter},
		{POST, "/chapters/:chapterId/delete", middleware.EducatorOnly, c.catalog.DeleteChapter},
		{POST, "/pages/:pageId/edit", middleware.EducatorOnly, c.catalog.EditPage},
		{POST, "/pages/:pageId/delete", middleware.EducatorOnly, c.catalog.DeletePage},
		{GET, "/chapters/:chapterId/quiz/questions", middleware.EducatorOnly, c.quiz.ListQuestions},
		{POST, "/chapters/:chapterId/quiz/add", middleware.EducatorOnly, c.quiz.AddQuestion},
		{POST, "/quiz/questions/:questionId/delete", middleware.EducatorOnly, c.quiz.DeleteQuestion},
		{POST, "/pages/:pageId/attachments", middleware.EducatorOnly, c.attachment.Upload},
		{POST, "/attachments/:attachmentId/delete", middleware.EducatorOnly, c.attachment.Delete},
		{GET, "/educator/reports/enrollments", middleware.EducatorOnly, c.dashboard.EnrollmentReport},
	}
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, guards middleware.Guards) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	for _, r := range routeTable(c) {
		handlers := append(guards.Chain(r.policy), r.handler)
		api.Handle(r.method, r.path, handlers...)
	}
}
