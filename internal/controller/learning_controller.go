package controller

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningController struct {
	CatalogService    *service.CatalogService
	EnrollmentService *service.EnrollmentService
	CompletionService *service.CompletionService
	ProgressService   *service.ProgressService
}

func NewLearningController(
	catalogService *service.CatalogService,
	enrollmentService *service.EnrollmentService,
	completionService *service.CompletionService,
	progressService *service.ProgressService,
) *LearningController {
	return &LearningController{
		CatalogService:    catalogService,
		EnrollmentService: enrollmentService,
		CompletionService: completionService,
		ProgressService:   progressService,
	}
}

// CourseView is a course outline plus, for an enrolled student, their progress.
type CourseView struct {
	Course   *model.Course           `json:"course"`
	Enrolled bool                    `json:"enrolled"`
	Progress *service.CourseProgress `json:"progress,omitempty"`
}

// Enroll godoc
// @Summary 报名课程
// @Description Idempotent: enrolling twice reports created=false
// @Tags 学习
// @Security ApiKeyAuth
// @Produce json
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=service.EnrollResult}
// @Router /enroll/{courseId} [post]
func (c *LearningController) Enroll(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "courseId")
	if !ok {
		return
	}
	res, err := c.EnrollmentService.Enroll(ctx.Request.Context(), currentActor(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	created(ctx, res.Created, "enrolled successfully", "already enrolled")
	util.Success(ctx, res)
}

// GetCourse godoc
// @Summary 课程大纲
// @Tags 学习
// @Security ApiKeyAuth
// @Produce json
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=CourseView}
// @Failure 404 {object} util.Response
// @Router /courses/{courseId} [get]
func (c *LearningController) GetCourse(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "courseId")
	if !ok {
		return
	}
	course, err := c.CatalogService.GetOutline(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	progress, err := c.ProgressService.ForViewer(ctx.Request.Context(), currentActor(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, CourseView{Course: course, Enrolled: progress != nil, Progress: progress})
}

// GetPage godoc
// @Summary 查看页面
// @Tags 学习
// @Security ApiKeyAuth
// @Produce json
// @Param pageId path int true "页面ID"
// @Success 200 {object} util.Response{data=model.Page}
// @Router /pages/{pageId} [get]
func (c *LearningController) GetPage(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "pageId")
	if !ok {
		return
	}
	page, err := c.CatalogService.GetPage(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// CompletePage godoc
// @Summary 标记页面已读
// @Description Idempotent: marking twice reports created=false
// @Tags 学习
// @Security ApiKeyAuth
// @Produce json
// @Param pageId path int true "页面ID"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 403 {object} util.Response "未报名该课程"
// @Router /pages/{pageId}/complete [post]
func (c *LearningController) CompletePage(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "pageId")
	if !ok {
		return
	}
	res, err := c.CompletionService.MarkComplete(ctx.Request.Context(), currentActor(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	created(ctx, res.Created, "page marked as complete", "page already completed")
	util.Success(ctx, res)
}
