package controller

import (
	"io"
	"net/http"

	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// maxImportBytes caps a YAML course file.
const maxImportBytes = 2 << 20

type CatalogController struct {
	CatalogService *service.CatalogService
	ImportService  *service.ImportService
}

func NewCatalogController(catalogService *service.CatalogService, importService *service.ImportService) *CatalogController {
	return &CatalogController{CatalogService: catalogService, ImportService: importService}
}

type CourseRequest struct {
	Name string `json:"name"`
}

type ChapterRequest struct {
	CourseID    uint   `json:"courseId"`
	Name        string `json:"chapterName"`
	Description string `json:"description"`
}

type PageRequest struct {
	ChapterID uint   `json:"chapterId"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

// MyCourses godoc
// @Summary 我创建的课程
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /mycourses [get]
func (c *CatalogController) MyCourses(ctx *gin.Context) {
	courses, err := c.CatalogService.ListMyCourses(ctx.Request.Context(), currentActor(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body CourseRequest true "课程名称"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 409 {object} util.Response "课程名已存在"
// @Router /createnewcourse [post]
func (c *CatalogController) CreateCourse(ctx *gin.Context) {
	var req CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CatalogService.CreateCourse(ctx.Request.Context(), currentActor(ctx), req.Name)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.AddNotice(ctx, util.NoticeSuccess, "course created")
	util.Created(ctx, course)
}

// AddChaptersForm lists the courses a chapter can be added to.
// @Summary 添加章节表单数据
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /addchapters [get]
func (c *CatalogController) AddChaptersForm(ctx *gin.Context) {
	c.MyCourses(ctx)
}

// AddChapter godoc
// @Summary 添加章节
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body ChapterRequest true "章节信息"
// @Success 201 {object} util.Response{data=model.Chapter}
// @Failure 403 {object} util.Response "不是课程创建者"
// @Router /addchapters [post]
func (c *CatalogController) AddChapter(ctx *gin.Context) {
	var req ChapterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.CourseID == 0 {
		util.HandleError(ctx, &util.ValidationError{Fields: []string{"courseId"}})
		return
	}
	chapter, err := c.CatalogService.CreateChapter(ctx.Request.Context(), currentActor(ctx), req.CourseID, req.Name, req.Description)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.AddNotice(ctx, util.NoticeSuccess, "chapter added")
	util.Created(ctx, chapter)
}

// AddPagesForm lists the chapters of an owned course.
// @Summary 添加页面表单数据
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce json
// @Param courseId query int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Chapter}
// @Router /addpages [get]
func (c *CatalogController) AddPagesForm(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Query("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid courseId")
		return
	}
	chapters, err := c.CatalogService.ListChaptersForEditing(ctx.Request.Context(), currentActor(ctx), courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, chapters)
}

// AddPage godoc
// @Summary 添加页面
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body PageRequest true "页面信息"
// @Success 201 {object} util.Response{data=model.Page}
// @Router /addpages [post]
func (c *CatalogController) AddPage(ctx *gin.Context) {
	var req PageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.ChapterID == 0 {
		util.HandleError(ctx, &util.ValidationError{Fields: []string{"chapterId"}})
		return
	}
	page, err := c.CatalogService.CreatePage(ctx.Request.Context(), currentActor(ctx), req.ChapterID, req.Title, req.Content)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.AddNotice(ctx, util.NoticeSuccess, "page added")
	util.Created(ctx, page)
}

// EditCourse godoc
// @Summary 重命名课程
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param courseId path int true "课程ID"
// @Param body body CourseRequest true "新名称"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /courses/{courseId}/edit [post]
func (c *CatalogController) EditCourse(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "courseId")
	if !ok {
		return
	}
	var req CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CatalogService.RenameCourse(ctx.Request.Context(), currentActor(ctx), id, req.Name)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.AddNotice(ctx, util.NoticeSuccess, "course updated")
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程及其全部内容
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce json
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/delete [post]
func (c *CatalogController) DeleteCourse(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "courseId")
	if !ok {
		return
	}
	if err := c.CatalogService.DeleteCourse(ctx.Request.Context(), currentActor(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.AddNotice(ctx, util.NoticeSuccess, "course deleted")
	util.Success(ctx, nil)
}

// EditChapter godoc
// @Summary 编辑章节
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param chapterId path int true "章节ID"
// @Param body body ChapterRequest true "章节信息"
// @Success 200 {object} util.Response{data=model.Chapter}
// @Router /chapters/{chapterId}/edit [post]
func (c *CatalogController) EditChapter(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "chapterId")
	if !ok {
		return
	}
	var req ChapterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	chapter, err := c.CatalogService.UpdateChapter(ctx.Request.Context(), currentActor(ctx), id, req.Name, req.Description)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, chapter)
}

// DeleteChapter godoc
// @Summary 删除章节
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce json
// @Param chapterId path int true "章节ID"
// @Success 200 {object} util.Response
// @Router /chapters/{chapterId}/delete [post]
func (c *CatalogController) DeleteChapter(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "chapterId")
	if !ok {
		return
	}
	if err := c.CatalogService.DeleteChapter(ctx.Request.Context(), currentActor(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.AddNotice(ctx, util.NoticeSuccess, "chapter deleted")
	util.Success(ctx, nil)
}

// EditPage godoc
// @Summary 编辑页面
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param pageId path int true "页面ID"
// @Param body body PageRequest true "页面信息"
// @Success 200 {object} util.Response{data=model.Page}
// @Router /pages/{pageId}/edit [post]
func (c *CatalogController) EditPage(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "pageId")
	if !ok {
		return
	}
	var req PageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	page, err := c.CatalogService.UpdatePage(ctx.Request.Context(), currentActor(ctx), id, req.Title, req.Content)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// DeletePage godoc
// @Summary 删除页面
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce json
// @Param pageId path int true "页面ID"
// @Success 200 {object} util.Response
// @Router /pages/{pageId}/delete [post]
func (c *CatalogController) DeletePage(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "pageId")
	if !ok {
		return
	}
	if err := c.CatalogService.DeletePage(ctx.Request.Context(), currentActor(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.AddNotice(ctx, util.NoticeSuccess, "page deleted")
	util.Success(ctx, nil)
}

// ImportCourse godoc
// @Summary 从 YAML 导入整门课程
// @Description Body is a YAML course file with chapters, pages and quiz questions
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept application/x-yaml
// @Produce json
// @Success 201 {object} util.Response{data=model.Course}
// @Router /courses/import [post]
func (c *CatalogController) ImportCourse(ctx *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxImportBytes+1))
	if err != nil {
		util.BadRequest(ctx, "cannot read body")
		return
	}
	if len(data) > maxImportBytes {
		util.Error(ctx, http.StatusRequestEntityTooLarge, "course file too large")
		return
	}
	file, err := service.ParseCourseFile(data)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	course, err := c.ImportService.ImportCourse(ctx.Request.Context(), currentActor(ctx), file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.AddNotice(ctx, util.NoticeSuccess, "course imported")
	util.Created(ctx, course)
}
