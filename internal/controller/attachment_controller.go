package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttachmentController struct {
	AttachmentService *service.AttachmentService
}

func NewAttachmentController(attachmentService *service.AttachmentService) *AttachmentController {
	return &AttachmentController{AttachmentService: attachmentService}
}

// Upload godoc
// @Summary 上传页面附件
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param pageId path int true "页面ID"
// @Param file formData file true "附件"
// @Success 201 {object} util.Response{data=model.PageAttachment}
// @Failure 413 {object} util.Response "文件过大"
// @Failure 415 {object} util.Response "文件类型不支持"
// @Router /pages/{pageId}/attachments [post]
func (c *AttachmentController) Upload(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "pageId")
	if !ok {
		return
	}
	fh, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	a, err := c.AttachmentService.Upload(ctx.Request.Context(), currentActor(ctx), id, service.UploadInput{
		FileName: fh.Filename,
		Size:     fh.Size,
		Reader:   f,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// Delete godoc
// @Summary 删除页面附件
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce json
// @Param attachmentId path int true "附件ID"
// @Success 200 {object} util.Response
// @Router /attachments/{attachmentId}/delete [post]
func (c *AttachmentController) Delete(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "attachmentId")
	if !ok {
		return
	}
	if err := c.AttachmentService.Delete(ctx.Request.Context(), currentActor(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
