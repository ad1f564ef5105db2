package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
	ReportService    *service.ReportService
}

func NewDashboardController(dashboardService *service.DashboardService, reportService *service.ReportService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService, ReportService: reportService}
}

// GetDashboard godoc
// @Summary 获取仪表盘数据
// @Description Students get enrolled courses with progress and the courses still open; educators get their own courses
// @Tags 仪表盘
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response{data=service.Dashboard}
// @Router /dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	dashboard, err := c.DashboardService.GetDashboard(ctx.Request.Context(), currentActor(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// EnrollmentReport godoc
// @Summary 课程报名统计（教师）
// @Tags 仪表盘
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]service.CourseEnrollmentStats}
// @Router /educator/reports/enrollments [get]
func (c *DashboardController) EnrollmentReport(ctx *gin.Context) {
	report, err := c.ReportService.EnrollmentReport(ctx.Request.Context(), currentActor(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
