package controller

import (
	"errors"

	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Service *service.AnalyticsService
}

func NewAnalyticsController(svc *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Service: svc}
}

// QuizAnalytics godoc
// @Summary 试卷统计分析
// @Description 含课程目标/章节正确率、逐题正确率、难度分布、分数段分布
// @Tags 统计模块
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id}/analytics [get]
func (c *AnalyticsController) QuizAnalytics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	analytics, err := c.Service.GetQuizAnalytics(user.UserID, ctx.Param("id"))
	if err != nil {
		c.writeAnalyticsError(ctx, err)
		return
	}

	util.Success(ctx, analytics)
}

// QuizLeaderboard godoc
// @Summary 单卷排行榜
// @Description 按得分率降序，并列分数占用连续名次
// @Tags 统计模块
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id}/leaderboard [get]
func (c *AnalyticsController) QuizLeaderboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	entries, err := c.Service.GetQuizLeaderboard(user.UserID, ctx.Param("id"))
	if err != nil {
		c.writeAnalyticsError(ctx, err)
		return
	}

	util.Success(ctx, entries)
}

// OverallLeaderboard godoc
// @Summary 全站总排行榜
// @Description 聚合每个学生的全部成绩，带 Redis 缓存
// @Tags 统计模块
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/student/leaderboard [get]
func (c *AnalyticsController) OverallLeaderboard(ctx *gin.Context) {
	entries, err := c.Service.GetOverallLeaderboard(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, entries)
}

func (c *AnalyticsController) writeAnalyticsError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
