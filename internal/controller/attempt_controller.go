package controller

import (
	"errors"
	"net/http"

	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Service *service.AttemptService
}

func NewAttemptController(svc *service.AttemptService) *AttemptController {
	return &AttemptController{Service: svc}
}

// Start godoc
// @Summary 开始答题会话
// @Description 每人每卷只允许一次提交，已提交过则返回 409
// @Tags 答题模块
// @Produce json
// @Security BearerAuth
// @Param quizId path string true "试卷ID"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "该试卷已作答过"
// @Router /api/student/quizzes/{quizId}/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.Start(user.UserID, ctx.Param("quizId"))
	if err != nil {
		c.writeAttemptError(ctx, err)
		return
	}

	util.Created(ctx, view)
}

// Get godoc
// @Summary 查看答题会话
// @Tags 答题模块
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/student/attempts/{id} [get]
func (c *AttemptController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.Get(ctx.Param("id"), user.UserID)
	if err != nil {
		c.writeAttemptError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

type answerReq struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// Answer godoc
// @Summary 记录某题的选择
// @Description 同一题重复作答取最后一次
// @Tags 答题模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Param body body answerReq true "题目与选项"
// @Success 200 {object} util.Response
// @Router /api/student/attempts/{id}/answer [post]
func (c *AttemptController) Answer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req answerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.Answer(ctx.Param("id"), user.UserID, req.QuestionID, req.Answer)
	if err != nil {
		c.writeAttemptError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

type navigateReq struct {
	Index *int `json:"index" binding:"required"`
}

// Navigate godoc
// @Summary 跳转到指定题号
// @Tags 答题模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Param body body navigateReq true "目标下标（从 0 开始）"
// @Success 200 {object} util.Response
// @Router /api/student/attempts/{id}/navigate [post]
func (c *AttemptController) Navigate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req navigateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.Navigate(ctx.Param("id"), user.UserID, *req.Index)
	if err != nil {
		c.writeAttemptError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// Submit godoc
// @Summary 交卷
// @Description 未作答任何题目时拒绝交卷；到时自动交卷不受此限制
// @Tags 答题模块
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "一题未答"
// @Router /api/student/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.Submit(ctx.Param("id"), user.UserID)
	if err != nil {
		c.writeAttemptError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// writeAttemptError 会话类错误到 HTTP 状态码的统一映射
func (c *AttemptController) writeAttemptError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound), errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrUserNotFound):
		util.Unauthorized(ctx)
	case errors.Is(err, util.ErrAlreadyAttempted):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrQuizInactive),
		errors.Is(err, util.ErrNoQuestions),
		errors.Is(err, util.ErrNoAnswers),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrAttemptFinished):
		util.Error(ctx, http.StatusBadRequest, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
