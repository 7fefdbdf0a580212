package controller

import (
	"errors"

	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	Service *service.ResultService
}

func NewResultController(svc *service.ResultService) *ResultController {
	return &ResultController{Service: svc}
}

// ListMine godoc
// @Summary 当前学生的全部成绩
// @Tags 成绩模块
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/student/results [get]
func (c *ResultController) ListMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.Service.ListByStudent(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, results)
}

// GetMine godoc
// @Summary 学生查看单条成绩详情
// @Tags 成绩模块
// @Produce json
// @Security BearerAuth
// @Param id path string true "成绩ID"
// @Success 200 {object} util.Response
// @Router /api/student/results/{id} [get]
func (c *ResultController) GetMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.GetForStudent(user.UserID, ctx.Param("id"))
	if err != nil {
		c.writeResultError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// ListByQuiz godoc
// @Summary 某试卷的全部成绩（教师）
// @Tags 成绩模块
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id}/results [get]
func (c *ResultController) ListByQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.Service.ListByQuiz(user.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, results)
}

type remarksReq struct {
	Remarks string `json:"remarks" binding:"required"`
}

// SetRemarks godoc
// @Summary 教师给成绩写评语
// @Description 只更新评语字段，分数与答案不变
// @Tags 成绩模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "成绩ID"
// @Param body body remarksReq true "评语"
// @Success 200 {object} util.Response
// @Router /api/teacher/results/{id}/remarks [put]
func (c *ResultController) SetRemarks(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req remarksReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.SetRemarks(user.UserID, ctx.Param("id"), req.Remarks)
	if err != nil {
		c.writeResultError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

type feedbackReq struct {
	Feedback string `json:"feedback" binding:"required"`
}

// SetFeedback godoc
// @Summary 学生对自己的成绩留反馈
// @Tags 成绩模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "成绩ID"
// @Param body body feedbackReq true "反馈"
// @Success 200 {object} util.Response
// @Router /api/student/results/{id}/feedback [put]
func (c *ResultController) SetFeedback(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req feedbackReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.SetFeedback(user.UserID, ctx.Param("id"), req.Feedback)
	if err != nil {
		c.writeResultError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

func (c *ResultController) writeResultError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrResultNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
