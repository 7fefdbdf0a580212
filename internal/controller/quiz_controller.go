package controller

import (
	"errors"

	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service *service.QuizService
	Users   *service.UserService
}

func NewQuizController(svc *service.QuizService, users *service.UserService) *QuizController {
	return &QuizController{Service: svc, Users: users}
}

// Create godoc
// @Summary 创建试卷
// @Tags 试卷模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuizReq true "试卷信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/quizzes [post]
func (c *QuizController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	teacher, err := c.Users.GetByID(user.UserID)
	if err != nil {
		util.Unauthorized(ctx)
		return
	}

	quiz, err := c.Service.Create(user.UserID, teacher.Name, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound),
			errors.Is(err, util.ErrNoQuestionsSelected):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, quiz)
}

// ListMine godoc
// @Summary 当前教师的试卷列表
// @Tags 试卷模块
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes [get]
func (c *QuizController) ListMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizzes, err := c.Service.ListByTeacher(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, quizzes)
}

// Get godoc
// @Summary 试卷详情（含题目）
// @Tags 试卷模块
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	detail, err := c.Service.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, detail)
}

// Update godoc
// @Summary 更新试卷（部分字段）
// @Tags 试卷模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Param body body service.QuizUpdateReq true "更新字段"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id} [put]
func (c *QuizController) Update(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuizUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.Update(user.UserID, ctx.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrNoQuestionsSelected),
			errors.Is(err, util.ErrInvalidTimeLimit),
			errors.Is(err, util.ErrInvalidTotalMarks):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, quiz)
}

// Delete godoc
// @Summary 删除试卷
// @Description 同时级联删除该试卷下的全部学生成绩
// @Tags 试卷模块
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id} [delete]
func (c *QuizController) Delete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id := ctx.Param("id")
	if err := c.Service.Delete(user.UserID, id); err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// ListForStudent godoc
// @Summary 学生可参加的试卷列表
// @Description 仅返回启用中的试卷，并标记是否已作答
// @Tags 试卷模块
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/student/quizzes [get]
func (c *QuizController) ListForStudent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	rows, err := c.Service.ListForStudent(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, rows)
}
