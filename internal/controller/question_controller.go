package controller

import (
	"errors"
	"strconv"

	"quizcraft_backend/internal/repository"
	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	Service *service.QuestionService
	Storage *service.StorageService
}

func NewQuestionController(svc *service.QuestionService, storage *service.StorageService) *QuestionController {
	return &QuestionController{Service: svc, Storage: storage}
}

// Create godoc
// @Summary 创建题目
// @Tags 题库模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionReq true "题目信息"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response "正确答案不在选项中等校验错误"
// @Router /api/teacher/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.Create(user.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrCorrectAnswerNotOption) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, q)
}

// List godoc
// @Summary 题目列表
// @Tags 题库模块
// @Produce json
// @Security BearerAuth
// @Param subject query string false "学科"
// @Param chapter query string false "章节"
// @Param difficulty query string false "难度" Enums(easy, medium, hard)
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/teacher/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	filter := repository.QuestionFilter{
		Subject:    ctx.Query("subject"),
		Chapter:    ctx.Query("chapter"),
		Difficulty: ctx.Query("difficulty"),
		CreatedBy:  user.UserID,
	}

	qs, total, err := c.Service.List(filter, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: qs, Total: total, Page: page, Limit: limit})
}

// Update godoc
// @Summary 更新题目（部分字段）
// @Tags 题库模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "题目ID"
// @Param body body service.QuestionUpdateReq true "更新字段"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.Update(user.UserID, ctx.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrCorrectAnswerNotOption):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, q)
}

// Delete godoc
// @Summary 删除题目
// @Description 题目ID会同步从所有试卷的题目列表中摘除，历史成绩不变
// @Tags 题库模块
// @Produce json
// @Security BearerAuth
// @Param id path string true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id := ctx.Param("id")
	if err := c.Service.Delete(user.UserID, id); err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound):
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

// Import godoc
// @Summary CSV 批量导入题目
// @Description 列序固定 text,options,correct_answer,subject,chapter,co,difficulty_level,image_url
// @Tags 题库模块
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV 文件"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response "带逐行错误明细"
// @Router /api/teacher/questions/import [post]
func (c *QuestionController) Import(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	file, _, err := ctx.Request.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	defer file.Close()

	result, err := c.Service.ImportCSV(user.UserID, file)
	if err != nil {
		if errors.Is(err, util.ErrCSVImportFailed) {
			ctx.JSON(400, util.Response{Code: 400, Message: err.Error(), Data: result})
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Created(ctx, result)
}

// Template godoc
// @Summary 下载 CSV 导入模板
// @Tags 题库模块
// @Produce plain
// @Security BearerAuth
// @Success 200 {string} string
// @Router /api/teacher/questions/import/template [get]
func (c *QuestionController) Template(ctx *gin.Context) {
	ctx.Header("Content-Disposition", `attachment; filename="questions_template.csv"`)
	ctx.Data(200, "text/csv", []byte(service.CSVTemplate()))
}

// UploadImage godoc
// @Summary 上传题目配图
// @Tags 题库模块
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "图片文件"
// @Success 201 {object} util.Response "返回可公开访问的 URL"
// @Router /api/teacher/questions/images [post]
func (c *QuestionController) UploadImage(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	defer file.Close()

	url, err := c.Storage.UploadQuestionImage(
		ctx.Request.Context(),
		header.Filename,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, gin.H{"url": url})
}
