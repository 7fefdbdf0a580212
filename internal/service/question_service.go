package service

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/internal/util"
)

type QuestionService struct {
	Repo *repository.QuestionRepository
}

func NewQuestionService(repo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{Repo: repo}
}

type QuestionReq struct {
	Text            string   `json:"text" binding:"required"`
	Options         []string `json:"options" binding:"required,min=2"`
	CorrectAnswer   string   `json:"correctAnswer" binding:"required"`
	Subject         string   `json:"subject"`
	Chapter         string   `json:"chapter"`
	CO              string   `json:"co"`
	DifficultyLevel string   `json:"difficultyLevel" binding:"required,oneof=easy medium hard"`
	ImageURL        string   `json:"imageUrl"`
}

// validate 单条创建与批量导入走同一套校验
func (req *QuestionReq) validate() error {
	found := false
	for _, opt := range req.Options {
		if opt == req.CorrectAnswer {
			found = true
			break
		}
	}
	if !found {
		return util.ErrCorrectAnswerNotOption
	}
	if !model.DifficultyLevel(req.DifficultyLevel).Valid() {
		return fmt.Errorf("invalid difficulty level: %s", req.DifficultyLevel)
	}
	return nil
}

func (req *QuestionReq) toModel(creatorID uint) *model.Question {
	return &model.Question{
		Text:            req.Text,
		Options:         model.StringList(req.Options),
		CorrectAnswer:   req.CorrectAnswer,
		Subject:         req.Subject,
		Chapter:         req.Chapter,
		CO:              req.CO,
		DifficultyLevel: model.DifficultyLevel(req.DifficultyLevel),
		ImageURL:        req.ImageURL,
		CreatedBy:       creatorID,
	}
}

func (s *QuestionService) Create(creatorID uint, req QuestionReq) (*model.Question, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	q := req.toModel(creatorID)
	if err := s.Repo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) List(filter repository.QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	return s.Repo.List(filter, page, limit)
}

func (s *QuestionService) Get(id string) (*model.Question, error) {
	q, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	return q, nil
}

type QuestionUpdateReq struct {
	Text            *string   `json:"text"`
	Options         *[]string `json:"options"`
	CorrectAnswer   *string   `json:"correctAnswer"`
	Subject         *string   `json:"subject"`
	Chapter         *string   `json:"chapter"`
	CO              *string   `json:"co"`
	DifficultyLevel *string   `json:"difficultyLevel"`
	ImageURL        *string   `json:"imageUrl"`
}

// Update 部分更新，仅题目归属的教师可以修改；
// 更新后仍要求正确答案在选项之中
func (s *QuestionService) Update(userID uint, id string, req QuestionUpdateReq) (*model.Question, error) {
	q, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if q.CreatedBy != userID {
		return nil, util.ErrPermissionDenied
	}

	if req.Text != nil {
		q.Text = *req.Text
	}
	if req.Options != nil {
		q.Options = model.StringList(*req.Options)
	}
	if req.CorrectAnswer != nil {
		q.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Subject != nil {
		q.Subject = *req.Subject
	}
	if req.Chapter != nil {
		q.Chapter = *req.Chapter
	}
	if req.CO != nil {
		q.CO = *req.CO
	}
	if req.DifficultyLevel != nil {
		level := model.DifficultyLevel(*req.DifficultyLevel)
		if !level.Valid() {
			return nil, fmt.Errorf("invalid difficulty level: %s", *req.DifficultyLevel)
		}
		q.DifficultyLevel = level
	}
	if req.ImageURL != nil {
		q.ImageURL = *req.ImageURL
	}

	check := QuestionReq{
		Text:            q.Text,
		Options:         q.Options,
		CorrectAnswer:   q.CorrectAnswer,
		DifficultyLevel: string(q.DifficultyLevel),
	}
	if err := check.validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Delete(userID uint, id string) error {
	q, err := s.Repo.FindByID(id)
	if err != nil {
		return util.ErrQuestionNotFound
	}
	if q.CreatedBy != userID {
		return util.ErrPermissionDenied
	}
	return s.Repo.Delete(id)
}

// CSV 导入：固定列序 text,options,correct_answer,subject,chapter,co,difficulty_level,image_url
// options 列为 JSON 数组字符串，容忍单引号写法。逐行与单条创建同样校验。

var csvHeader = []string{"text", "options", "correct_answer", "subject", "chapter", "co", "difficulty_level", "image_url"}

// CSVTemplate 下载用的导入模板
func CSVTemplate() string {
	return strings.Join([]string{
		strings.Join(csvHeader, ","),
		`"What is 2+2?","[""2"",""3"",""4"",""5""]","4","Math","Arithmetic","CO1","easy",""`,
		`"What is the capital of France?","[""London"",""Paris"",""Berlin"",""Madrid""]","Paris","Geography","Europe","CO2","medium",""`,
	}, "\n")
}

type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int              `json:"imported"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// ImportCSV 批量导入。任何一行校验失败整批拒绝，不落库半截数据。
func (s *QuestionService) ImportCSV(creatorID uint, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("empty or unreadable CSV")
	}
	if len(header) < len(csvHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(header))
	}

	var (
		rows    []*model.Question
		rowErrs []ImportRowError
		lineNo  = 1
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNo++
		if err != nil {
			rowErrs = append(rowErrs, ImportRowError{Line: lineNo, Message: err.Error()})
			continue
		}
		if len(record) < len(csvHeader) {
			rowErrs = append(rowErrs, ImportRowError{Line: lineNo, Message: "too few columns"})
			continue
		}

		options, err := parseOptionsCell(record[1])
		if err != nil {
			rowErrs = append(rowErrs, ImportRowError{Line: lineNo, Message: "bad options: " + err.Error()})
			continue
		}

		req := QuestionReq{
			Text:            record[0],
			Options:         options,
			CorrectAnswer:   record[2],
			Subject:         record[3],
			Chapter:         record[4],
			CO:              record[5],
			DifficultyLevel: record[6],
			ImageURL:        record[7],
		}
		if req.Text == "" || len(req.Options) < 2 || req.CorrectAnswer == "" {
			rowErrs = append(rowErrs, ImportRowError{Line: lineNo, Message: "missing required fields"})
			continue
		}
		if err := req.validate(); err != nil {
			rowErrs = append(rowErrs, ImportRowError{Line: lineNo, Message: err.Error()})
			continue
		}
		rows = append(rows, req.toModel(creatorID))
	}

	if len(rowErrs) > 0 {
		return &ImportResult{Imported: 0, Errors: rowErrs}, util.ErrCSVImportFailed
	}
	if len(rows) == 0 {
		return nil, errors.New("no data rows in CSV")
	}

	if err := s.Repo.CreateBatch(rows); err != nil {
		return nil, err
	}
	return &ImportResult{Imported: len(rows)}, nil
}

// parseOptionsCell 解析 options 列，历史数据里存在单引号 JSON，替换后重试
func parseOptionsCell(cell string) ([]string, error) {
	var options []string
	if err := json.Unmarshal([]byte(cell), &options); err == nil {
		return options, nil
	}
	normalized := strings.ReplaceAll(cell, "'", `"`)
	if err := json.Unmarshal([]byte(normalized), &options); err != nil {
		return nil, err
	}
	return options, nil
}
