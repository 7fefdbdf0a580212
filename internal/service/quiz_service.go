package service

import (
	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/internal/util"

	"gorm.io/gorm"
)

type QuizService struct {
	Repo         *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
	ResultRepo   *repository.ResultRepository
}

func NewQuizService(
	repo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
) *QuizService {
	return &QuizService{
		Repo:         repo,
		QuestionRepo: questionRepo,
		ResultRepo:   resultRepo,
	}
}

type QuizReq struct {
	Title       string   `json:"title" binding:"required"`
	QuestionIDs []string `json:"questions" binding:"required,min=1"`
	TimeLimit   int      `json:"timeLimit" binding:"required,min=1"`
	TotalMarks  int      `json:"totalMarks"`
	Active      bool     `json:"active"`
}

// Create 创建试卷，教师姓名在此刻快照；总分缺省为题目数（每题一分）
func (s *QuizService) Create(teacherID uint, teacherName string, req QuizReq) (*model.Quiz, error) {
	if len(req.QuestionIDs) == 0 {
		return nil, util.ErrNoQuestionsSelected
	}

	totalMarks := req.TotalMarks
	if totalMarks <= 0 {
		totalMarks = len(req.QuestionIDs)
	}

	quiz := &model.Quiz{
		Title:       req.Title,
		TeacherID:   teacherID,
		TeacherName: teacherName,
		QuestionIDs: model.StringList(req.QuestionIDs),
		TimeLimit:   req.TimeLimit,
		TotalMarks:  totalMarks,
		Active:      req.Active,
	}
	if err := s.Repo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

type QuizUpdateReq struct {
	Title       *string   `json:"title"`
	QuestionIDs *[]string `json:"questions"`
	TimeLimit   *int      `json:"timeLimit"`
	TotalMarks  *int      `json:"totalMarks"`
	Active      *bool     `json:"active"`
}

func (s *QuizService) Update(teacherID uint, id string, req QuizUpdateReq) (*model.Quiz, error) {
	quiz, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if quiz.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.QuestionIDs != nil {
		if len(*req.QuestionIDs) == 0 {
			return nil, util.ErrNoQuestionsSelected
		}
		quiz.QuestionIDs = model.StringList(*req.QuestionIDs)
	}
	// 与创建时的 min=1 约束一致，0 或负数会让答题会话开卷即到期
	if req.TimeLimit != nil {
		if *req.TimeLimit < 1 {
			return nil, util.ErrInvalidTimeLimit
		}
		quiz.TimeLimit = *req.TimeLimit
	}
	if req.TotalMarks != nil {
		if *req.TotalMarks < 1 {
			return nil, util.ErrInvalidTotalMarks
		}
		quiz.TotalMarks = *req.TotalMarks
	}
	if req.Active != nil {
		quiz.Active = *req.Active
	}

	if err := s.Repo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Delete 级联删除：先删该卷全部成绩，再删试卷（同一事务）
func (s *QuizService) Delete(teacherID uint, id string) error {
	quiz, err := s.Repo.FindByID(id)
	if err != nil {
		return util.ErrQuizNotFound
	}
	if quiz.TeacherID != teacherID {
		return util.ErrPermissionDenied
	}
	return s.Repo.Delete(id)
}

// QuizDetail 试卷与解析后的题目，未命中的题目ID被丢弃
type QuizDetail struct {
	Quiz      *model.Quiz      `json:"quiz"`
	Questions []model.Question `json:"questions"`
}

func (s *QuizService) Get(id string) (*QuizDetail, error) {
	quiz, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	questions, err := s.QuestionRepo.FindByIDs(quiz.QuestionIDs)
	if err != nil {
		return nil, err
	}
	return &QuizDetail{Quiz: quiz, Questions: questions}, nil
}

func (s *QuizService) ListByTeacher(teacherID uint) ([]model.Quiz, error) {
	return s.Repo.ListByTeacher(teacherID)
}

// StudentQuizRow 学生可见的试卷列表行，附带是否已作答
type StudentQuizRow struct {
	model.Quiz
	QuestionCount int  `json:"questionCount"`
	Attempted     bool `json:"attempted"`
}

// ListForStudent 只列启用中的试卷，并标记该学生是否已提交过
func (s *QuizService) ListForStudent(studentID uint) ([]StudentQuizRow, error) {
	quizzes, err := s.Repo.ListActive()
	if err != nil {
		return nil, err
	}

	rows := make([]StudentQuizRow, 0, len(quizzes))
	for i := range quizzes {
		attempted := false
		if _, err := s.ResultRepo.FindByStudentAndQuiz(studentID, quizzes[i].ID); err == nil {
			attempted = true
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		rows = append(rows, StudentQuizRow{
			Quiz:          quizzes[i],
			QuestionCount: len(quizzes[i].QuestionIDs),
			Attempted:     attempted,
		})
	}
	return rows, nil
}
