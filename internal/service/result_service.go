package service

import (
	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/internal/util"
)

type ResultService struct {
	Repo     *repository.ResultRepository
	QuizRepo *repository.QuizRepository
}

func NewResultService(repo *repository.ResultRepository, quizRepo *repository.QuizRepository) *ResultService {
	return &ResultService{Repo: repo, QuizRepo: quizRepo}
}

func (s *ResultService) ListByStudent(studentID uint) ([]model.StudentResult, error) {
	return s.Repo.ListByStudent(studentID)
}

// GetForStudent 学生只能看自己的成绩
func (s *ResultService) GetForStudent(studentID uint, resultID string) (*model.StudentResult, error) {
	result, err := s.Repo.FindByID(resultID)
	if err != nil {
		return nil, util.ErrResultNotFound
	}
	if result.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	return result, nil
}

// ListByQuiz 教师查看自己试卷的全部成绩
func (s *ResultService) ListByQuiz(teacherID uint, quizID string) ([]model.StudentResult, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if quiz.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}
	return s.Repo.ListByQuiz(quizID)
}

// SetRemarks 教师评语。只触碰 remarks，分数/作答/提交时间不变。
func (s *ResultService) SetRemarks(teacherID uint, resultID, remarks string) (*model.StudentResult, error) {
	result, err := s.Repo.FindByID(resultID)
	if err != nil {
		return nil, util.ErrResultNotFound
	}
	quiz, err := s.QuizRepo.FindByID(result.QuizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if quiz.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}

	if err := s.Repo.UpdateRemarks(resultID, remarks); err != nil {
		return nil, err
	}
	result.Remarks = remarks
	return result, nil
}

// SetFeedback 学生反馈。只触碰 feedback，且仅限本人成绩。
func (s *ResultService) SetFeedback(studentID uint, resultID, feedback string) (*model.StudentResult, error) {
	result, err := s.Repo.FindByID(resultID)
	if err != nil {
		return nil, util.ErrResultNotFound
	}
	if result.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}

	if err := s.Repo.UpdateFeedback(resultID, feedback); err != nil {
		return nil, err
	}
	result.Feedback = feedback
	return result, nil
}
