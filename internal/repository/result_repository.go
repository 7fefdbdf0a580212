package repository

import (
	"strings"

	"quizcraft_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(result *model.StudentResult) error {
	return r.DB.Create(result).Error
}

// IsDuplicateError (student_id, quiz_id) 唯一索引冲突判定
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

func (r *ResultRepository) FindByID(id string) (*model.StudentResult, error) {
	var result model.StudentResult
	err := r.DB.First(&result, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultRepository) FindByStudentAndQuiz(studentID uint, quizID string) (*model.StudentResult, error) {
	var result model.StudentResult
	err := r.DB.Where("student_id = ? AND quiz_id = ?", studentID, quizID).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultRepository) ListByQuiz(quizID string) ([]model.StudentResult, error) {
	var results []model.StudentResult
	err := r.DB.Where("quiz_id = ?", quizID).
		Order("submitted_at asc").Find(&results).Error
	return results, err
}

func (r *ResultRepository) ListByStudent(studentID uint) ([]model.StudentResult, error) {
	var results []model.StudentResult
	err := r.DB.Where("student_id = ?", studentID).
		Order("submitted_at desc").Find(&results).Error
	return results, err
}

func (r *ResultRepository) ListAll() ([]model.StudentResult, error) {
	var results []model.StudentResult
	err := r.DB.Order("submitted_at asc").Find(&results).Error
	return results, err
}

// UpdateRemarks 只触碰 remarks 字段
func (r *ResultRepository) UpdateRemarks(id string, remarks string) error {
	return r.DB.Model(&model.StudentResult{}).Where("id = ?", id).
		Update("remarks", remarks).Error
}

// UpdateFeedback 只触碰 feedback 字段
func (r *ResultRepository) UpdateFeedback(id string, feedback string) error {
	return r.DB.Model(&model.StudentResult{}).Where("id = ?", id).
		Update("feedback", feedback).Error
}
