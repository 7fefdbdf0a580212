package repository

import (
	"quizcraft_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) ListByTeacher(teacherID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("teacher_id = ?", teacherID).
		Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListActive() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("active = ?", true).
		Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

// Delete 先删除该试卷的全部成绩再删除试卷本身，保证不留孤儿成绩
func (r *QuizRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&model.StudentResult{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Quiz{}, "id = ?", id).Error
	})
}
