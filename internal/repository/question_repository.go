package repository

import (
	"quizcraft_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) CreateBatch(qs []*model.Question) error {
	if len(qs) == 0 {
		return nil
	}
	return r.DB.Create(qs).Error
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// FindByIDs 按传入顺序解析题目ID，未命中的 ID 被静默丢弃
func (r *QuestionRepository) FindByIDs(ids []string) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var qs []model.Question
	if err := r.DB.Where("id IN ?", ids).Find(&qs).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]model.Question, len(qs))
	for _, q := range qs {
		byID[q.ID] = q
	}

	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

type QuestionFilter struct {
	Subject    string
	Chapter    string
	Difficulty string
	CreatedBy  uint
}

func (r *QuestionRepository) List(filter QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	query := r.DB.Model(&model.Question{})
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Chapter != "" {
		query = query.Where("chapter = ?", filter.Chapter)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty_level = ?", filter.Difficulty)
	}
	if filter.CreatedBy != 0 {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	var qs []model.Question
	err := query.Order("created_at desc").Find(&qs).Error
	return qs, total, err
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

// Delete 删除题目并将其 ID 从所有试卷的题目列表中摘除，历史成绩不回溯
func (r *QuestionRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Question{}, "id = ?", id).Error; err != nil {
			return err
		}

		var quizzes []model.Quiz
		if err := tx.Find(&quizzes).Error; err != nil {
			return err
		}
		for i := range quizzes {
			remaining := make(model.StringList, 0, len(quizzes[i].QuestionIDs))
			removed := false
			for _, qid := range quizzes[i].QuestionIDs {
				if qid == id {
					removed = true
					continue
				}
				remaining = append(remaining, qid)
			}
			if !removed {
				continue
			}
			if err := tx.Model(&model.Quiz{}).Where("id = ?", quizzes[i].ID).
				Update("question_ids", remaining).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
