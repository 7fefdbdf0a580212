package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// AnswerRecord 单题作答记录，随成绩一并落库，顺序与试卷题目顺序一致
type AnswerRecord struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
}

type AnswerList []AnswerRecord

func (l AnswerList) Value() (driver.Value, error) {
	if l == nil {
		l = AnswerList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *AnswerList) Scan(value interface{}) error {
	if value == nil {
		*l = AnswerList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("unsupported type for AnswerList")
}

// StudentResult 学生一次提交的成绩，(student_id, quiz_id) 唯一，
// quiz_title/teacher_name 为提交时快照
// swagger:model StudentResult
type StudentResult struct {
	UUIDBase
	StudentID   uint       `gorm:"uniqueIndex:idx_student_quiz;not null" json:"studentId"`
	StudentName string     `gorm:"size:100" json:"studentName"`
	QuizID      string     `gorm:"uniqueIndex:idx_student_quiz;type:varchar(36);not null" json:"quizId"`
	QuizTitle   string     `gorm:"size:255" json:"quizTitle"`
	TeacherName string     `gorm:"size:100" json:"teacherName"`
	Score       int        `gorm:"not null" json:"score"`
	TotalMarks  int        `gorm:"not null" json:"totalMarks"`
	Answers     AnswerList `gorm:"type:json" json:"answers"`
	SubmittedAt time.Time  `json:"submittedAt"`
	Remarks     string     `gorm:"type:text" json:"remarks"`
	Feedback    string     `gorm:"type:text" json:"feedback"`
}

func (StudentResult) TableName() string {
	return "student_results"
}

// Percentage 得分百分比，总分为 0 时返回 0
func (r *StudentResult) Percentage() float64 {
	if r.TotalMarks <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalMarks) * 100
}
