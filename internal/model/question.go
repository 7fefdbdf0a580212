package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

func (d DifficultyLevel) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// StringList 以 JSON 数组形式存储的有序字符串列表（选项、题目ID 快照）
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("unsupported type for StringList")
}

// swagger:model Question
type Question struct {
	UUIDBase
	Text            string          `gorm:"type:text;not null" json:"text"`
	Options         StringList      `gorm:"type:json;not null" json:"options"`
	CorrectAnswer   string          `gorm:"type:text;not null" json:"correctAnswer"`
	Subject         string          `gorm:"size:100;index" json:"subject"`
	Chapter         string          `gorm:"size:100;index" json:"chapter"`
	CO              string          `gorm:"size:50;column:co" json:"co"` // 课程目标标签
	DifficultyLevel DifficultyLevel `gorm:"size:10;default:'easy'" json:"difficultyLevel"`
	ImageURL        string          `gorm:"size:500" json:"imageUrl,omitempty"`
	CreatedBy       uint            `gorm:"index" json:"createdBy"`
}

func (Question) TableName() string {
	return "questions"
}
