package model

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	Title       string     `gorm:"size:255;not null" json:"title"`
	TeacherID   uint       `gorm:"index;not null" json:"teacherId"`
	TeacherName string     `gorm:"size:100" json:"teacherName"` // 创建时快照，教师改名不回溯
	QuestionIDs StringList `gorm:"type:json;not null" json:"questions"`
	TimeLimit   int        `gorm:"default:0" json:"timeLimit"` // 分钟
	TotalMarks  int        `gorm:"default:0" json:"totalMarks"`
	Active      bool       `gorm:"default:false;index" json:"active"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
