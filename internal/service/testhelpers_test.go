package service_test

import (
	"testing"

	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存库，单连接避免 :memory: 被回收
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testRepos struct {
	user     *repository.UserRepository
	question *repository.QuestionRepository
	quiz     *repository.QuizRepository
	result   *repository.ResultRepository
}

func newTestRepos(db *gorm.DB) *testRepos {
	return &testRepos{
		user:     repository.NewUserRepository(db),
		question: repository.NewQuestionRepository(db),
		quiz:     repository.NewQuizRepository(db),
		result:   repository.NewResultRepository(db),
	}
}

func seedUser(t *testing.T, repos *testRepos, name string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	if err := repos.user.Create(u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedQuestion(t *testing.T, repos *testRepos, creatorID uint, text, answer string) *model.Question {
	t.Helper()
	q := &model.Question{
		Text:            text,
		Options:         model.StringList{"wrong", answer},
		CorrectAnswer:   answer,
		Subject:         "Math",
		Chapter:         "Ch1",
		CO:              "CO1",
		DifficultyLevel: model.DifficultyEasy,
		CreatedBy:       creatorID,
	}
	if err := repos.question.Create(q); err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}

func seedQuiz(t *testing.T, repos *testRepos, teacher *model.User, questionIDs []string) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		Title:       "Sample Quiz",
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		QuestionIDs: model.StringList(questionIDs),
		TimeLimit:   10,
		TotalMarks:  len(questionIDs),
		Active:      true,
	}
	if err := repos.quiz.Create(quiz); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return quiz
}
