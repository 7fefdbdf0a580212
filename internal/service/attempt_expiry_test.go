package service

import (
	"testing"
	"time"

	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/internal/util"
	"quizcraft_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 到期自动提交走不等定时器的白盒路径：直接触发 expire 回调

type expiryFixture struct {
	svc        *AttemptService
	db         *gorm.DB
	quizRepo   *repository.QuizRepository
	resultRepo *repository.ResultRepository
	teacher    *model.User
	studentID  uint
	quizID     string
	questionID string
}

func newExpiryFixture(t *testing.T) *expiryFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	resultRepo := repository.NewResultRepository(db)

	teacher := &model.User{Name: "teacher", Email: "t@example.com", Password: "x", Role: model.Teacher}
	student := &model.User{Name: "student", Email: "s@example.com", Password: "x", Role: model.Student}
	for _, u := range []*model.User{teacher, student} {
		if err := userRepo.Create(u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	q := &model.Question{
		Text:            "2+2?",
		Options:         model.StringList{"3", "4"},
		CorrectAnswer:   "4",
		DifficultyLevel: model.DifficultyEasy,
		CreatedBy:       teacher.ID,
	}
	if err := questionRepo.Create(q); err != nil {
		t.Fatalf("seed question: %v", err)
	}
	quiz := &model.Quiz{
		Title:       "Timed",
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		QuestionIDs: model.StringList{q.ID},
		TimeLimit:   1,
		TotalMarks:  1,
		Active:      true,
	}
	if err := quizRepo.Create(quiz); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	svc := NewAttemptService(quizRepo, questionRepo, resultRepo, userRepo, nil)
	t.Cleanup(svc.Shutdown)
	return &expiryFixture{
		svc:        svc,
		db:         db,
		quizRepo:   quizRepo,
		resultRepo: resultRepo,
		teacher:    teacher,
		studentID:  student.ID,
		quizID:     quiz.ID,
		questionID: q.ID,
	}
}

func TestExpirySubmitsPartialAnswers(t *testing.T) {
	f := newExpiryFixture(t)

	view, err := f.svc.Start(f.studentID, f.quizID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := f.svc.Answer(view.ID, f.studentID, f.questionID, "4"); err != nil {
		t.Fatalf("answer failed: %v", err)
	}

	f.svc.expire(view.ID)

	result, err := f.resultRepo.FindByStudentAndQuiz(f.studentID, f.quizID)
	if err != nil {
		t.Fatalf("expected persisted result after expiry: %v", err)
	}
	if result.Score != 1 {
		t.Fatalf("captured answer not scored: %d", result.Score)
	}

	// 到期后会话按不存在处理
	if _, err := f.svc.Get(view.ID, f.studentID); err != util.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestExpiryWithZeroAnswersStillSubmits(t *testing.T) {
	f := newExpiryFixture(t)

	view, err := f.svc.Start(f.studentID, f.quizID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// 手动提交会被拒，但到期自动提交不受一题未答限制
	f.svc.expire(view.ID)

	result, err := f.resultRepo.FindByStudentAndQuiz(f.studentID, f.quizID)
	if err != nil {
		t.Fatalf("expected zero-score result after expiry: %v", err)
	}
	if result.Score != 0 || result.TotalMarks != 1 {
		t.Fatalf("unexpected result %d/%d", result.Score, result.TotalMarks)
	}
}

// 极短时限的定时器可能在 Start 返回前就触发，
// 回调必须能在会话表中找到会话并自动提交，而不是悄悄丢失本次作答机会
func TestStartWithZeroTimeLimitAutoSubmits(t *testing.T) {
	f := newExpiryFixture(t)

	legacy := &model.Quiz{
		Title:       "Legacy",
		TeacherID:   f.teacher.ID,
		TeacherName: f.teacher.Name,
		QuestionIDs: model.StringList{f.questionID},
		TimeLimit:   0,
		TotalMarks:  1,
		Active:      true,
	}
	if err := f.quizRepo.Create(legacy); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	if _, err := f.svc.Start(f.studentID, legacy.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if result, err := f.resultRepo.FindByStudentAndQuiz(f.studentID, legacy.ID); err == nil {
			if result.TotalMarks != 1 {
				t.Fatalf("unexpected auto-submitted result: %+v", result)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("expected instant expiry to auto-submit a result")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// 存储持续失败时会话不能无限滞留，重试到上限后应被移除
func TestExpiryEvictsSessionAfterPersistentFailure(t *testing.T) {
	f := newExpiryFixture(t)

	view, err := f.svc.Start(f.studentID, f.quizID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	sqlDB, err := f.db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	for i := 0; i < maxExpireRetries-1; i++ {
		f.svc.expire(view.ID)
		if _, err := f.svc.Get(view.ID, f.studentID); err != nil {
			t.Fatalf("session evicted before retry budget exhausted (attempt %d): %v", i+1, err)
		}
	}

	f.svc.expire(view.ID)
	if _, err := f.svc.Get(view.ID, f.studentID); err != util.ErrSessionNotFound {
		t.Fatalf("expected eviction after %d failures, got %v", maxExpireRetries, err)
	}
}
