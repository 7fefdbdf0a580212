package service_test

import (
	"strings"
	"testing"

	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"
)

func newQuestionFixture(t *testing.T) (*service.QuestionService, *testRepos, *model.User) {
	t.Helper()
	db := newTestDB(t)
	repos := newTestRepos(db)
	teacher := seedUser(t, repos, "teacher", model.Teacher)
	return service.NewQuestionService(repos.question), repos, teacher
}

func TestQuestionCreateRejectsAnswerOutsideOptions(t *testing.T) {
	svc, _, teacher := newQuestionFixture(t)

	_, err := svc.Create(teacher.ID, service.QuestionReq{
		Text:            "2+2?",
		Options:         []string{"3", "5"},
		CorrectAnswer:   "4",
		DifficultyLevel: "easy",
	})
	if err != util.ErrCorrectAnswerNotOption {
		t.Fatalf("expected ErrCorrectAnswerNotOption, got %v", err)
	}
}

func TestQuestionUpdateOwnershipAndRevalidation(t *testing.T) {
	svc, repos, teacher := newQuestionFixture(t)
	other := seedUser(t, repos, "other", model.Teacher)

	q := seedQuestion(t, repos, teacher.ID, "2+2?", "4")

	if _, err := svc.Update(other.ID, q.ID, service.QuestionUpdateReq{}); err != util.ErrPermissionDenied {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	// 改掉选项后正确答案不在其中，必须拒绝
	bad := []string{"1", "2"}
	if _, err := svc.Update(teacher.ID, q.ID, service.QuestionUpdateReq{Options: &bad}); err != util.ErrCorrectAnswerNotOption {
		t.Fatalf("expected ErrCorrectAnswerNotOption, got %v", err)
	}

	newText := "What is 2+2?"
	updated, err := svc.Update(teacher.ID, q.ID, service.QuestionUpdateReq{Text: &newText})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Text != newText || updated.CorrectAnswer != "4" {
		t.Fatalf("partial update broke fields: %+v", updated)
	}
}

func TestQuestionDeletePullsIDFromQuizzes(t *testing.T) {
	svc, repos, teacher := newQuestionFixture(t)

	q1 := seedQuestion(t, repos, teacher.ID, "q1", "4")
	q2 := seedQuestion(t, repos, teacher.ID, "q2", "Paris")
	quiz := seedQuiz(t, repos, teacher, []string{q1.ID, q2.ID})

	if err := svc.Delete(teacher.ID, q1.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	reloaded, err := repos.quiz.FindByID(quiz.ID)
	if err != nil {
		t.Fatalf("reload quiz: %v", err)
	}
	if len(reloaded.QuestionIDs) != 1 || reloaded.QuestionIDs[0] != q2.ID {
		t.Fatalf("expected deleted id pulled from quiz, got %v", reloaded.QuestionIDs)
	}

	if _, err := repos.question.FindByID(q1.ID); err == nil {
		t.Fatal("question row should be gone")
	}
}

func TestQuestionListFilters(t *testing.T) {
	svc, repos, teacher := newQuestionFixture(t)

	q := seedQuestion(t, repos, teacher.ID, "easy math", "4")
	hard := &model.Question{
		Text:            "hard physics",
		Options:         model.StringList{"a", "b"},
		CorrectAnswer:   "a",
		Subject:         "Physics",
		Chapter:         "Ch9",
		DifficultyLevel: model.DifficultyHard,
		CreatedBy:       teacher.ID,
	}
	if err := repos.question.Create(hard); err != nil {
		t.Fatalf("seed: %v", err)
	}

	list, total, err := svc.List(repository.QuestionFilter{
		Subject:   "Math",
		CreatedBy: teacher.ID,
	}, 1, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != q.ID {
		t.Fatalf("filter wrong: total=%d list=%+v", total, list)
	}
}

func TestImportCSVHappyPath(t *testing.T) {
	svc, repos, teacher := newQuestionFixture(t)

	csvData := strings.Join([]string{
		"text,options,correct_answer,subject,chapter,co,difficulty_level,image_url",
		`"What is 2+2?","[""3"",""4""]","4","Math","Arithmetic","CO1","easy",""`,
		`"Capital of France?","['London','Paris']","Paris","Geography","Europe","CO2","medium",""`,
	}, "\n")

	result, err := svc.ImportCSV(teacher.ID, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 2 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	_, total, err := repos.question.List(repository.QuestionFilter{CreatedBy: teacher.ID}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 persisted questions, got %d", total)
	}
}

func TestImportCSVAllOrNothing(t *testing.T) {
	svc, repos, teacher := newQuestionFixture(t)

	// 第二行正确答案不在选项里，整批必须拒绝
	csvData := strings.Join([]string{
		"text,options,correct_answer,subject,chapter,co,difficulty_level,image_url",
		`"ok row","[""3"",""4""]","4","Math","Ch1","CO1","easy",""`,
		`"bad row","[""3"",""5""]","4","Math","Ch1","CO1","easy",""`,
	}, "\n")

	result, err := svc.ImportCSV(teacher.ID, strings.NewReader(csvData))
	if err != util.ErrCSVImportFailed {
		t.Fatalf("expected ErrCSVImportFailed, got %v", err)
	}
	if result == nil || result.Imported != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected zero imports with 1 row error, got %+v", result)
	}
	if result.Errors[0].Line != 3 {
		t.Fatalf("expected error on line 3, got %d", result.Errors[0].Line)
	}

	_, total, _ := repos.question.List(repository.QuestionFilter{CreatedBy: teacher.ID}, 1, 10)
	if total != 0 {
		t.Fatalf("half-imported rows found: %d", total)
	}
}

func TestImportCSVBadHeader(t *testing.T) {
	svc, _, teacher := newQuestionFixture(t)

	if _, err := svc.ImportCSV(teacher.ID, strings.NewReader("text,options\n")); err == nil {
		t.Fatal("expected error for short header")
	}
	if _, err := svc.ImportCSV(teacher.ID, strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestCSVTemplateMatchesImporter(t *testing.T) {
	svc, _, teacher := newQuestionFixture(t)

	result, err := svc.ImportCSV(teacher.ID, strings.NewReader(service.CSVTemplate()))
	if err != nil {
		t.Fatalf("template must import cleanly: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("expected 2 template rows imported, got %d", result.Imported)
	}
}
