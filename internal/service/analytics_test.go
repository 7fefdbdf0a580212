package service_test

import (
	"strings"
	"testing"

	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/service"
)

func resultWith(studentID uint, name string, score, total int, answers ...model.AnswerRecord) model.StudentResult {
	r := model.StudentResult{
		StudentID:   studentID,
		StudentName: name,
		Score:       score,
		TotalMarks:  total,
		Answers:     model.AnswerList(answers),
	}
	r.ID = model.GenerateUUID()
	return r
}

func TestAccuracyByCOSkipsUnanswered(t *testing.T) {
	qs := []model.Question{
		{Text: "q1", CO: "CO1"},
		{Text: "q2", CO: "CO2"},
	}
	qs[0].ID = "q1"
	qs[1].ID = "q2"

	// 只有 CO1 的题有作答实例，CO2 不应出现在结果里
	results := []model.StudentResult{
		resultWith(1, "Alice", 1, 2,
			model.AnswerRecord{QuestionID: "q1", Answer: "x", Correct: true},
		),
		resultWith(2, "Bob", 0, 2,
			model.AnswerRecord{QuestionID: "q1", Answer: "y", Correct: false},
		),
	}

	points := service.AccuracyByCO(qs, results)
	if len(points) != 1 {
		t.Fatalf("expected 1 accuracy point, got %d", len(points))
	}
	if points[0].Name != "CO1" {
		t.Fatalf("expected CO1, got %s", points[0].Name)
	}
	if points[0].Accuracy != 50.0 {
		t.Fatalf("expected 50.0, got %v", points[0].Accuracy)
	}
}

func TestAccuracyOneDecimal(t *testing.T) {
	qs := []model.Question{{Chapter: "Ch1"}}
	qs[0].ID = "q1"

	// 1/3 正确 => 33.333... 保留一位小数
	results := []model.StudentResult{
		resultWith(1, "A", 1, 1, model.AnswerRecord{QuestionID: "q1", Correct: true}),
		resultWith(2, "B", 0, 1, model.AnswerRecord{QuestionID: "q1", Correct: false}),
		resultWith(3, "C", 0, 1, model.AnswerRecord{QuestionID: "q1", Correct: false}),
	}

	points := service.AccuracyByChapter(qs, results)
	if len(points) != 1 || points[0].Accuracy != 33.3 {
		t.Fatalf("expected [Ch1 33.3], got %+v", points)
	}
}

func TestQuestionAccuracyLabelTruncation(t *testing.T) {
	long := strings.Repeat("a", 40)
	qs := []model.Question{{Text: long}}
	qs[0].ID = "q1"

	points := service.QuestionAccuracy(qs, nil)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	want := strings.Repeat("a", 30) + "..."
	if points[0].Name != want {
		t.Fatalf("expected label %q, got %q", want, points[0].Name)
	}
}

func TestDifficultyDistributionAlwaysThreeBuckets(t *testing.T) {
	qs := []model.Question{
		{DifficultyLevel: model.DifficultyEasy},
		{DifficultyLevel: model.DifficultyEasy},
		{DifficultyLevel: model.DifficultyHard},
	}

	dist := service.DifficultyDistribution(qs)
	if len(dist) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(dist))
	}
	if dist[0].Count != 2 || dist[1].Count != 0 || dist[2].Count != 1 {
		t.Fatalf("unexpected distribution %+v", dist)
	}
}

func TestScoreDistributionCoversAllResults(t *testing.T) {
	results := []model.StudentResult{
		resultWith(1, "A", 1, 10),  // 10% -> 0-20
		resultWith(2, "B", 2, 10),  // 20% -> 0-20 (边界)
		resultWith(3, "C", 5, 10),  // 50% -> 41-60
		resultWith(4, "D", 10, 10), // 100% -> 81-100
	}

	bands := service.ScoreDistribution(results)
	if len(bands) != 5 {
		t.Fatalf("expected 5 bands, got %d", len(bands))
	}
	sum := 0
	for _, b := range bands {
		sum += b.Count
	}
	if sum != len(results) {
		t.Fatalf("band counts sum %d, want %d", sum, len(results))
	}
	if bands[0].Count != 2 || bands[2].Count != 1 || bands[4].Count != 1 {
		t.Fatalf("unexpected bands %+v", bands)
	}
}

func TestPerformanceRemarkThresholds(t *testing.T) {
	cases := []struct {
		p    float64
		want string
	}{
		{95, "Excellent"},
		{90, "Excellent"},
		{85, "Very Good"},
		{70, "Good"},
		{60, "Satisfactory"},
		{50, "Average"},
		{40, "Below Average"},
		{39.9, "Poor"},
		{0, "Poor"},
	}
	for _, c := range cases {
		if got := service.PerformanceRemark(c.p); got != c.want {
			t.Fatalf("remark for %.1f: got %q, want %q", c.p, got, c.want)
		}
	}
}

func TestQuizLeaderboardDenseRanksOnTies(t *testing.T) {
	results := []model.StudentResult{
		resultWith(1, "Alice", 8, 10),
		resultWith(2, "Bob", 8, 10),
		resultWith(3, "Cara", 9, 10),
	}

	entries := service.QuizLeaderboard(results)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].StudentName != "Cara" || entries[0].Rank != 1 {
		t.Fatalf("expected Cara first, got %+v", entries[0])
	}
	// 并列 80% 也要拿到相邻的不同名次，稳定排序保持提交先后
	if entries[1].Rank != 2 || entries[2].Rank != 3 {
		t.Fatalf("expected dense ranks 2,3 for ties, got %d,%d", entries[1].Rank, entries[2].Rank)
	}
	if entries[1].StudentName != "Alice" || entries[2].StudentName != "Bob" {
		t.Fatalf("tie order not stable: %s, %s", entries[1].StudentName, entries[2].StudentName)
	}
	if entries[0].Remark != "Excellent" || entries[1].Remark != "Very Good" {
		t.Fatalf("unexpected remarks %q, %q", entries[0].Remark, entries[1].Remark)
	}
}

func TestOverallLeaderboardAggregation(t *testing.T) {
	results := []model.StudentResult{
		resultWith(1, "Alice", 8, 10),
		resultWith(2, "Bob", 10, 10),
		resultWith(1, "Alice", 6, 10),
	}

	entries := service.OverallLeaderboard(results)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].StudentName != "Bob" || entries[0].Percentage != 100.0 {
		t.Fatalf("expected Bob at 100%%, got %+v", entries[0])
	}
	alice := entries[1]
	if alice.TotalScore != 14 || alice.TotalMarks != 20 || alice.QuizzesTaken != 2 {
		t.Fatalf("bad aggregation for Alice: %+v", alice)
	}
	if alice.Percentage != 70.0 || alice.Rank != 2 {
		t.Fatalf("expected 70%% rank 2, got %+v", alice)
	}
}

func TestBuildQuizAnalytics(t *testing.T) {
	quiz := &model.Quiz{Title: "T"}
	quiz.ID = model.GenerateUUID()
	qs := []model.Question{{Text: "q", CO: "CO1", Chapter: "Ch1", DifficultyLevel: model.DifficultyMedium}}
	qs[0].ID = "q1"
	results := []model.StudentResult{
		resultWith(1, "A", 1, 1, model.AnswerRecord{QuestionID: "q1", Correct: true}),
	}

	a := service.BuildQuizAnalytics(quiz, qs, results)
	if a.QuizID != quiz.ID || a.ResultCount != 1 {
		t.Fatalf("unexpected header fields %+v", a)
	}
	if len(a.AccuracyByCO) != 1 || len(a.AccuracyByChapter) != 1 {
		t.Fatalf("expected CO and chapter points, got %+v", a)
	}
	if len(a.ScoreDistribution) != 5 || len(a.DifficultyDistribution) != 3 {
		t.Fatalf("fixed-size distributions missing: %+v", a)
	}
}
