package service

import (
	"math"
	"sort"

	"quizcraft_backend/internal/model"
)

// 分析聚合全部为纯函数：输入为已取回的集合，每次调用全量重算，无增量状态。

type accuracyBucket struct {
	answered int
	correct  int
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// accuracyByTag 按题目标签归组作答实例并计算正确率。
// 没有任何作答实例的分组不输出（不补零）。
func accuracyByTag(questions []model.Question, results []model.StudentResult, tagOf func(model.Question) string) []model.AccuracyPoint {
	buckets := make(map[string]*accuracyBucket)
	order := make([]string, 0)

	for _, q := range questions {
		tag := tagOf(q)
		if tag == "" {
			continue
		}
		if _, ok := buckets[tag]; !ok {
			buckets[tag] = &accuracyBucket{}
			order = append(order, tag)
		}
		for _, result := range results {
			for _, ans := range result.Answers {
				if ans.QuestionID != q.ID {
					continue
				}
				buckets[tag].answered++
				if ans.Correct {
					buckets[tag].correct++
				}
			}
		}
	}

	points := make([]model.AccuracyPoint, 0, len(order))
	for _, tag := range order {
		b := buckets[tag]
		if b.answered == 0 {
			continue
		}
		points = append(points, model.AccuracyPoint{
			Name:     tag,
			Accuracy: round1(float64(b.correct) / float64(b.answered) * 100),
		})
	}
	return points
}

// AccuracyByCO 按课程目标标签统计正确率
func AccuracyByCO(questions []model.Question, results []model.StudentResult) []model.AccuracyPoint {
	return accuracyByTag(questions, results, func(q model.Question) string { return q.CO })
}

// AccuracyByChapter 按章节统计正确率
func AccuracyByChapter(questions []model.Question, results []model.StudentResult) []model.AccuracyPoint {
	return accuracyByTag(questions, results, func(q model.Question) string { return q.Chapter })
}

// questionLabel 题干前 30 个字符加省略号，用作图表横轴标签
func questionLabel(text string) string {
	if text == "" {
		return "Question"
	}
	runes := []rune(text)
	if len(runes) > 30 {
		runes = runes[:30]
	}
	return string(runes) + "..."
}

// QuestionAccuracy 按题目统计正确率，标签为题干截断
func QuestionAccuracy(questions []model.Question, results []model.StudentResult) []model.AccuracyPoint {
	points := make([]model.AccuracyPoint, 0, len(questions))
	for _, q := range questions {
		answered, correct := 0, 0
		for _, result := range results {
			for _, ans := range result.Answers {
				if ans.QuestionID != q.ID {
					continue
				}
				answered++
				if ans.Correct {
					correct++
				}
			}
		}
		accuracy := 0.0
		if answered > 0 {
			accuracy = round1(float64(correct) / float64(answered) * 100)
		}
		points = append(points, model.AccuracyPoint{
			Name:     questionLabel(q.Text),
			Accuracy: accuracy,
		})
	}
	return points
}

// DifficultyDistribution 试卷题目的难度分布，与学生是否作答无关
func DifficultyDistribution(questions []model.Question) []model.DifficultyCount {
	counts := map[model.DifficultyLevel]int{}
	for _, q := range questions {
		if q.DifficultyLevel.Valid() {
			counts[q.DifficultyLevel]++
		}
	}
	return []model.DifficultyCount{
		{Name: "Easy", Count: counts[model.DifficultyEasy]},
		{Name: "Medium", Count: counts[model.DifficultyMedium]},
		{Name: "Hard", Count: counts[model.DifficultyHard]},
	}
}

var scoreBandLabels = []string{"0-20%", "21-40%", "41-60%", "61-80%", "81-100%"}

// ScoreDistribution 固定五档得分率直方图，各档计数之和恒等于成绩条数
func ScoreDistribution(results []model.StudentResult) []model.ScoreBand {
	counts := make([]int, 5)
	for i := range results {
		p := results[i].Percentage()
		switch {
		case p <= 20:
			counts[0]++
		case p <= 40:
			counts[1]++
		case p <= 60:
			counts[2]++
		case p <= 80:
			counts[3]++
		default:
			counts[4]++
		}
	}

	bands := make([]model.ScoreBand, 5)
	for i, label := range scoreBandLabels {
		bands[i] = model.ScoreBand{Name: label, Count: counts[i]}
	}
	return bands
}

// PerformanceRemark 得分率对应的评语档位
func PerformanceRemark(percentage float64) string {
	switch {
	case percentage >= 90:
		return "Excellent"
	case percentage >= 80:
		return "Very Good"
	case percentage >= 70:
		return "Good"
	case percentage >= 60:
		return "Satisfactory"
	case percentage >= 50:
		return "Average"
	case percentage >= 40:
		return "Below Average"
	default:
		return "Poor"
	}
}

// QuizLeaderboard 单份试卷排行榜：按得分率降序稳定排序，
// 名次为 1 起的稠密序号——并列分数也会拿到相邻的不同名次。
func QuizLeaderboard(results []model.StudentResult) []model.LeaderboardEntry {
	sorted := make([]model.StudentResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Percentage() > sorted[j].Percentage()
	})

	entries := make([]model.LeaderboardEntry, 0, len(sorted))
	for i := range sorted {
		p := round1(sorted[i].Percentage())
		entries = append(entries, model.LeaderboardEntry{
			Rank:        i + 1,
			ResultID:    sorted[i].ID,
			StudentID:   sorted[i].StudentID,
			StudentName: sorted[i].StudentName,
			Score:       sorted[i].Score,
			TotalMarks:  sorted[i].TotalMarks,
			Percentage:  p,
			Remark:      PerformanceRemark(sorted[i].Percentage()),
		})
	}
	return entries
}

// OverallLeaderboard 跨试卷排行榜：按学生聚合其全部历史成绩后按总得分率降序
func OverallLeaderboard(results []model.StudentResult) []model.OverallLeaderboardEntry {
	type aggregate struct {
		entry model.OverallLeaderboardEntry
	}
	byStudent := make(map[uint]*aggregate)
	order := make([]uint, 0)

	for i := range results {
		r := &results[i]
		agg, ok := byStudent[r.StudentID]
		if !ok {
			agg = &aggregate{entry: model.OverallLeaderboardEntry{
				StudentID:   r.StudentID,
				StudentName: r.StudentName,
			}}
			byStudent[r.StudentID] = agg
			order = append(order, r.StudentID)
		}
		agg.entry.TotalScore += r.Score
		agg.entry.TotalMarks += r.TotalMarks
		agg.entry.QuizzesTaken++
	}

	entries := make([]model.OverallLeaderboardEntry, 0, len(order))
	for _, id := range order {
		e := byStudent[id].entry
		if e.TotalMarks > 0 {
			e.Percentage = round1(float64(e.TotalScore) / float64(e.TotalMarks) * 100)
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Percentage > entries[j].Percentage
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// BuildQuizAnalytics 汇总一份试卷的全部统计项
func BuildQuizAnalytics(quiz *model.Quiz, questions []model.Question, results []model.StudentResult) *model.QuizAnalytics {
	return &model.QuizAnalytics{
		QuizID:                 quiz.ID,
		ResultCount:            len(results),
		AccuracyByCO:           AccuracyByCO(questions, results),
		AccuracyByChapter:      AccuracyByChapter(questions, results),
		QuestionAccuracy:       QuestionAccuracy(questions, results),
		DifficultyDistribution: DifficultyDistribution(questions),
		ScoreDistribution:      ScoreDistribution(results),
	}
}
