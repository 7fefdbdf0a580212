package model

// AccuracyPoint 按分组（课程目标/章节/题目）统计的正确率，accuracy 已保留一位小数
type AccuracyPoint struct {
	Name     string  `json:"name"`
	Accuracy float64 `json:"accuracy"`
}

type DifficultyCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ScoreBand 固定五档得分率分布
type ScoreBand struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// QuizAnalytics 单份试卷的全量统计
type QuizAnalytics struct {
	QuizID                 string            `json:"quizId"`
	ResultCount            int               `json:"resultCount"`
	AccuracyByCO           []AccuracyPoint   `json:"accuracyByCo"`
	AccuracyByChapter      []AccuracyPoint   `json:"accuracyByChapter"`
	QuestionAccuracy       []AccuracyPoint   `json:"questionAccuracy"`
	DifficultyDistribution []DifficultyCount `json:"difficultyDistribution"`
	ScoreDistribution      []ScoreBand       `json:"scoreDistribution"`
}

// LeaderboardEntry 单份试卷排行榜条目，名次为排序后的稠密序号（并列分数也依次编号）
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	ResultID    string  `json:"resultId"`
	StudentID   uint    `json:"studentId"`
	StudentName string  `json:"studentName"`
	Score       int     `json:"score"`
	TotalMarks  int     `json:"totalMarks"`
	Percentage  float64 `json:"percentage"`
	Remark      string  `json:"remark"`
}

// OverallLeaderboardEntry 跨试卷排行榜条目，按学生聚合历史全部成绩
type OverallLeaderboardEntry struct {
	Rank         int     `json:"rank"`
	StudentID    uint    `json:"studentId"`
	StudentName  string  `json:"studentName"`
	TotalScore   int     `json:"totalScore"`
	TotalMarks   int     `json:"totalMarks"`
	QuizzesTaken int     `json:"quizzesTaken"`
	Percentage   float64 `json:"percentage"`
}
