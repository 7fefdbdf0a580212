package service

import (
	"quizcraft_backend/internal/model"
)

// ScoreAttempt 对一份作答评分。纯函数：相同输入必得相同输出，
// 不修改入参，任何畸形题目（缺 CorrectAnswer）只会计为答错，不会报错。
// 比对为大小写敏感的全等，不做 trim；未作答按空串处理；每题一分。
func ScoreAttempt(questions []model.Question, answers map[string]string) ([]model.AnswerRecord, int) {
	records := make([]model.AnswerRecord, 0, len(questions))
	score := 0

	for _, q := range questions {
		answer := answers[q.ID]
		correct := q.CorrectAnswer != "" && answer == q.CorrectAnswer

		records = append(records, model.AnswerRecord{
			QuestionID: q.ID,
			Answer:     answer,
			Correct:    correct,
		})
		if correct {
			score++
		}
	}

	return records, score
}
