package service

import (
	"context"
	"encoding/json"
	"time"

	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/internal/util"
	"quizcraft_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	overallLeaderboardKey = "quizcraft:leaderboard:overall"
	leaderboardTTL        = 5 * time.Minute
)

// AnalyticsService 组装纯聚合函数所需的数据集。跨试卷排行榜读多写少，
// 走 Redis 缓存，提交成绩时整键失效。
type AnalyticsService struct {
	QuizRepo     *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
	ResultRepo   *repository.ResultRepository
	Redis        *redis.Client
}

func NewAnalyticsService(
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
) *AnalyticsService {
	return &AnalyticsService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		ResultRepo:   resultRepo,
		Redis:        rdb,
	}
}

// GetQuizAnalytics 单份试卷统计：校验归属后取数并全量聚合
func (s *AnalyticsService) GetQuizAnalytics(teacherID uint, quizID string) (*model.QuizAnalytics, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if quiz.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}

	questions, err := s.QuestionRepo.FindByIDs(quiz.QuestionIDs)
	if err != nil {
		return nil, err
	}
	results, err := s.ResultRepo.ListByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	return BuildQuizAnalytics(quiz, questions, results), nil
}

func (s *AnalyticsService) GetQuizLeaderboard(teacherID uint, quizID string) ([]model.LeaderboardEntry, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if quiz.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}

	results, err := s.ResultRepo.ListByQuiz(quizID)
	if err != nil {
		return nil, err
	}
	return QuizLeaderboard(results), nil
}

// GetOverallLeaderboard 跨试卷排行榜，优先读缓存
func (s *AnalyticsService) GetOverallLeaderboard(ctx context.Context) ([]model.OverallLeaderboardEntry, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, overallLeaderboardKey).Bytes()
		if err == nil {
			var entries []model.OverallLeaderboardEntry
			if json.Unmarshal(cached, &entries) == nil {
				return entries, nil
			}
		}
	}

	results, err := s.ResultRepo.ListAll()
	if err != nil {
		return nil, err
	}
	entries := OverallLeaderboard(results)

	if s.Redis != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.Redis.Set(ctx, overallLeaderboardKey, payload, leaderboardTTL).Err(); err != nil {
				logger.Log.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}

// InvalidateLeaderboard 新成绩落库后调用
func (s *AnalyticsService) InvalidateLeaderboard(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, overallLeaderboardKey).Err(); err != nil {
		logger.Log.Warn("leaderboard cache invalidation failed", zap.Error(err))
	}
}
