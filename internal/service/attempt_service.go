package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/internal/util"
	"quizcraft_backend/pkg/logger"
	"quizcraft_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttemptState string

const (
	AttemptInProgress AttemptState = "in_progress"
	AttemptSubmitted  AttemptState = "submitted"
	AttemptExpired    AttemptState = "expired"
)

// AttemptSession 一名学生对一份试卷的进行中会话。
// 到期由 time.AfterFunc 触发自动提交，手动提交时取消该定时器。
type AttemptSession struct {
	ID          string
	StudentID   uint
	StudentName string
	Quiz        *model.Quiz
	Questions   []model.Question

	mu            sync.Mutex
	state         AttemptState
	answers       map[string]string
	currentIndex  int
	deadline      time.Time
	expireTimer   *time.Timer
	expireRetries int
	resultID      string
}

// SessionView 会话对外快照，题目不含正确答案
type SessionView struct {
	ID           string            `json:"id"`
	QuizID       string            `json:"quizId"`
	QuizTitle    string            `json:"quizTitle"`
	State        AttemptState      `json:"state"`
	Questions    []AttemptQuestion `json:"questions"`
	Answers      map[string]string `json:"answers"`
	CurrentIndex int               `json:"currentIndex"`
	RemainingSec int               `json:"remainingSeconds"`
	ResultID     string            `json:"resultId,omitempty"`
}

// AttemptQuestion 发给学生的题面，刻意不带 CorrectAnswer
type AttemptQuestion struct {
	ID              string                `json:"id"`
	Text            string                `json:"text"`
	Options         model.StringList      `json:"options"`
	Subject         string                `json:"subject"`
	Chapter         string                `json:"chapter"`
	DifficultyLevel model.DifficultyLevel `json:"difficultyLevel"`
	ImageURL        string                `json:"imageUrl,omitempty"`
}

type AttemptService struct {
	QuizRepo     *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
	ResultRepo   *repository.ResultRepository
	UserRepo     *repository.UserRepository
	Analytics    *AnalyticsService

	mu       sync.RWMutex
	sessions map[string]*AttemptSession
}

func NewAttemptService(
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	userRepo *repository.UserRepository,
	analytics *AnalyticsService,
) *AttemptService {
	return &AttemptService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		ResultRepo:   resultRepo,
		UserRepo:     userRepo,
		Analytics:    analytics,
		sessions:     make(map[string]*AttemptSession),
	}
}

// Start 开启会话。前置守卫：试卷存在且启用、该学生没有已提交的成绩。
// 题目ID解析不到的条目静默丢弃（与历史行为一致）。
func (s *AttemptService) Start(studentID uint, quizID string) (*SessionView, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if !quiz.Active {
		return nil, util.ErrQuizInactive
	}

	// 学生姓名在开卷时快照，后续改名不影响本次成绩
	student, err := s.UserRepo.FindByID(studentID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	// 快速路径守卫；真正的唯一性由 (student_id, quiz_id) 唯一索引兜底
	if _, err := s.ResultRepo.FindByStudentAndQuiz(studentID, quizID); err == nil {
		return nil, util.ErrAlreadyAttempted
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	questions, err := s.QuestionRepo.FindByIDs(quiz.QuestionIDs)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestions
	}

	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		answers[q.ID] = ""
	}

	session := &AttemptSession{
		ID:          model.GenerateUUID(),
		StudentID:   studentID,
		StudentName: student.Name,
		Quiz:        quiz,
		Questions:   questions,
		state:       AttemptInProgress,
		answers:     answers,
		deadline:    time.Now().Add(time.Duration(quiz.TimeLimit) * time.Minute),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	// 先入表再启定时器，极短时限的到期回调才找得到会话
	session.mu.Lock()
	session.expireTimer = time.AfterFunc(time.Duration(quiz.TimeLimit)*time.Minute, func() {
		s.expire(session.ID)
	})
	session.mu.Unlock()

	logger.Log.Info("attempt session started",
		zap.String("session", session.ID),
		zap.String("quiz", quizID),
		zap.Uint("student", studentID))

	return session.view(), nil
}

func (s *AttemptService) get(sessionID string, studentID uint) (*AttemptSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || session.StudentID != studentID {
		return nil, util.ErrSessionNotFound
	}
	return session, nil
}

func (s *AttemptService) Get(sessionID string, studentID uint) (*SessionView, error) {
	session, err := s.get(sessionID, studentID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.viewLocked(), nil
}

// Answer 记录某题的选择。不校验选项合法性（与历史行为一致），
// 但拒绝不属于本卷的题目ID和终态会话。
func (s *AttemptService) Answer(sessionID string, studentID uint, questionID, choice string) (*SessionView, error) {
	session, err := s.get(sessionID, studentID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.state != AttemptInProgress {
		return nil, util.ErrAttemptFinished
	}
	if _, ok := session.answers[questionID]; !ok {
		return nil, util.ErrQuestionNotFound
	}
	session.answers[questionID] = choice
	return session.viewLocked(), nil
}

// Navigate 自由跳题，只做越界检查
func (s *AttemptService) Navigate(sessionID string, studentID uint, index int) (*SessionView, error) {
	session, err := s.get(sessionID, studentID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.state != AttemptInProgress {
		return nil, util.ErrAttemptFinished
	}
	if index < 0 || index >= len(session.Questions) {
		return nil, util.ErrQuestionNotFound
	}
	session.currentIndex = index
	return session.viewLocked(), nil
}

// Submit 手动提交。全部未作答时拒绝；到期自动提交不受此限制。
func (s *AttemptService) Submit(sessionID string, studentID uint) (*SessionView, error) {
	session, err := s.get(sessionID, studentID)
	if err != nil {
		return nil, err
	}
	return s.finish(session, false)
}

const (
	maxExpireRetries = 3
	expireRetryDelay = 30 * time.Second
)

// expire 定时器回调：转入 expired 并走同一条提交路径。
// 存储失败时带退避重试，连续失败到上限后移除会话，不让其滞留内存。
func (s *AttemptService) expire(sessionID string) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	_, err := s.finish(session, true)
	if err == nil || err == util.ErrAttemptFinished || err == util.ErrAlreadyAttempted {
		return
	}

	session.mu.Lock()
	session.expireRetries++
	retries := session.expireRetries
	if retries < maxExpireRetries {
		session.expireTimer = time.AfterFunc(expireRetryDelay, func() {
			s.expire(sessionID)
		})
	}
	session.mu.Unlock()

	if retries >= maxExpireRetries {
		s.evict(sessionID)
		logger.Log.Error("auto-submit on expiry failed, session evicted",
			zap.String("session", sessionID),
			zap.Int("retries", retries),
			zap.Error(err))
		return
	}
	logger.Log.Warn("auto-submit on expiry failed, will retry",
		zap.String("session", sessionID),
		zap.Int("retry", retries),
		zap.Error(err))
}

func (s *AttemptService) finish(session *AttemptSession, expired bool) (*SessionView, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.state != AttemptInProgress {
		return nil, util.ErrAttemptFinished
	}

	if !expired {
		answered := 0
		for _, a := range session.answers {
			if a != "" {
				answered++
			}
		}
		if answered == 0 {
			return nil, util.ErrNoAnswers
		}
	}

	records, score := ScoreAttempt(session.Questions, session.answers)

	result := &model.StudentResult{
		StudentID:   session.StudentID,
		StudentName: session.StudentName,
		QuizID:      session.Quiz.ID,
		QuizTitle:   session.Quiz.Title,
		TeacherName: session.Quiz.TeacherName,
		Score:       score,
		TotalMarks:  session.Quiz.TotalMarks,
		Answers:     records,
		SubmittedAt: time.Now(),
	}

	if err := s.ResultRepo.Create(result); err != nil {
		if repository.IsDuplicateError(err) {
			// 另一个并发会话抢先提交，本会话作废
			session.terminate(expired)
			s.evict(session.ID)
			return nil, util.ErrAlreadyAttempted
		}
		return nil, err
	}

	session.terminate(expired)
	session.resultID = result.ID
	s.evict(session.ID)

	monitoring.AttemptSubmissions.WithLabelValues(
		session.Quiz.ID, strconv.FormatBool(expired)).Inc()

	if s.Analytics != nil {
		s.Analytics.InvalidateLeaderboard(context.Background())
	}

	logger.Log.Info("attempt submitted",
		zap.String("session", session.ID),
		zap.String("quiz", session.Quiz.ID),
		zap.Int("score", score),
		zap.Bool("expired", expired))

	return session.viewLocked(), nil
}

func (s *AttemptService) evict(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Shutdown 停掉所有在途定时器，服务退出时调用
func (s *AttemptService) Shutdown() {
	s.mu.Lock()
	sessions := make([]*AttemptSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		session.mu.Lock()
		if session.expireTimer != nil {
			session.expireTimer.Stop()
		}
		session.mu.Unlock()
	}
}

// terminate 终态转换并取消到期定时器，调用方需持有 session.mu
func (sess *AttemptSession) terminate(expired bool) {
	if expired {
		sess.state = AttemptExpired
	} else {
		sess.state = AttemptSubmitted
	}
	if sess.expireTimer != nil {
		sess.expireTimer.Stop()
	}
}

func (sess *AttemptSession) view() *SessionView {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.viewLocked()
}

func (sess *AttemptSession) viewLocked() *SessionView {
	questions := make([]AttemptQuestion, 0, len(sess.Questions))
	for _, q := range sess.Questions {
		questions = append(questions, AttemptQuestion{
			ID:              q.ID,
			Text:            q.Text,
			Options:         q.Options,
			Subject:         q.Subject,
			Chapter:         q.Chapter,
			DifficultyLevel: q.DifficultyLevel,
			ImageURL:        q.ImageURL,
		})
	}

	answers := make(map[string]string, len(sess.answers))
	for k, v := range sess.answers {
		answers[k] = v
	}

	remaining := int(time.Until(sess.deadline).Seconds())
	if remaining < 0 || sess.state != AttemptInProgress {
		remaining = 0
	}

	return &SessionView{
		ID:           sess.ID,
		QuizID:       sess.Quiz.ID,
		QuizTitle:    sess.Quiz.Title,
		State:        sess.state,
		Questions:    questions,
		Answers:      answers,
		CurrentIndex: sess.currentIndex,
		RemainingSec: remaining,
		ResultID:     sess.resultID,
	}
}
