package util

import "errors"

var (
	ErrUserNotFound           = errors.New("用户不存在")
	ErrEmailRegistered        = errors.New("该邮箱已被注册")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrQuizNotFound           = errors.New("quiz not found")
	ErrQuizInactive           = errors.New("quiz is not active")
	ErrQuestionNotFound       = errors.New("question not found")
	ErrResultNotFound         = errors.New("result not found")
	ErrSessionNotFound        = errors.New("attempt session not found")
	ErrAttemptFinished        = errors.New("attempt already finished")
	ErrAlreadyAttempted       = errors.New("quiz already attempted")
	ErrNoAnswers              = errors.New("at least one question must be answered")
	ErrNoQuestions            = errors.New("quiz has no questions")
	ErrNoQuestionsSelected    = errors.New("at least one question must be selected")
	ErrInvalidTimeLimit       = errors.New("timeLimit must be at least 1 minute")
	ErrInvalidTotalMarks      = errors.New("totalMarks must be at least 1")
	ErrCorrectAnswerNotOption = errors.New("correct answer must be one of the options")
	ErrCSVImportFailed        = errors.New("csv import rejected, see row errors")
)
