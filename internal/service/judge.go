package service

import (
	"context"
	"errors"
	"lingua_backend/internal/model"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"
	"lingua_backend/pkg/tracing"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TranslationCheck 外部语义判题结果
type TranslationCheck struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}

type TranslationChecker interface {
	CheckTranslation(ctx context.Context, submitted, expected, prompt string) (TranslationCheck, error)
}

// Submission 选择题提交 choiceId，其余题型提交 text
type Submission struct {
	ChoiceID *uint  `json:"choiceId"`
	Text     string `json:"text"`
}

type Verdict struct {
	IsCorrect    bool
	Feedback     string
	UsedFallback bool
}

// exerciseKind 按练习类型选择判题方式，只有本包内的实现
type exerciseKind interface {
	judge(ctx context.Context, j *Judge, ex *model.Exercise, sub Submission) Verdict
}

type choiceKind struct{}

type translationKind struct{}

type exactMatchKind struct{}

func kindOf(t model.ExerciseType) exerciseKind {
	switch t {
	case model.ExerciseMultipleChoice:
		return choiceKind{}
	case model.ExerciseTranslate:
		return translationKind{}
	default:
		return exactMatchKind{}
	}
}

// Judge 判定一次提交是否正确，本身不缓存
type Judge struct {
	checker TranslationChecker
	timeout atomic.Int64
}

func NewJudge(checker TranslationChecker, timeout time.Duration) *Judge {
	j := &Judge{checker: checker}
	j.SetTimeout(timeout)
	return j
}

// SetTimeout 配置热更新时调用
func (j *Judge) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = 3 * time.Second
	}
	j.timeout.Store(int64(d))
}

func (j *Judge) Timeout() time.Duration {
	return time.Duration(j.timeout.Load())
}

func (j *Judge) Judge(ctx context.Context, ex *model.Exercise, sub Submission) Verdict {
	ctx, span := tracing.Start(ctx, "judge.answer")
	defer span.End()

	v := kindOf(ex.Type).judge(ctx, j, ex, sub)

	span.SetAttributes(
		attribute.String("exercise.type", string(ex.Type)),
		attribute.Bool("verdict.correct", v.IsCorrect),
		attribute.Bool("verdict.fallback", v.UsedFallback),
	)
	monitoring.AnswersJudged.WithLabelValues(string(ex.Type), strconv.FormatBool(v.IsCorrect)).Inc()
	return v
}

func (choiceKind) judge(_ context.Context, _ *Judge, ex *model.Exercise, sub Submission) Verdict {
	if sub.ChoiceID == nil {
		return Verdict{}
	}
	for _, c := range ex.Choices {
		if c.ID == *sub.ChoiceID {
			return Verdict{IsCorrect: c.IsCorrect}
		}
	}
	// 不属于该练习的选项按答错处理
	return Verdict{}
}

func (translationKind) judge(ctx context.Context, j *Judge, ex *model.Exercise, sub Submission) Verdict {
	if strings.TrimSpace(sub.Text) == "" {
		return Verdict{}
	}
	if j.checker == nil {
		return fallbackVerdict(ex, sub, "disabled")
	}

	cctx, cancel := context.WithTimeout(ctx, j.Timeout())
	defer cancel()

	res, err := j.checker.CheckTranslation(cctx, sub.Text, ex.AnswerText, ex.Prompt)
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		logger.Log.Warn("translation check failed, using exact match",
			zap.Uint("exercise_id", ex.ID),
			zap.String("reason", reason),
			zap.Error(err))
		return fallbackVerdict(ex, sub, reason)
	}
	return Verdict{IsCorrect: res.Correct, Feedback: res.Feedback}
}

func (exactMatchKind) judge(_ context.Context, _ *Judge, ex *model.Exercise, sub Submission) Verdict {
	return Verdict{IsCorrect: normalizedEqual(sub.Text, ex.AnswerText)}
}

func fallbackVerdict(ex *model.Exercise, sub Submission, reason string) Verdict {
	monitoring.CheckerFallbacks.WithLabelValues(reason).Inc()
	return Verdict{IsCorrect: normalizedEqual(sub.Text, ex.AnswerText), UsedFallback: true}
}

func normalizedEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
