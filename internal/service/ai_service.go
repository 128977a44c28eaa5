package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"lingua_backend/internal/model"
	"lingua_backend/pkg/llm"
	"lingua_backend/pkg/logger"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	hintTTL        = 7 * 24 * time.Hour
	explanationTTL = 30 * 24 * time.Hour
	checkTTL       = 30 * 24 * time.Hour

	defaultHint          = "Think about the context and try again!"
	defaultCheckFeedback = "Checked against expected answer."
	defaultTutorReply    = "I'm having trouble responding right now. Could you try again?"

	hintSeparator = "---"
	// 会话练习只带最近的若干轮上下文
	maxConversationTurns = 10
)

var translationSchema = &llm.Schema{
	Name:        "translation_check",
	Description: "Whether a student's translation is acceptable",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct":  map[string]any{"type": "boolean"},
			"feedback": map[string]any{"type": "string"},
		},
		"required":             []any{"correct"},
		"additionalProperties": false,
	},
}

// AIService 生成提示、错误讲解并做语义判题，结果缓存在 Redis
type AIService struct {
	provider llm.Provider
	rdb      *redis.Client
	timeout  time.Duration
}

func NewAIService(provider llm.Provider, rdb *redis.Client, generateTimeout time.Duration) *AIService {
	if provider == nil {
		provider = llm.DisabledProvider{}
	}
	if generateTimeout <= 0 {
		generateTimeout = 5 * time.Second
	}
	return &AIService{provider: provider, rdb: rdb, timeout: generateTimeout}
}

func hintKey(exerciseID uint) string {
	return fmt.Sprintf("hint:v2:%d", exerciseID)
}

func mistakeKey(prefix, submitted, expected, prompt string) string {
	sum := md5.Sum([]byte(strings.ToLower(fmt.Sprintf("%s:%s:%s", submitted, expected, prompt))))
	return prefix + hex.EncodeToString(sum[:])
}

func (s *AIService) cached(ctx context.Context, key string) (string, bool) {
	if s.rdb == nil {
		return "", false
	}
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logger.Log.Warn("ai cache read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, true
}

func (s *AIService) store(ctx context.Context, key, val string, ttl time.Duration) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		logger.Log.Warn("ai cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *AIService) generate(ctx context.Context, op string, req llm.Request) (*llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	requestID := uuid.NewString()
	start := time.Now()
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		logger.Log.Warn("ai request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.String("model", s.provider.ModelID()),
			zap.Error(err))
		return nil, err
	}
	logger.Log.Debug("ai request",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.String("model", resp.Model),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("latency", time.Since(start)))
	return resp, nil
}

// Hint 练习提示，失败时返回练习自带提示或通用提示
func (s *AIService) Hint(ctx context.Context, ex *model.Exercise) string {
	key := hintKey(ex.ID)
	if hint, ok := s.cached(ctx, key); ok {
		return hint
	}

	prompt := fmt.Sprintf(`You are a helpful language tutor. Generate a brief hint for this exercise.

Exercise Type: %s
Question: %s
Correct Answer: %s
Student Level: beginner

Provide a helpful hint that does not give away the full answer, guides the student's thinking and stays within 2-3 sentences.

Hint:`, ex.Type.DisplayName(), ex.Prompt, ex.AnswerText)

	resp, err := s.generate(ctx, "hint", llm.UserPrompt(prompt, 150, 0.3))
	if err != nil || resp.Text() == "" {
		if ex.Hint != "" {
			return ex.Hint
		}
		return defaultHint
	}

	hint := resp.Text()
	s.store(ctx, key, hint, hintTTL)
	return hint
}

// BatchHints 一次请求为整个课时生成提示，已缓存的跳过。
// 回复按分隔线切分，段数不足或请求失败的练习逐个生成
func (s *AIService) BatchHints(ctx context.Context, exercises []model.Exercise) map[uint]string {
	hints := make(map[uint]string, len(exercises))
	var pending []*model.Exercise
	for i := range exercises {
		ex := &exercises[i]
		if hint, ok := s.cached(ctx, hintKey(ex.ID)); ok {
			hints[ex.ID] = hint
			continue
		}
		pending = append(pending, ex)
	}
	if len(pending) == 0 {
		return hints
	}

	blocks := make([]string, len(pending))
	for i, ex := range pending {
		blocks[i] = fmt.Sprintf(`Exercise %d:
Type: %s
Question: %s
Answer: %s

Generate a brief helpful hint (2-3 sentences, don't give away the answer):`, ex.ID, ex.Type.DisplayName(), ex.Prompt, ex.AnswerText)
	}
	prompt := fmt.Sprintf(`You are a helpful language tutor. Answer every exercise below in order, separating the hints with a line containing only %s.

%s`, hintSeparator, strings.Join(blocks, "\n\n"+hintSeparator+"\n\n"))

	var parts []string
	resp, err := s.generate(ctx, "batch_hints", llm.UserPrompt(prompt, 500, 0.3))
	if err == nil {
		parts = strings.Split(resp.Text(), hintSeparator)
	}

	for i, ex := range pending {
		if i < len(parts) {
			if hint := strings.TrimSpace(parts[i]); hint != "" {
				hints[ex.ID] = hint
				s.store(ctx, hintKey(ex.ID), hint, hintTTL)
				continue
			}
		}
		hints[ex.ID] = s.Hint(ctx, ex)
	}
	return hints
}

// ChatTurn 会话练习中的一轮发言，Role 为 user 或 assistant
type ChatTurn struct {
	Role    llm.Role `json:"role" binding:"required,oneof=user assistant"`
	Content string   `json:"content" binding:"required"`
}

// Converse 用目标语言陪练对话，失败时返回固定回复
func (s *AIService) Converse(ctx context.Context, message string, history []ChatTurn, language string) string {
	if len(history) > maxConversationTurns {
		history = history[len(history)-maxConversationTurns:]
	}

	req := llm.Request{
		System: fmt.Sprintf(`You are a friendly language tutor having a conversation in %s.
Respond naturally in %s. Keep responses short (2-3 sentences). If the student makes a mistake, gently correct it in your response. Be encouraging!`, language, language),
		MaxTokens:   200,
		Temperature: 0.7,
	}
	for _, turn := range history {
		req.Messages = append(req.Messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	req.Messages = append(req.Messages, llm.Message{Role: llm.RoleUser, Content: message})

	resp, err := s.generate(ctx, "conversation", req)
	if err != nil || resp.Text() == "" {
		return defaultTutorReply
	}
	return resp.Text()
}

// ExplainMistake 解释答错的原因，失败时给出正确答案
func (s *AIService) ExplainMistake(ctx context.Context, submitted, expected, prompt, exerciseType string) string {
	key := mistakeKey("explanation:v2:", submitted, expected, prompt)
	if text, ok := s.cached(ctx, key); ok {
		return text
	}

	req := fmt.Sprintf(`You are a patient language teacher. A student made a mistake.

Exercise Type: %s
Question: %s
Student's Answer: %s
Correct Answer: %s

Give a brief, encouraging explanation under 4 sentences: what went wrong, the correct answer and a tip to remember it.

Explanation:`, exerciseType, prompt, submitted, expected)

	resp, err := s.generate(ctx, "explain", llm.UserPrompt(req, 150, 0.3))
	if err != nil || resp.Text() == "" {
		return fmt.Sprintf("The correct answer is '%s'. Keep practicing!", expected)
	}

	text := resp.Text()
	s.store(ctx, key, text, explanationTTL)
	return text
}

// CheckTranslation 语义判定翻译，错误交由调用方回退，只缓存成功结果
func (s *AIService) CheckTranslation(ctx context.Context, submitted, expected, prompt string) (TranslationCheck, error) {
	key := mistakeKey("trans_check:v2:", submitted, expected, prompt)
	if raw, ok := s.cached(ctx, key); ok {
		var res TranslationCheck
		if err := json.Unmarshal([]byte(raw), &res); err == nil {
			return res, nil
		}
	}

	req := llm.UserPrompt(fmt.Sprintf(`Check this translation:

Original: %s
Expected: %s
Student: %s

Is the student's translation acceptable? Judge semantic meaning first, accept common alternative translations and ignore minor grammar or spelling differences.

Respond in JSON only: {"correct": true/false, "feedback": "brief reason in 1 sentence"}`, prompt, expected, submitted), 100, 0.1)
	req.Schema = translationSchema

	// 超时由调用方的 ctx 控制
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return TranslationCheck{}, err
	}

	var res TranslationCheck
	if err := json.Unmarshal(resp.Content, &res); err != nil {
		return TranslationCheck{}, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if res.Feedback == "" {
		res.Feedback = defaultCheckFeedback
	}

	if data, err := json.Marshal(res); err == nil {
		s.store(ctx, key, string(data), checkTTL)
	}
	return res, nil
}
