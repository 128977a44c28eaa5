package service

import (
	"context"
	"errors"
	"fmt"
	"lingua_backend/internal/config"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"
	"lingua_backend/pkg/tracing"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LessonService 课时运行：进入、作答、完成结算
type LessonService struct {
	DB           *gorm.DB
	content      *repository.ContentRepository
	attempts     *repository.AttemptRepository
	progress     *repository.ProgressRepository
	profileRepo  *repository.ProfileRepository
	profiles     *ProfileService
	tracker      *SessionTracker
	judge        *Judge
	rewards      *RewardService
	quests       *QuestService
	achievements *AchievementService
	ai           *AIService
	storage      *StorageService
	bonusXP      int
	now          func() time.Time
}

func NewLessonService(
	db *gorm.DB,
	content *repository.ContentRepository,
	attempts *repository.AttemptRepository,
	progress *repository.ProgressRepository,
	profileRepo *repository.ProfileRepository,
	profiles *ProfileService,
	tracker *SessionTracker,
	judge *Judge,
	rewards *RewardService,
	quests *QuestService,
	achievements *AchievementService,
	ai *AIService,
	storage *StorageService,
	cfg config.GamificationConfig,
) *LessonService {
	return &LessonService{
		DB:           db,
		content:      content,
		attempts:     attempts,
		progress:     progress,
		profileRepo:  profileRepo,
		profiles:     profiles,
		tracker:      tracker,
		judge:        judge,
		rewards:      rewards,
		quests:       quests,
		achievements: achievements,
		ai:           ai,
		storage:      storage,
		bonusXP:      cfg.CompletionBonusXP,
		now:          time.Now,
	}
}

// LessonStart 进入课时时返回的概要
type LessonStart struct {
	LessonID      uint   `json:"lessonId"`
	Title         string `json:"title"`
	ExerciseCount int    `json:"exerciseCount"`
	Practice      bool   `json:"practice"`
	Hearts        int    `json:"hearts"`
	MaxHearts     int    `json:"maxHearts"`
}

// ExerciseView 单个练习的展示数据，答案不下发
type ExerciseView struct {
	Index    int                  `json:"index"`
	Total    int                  `json:"total"`
	Finished bool                 `json:"finished"`
	Exercise *model.Exercise      `json:"exercise,omitempty"`
	Status   model.ExerciseStatus `json:"status,omitempty"`
	AudioURL string               `json:"audioUrl,omitempty"`
	Practice bool                 `json:"practice"`
	Hearts   int                  `json:"hearts"`
}

type SubmitResult struct {
	Stale         bool                 `json:"stale"`
	IsCorrect     bool                 `json:"isCorrect"`
	Status        model.ExerciseStatus `json:"status"`
	Ordinal       int                  `json:"ordinal,omitempty"`
	Feedback      string               `json:"feedback,omitempty"`
	Explanation   string               `json:"explanation,omitempty"`
	CorrectAnswer string               `json:"correctAnswer,omitempty"`
	UsedFallback  bool                 `json:"usedFallback"`
	Reward        *RewardOutcome       `json:"reward,omitempty"`
	Hearts        int                  `json:"hearts"`
	NextIndex     int                  `json:"nextIndex"`
	Finished      bool                 `json:"finished"`
}

// CompletionSummary 课时结算结果
type CompletionSummary struct {
	LessonID        uint                   `json:"lessonId"`
	Score           int                    `json:"score"`
	PerfectCount    int                    `json:"perfectCount"`
	CorrectedCount  int                    `json:"correctedCount"`
	FailedCount     int                    `json:"failedCount"`
	Total           int                    `json:"total"`
	Practice        bool                   `json:"practice"`
	XPAwarded       int                    `json:"xpAwarded"`
	CompletedQuests []model.UserDailyQuest `json:"completedQuests"`
	NewAchievements []model.Achievement    `json:"newAchievements"`
}

type ReviewItem struct {
	Index         int                `json:"index"`
	ExerciseID    uint               `json:"exerciseId"`
	Type          model.ExerciseType `json:"type"`
	Prompt        string             `json:"prompt"`
	Attempted     bool               `json:"attempted"`
	SubmittedText string             `json:"submittedText,omitempty"`
	IsCorrect     bool               `json:"isCorrect"`
	CorrectAnswer string             `json:"correctAnswer,omitempty"`
	AttemptedAt   *time.Time         `json:"attemptedAt,omitempty"`
}

// gate 读取档案并判断练习模式；非练习模式下没有红心时拒绝进入
func (s *LessonService) gate(ctx context.Context, userID uint, displayName string, lessonID uint) (*model.Profile, bool, error) {
	profile, err := s.profiles.GetProfile(ctx, userID, displayName)
	if err != nil {
		return nil, false, err
	}
	practice, err := s.progress.IsCompleted(ctx, userID, lessonID)
	if err != nil {
		return nil, false, err
	}
	if !practice && profile.Hearts <= 0 {
		return profile, false, util.ErrOutOfHearts
	}
	return profile, practice, nil
}

func (s *LessonService) StartLesson(ctx context.Context, userID uint, displayName string, lessonID uint) (*LessonStart, error) {
	lesson, err := s.content.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	profile, practice, err := s.gate(ctx, userID, displayName, lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.tracker.StartLesson(ctx, userID, lessonID); err != nil {
		return nil, fmt.Errorf("reset session: %w", err)
	}

	logger.Log.Info("lesson started",
		zap.Uint("user_id", userID),
		zap.Uint("lesson_id", lessonID),
		zap.Bool("practice", practice))

	return &LessonStart{
		LessonID:      lesson.ID,
		Title:         lesson.Title,
		ExerciseCount: len(lesson.Exercises),
		Practice:      practice,
		Hearts:        profile.Hearts,
		MaxHearts:     profile.MaxHearts,
	}, nil
}

// exerciseAt index 从 1 开始
func exerciseAt(lesson *model.Lesson, index int) (*model.Exercise, error) {
	if index < 1 || index > len(lesson.Exercises) {
		return nil, util.ErrExerciseNotFound
	}
	return &lesson.Exercises[index-1], nil
}

// ViewExercise 进入第 index 个练习。index 小于 1 时取第一个，超出时表示课时已做完
func (s *LessonService) ViewExercise(ctx context.Context, userID, lessonID uint, index int) (*ExerciseView, error) {
	lesson, err := s.content.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if index < 1 {
		index = 1
	}
	total := len(lesson.Exercises)

	profile, practice, err := s.gate(ctx, userID, "", lessonID)
	if err != nil {
		return nil, err
	}

	view := &ExerciseView{Index: index, Total: total, Practice: practice, Hearts: profile.Hearts}
	if index > total {
		view.Finished = true
		return view, nil
	}

	ex := &lesson.Exercises[index-1]
	status, err := s.tracker.EnterExercise(ctx, userID, lessonID, ex.ID)
	if err != nil {
		return nil, fmt.Errorf("enter exercise: %w", err)
	}
	view.Exercise = ex
	view.Status = status
	view.AudioURL = s.storage.AudioURL(ctx, ex)
	return view, nil
}

// Submit 判题、推进状态、记录尝试并发放奖励。对已结束练习的重复提交返回 Stale
func (s *LessonService) Submit(ctx context.Context, userID, lessonID uint, index int, sub Submission) (*SubmitResult, error) {
	lesson, err := s.content.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	ex, err := exerciseAt(lesson, index)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	practice, err := s.progress.IsCompleted(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	// 红心归零后不能开始新的练习，第二次尝试仍然允许
	current, err := s.tracker.Current(ctx, userID, lessonID, ex.ID)
	if err != nil {
		return nil, fmt.Errorf("session status: %w", err)
	}
	if !practice && profile.Hearts <= 0 && (current == model.StatusUnattempted || current == "") {
		return nil, util.ErrOutOfHearts
	}

	verdict := s.judge.Judge(ctx, ex, sub)

	status, ordinal, err := s.tracker.RecordAttempt(ctx, userID, lessonID, ex.ID, verdict.IsCorrect)
	if errors.Is(err, util.ErrExerciseClosed) {
		logger.Log.Debug("stale submission ignored",
			zap.Uint("user_id", userID),
			zap.Uint("exercise_id", ex.ID))
		return &SubmitResult{Stale: true, Status: status, NextIndex: index + 1, Finished: index >= len(lesson.Exercises)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	now := s.now()
	attempt := &model.Attempt{
		UserID:           userID,
		ExerciseID:       ex.ID,
		LessonID:         lessonID,
		SubmittedText:    strings.TrimSpace(sub.Text),
		SelectedChoiceID: ownChoice(ex, sub.ChoiceID),
		IsCorrect:        verdict.IsCorrect,
		CreatedAt:        now,
	}
	if err := s.attempts.Append(ctx, attempt); err != nil {
		s.revert(ctx, userID, lessonID, ex.ID, ordinal)
		return nil, fmt.Errorf("append attempt: %w", err)
	}

	reward, err := s.rewards.Apply(ctx, userID, lessonID, ordinal, verdict.IsCorrect, practice, now)
	if err != nil {
		s.revert(ctx, userID, lessonID, ex.ID, ordinal)
		return nil, err
	}

	res := &SubmitResult{
		IsCorrect:    verdict.IsCorrect,
		Status:       status,
		Ordinal:      ordinal,
		Feedback:     verdict.Feedback,
		UsedFallback: verdict.UsedFallback,
		Reward:       reward,
		NextIndex:    index,
	}
	if status.Terminal() {
		res.NextIndex = index + 1
	}
	res.Finished = res.NextIndex > len(lesson.Exercises)

	// 第二次仍答错时才揭示答案并讲解
	if status == model.StatusFailed {
		expected := expectedAnswer(ex)
		res.CorrectAnswer = expected
		res.Explanation = s.ai.ExplainMistake(ctx, submittedAnswer(ex, sub), expected, ex.Prompt, ex.Type.DisplayName())
	}

	if p, err := s.profileRepo.FindByUserID(ctx, userID); err == nil {
		res.Hearts = p.Hearts
	}
	return res, nil
}

// revert 持久化失败时回退会话状态，客户端重试不会被当作重复提交
func (s *LessonService) revert(ctx context.Context, userID, lessonID, exerciseID uint, ordinal int) {
	if err := s.tracker.Revert(context.WithoutCancel(ctx), userID, lessonID, exerciseID, ordinal); err != nil {
		logger.Log.Warn("revert session status failed",
			zap.Uint("user_id", userID),
			zap.Uint("exercise_id", exerciseID),
			zap.Error(err))
	}
}

// ownChoice 只记录属于该练习的选项
func ownChoice(ex *model.Exercise, id *uint) *uint {
	if id == nil {
		return nil
	}
	for _, c := range ex.Choices {
		if c.ID == *id {
			v := c.ID
			return &v
		}
	}
	return nil
}

func expectedAnswer(ex *model.Exercise) string {
	if ex.Type == model.ExerciseMultipleChoice {
		for _, c := range ex.Choices {
			if c.IsCorrect {
				return c.Text
			}
		}
	}
	return ex.AnswerText
}

func submittedAnswer(ex *model.Exercise, sub Submission) string {
	if ex.Type == model.ExerciseMultipleChoice && sub.ChoiceID != nil {
		for _, c := range ex.Choices {
			if c.ID == *sub.ChoiceID {
				return c.Text
			}
		}
	}
	return strings.TrimSpace(sub.Text)
}

func (s *LessonService) Hint(ctx context.Context, lessonID uint, index int) (string, error) {
	lesson, err := s.content.GetLesson(ctx, lessonID)
	if err != nil {
		return "", err
	}
	ex, err := exerciseAt(lesson, index)
	if err != nil {
		return "", err
	}
	return s.ai.Hint(ctx, ex), nil
}

type LessonHint struct {
	Index      int    `json:"index"`
	ExerciseID uint   `json:"exerciseId"`
	Hint       string `json:"hint"`
}

// Hints 课时内全部练习的提示，供客户端预取
func (s *LessonService) Hints(ctx context.Context, lessonID uint) ([]LessonHint, error) {
	lesson, err := s.content.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	byID := s.ai.BatchHints(ctx, lesson.Exercises)

	hints := make([]LessonHint, len(lesson.Exercises))
	for i, ex := range lesson.Exercises {
		hints[i] = LessonHint{Index: i + 1, ExerciseID: ex.ID, Hint: byID[ex.ID]}
	}
	return hints, nil
}

// CompleteLesson 按本轮会话状态结算课时。首次完成发放奖励并推进任务和成就，
// 已完成过的课时按练习处理，只更新最后访问时间
func (s *LessonService) CompleteLesson(ctx context.Context, userID, lessonID uint) (*CompletionSummary, error) {
	ctx, span := tracing.Start(ctx, "lesson.complete")
	defer span.End()

	lesson, err := s.content.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	// 先读会话再读完成记录：会话只在完成提交后才被清空
	snapshot, err := s.tracker.Snapshot(ctx, userID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("session snapshot: %w", err)
	}
	tally := CountStatuses(snapshot, lesson.Exercises)
	perfect := tally.Total > 0 && tally.Perfect == tally.Total

	done, err := s.progress.IsCompleted(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	// 首次完成要求每个练习都已结束，未完成时保留会话
	if !done && !tally.Exhausted() {
		return nil, util.ErrLessonIncomplete
	}

	defer func() {
		if err := s.tracker.Clear(context.WithoutCancel(ctx), userID, lessonID); err != nil {
			logger.Log.Warn("clear session failed",
				zap.Uint("user_id", userID),
				zap.Uint("lesson_id", lessonID),
				zap.Error(err))
		}
	}()

	summary := &CompletionSummary{
		LessonID:        lessonID,
		Score:           tally.Score(),
		PerfectCount:    tally.Perfect,
		CorrectedCount:  tally.Corrected,
		FailedCount:     tally.Failed,
		Total:           tally.Total,
		CompletedQuests: []model.UserDailyQuest{},
		NewAchievements: []model.Achievement{},
	}

	now := s.now()
	if !done {
		err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			claimed, err := s.progress.WithTx(tx).ClaimCompletion(ctx, userID, lessonID, summary.Score, perfect, now)
			if err != nil {
				return err
			}
			if !claimed {
				// 并发完成已经生效
				done = true
				return nil
			}
			completed, err := s.reconcile(ctx, tx, userID, perfect, now)
			if err != nil {
				return err
			}
			summary.XPAwarded = s.bonusXP
			summary.CompletedQuests = append(summary.CompletedQuests, completed...)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("complete lesson: %w", err)
		}
	}

	span.SetAttributes(
		attribute.Int64("lesson.id", int64(lessonID)),
		attribute.Bool("lesson.practice", done),
		attribute.Int("lesson.score", summary.Score),
	)

	if done {
		summary.Practice = true
		summary.CompletedQuests = []model.UserDailyQuest{}
		if err := s.progress.Touch(ctx, userID, lessonID, now); err != nil {
			return nil, fmt.Errorf("touch progress: %w", err)
		}
		monitoring.LessonsCompleted.WithLabelValues("practice").Inc()
		return summary, nil
	}

	granted, err := s.achievements.Evaluate(ctx, userID, []model.AchievementCategory{
		model.CategoryLesson,
		model.CategoryXP,
		model.CategoryQuest,
		model.CategoryTime,
		model.CategoryPerfect,
		model.CategoryGems,
	}, now)
	if err != nil {
		// 完成已提交，成就在下次评估时补发
		logger.Log.Warn("achievement evaluation failed",
			zap.Uint("user_id", userID),
			zap.Uint("lesson_id", lessonID),
			zap.Error(err))
	}
	summary.NewAchievements = append(summary.NewAchievements, granted...)

	monitoring.LessonsCompleted.WithLabelValues("first").Inc()
	logger.Log.Info("lesson completed",
		zap.Uint("user_id", userID),
		zap.Uint("lesson_id", lessonID),
		zap.Int("score", summary.Score),
		zap.Int("total", summary.Total),
		zap.Int("new_achievements", len(granted)))
	return summary, nil
}

// reconcile 首次完成时的奖励和任务进度，在调用方事务内执行
func (s *LessonService) reconcile(ctx context.Context, tx *gorm.DB, userID uint, perfect bool, now time.Time) ([]model.UserDailyQuest, error) {
	profiles := s.profileRepo.WithTx(tx)
	if err := profiles.AddRewards(ctx, userID, s.bonusXP, 0); err != nil {
		return nil, err
	}

	var completed []model.UserDailyQuest
	track := func(done []model.UserDailyQuest, err error) error {
		completed = append(completed, done...)
		return err
	}

	if err := track(s.quests.Increment(ctx, tx, userID, model.QuestEarnXP, s.bonusXP, now)); err != nil {
		return nil, err
	}
	if err := track(s.quests.Increment(ctx, tx, userID, model.QuestCompleteLessons, 1, now)); err != nil {
		return nil, err
	}
	if perfect {
		if err := track(s.quests.Increment(ctx, tx, userID, model.QuestPerfectLesson, 1, now)); err != nil {
			return nil, err
		}
		if err := track(s.quests.Increment(ctx, tx, userID, model.QuestWeeklyWarrior, 1, now)); err != nil {
			return nil, err
		}
	}

	p, err := profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.StreakDays >= 7 {
		if err := track(s.quests.Raise(ctx, tx, userID, model.QuestStreakMaster, p.StreakDays, now)); err != nil {
			return nil, err
		}
	}
	return completed, nil
}

// Review 每个练习最近一次的作答
func (s *LessonService) Review(ctx context.Context, userID, lessonID uint) ([]ReviewItem, error) {
	lesson, err := s.content.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(lesson.Exercises))
	for i, ex := range lesson.Exercises {
		ids[i] = ex.ID
	}
	latest, err := s.attempts.LatestPerExercise(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	items := make([]ReviewItem, len(lesson.Exercises))
	for i := range lesson.Exercises {
		ex := &lesson.Exercises[i]
		item := ReviewItem{
			Index:      i + 1,
			ExerciseID: ex.ID,
			Type:       ex.Type,
			Prompt:     ex.Prompt,
		}
		if a, ok := latest[ex.ID]; ok {
			at := a.CreatedAt
			item.Attempted = true
			item.SubmittedText = submittedAnswer(ex, Submission{ChoiceID: a.SelectedChoiceID, Text: a.SubmittedText})
			item.IsCorrect = a.IsCorrect
			item.CorrectAnswer = expectedAnswer(ex)
			item.AttemptedAt = &at
		}
		items[i] = item
	}
	return items, nil
}
