package service

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"lingua_backend/internal/config"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/testutil"
	"lingua_backend/pkg/llm"
)

// noon 避开早起和夜猫子成就的时间窗口
var noon = time.Date(2025, time.March, 12, 12, 0, 0, 0, time.Local)

type testEnv struct {
	db           *gorm.DB
	cfg          config.GamificationConfig
	clock        time.Time
	provider     *llm.MockProvider
	profileRepo  *repository.ProfileRepository
	progressRepo *repository.ProgressRepository
	store        *repository.MemorySessionStore
	tracker      *SessionTracker
	profiles     *ProfileService
	quests       *QuestService
	achievements *AchievementService
	rewards      *RewardService
	ai           *AIService
	judge        *Judge
	lessons      *LessonService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.DB(t)
	cfg := config.DefaultGamification()
	loc := cfg.Location()

	env := &testEnv{db: db, cfg: cfg, clock: noon, provider: llm.NewMockProvider()}
	now := func() time.Time { return env.clock }

	content := repository.NewContentRepository(db)
	attempts := repository.NewAttemptRepository(db)
	env.profileRepo = repository.NewProfileRepository(db)
	env.progressRepo = repository.NewProgressRepository(db)
	questRepo := repository.NewQuestRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	env.store = repository.NewMemorySessionStore(cfg.SessionTTL())
	env.tracker = NewSessionTracker(env.store)
	env.profiles = NewProfileService(env.profileRepo, cfg)
	env.profiles.now = now
	env.quests = NewQuestService(db, questRepo, env.profileRepo, loc)
	env.achievements = NewAchievementService(db, achievementRepo, env.profileRepo, env.progressRepo, questRepo, nil, loc)
	env.rewards = NewRewardService(db, env.profileRepo, env.progressRepo, env.quests, env.achievements, loc)
	env.ai = NewAIService(env.provider, nil, time.Second)
	env.judge = NewJudge(env.ai, time.Second)
	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: "local"}})

	env.lessons = NewLessonService(db, content, attempts, env.progressRepo, env.profileRepo,
		env.profiles, env.tracker, env.judge, env.rewards, env.quests, env.achievements,
		env.ai, storage, cfg)
	env.lessons.now = now
	return env
}
