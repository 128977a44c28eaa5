package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/testutil"
)

func TestQualifiedNames_TimeWindows(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2025, 3, 12, h, m, 0, 0, time.UTC) }
	timeOnly := map[model.AchievementCategory]bool{model.CategoryTime: true}

	tests := []struct {
		name string
		now  time.Time
		want []string
	}{
		{"before eight", at(7, 59), []string{earlyBirdName}},
		{"eight sharp", at(8, 0), nil},
		{"evening", at(21, 59), nil},
		{"ten sharp", at(22, 0), []string{nightOwlName}},
		{"midnight", at(0, 0), []string{earlyBirdName}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, qualifiedNames(Stats{}, timeOnly, tt.now))
		})
	}
}

func TestQualifiedNames_Thresholds(t *testing.T) {
	cats := map[model.AchievementCategory]bool{model.CategoryStreak: true, model.CategoryLesson: true}
	got := qualifiedNames(Stats{StreakDays: 7, CompletedLessons: 4, TotalXP: 10000}, cats, noon)
	// xp 不在请求的类别中
	assert.Equal(t, []string{"First Steps", "Warming Up", "On Fire"}, got)
}

func TestAchievementService_GrantsOncePerThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedProfile(t, env.db, model.Profile{UserID: 1, Hearts: 5, XP: 499})

	granted, err := env.achievements.Evaluate(ctx, 1, []model.AchievementCategory{model.CategoryXP}, noon)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rising Star"}, achievementNames(granted))

	// Rising Star 奖励 20 经验后达到 519
	granted, err = env.achievements.Evaluate(ctx, 1, []model.AchievementCategory{model.CategoryXP}, noon)
	require.NoError(t, err)
	assert.Equal(t, []string{"Experience Hunter"}, achievementNames(granted))

	granted, err = env.achievements.Evaluate(ctx, 1, []model.AchievementCategory{model.CategoryXP}, noon)
	require.NoError(t, err)
	assert.Empty(t, granted)

	p := testutil.Profile(t, env.db, 1)
	assert.Equal(t, 499+20+50, p.XP)
	assert.Equal(t, 10+25, p.Gems)
}

func TestAchievementService_ConcurrentGrantCreditsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedProfile(t, env.db, model.Profile{UserID: 1, Hearts: 5, XP: 150})

	const workers = 6
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted, err := env.achievements.Evaluate(ctx, 1, []model.AchievementCategory{model.CategoryXP}, noon)
			assert.NoError(t, err)
			mu.Lock()
			total += len(granted)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, total)

	var rows int64
	require.NoError(t, env.db.Model(&model.UserAchievement{}).Where("user_id = ?", 1).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	p := testutil.Profile(t, env.db, 1)
	assert.Equal(t, 170, p.XP)
	assert.Equal(t, 10, p.Gems)
}

func TestAchievementService_SkipsMissingCatalogEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedProfile(t, env.db, model.Profile{UserID: 1, Hearts: 5, XP: 150})
	require.NoError(t, env.db.Where("name = ?", "Rising Star").Delete(&model.Achievement{}).Error)

	granted, err := env.achievements.Evaluate(ctx, 1, []model.AchievementCategory{model.CategoryXP}, noon)
	require.NoError(t, err)
	assert.Empty(t, granted)
	assert.Equal(t, 150, testutil.Profile(t, env.db, 1).XP)
}

func TestAchievementService_Progress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedProfile(t, env.db, model.Profile{UserID: 1, Hearts: 5, XP: 120, StreakDays: 3})

	_, err := env.achievements.Evaluate(ctx, 1, []model.AchievementCategory{model.CategoryXP, model.CategoryStreak}, noon)
	require.NoError(t, err)

	progress, err := env.achievements.Progress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.EarnedCount)
	assert.Equal(t, 23, progress.TotalCount)
	assert.Equal(t, 8, progress.Percentage)
	assert.Equal(t, 3, progress.Stats.StreakDays)
	assert.Equal(t, 120+20+15, progress.Stats.TotalXP)
	require.Len(t, progress.Earned, 2)
	assert.NotEmpty(t, progress.Earned[0].Achievement.Name)
}

func TestAchievementService_LeaderboardCached(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	profiles := repository.NewProfileRepository(db)
	svc := NewAchievementService(db,
		repository.NewAchievementRepository(db),
		profiles,
		repository.NewProgressRepository(db),
		repository.NewQuestRepository(db),
		rdb, time.UTC)

	testutil.SeedProfile(t, db, model.Profile{UserID: 1, DisplayName: "ana", Hearts: 5, XP: 300})
	testutil.SeedProfile(t, db, model.Profile{UserID: 2, DisplayName: "ben", Hearts: 5, XP: 900})
	testutil.SeedProfile(t, db, model.Profile{UserID: 3, DisplayName: "cai", Hearts: 5, XP: 50})

	board, err := svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "ben", board[0].DisplayName)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, "ana", board[1].DisplayName)
	assert.True(t, mr.Exists("leaderboard:xp:2"))

	require.NoError(t, profiles.AddRewards(ctx, 3, 5000, 0))

	board, err = svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "ben", board[0].DisplayName)

	mr.FastForward(leaderboardTTL + time.Second)
	board, err = svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "cai", board[0].DisplayName)
}
