package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua_backend/internal/model"
	"lingua_backend/internal/testutil"
)

func TestComputeReward(t *testing.T) {
	tests := []struct {
		name     string
		ordinal  int
		correct  bool
		practice bool
		want     RewardResult
	}{
		{"first try correct", 1, true, false, RewardResult{XPDelta: 10}},
		{"second try correct", 2, true, false, RewardResult{XPDelta: 5}},
		{"first try wrong", 1, false, false, RewardResult{HeartDelta: -1}},
		{"second try wrong", 2, false, false, RewardResult{HeartDelta: -1}},
		{"practice correct", 1, true, true, RewardResult{}},
		{"practice wrong", 2, false, true, RewardResult{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeReward(tt.ordinal, tt.correct, tt.practice))
		})
	}
}

func TestNextStreak(t *testing.T) {
	day := func(d, h int) *time.Time {
		v := time.Date(2025, 3, d, h, 0, 0, 0, time.UTC)
		return &v
	}
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		prev int
		last *time.Time
		want int
	}{
		{"no prior activity", 0, nil, 1},
		{"same day keeps streak", 4, day(12, 1), 4},
		{"same day after sweep", 0, day(12, 1), 1},
		{"yesterday late", 4, day(11, 23), 5},
		{"gap of two days", 4, day(10, 9), 1},
		{"long gap", 30, day(1, 9), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStreak(tt.prev, tt.last, now))
		})
	}
}

func TestNextStreak_UsesLocalCalendarDay(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	// UTC 16:30 已是上海的次日
	last := time.Date(2025, 3, 11, 16, 30, 0, 0, time.UTC)
	now := time.Date(2025, 3, 12, 20, 0, 0, 0, shanghai)
	assert.Equal(t, 3, NextStreak(3, &last, now))
}

func TestRewardService_HeartsFloorAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedProfile(t, env.db, model.Profile{UserID: 1, Hearts: 1})

	out, err := env.rewards.Apply(ctx, 1, 99, 1, false, false, noon)
	require.NoError(t, err)
	assert.True(t, out.HeartLost)
	assert.Equal(t, -1, out.HeartDelta)

	out, err = env.rewards.Apply(ctx, 1, 99, 2, false, false, noon)
	require.NoError(t, err)
	assert.False(t, out.HeartLost)
	assert.Zero(t, out.HeartDelta)

	p := testutil.Profile(t, env.db, 1)
	assert.Equal(t, 0, p.Hearts)
	require.NotNil(t, p.LastHeartRestoreAt)
}

func TestRewardService_StreakAcrossDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedProfile(t, env.db, model.Profile{UserID: 1, Hearts: 5})

	for d := 0; d < 3; d++ {
		out, err := env.rewards.Apply(ctx, 1, 99, 1, true, false, noon.AddDate(0, 0, d))
		require.NoError(t, err)
		assert.Equal(t, d+1, out.StreakDays)
		assert.True(t, out.StreakIncreased)
		if d == 2 {
			assert.Equal(t, []string{"Warming Up"}, achievementNames(out.NewAchievements))
		}
	}

	out, err := env.rewards.Apply(ctx, 1, 99, 2, true, false, noon.AddDate(0, 0, 2).Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, out.StreakDays)
	assert.False(t, out.StreakIncreased)

	out, err = env.rewards.Apply(ctx, 1, 99, 1, true, false, noon.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, out.StreakDays)

	p := testutil.Profile(t, env.db, 1)
	// 4 次首答 + 1 次二答 + Warming Up
	assert.Equal(t, 4*10+5+15, p.XP)
	assert.Equal(t, 1, p.StreakDays)
}

func TestRewardService_PracticeFreezesProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	before := testutil.SeedProfile(t, env.db, model.Profile{UserID: 1, Hearts: 3, XP: 40})

	_, err := env.rewards.Apply(ctx, 1, 99, 1, true, true, noon)
	require.NoError(t, err)
	_, err = env.rewards.Apply(ctx, 1, 99, 1, false, true, noon)
	require.NoError(t, err)

	after := testutil.Profile(t, env.db, 1)
	assert.Equal(t, before.XP, after.XP)
	assert.Equal(t, before.Hearts, after.Hearts)
	assert.Equal(t, before.StreakDays, after.StreakDays)
	assert.Nil(t, after.LastActiveDate)

	progress, err := env.progressRepo.Find(ctx, 1, 99)
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.False(t, progress.Completed)
}

func TestRewardService_EarnXPQuest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedProfile(t, env.db, model.Profile{UserID: 1, Hearts: 5})

	var completed []model.UserDailyQuest
	for i := 0; i < 5; i++ {
		out, err := env.rewards.Apply(ctx, 1, 99, 1, true, false, noon)
		require.NoError(t, err)
		completed = append(completed, out.CompletedQuests...)
	}
	require.Len(t, completed, 1)
	assert.Equal(t, model.QuestEarnXP, completed[0].Quest.QuestType)

	// 50 答题 + 任务奖励 10
	p := testutil.Profile(t, env.db, 1)
	assert.Equal(t, 60, p.XP)
	assert.Equal(t, 5, p.Gems)
}
