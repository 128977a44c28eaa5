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

func TestQuestService_PeriodKey(t *testing.T) {
	env := newTestEnv(t)
	daily := &model.DailyQuest{}
	weekly := &model.DailyQuest{IsWeekly: true}

	assert.Equal(t, "2025-03-12", env.quests.PeriodKey(daily, noon))
	assert.Equal(t, "2025-W11", env.quests.PeriodKey(weekly, noon))
	// ISO 周跨年
	assert.Equal(t, "2025-W01", env.quests.PeriodKey(weekly, time.Date(2024, 12, 30, 12, 0, 0, 0, time.Local)))
}

func TestQuestService_IncrementCompletesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedProfile(t, env.db, model.Profile{UserID: 1, Hearts: 5})

	done, err := env.quests.Increment(ctx, nil, 1, model.QuestCompleteLessons, 2, noon)
	require.NoError(t, err)
	assert.Empty(t, done)

	done, err = env.quests.Increment(ctx, nil, 1, model.QuestCompleteLessons, 1, noon)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.True(t, done[0].Completed)
	assert.Equal(t, 3, done[0].Progress)

	done, err = env.quests.Increment(ctx, nil, 1, model.QuestCompleteLessons, 1, noon)
	require.NoError(t, err)
	assert.Empty(t, done)

	p := testutil.Profile(t, env.db, 1)
	assert.Equal(t, 15, p.XP)
	assert.Equal(t, 10, p.Gems)

	// 第二天是新的周期
	done, err = env.quests.Increment(ctx, nil, 1, model.QuestCompleteLessons, 3, noon.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, done, 1)
}

func TestQuestService_RaiseIsMonotonic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedProfile(t, env.db, model.Profile{UserID: 1, Hearts: 5})

	_, err := env.quests.Raise(ctx, nil, 1, model.QuestStreakMaster, 5, noon)
	require.NoError(t, err)
	_, err = env.quests.Raise(ctx, nil, 1, model.QuestStreakMaster, 3, noon)
	require.NoError(t, err)

	board, err := env.quests.Board(ctx, 1, noon)
	require.NoError(t, err)
	var found bool
	for _, q := range board {
		if q.QuestType == model.QuestStreakMaster {
			found = true
			assert.Equal(t, 5, q.Progress)
			assert.False(t, q.Completed)
		}
	}
	assert.True(t, found)

	done, err := env.quests.Raise(ctx, nil, 1, model.QuestStreakMaster, 8, noon)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, 40, testutil.Profile(t, env.db, 1).XP)
}

func TestQuestService_BoardCreatesInstances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	board, err := env.quests.Board(ctx, 1, noon)
	require.NoError(t, err)
	require.Len(t, board, 5)

	var weekly int
	for _, q := range board {
		assert.Zero(t, q.Progress)
		if q.IsWeekly {
			weekly++
			assert.Equal(t, "2025-W11", q.PeriodKey)
		} else {
			assert.Equal(t, "2025-03-12", q.PeriodKey)
		}
	}
	assert.Equal(t, 2, weekly)

	_, err = env.quests.Board(ctx, 1, noon)
	require.NoError(t, err)
	var rows int64
	require.NoError(t, env.db.Model(&model.UserDailyQuest{}).Where("user_id = ?", 1).Count(&rows).Error)
	assert.Equal(t, int64(5), rows)
}
