package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		current     model.ExerciseStatus
		correct     bool
		want        model.ExerciseStatus
		wantOrdinal int
		wantErr     error
	}{
		{model.StatusUnattempted, true, model.StatusPerfect, 1, nil},
		{model.StatusUnattempted, false, model.StatusAttemptedOnce, 1, nil},
		{"", true, model.StatusPerfect, 1, nil},
		{model.StatusAttemptedOnce, true, model.StatusCorrected, 2, nil},
		{model.StatusAttemptedOnce, false, model.StatusFailed, 2, nil},
		{model.StatusPerfect, false, model.StatusPerfect, 0, util.ErrExerciseClosed},
		{model.StatusCorrected, true, model.StatusCorrected, 0, util.ErrExerciseClosed},
		{model.StatusFailed, true, model.StatusFailed, 0, util.ErrExerciseClosed},
	}

	for _, tt := range tests {
		got, ordinal, err := Advance(tt.current, tt.correct)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "%s/%v", tt.current, tt.correct)
		} else {
			assert.NoError(t, err)
		}
		assert.Equal(t, tt.want, got, "%s/%v", tt.current, tt.correct)
		assert.Equal(t, tt.wantOrdinal, ordinal, "%s/%v", tt.current, tt.correct)
	}

	_, _, err := Advance("bogus", true)
	assert.Error(t, err)
}

func TestSessionTracker_RetakeAfterNavigation(t *testing.T) {
	tracker := NewSessionTracker(repository.NewMemorySessionStore(time.Hour))
	ctx := context.Background()

	st, ord, err := tracker.RecordAttempt(ctx, 1, 2, 3, false)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAttemptedOnce, st)
	assert.Equal(t, 1, ord)

	st, ord, err = tracker.RecordAttempt(ctx, 1, 2, 3, false)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, st)
	assert.Equal(t, 2, ord)

	// 无写入的读取将终态报告为未作答
	st, err = tracker.GetStatus(ctx, 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnattempted, st)
	snap, err := tracker.Snapshot(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, snap[3])

	// 过期的提交不会覆盖终态
	_, _, err = tracker.RecordAttempt(ctx, 1, 2, 3, true)
	assert.ErrorIs(t, err, util.ErrExerciseClosed)
	snap, err = tracker.Snapshot(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, snap[3])

	st, err = tracker.EnterExercise(ctx, 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnattempted, st)

	st, ord, err = tracker.RecordAttempt(ctx, 1, 2, 3, true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPerfect, st)
	assert.Equal(t, 1, ord)
}

func TestSessionTracker_StartLessonClears(t *testing.T) {
	tracker := NewSessionTracker(repository.NewMemorySessionStore(time.Hour))
	ctx := context.Background()

	_, _, err := tracker.RecordAttempt(ctx, 1, 2, 3, true)
	require.NoError(t, err)
	require.NoError(t, tracker.StartLesson(ctx, 1, 2))

	snap, err := tracker.Snapshot(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestCountStatuses_IgnoresForeignExercises(t *testing.T) {
	exercises := []model.Exercise{{BaseModel: model.BaseModel{ID: 1}}, {BaseModel: model.BaseModel{ID: 2}}, {BaseModel: model.BaseModel{ID: 3}}}
	snap := map[uint]model.ExerciseStatus{
		1:  model.StatusPerfect,
		2:  model.StatusCorrected,
		3:  model.StatusAttemptedOnce,
		99: model.StatusPerfect,
	}

	tally := CountStatuses(snap, exercises)
	assert.Equal(t, Tally{Perfect: 1, Corrected: 1, Total: 3}, tally)
	assert.Equal(t, 2, tally.Score())
}
