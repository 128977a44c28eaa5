package service

import (
	"context"
	"errors"
	"fmt"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
)

var errBadStatus = errors.New("unknown exercise status")

// Advance 练习状态机：首次答对 Perfect，首次答错进入 AttemptedOnce，
// 第二次答对 Corrected，第二次答错 Failed。终态不再前进。
// ordinal 为本次提交是第几次尝试。
func Advance(current model.ExerciseStatus, correct bool) (model.ExerciseStatus, int, error) {
	switch current {
	case model.StatusUnattempted, "":
		if correct {
			return model.StatusPerfect, 1, nil
		}
		return model.StatusAttemptedOnce, 1, nil
	case model.StatusAttemptedOnce:
		if correct {
			return model.StatusCorrected, 2, nil
		}
		return model.StatusFailed, 2, nil
	case model.StatusPerfect, model.StatusCorrected, model.StatusFailed:
		return current, 0, util.ErrExerciseClosed
	default:
		return current, 0, fmt.Errorf("%w: %q", errBadStatus, current)
	}
}

// SessionTracker 追踪一次课时运行中每个练习的尝试状态
type SessionTracker struct {
	store repository.SessionStore
}

func NewSessionTracker(store repository.SessionStore) *SessionTracker {
	return &SessionTracker{store: store}
}

// StartLesson 清空上一轮的状态
func (t *SessionTracker) StartLesson(ctx context.Context, userID, lessonID uint) error {
	return t.store.Clear(ctx, userID, lessonID)
}

// EnterExercise 导航进入练习。已结束的练习重置为未作答（重做），已发放的奖励保留
func (t *SessionTracker) EnterExercise(ctx context.Context, userID, lessonID, exerciseID uint) (model.ExerciseStatus, error) {
	status, err := t.store.Get(ctx, userID, lessonID, exerciseID)
	if err != nil {
		return "", err
	}
	if status.Terminal() {
		if err := t.store.Set(ctx, userID, lessonID, exerciseID, model.StatusUnattempted); err != nil {
			return "", err
		}
		return model.StatusUnattempted, nil
	}
	return status, nil
}

// GetStatus 只读，终态按未作答报告
func (t *SessionTracker) GetStatus(ctx context.Context, userID, lessonID, exerciseID uint) (model.ExerciseStatus, error) {
	status, err := t.store.Get(ctx, userID, lessonID, exerciseID)
	if err != nil {
		return "", err
	}
	if status.Terminal() {
		return model.StatusUnattempted, nil
	}
	return status, nil
}

// RecordAttempt 推进状态并返回新状态和尝试序号。
// 终态上的提交返回 util.ErrExerciseClosed，状态保持不变
func (t *SessionTracker) RecordAttempt(ctx context.Context, userID, lessonID, exerciseID uint, correct bool) (model.ExerciseStatus, int, error) {
	current, err := t.store.Get(ctx, userID, lessonID, exerciseID)
	if err != nil {
		return "", 0, err
	}

	next, ordinal, err := Advance(current, correct)
	if err != nil {
		return current, 0, err
	}

	if err := t.store.Set(ctx, userID, lessonID, exerciseID, next); err != nil {
		return "", 0, err
	}
	return next, ordinal, nil
}

// Current 原始状态，终态照实返回
func (t *SessionTracker) Current(ctx context.Context, userID, lessonID, exerciseID uint) (model.ExerciseStatus, error) {
	return t.store.Get(ctx, userID, lessonID, exerciseID)
}

// Revert 撤销序号为 ordinal 的那次推进，用于后续持久化失败时
func (t *SessionTracker) Revert(ctx context.Context, userID, lessonID, exerciseID uint, ordinal int) error {
	prev := model.StatusUnattempted
	if ordinal == 2 {
		prev = model.StatusAttemptedOnce
	}
	return t.store.Set(ctx, userID, lessonID, exerciseID, prev)
}

func (t *SessionTracker) Snapshot(ctx context.Context, userID, lessonID uint) (map[uint]model.ExerciseStatus, error) {
	return t.store.All(ctx, userID, lessonID)
}

func (t *SessionTracker) Clear(ctx context.Context, userID, lessonID uint) error {
	return t.store.Clear(ctx, userID, lessonID)
}

// Tally 课时结束时各终态的计数
type Tally struct {
	Perfect   int
	Corrected int
	Failed    int
	Total     int
}

func (t Tally) Score() int {
	return t.Perfect + t.Corrected
}

// Exhausted 所有练习都已到达终态
func (t Tally) Exhausted() bool {
	return t.Perfect+t.Corrected+t.Failed == t.Total
}

// CountStatuses 只统计属于该课时的练习
func CountStatuses(snapshot map[uint]model.ExerciseStatus, exercises []model.Exercise) Tally {
	tally := Tally{Total: len(exercises)}
	for _, ex := range exercises {
		switch snapshot[ex.ID] {
		case model.StatusPerfect:
			tally.Perfect++
		case model.StatusCorrected:
			tally.Corrected++
		case model.StatusFailed:
			tally.Failed++
		}
	}
	return tally
}
