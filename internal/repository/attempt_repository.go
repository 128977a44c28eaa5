package repository

import (
	"context"
	"lingua_backend/internal/model"

	"gorm.io/gorm"
)

// AttemptRepository 答题记录只追加，不更新不删除
type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Append(ctx context.Context, attempt *model.Attempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

// LatestPerExercise 每个练习最近的一次提交
func (r *AttemptRepository) LatestPerExercise(ctx context.Context, userID uint, exerciseIDs []uint) (map[uint]model.Attempt, error) {
	latest := make(map[uint]model.Attempt, len(exerciseIDs))
	if len(exerciseIDs) == 0 {
		return latest, nil
	}

	var attempts []model.Attempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND exercise_id IN ?", userID, exerciseIDs).
		Order("created_at DESC, id DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	for _, a := range attempts {
		if _, ok := latest[a.ExerciseID]; !ok {
			latest[a.ExerciseID] = a
		}
	}
	return latest, nil
}
