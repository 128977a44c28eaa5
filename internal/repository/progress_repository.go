package repository

import (
	"context"
	"errors"
	"lingua_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

// Find 不存在时返回 nil, nil
func (r *ProgressRepository) Find(ctx context.Context, userID, lessonID uint) (*model.LessonProgress, error) {
	var p model.LessonProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) IsCompleted(ctx context.Context, userID, lessonID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ? AND completed = ?", userID, lessonID, true).
		Count(&count).Error
	return count > 0, err
}

// Touch 只更新 last_seen_at，没有记录时插入一条未完成的
func (r *ProgressRepository) Touch(ctx context.Context, userID, lessonID uint, now time.Time) error {
	row := model.LessonProgress{UserID: userID, LessonID: lessonID, LastSeenAt: now}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at", "updated_at"}),
	}).Create(&row).Error
}

// ClaimCompletion 原子地把课时标记为完成。返回 false 表示已被其他请求完成
func (r *ProgressRepository) ClaimCompletion(ctx context.Context, userID, lessonID uint, score int, perfect bool, now time.Time) (bool, error) {
	db := r.DB.WithContext(ctx)

	row := model.LessonProgress{UserID: userID, LessonID: lessonID, LastSeenAt: now}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return false, err
	}

	res := db.Model(&model.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ? AND completed = ?", userID, lessonID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"score":        score,
			"perfect":      perfect,
			"last_seen_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ProgressRepository) CountCompleted(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.LessonProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CountPerfect(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.LessonProgress{}).
		Where("user_id = ? AND completed = ? AND perfect = ?", userID, true, true).
		Count(&count).Error
	return count, err
}
