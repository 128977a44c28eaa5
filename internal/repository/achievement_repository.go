package repository

import (
	"context"
	"lingua_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) WithTx(tx *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: tx}
}

func (r *AchievementRepository) Catalog(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.WithContext(ctx).Order("category ASC, threshold ASC, id ASC").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) FindByCategories(ctx context.Context, categories []model.AchievementCategory) ([]model.Achievement, error) {
	var achievements []model.Achievement
	if len(categories) == 0 {
		return achievements, nil
	}
	err := r.DB.WithContext(ctx).
		Where("category IN ?", categories).
		Order("threshold ASC, id ASC").
		Find(&achievements).Error
	return achievements, err
}

// EarnedIDs 用户已获得的成就 ID 集合
func (r *AchievementRepository) EarnedIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	earned := make(map[uint]bool, len(ids))
	for _, id := range ids {
		earned[id] = true
	}
	return earned, nil
}

func (r *AchievementRepository) FindByUserID(ctx context.Context, userID uint) ([]model.UserAchievement, error) {
	var rows []model.UserAchievement
	err := r.DB.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

// GrantIfAbsent 插入授予记录，已存在时不做任何事。返回是否新插入
func (r *AchievementRepository) GrantIfAbsent(ctx context.Context, userID, achievementID uint, now time.Time) (bool, error) {
	row := model.UserAchievement{UserID: userID, AchievementID: achievementID, EarnedAt: now}
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("Achievement").
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
