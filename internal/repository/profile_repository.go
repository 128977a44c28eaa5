package repository

import (
	"context"
	"errors"
	"lingua_backend/internal/model"
	"lingua_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// WithTx 返回绑定到事务的副本
func (r *ProfileRepository) WithTx(tx *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: tx}
}

// GetOrCreate 首次访问时创建档案，并发创建时以唯一索引为准
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID uint, displayName string, maxHearts int) (*model.Profile, error) {
	db := r.DB.WithContext(ctx)

	profile := model.Profile{
		UserID:      userID,
		DisplayName: displayName,
		Hearts:      maxHearts,
		MaxHearts:   maxHearts,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile).Error; err != nil {
		return nil, err
	}

	var p model.Profile
	if err := db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uint) (*model.Profile, error) {
	var p model.Profile
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddRewards 原子地增加经验和宝石
func (r *ProfileRepository) AddRewards(ctx context.Context, userID uint, xp, gems int) error {
	if xp == 0 && gems == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&model.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"xp":   gorm.Expr("xp + ?", xp),
			"gems": gorm.Expr("gems + ?", gems),
		}).Error
}

// LoseHeart 扣一颗心，已为 0 时不做任何事。返回是否真的扣除
func (r *ProfileRepository) LoseHeart(ctx context.Context, userID uint, now time.Time) (bool, error) {
	db := r.DB.WithContext(ctx)

	res := db.Model(&model.Profile{}).
		Where("user_id = ? AND hearts > 0", userID).
		Update("hearts", gorm.Expr("hearts - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	// 恢复计时只在未运行时启动
	err := db.Model(&model.Profile{}).
		Where("user_id = ? AND hearts < max_hearts AND last_heart_restore_at IS NULL", userID).
		Update("last_heart_restore_at", now).Error
	return true, err
}

// RestoreHearts 写回懒恢复的结果，仅当红心数与读取时一致才生效
func (r *ProfileRepository) RestoreHearts(ctx context.Context, userID uint, expectHearts, hearts int, clock *time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.Profile{}).
		Where("user_id = ? AND hearts = ?", userID, expectHearts).
		Updates(map[string]interface{}{
			"hearts":                hearts,
			"last_heart_restore_at": clock,
		})
	return res.RowsAffected == 1, res.Error
}

// BuyHearts 原子扣宝石并加心；余额不足或已满时不修改，返回 false
func (r *ProfileRepository) BuyHearts(ctx context.Context, userID uint, cost int, refill bool) (bool, error) {
	var bought bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hearts := gorm.Expr("hearts + 1")
		if refill {
			hearts = gorm.Expr("max_hearts")
		}
		res := tx.Model(&model.Profile{}).
			Where("user_id = ? AND gems >= ? AND hearts < max_hearts", userID, cost).
			Updates(map[string]interface{}{
				"gems":   gorm.Expr("gems - ?", cost),
				"hearts": hearts,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		bought = true
		return tx.Model(&model.Profile{}).
			Where("user_id = ? AND hearts >= max_hearts", userID).
			Update("last_heart_restore_at", nil).Error
	})
	return bought, err
}

func (r *ProfileRepository) UpdateStreak(ctx context.Context, userID uint, streakDays int, lastActive time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"streak_days":      streakDays,
			"last_active_date": lastActive,
		}).Error
}

func (r *ProfileRepository) SetLanguage(ctx context.Context, userID uint, lang model.LearningLanguage) error {
	return r.DB.WithContext(ctx).Model(&model.Profile{}).
		Where("user_id = ?", userID).
		Update("learning_language", lang).Error
}

func (r *ProfileRepository) TopByXP(ctx context.Context, limit int) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.DB.WithContext(ctx).
		Order("xp DESC, id ASC").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}

// ResetLapsedStreaks 清零最后活跃早于 cutoff 的连胜
func (r *ProfileRepository) ResetLapsedStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.Profile{}).
		Where("streak_days > 0 AND (last_active_date IS NULL OR last_active_date < ?)", cutoff).
		Update("streak_days", 0)
	return res.RowsAffected, res.Error
}
