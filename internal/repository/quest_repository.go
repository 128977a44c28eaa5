package repository

import (
	"context"
	"lingua_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestRepository struct {
	DB *gorm.DB
}

func NewQuestRepository(db *gorm.DB) *QuestRepository {
	return &QuestRepository{DB: db}
}

func (r *QuestRepository) WithTx(tx *gorm.DB) *QuestRepository {
	return &QuestRepository{DB: tx}
}

func (r *QuestRepository) ActiveQuests(ctx context.Context) ([]model.DailyQuest, error) {
	var quests []model.DailyQuest
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("is_weekly ASC, id ASC").
		Find(&quests).Error
	return quests, err
}

// ActiveByType 同类型可以有多个模板，全部返回
func (r *QuestRepository) ActiveByType(ctx context.Context, questType model.QuestType) ([]model.DailyQuest, error) {
	var quests []model.DailyQuest
	err := r.DB.WithContext(ctx).
		Where("quest_type = ? AND is_active = ?", questType, true).
		Order("id ASC").
		Find(&quests).Error
	return quests, err
}

// GetOrCreateInstance 插入或读取 (user, quest, period) 的实例
func (r *QuestRepository) GetOrCreateInstance(ctx context.Context, userID uint, quest *model.DailyQuest, periodKey string) (*model.UserDailyQuest, error) {
	db := r.DB.WithContext(ctx)

	inst := model.UserDailyQuest{UserID: userID, QuestID: quest.ID, PeriodKey: periodKey}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&inst).Error; err != nil {
		return nil, err
	}

	var out model.UserDailyQuest
	err := db.Where("user_id = ? AND quest_id = ? AND period_key = ?", userID, quest.ID, periodKey).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	out.Quest = *quest
	return &out, nil
}

// IncrementProgress 进度只增不减，达到目标时标记完成。返回本次是否刚完成
func (r *QuestRepository) IncrementProgress(ctx context.Context, inst *model.UserDailyQuest, amount int, now time.Time) (bool, error) {
	if amount <= 0 {
		return false, nil
	}
	db := r.DB.WithContext(ctx)
	if err := db.Model(&model.UserDailyQuest{}).
		Where("id = ?", inst.ID).
		Update("progress", gorm.Expr("progress + ?", amount)).Error; err != nil {
		return false, err
	}
	return r.markCompleted(db, inst, now)
}

// RaiseProgress 将进度提升到 value，不会降低
func (r *QuestRepository) RaiseProgress(ctx context.Context, inst *model.UserDailyQuest, value int, now time.Time) (bool, error) {
	db := r.DB.WithContext(ctx)
	if err := db.Model(&model.UserDailyQuest{}).
		Where("id = ? AND progress < ?", inst.ID, value).
		Update("progress", value).Error; err != nil {
		return false, err
	}
	return r.markCompleted(db, inst, now)
}

func (r *QuestRepository) markCompleted(db *gorm.DB, inst *model.UserDailyQuest, now time.Time) (bool, error) {
	res := db.Model(&model.UserDailyQuest{}).
		Where("id = ? AND completed = ? AND progress >= ?", inst.ID, false, inst.Quest.TargetValue).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}

	if err := db.Where("id = ?", inst.ID).Select("progress", "completed", "completed_at").First(inst).Error; err != nil {
		return false, err
	}
	return res.RowsAffected == 1, nil
}

// ListForPeriods 读取用户在给定周期键下的任务实例
func (r *QuestRepository) ListForPeriods(ctx context.Context, userID uint, periodKeys []string) ([]model.UserDailyQuest, error) {
	var rows []model.UserDailyQuest
	err := r.DB.WithContext(ctx).
		Preload("Quest").
		Where("user_id = ? AND period_key IN ?", userID, periodKeys).
		Order("quest_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *QuestRepository) CountCompleted(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.UserDailyQuest{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return count, err
}
