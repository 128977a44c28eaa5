package service

import (
	"context"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuestService struct {
	DB       *gorm.DB
	quests   *repository.QuestRepository
	profiles *repository.ProfileRepository
	loc      *time.Location
}

func NewQuestService(db *gorm.DB, quests *repository.QuestRepository, profiles *repository.ProfileRepository, loc *time.Location) *QuestService {
	if loc == nil {
		loc = time.Local
	}
	return &QuestService{DB: db, quests: quests, profiles: profiles, loc: loc}
}

// PeriodKey 日任务按日期，周任务按 ISO 周
func (s *QuestService) PeriodKey(q *model.DailyQuest, now time.Time) string {
	local := now.In(s.loc)
	if q.IsWeekly {
		return util.WeeklyPeriodKey(local)
	}
	return util.DailyPeriodKey(local)
}

// Increment 给某类型的全部活动任务增加进度，返回本次刚完成的任务。
// tx 为 nil 时自行开启事务
func (s *QuestService) Increment(ctx context.Context, tx *gorm.DB, userID uint, questType model.QuestType, amount int, now time.Time) ([]model.UserDailyQuest, error) {
	if amount <= 0 {
		return nil, nil
	}
	return s.apply(ctx, tx, userID, questType, now, func(repo *repository.QuestRepository, inst *model.UserDailyQuest) (bool, error) {
		return repo.IncrementProgress(ctx, inst, amount, now)
	})
}

// Raise 将进度提升到 value，用于连胜这类绝对值任务
func (s *QuestService) Raise(ctx context.Context, tx *gorm.DB, userID uint, questType model.QuestType, value int, now time.Time) ([]model.UserDailyQuest, error) {
	return s.apply(ctx, tx, userID, questType, now, func(repo *repository.QuestRepository, inst *model.UserDailyQuest) (bool, error) {
		return repo.RaiseProgress(ctx, inst, value, now)
	})
}

type questUpdate func(repo *repository.QuestRepository, inst *model.UserDailyQuest) (bool, error)

func (s *QuestService) apply(ctx context.Context, tx *gorm.DB, userID uint, questType model.QuestType, now time.Time, update questUpdate) ([]model.UserDailyQuest, error) {
	if tx == nil {
		var completed []model.UserDailyQuest
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			completed, err = s.apply(ctx, tx, userID, questType, now, update)
			return err
		})
		return completed, err
	}

	questRepo := s.quests.WithTx(tx)
	profileRepo := s.profiles.WithTx(tx)

	quests, err := questRepo.ActiveByType(ctx, questType)
	if err != nil {
		return nil, err
	}
	if len(quests) == 0 {
		logger.Log.Debug("no active quest for type", zap.String("quest_type", string(questType)))
		return nil, nil
	}

	var completed []model.UserDailyQuest
	for i := range quests {
		q := &quests[i]
		inst, err := questRepo.GetOrCreateInstance(ctx, userID, q, s.PeriodKey(q, now))
		if err != nil {
			return nil, err
		}
		done, err := update(questRepo, inst)
		if err != nil {
			return nil, err
		}
		if !done {
			continue
		}
		// 完成标记是条件更新，奖励只发一次
		if err := profileRepo.AddRewards(ctx, userID, q.XPReward, q.GemReward); err != nil {
			return nil, err
		}
		monitoring.QuestsCompleted.WithLabelValues(string(q.QuestType)).Inc()
		logger.Log.Info("quest completed",
			zap.Uint("user_id", userID),
			zap.String("quest_type", string(q.QuestType)),
			zap.String("period", inst.PeriodKey))
		completed = append(completed, *inst)
	}
	return completed, nil
}

// QuestView 任务面板中的一项
type QuestView struct {
	QuestID     uint            `json:"questId"`
	QuestType   model.QuestType `json:"questType"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Progress    int             `json:"progress"`
	Target      int             `json:"target"`
	Completed   bool            `json:"completed"`
	IsWeekly    bool            `json:"isWeekly"`
	PeriodKey   string          `json:"periodKey"`
	XPReward    int             `json:"xpReward"`
	GemReward   int             `json:"gemReward"`
}

// Board 当前周期的全部活动任务，实例不存在时创建
func (s *QuestService) Board(ctx context.Context, userID uint, now time.Time) ([]QuestView, error) {
	quests, err := s.quests.ActiveQuests(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]QuestView, 0, len(quests))
	for i := range quests {
		q := &quests[i]
		inst, err := s.quests.GetOrCreateInstance(ctx, userID, q, s.PeriodKey(q, now))
		if err != nil {
			return nil, err
		}
		views = append(views, QuestView{
			QuestID:     q.ID,
			QuestType:   q.QuestType,
			Title:       q.Title,
			Description: q.Description,
			Progress:    min(inst.Progress, q.TargetValue),
			Target:      q.TargetValue,
			Completed:   inst.Completed,
			IsWeekly:    q.IsWeekly,
			PeriodKey:   inst.PeriodKey,
			XPReward:    q.XPReward,
			GemReward:   q.GemReward,
		})
	}
	return views, nil
}
