package service

import (
	"context"
	"fmt"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	firstTryXP  = 10
	secondTryXP = 5
)

// RewardResult 单次作答的奖励增量
type RewardResult struct {
	XPDelta    int `json:"xpDelta"`
	HeartDelta int `json:"heartDelta"`
}

// ComputeReward 第一次答对 +10，第二次答对 +5，答错扣一颗心；练习模式不奖不罚
func ComputeReward(ordinal int, isCorrect, practice bool) RewardResult {
	if practice {
		return RewardResult{}
	}
	if !isCorrect {
		return RewardResult{HeartDelta: -1}
	}
	switch ordinal {
	case 1:
		return RewardResult{XPDelta: firstTryXP}
	case 2:
		return RewardResult{XPDelta: secondTryXP}
	}
	return RewardResult{}
}

// NextStreak 根据上次活跃日期计算新的连胜天数，日期按 now 所在时区比较
func NextStreak(prev int, lastActive *time.Time, now time.Time) int {
	if lastActive == nil {
		return 1
	}
	last := lastActive.In(now.Location())
	switch util.DaysBetween(last, now) {
	case 0:
		if prev < 1 {
			return 1
		}
		return prev
	case 1:
		return prev + 1
	}
	return 1
}

// RewardOutcome 奖励实际产生的效果
type RewardOutcome struct {
	RewardResult
	HeartLost       bool                   `json:"heartLost"`
	StreakDays      int                    `json:"streakDays"`
	StreakIncreased bool                   `json:"streakIncreased"`
	CompletedQuests []model.UserDailyQuest `json:"completedQuests,omitempty"`
	NewAchievements []model.Achievement    `json:"newAchievements,omitempty"`
}

type RewardService struct {
	DB           *gorm.DB
	profiles     *repository.ProfileRepository
	progress     *repository.ProgressRepository
	quests       *QuestService
	achievements *AchievementService
	loc          *time.Location
}

func NewRewardService(
	db *gorm.DB,
	profiles *repository.ProfileRepository,
	progress *repository.ProgressRepository,
	quests *QuestService,
	achievements *AchievementService,
	loc *time.Location,
) *RewardService {
	if loc == nil {
		loc = time.Local
	}
	return &RewardService{
		DB:           db,
		profiles:     profiles,
		progress:     progress,
		quests:       quests,
		achievements: achievements,
		loc:          loc,
	}
}

// Apply 将一次作答的奖励写入档案
func (s *RewardService) Apply(ctx context.Context, userID, lessonID uint, ordinal int, isCorrect, practice bool, now time.Time) (*RewardOutcome, error) {
	out := &RewardOutcome{RewardResult: ComputeReward(ordinal, isCorrect, practice)}

	if practice {
		if err := s.progress.Touch(ctx, userID, lessonID, now); err != nil {
			return nil, fmt.Errorf("touch progress: %w", err)
		}
		return out, nil
	}

	if !isCorrect {
		lost, err := s.profiles.LoseHeart(ctx, userID, now)
		if err != nil {
			return nil, fmt.Errorf("lose heart: %w", err)
		}
		out.HeartLost = lost
		if !lost {
			out.HeartDelta = 0
		}
		return out, nil
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profiles := s.profiles.WithTx(tx)
		p, err := profiles.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := profiles.AddRewards(ctx, userID, out.XPDelta, 0); err != nil {
			return err
		}

		local := now.In(s.loc)
		out.StreakDays = NextStreak(p.StreakDays, p.LastActiveDate, local)
		out.StreakIncreased = out.StreakDays > p.StreakDays
		if err := profiles.UpdateStreak(ctx, userID, out.StreakDays, now); err != nil {
			return err
		}

		out.CompletedQuests, err = s.quests.Increment(ctx, tx, userID, model.QuestEarnXP, out.XPDelta, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("apply reward: %w", err)
	}

	if out.StreakIncreased {
		granted, err := s.achievements.Evaluate(ctx, userID, []model.AchievementCategory{model.CategoryStreak}, now)
		if err != nil {
			// 成就可在下次评估时补发
			logger.Log.Warn("streak achievement evaluation failed",
				zap.Uint("user_id", userID), zap.Error(err))
		}
		out.NewAchievements = granted
	}
	return out, nil
}
