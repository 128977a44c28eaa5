package service

import (
	"context"
	"fmt"
	"lingua_backend/internal/config"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

// ProfileService 处理档案读取、红心恢复、商店和学习语言
type ProfileService struct {
	profiles *repository.ProfileRepository
	cfg      config.GamificationConfig
	loc      *time.Location
	now      func() time.Time
}

func NewProfileService(profiles *repository.ProfileRepository, cfg config.GamificationConfig) *ProfileService {
	return &ProfileService{profiles: profiles, cfg: cfg, loc: cfg.Location(), now: time.Now}
}

// RestoreHearts 计算经过 now 之后的红心数和恢复计时。
// 每满一个 interval 恢复一颗心，计时按整段前移，恢复满时清空
func RestoreHearts(hearts, maxHearts int, clock *time.Time, now time.Time, interval time.Duration) (int, *time.Time) {
	if hearts >= maxHearts {
		return hearts, nil
	}
	if clock == nil {
		start := now
		return hearts, &start
	}
	if interval <= 0 {
		return maxHearts, nil
	}

	n := int(now.Sub(*clock) / interval)
	if n <= 0 {
		return hearts, clock
	}
	hearts += n
	if hearts >= maxHearts {
		return maxHearts, nil
	}
	next := clock.Add(time.Duration(n) * interval)
	return hearts, &next
}

func sameClock(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// GetProfile 读取档案，首次访问时创建，并应用懒恢复
func (s *ProfileService) GetProfile(ctx context.Context, userID uint, displayName string) (*model.Profile, error) {
	p, err := s.profiles.GetOrCreate(ctx, userID, displayName, s.cfg.MaxHearts)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return s.restore(ctx, p, s.now())
}

func (s *ProfileService) restore(ctx context.Context, p *model.Profile, now time.Time) (*model.Profile, error) {
	hearts, clock := RestoreHearts(p.Hearts, p.MaxHearts, p.LastHeartRestoreAt, now, s.cfg.HeartRestoreInterval())
	if hearts == p.Hearts && sameClock(clock, p.LastHeartRestoreAt) {
		return p, nil
	}

	ok, err := s.profiles.RestoreHearts(ctx, p.UserID, p.Hearts, hearts, clock)
	if err != nil {
		return nil, fmt.Errorf("restore hearts: %w", err)
	}
	if !ok {
		// 并发请求已修改红心，以库中为准
		return s.profiles.FindByUserID(ctx, p.UserID)
	}
	if hearts > p.Hearts {
		logger.Log.Debug("hearts restored",
			zap.Uint("user_id", p.UserID),
			zap.Int("from", p.Hearts),
			zap.Int("to", hearts))
	}
	p.Hearts, p.LastHeartRestoreAt = hearts, clock
	return p, nil
}

// PurchaseResult 商店购买结果，余额不足等情况不是错误
type PurchaseRequest struct {
	Item string `json:"item" binding:"required"`
}

type LanguageRequest struct {
	Language model.LearningLanguage `json:"language" binding:"required"`
}

type PurchaseResult struct {
	Item     string `json:"item"`
	Declined bool   `json:"declined"`
	Reason   string `json:"reason,omitempty"`
	Cost     int    `json:"cost"`
	Hearts   int    `json:"hearts"`
	Gems     int    `json:"gems"`
}

func (s *ProfileService) itemCost(item string) (int, bool, error) {
	switch item {
	case util.ShopItemHeartRefill:
		return s.cfg.HeartRefillCost, true, nil
	case util.ShopItemHeart:
		return s.cfg.SingleHeartCost, false, nil
	}
	return 0, false, util.ErrUnknownShopItem
}

// Purchase 用宝石购买红心，扣款和加心在同一条条件更新中完成
func (s *ProfileService) Purchase(ctx context.Context, userID uint, item string) (*PurchaseResult, error) {
	cost, refill, err := s.itemCost(item)
	if err != nil {
		return nil, err
	}

	// 先应用懒恢复，避免为已恢复的心付费
	p, err := s.GetProfile(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	result := &PurchaseResult{Item: item, Cost: cost}

	bought, err := s.profiles.BuyHearts(ctx, userID, cost, refill)
	if err != nil {
		return nil, fmt.Errorf("buy hearts: %w", err)
	}
	if p, err = s.profiles.FindByUserID(ctx, userID); err != nil {
		return nil, err
	}
	if !bought {
		result.Declined = true
		result.Reason = util.ErrInsufficientGems.Error()
		if p.Hearts >= p.MaxHearts {
			result.Reason = util.ErrHeartsAlreadyFull.Error()
		}
	}

	result.Hearts, result.Gems = p.Hearts, p.Gems
	outcome := "ok"
	if result.Declined {
		outcome = "declined"
	}
	monitoring.ShopPurchases.WithLabelValues(item, outcome).Inc()
	logger.Log.Info("shop purchase",
		zap.Uint("user_id", userID),
		zap.String("item", item),
		zap.String("result", outcome),
		zap.String("reason", result.Reason))
	return result, nil
}

func (s *ProfileService) SetLanguage(ctx context.Context, userID uint, lang model.LearningLanguage) (*model.Profile, error) {
	if !lang.Valid() {
		return nil, util.ErrInvalidLanguage
	}
	if _, err := s.GetProfile(ctx, userID, ""); err != nil {
		return nil, err
	}
	if err := s.profiles.SetLanguage(ctx, userID, lang); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	return s.profiles.FindByUserID(ctx, userID)
}

// ResetLapsedStreaks 清零昨天之前就没有活跃的连胜，由定时任务调用
func (s *ProfileService) ResetLapsedStreaks(ctx context.Context, now time.Time) (int64, error) {
	local := now.In(s.loc)
	cutoff := time.Date(local.Year(), local.Month(), local.Day()-1, 0, 0, 0, 0, s.loc)
	n, err := s.profiles.ResetLapsedStreaks(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reset lapsed streaks: %w", err)
	}
	return n, nil
}
