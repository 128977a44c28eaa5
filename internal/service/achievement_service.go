package service

import (
	"context"
	"encoding/json"
	"fmt"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const leaderboardTTL = 60 * time.Second

// milestone 成就名称与达成条件，奖励数值来自成就目录
type milestone struct {
	name      string
	category  model.AchievementCategory
	threshold int
}

var milestones = []milestone{
	{"First Steps", model.CategoryLesson, 1},
	{"Scholar", model.CategoryLesson, 5},
	{"Dedicated Learner", model.CategoryLesson, 10},
	{"Lesson Master", model.CategoryLesson, 25},

	{"Warming Up", model.CategoryStreak, 3},
	{"On Fire", model.CategoryStreak, 7},
	{"Wildfire", model.CategoryStreak, 14},
	{"Unstoppable", model.CategoryStreak, 30},
	{"Legendary Streak", model.CategoryStreak, 100},

	{"Rising Star", model.CategoryXP, 100},
	{"Experience Hunter", model.CategoryXP, 500},
	{"XP Champion", model.CategoryXP, 1000},
	{"XP Legend", model.CategoryXP, 5000},

	{"Quest Starter", model.CategoryQuest, 1},
	{"Quest Warrior", model.CategoryQuest, 10},
	{"Quest Master", model.CategoryQuest, 25},

	{"Gem Collector", model.CategoryGems, 100},
	{"Treasure Hunter", model.CategoryGems, 500},

	{"Perfectionist", model.CategoryPerfect, 1},
	{"Flawless Five", model.CategoryPerfect, 5},
	{"Perfect Ten", model.CategoryPerfect, 10},
}

const (
	earlyBirdName = "Early Bird"
	nightOwlName  = "Night Owl"
	earlyBirdHour = 8
	nightOwlHour  = 22
)

type AchievementService struct {
	DB           *gorm.DB
	achievements *repository.AchievementRepository
	profiles     *repository.ProfileRepository
	progress     *repository.ProgressRepository
	quests       *repository.QuestRepository
	rdb          *redis.Client
	loc          *time.Location
}

func NewAchievementService(
	db *gorm.DB,
	achievements *repository.AchievementRepository,
	profiles *repository.ProfileRepository,
	progress *repository.ProgressRepository,
	quests *repository.QuestRepository,
	rdb *redis.Client,
	loc *time.Location,
) *AchievementService {
	if loc == nil {
		loc = time.Local
	}
	return &AchievementService{
		DB:           db,
		achievements: achievements,
		profiles:     profiles,
		progress:     progress,
		quests:       quests,
		rdb:          rdb,
		loc:          loc,
	}
}

// Stats 成就判定用到的统计值
type Stats struct {
	CompletedLessons int `json:"completedLessons"`
	PerfectLessons   int `json:"perfectLessons"`
	StreakDays       int `json:"streakDays"`
	TotalXP          int `json:"totalXp"`
	TotalGems        int `json:"totalGems"`
	CompletedQuests  int `json:"completedQuests"`
}

func (s *AchievementService) stats(ctx context.Context, userID uint, categories map[model.AchievementCategory]bool) (Stats, error) {
	var st Stats

	if categories[model.CategoryStreak] || categories[model.CategoryXP] || categories[model.CategoryGems] {
		p, err := s.profiles.FindByUserID(ctx, userID)
		if err != nil {
			return st, err
		}
		st.StreakDays, st.TotalXP, st.TotalGems = p.StreakDays, p.XP, p.Gems
	}
	if categories[model.CategoryLesson] {
		n, err := s.progress.CountCompleted(ctx, userID)
		if err != nil {
			return st, err
		}
		st.CompletedLessons = int(n)
	}
	if categories[model.CategoryPerfect] {
		n, err := s.progress.CountPerfect(ctx, userID)
		if err != nil {
			return st, err
		}
		st.PerfectLessons = int(n)
	}
	if categories[model.CategoryQuest] {
		n, err := s.quests.CountCompleted(ctx, userID)
		if err != nil {
			return st, err
		}
		st.CompletedQuests = int(n)
	}
	return st, nil
}

func (st Stats) value(c model.AchievementCategory) int {
	switch c {
	case model.CategoryLesson:
		return st.CompletedLessons
	case model.CategoryStreak:
		return st.StreakDays
	case model.CategoryXP:
		return st.TotalXP
	case model.CategoryQuest:
		return st.CompletedQuests
	case model.CategoryGems:
		return st.TotalGems
	case model.CategoryPerfect:
		return st.PerfectLessons
	}
	return 0
}

// qualifiedNames 当前统计下满足条件的成就名
func qualifiedNames(st Stats, categories map[model.AchievementCategory]bool, localNow time.Time) []string {
	var names []string
	for _, m := range milestones {
		if categories[m.category] && st.value(m.category) >= m.threshold {
			names = append(names, m.name)
		}
	}
	if categories[model.CategoryTime] {
		if localNow.Hour() < earlyBirdHour {
			names = append(names, earlyBirdName)
		}
		if localNow.Hour() >= nightOwlHour {
			names = append(names, nightOwlName)
		}
	}
	return names
}

// Evaluate 检查给定类别的成就并授予新达成的，返回本次新获得的成就
func (s *AchievementService) Evaluate(ctx context.Context, userID uint, categories []model.AchievementCategory, now time.Time) ([]model.Achievement, error) {
	wanted := make(map[model.AchievementCategory]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	st, err := s.stats(ctx, userID, wanted)
	if err != nil {
		return nil, err
	}
	names := qualifiedNames(st, wanted, now.In(s.loc))
	if len(names) == 0 {
		return nil, nil
	}

	catalog, err := s.achievements.FindByCategories(ctx, categories)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]model.Achievement, len(catalog))
	for _, a := range catalog {
		byName[a.Name] = a
	}
	earned, err := s.achievements.EarnedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	var granted []model.Achievement
	for _, name := range names {
		a, ok := byName[name]
		if !ok {
			logger.Log.Warn("achievement missing from catalog", zap.String("name", name))
			continue
		}
		if earned[a.ID] {
			continue
		}
		ok, err := s.grant(ctx, userID, a, now)
		if err != nil {
			return granted, err
		}
		if ok {
			granted = append(granted, a)
		}
	}
	return granted, nil
}

// grant 插入授予记录和发放奖励在同一事务内，并发重复授予只有一方生效
func (s *AchievementService) grant(ctx context.Context, userID uint, a model.Achievement, now time.Time) (bool, error) {
	var granted bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.achievements.WithTx(tx).GrantIfAbsent(ctx, userID, a.ID, now)
		if err != nil || !ok {
			return err
		}
		granted = true
		return s.profiles.WithTx(tx).AddRewards(ctx, userID, a.XPReward, a.GemReward)
	})
	if err != nil {
		return false, fmt.Errorf("grant achievement %q: %w", a.Name, err)
	}
	if granted {
		monitoring.AchievementsGranted.WithLabelValues(string(a.Category)).Inc()
		logger.Log.Info("achievement granted",
			zap.Uint("user_id", userID),
			zap.String("achievement", a.Name))
	}
	return granted, nil
}

type AchievementProgress struct {
	Earned      []model.UserAchievement `json:"earned"`
	Catalog     []model.Achievement     `json:"catalog"`
	EarnedCount int                     `json:"earnedCount"`
	TotalCount  int                     `json:"totalCount"`
	Percentage  int                     `json:"percentage"`
	Stats       Stats                   `json:"stats"`
}

func (s *AchievementService) Progress(ctx context.Context, userID uint) (*AchievementProgress, error) {
	earned, err := s.achievements.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.achievements.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	all := map[model.AchievementCategory]bool{
		model.CategoryLesson:  true,
		model.CategoryStreak:  true,
		model.CategoryXP:      true,
		model.CategoryGems:    true,
		model.CategoryQuest:   true,
		model.CategoryPerfect: true,
	}
	st, err := s.stats(ctx, userID, all)
	if err != nil {
		return nil, err
	}

	out := &AchievementProgress{
		Earned:      earned,
		Catalog:     catalog,
		EarnedCount: len(earned),
		TotalCount:  len(catalog),
		Stats:       st,
	}
	if len(catalog) > 0 {
		out.Percentage = len(earned) * 100 / len(catalog)
	}
	return out, nil
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      uint   `json:"userId"`
	DisplayName string `json:"displayName"`
	XP          int    `json:"xp"`
	StreakDays  int    `json:"streakDays"`
}

// Leaderboard 按经验排名，结果在 Redis 中缓存一分钟
func (s *AchievementService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	key := fmt.Sprintf("leaderboard:xp:%d", limit)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var entries []LeaderboardEntry
			if json.Unmarshal(cached, &entries) == nil {
				return entries, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	profiles, err := s.profiles.TopByXP(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, len(profiles))
	for i, p := range profiles {
		entries[i] = LeaderboardEntry{
			Rank:        i + 1,
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			XP:          p.XP,
			StreakDays:  p.StreakDays,
		}
	}

	if s.rdb != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.rdb.Set(ctx, key, data, leaderboardTTL).Err(); err != nil {
				logger.Log.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}
