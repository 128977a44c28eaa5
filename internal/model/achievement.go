package model

import "time"

type AchievementCategory string

const (
	CategoryLesson  AchievementCategory = "lesson"
	CategoryStreak  AchievementCategory = "streak"
	CategoryXP      AchievementCategory = "xp"
	CategoryQuest   AchievementCategory = "quest"
	CategoryTime    AchievementCategory = "time"
	CategoryPerfect AchievementCategory = "perfect"
	CategoryGems    AchievementCategory = "gems"
)

// Achievement 成就目录，按名称唯一
// swagger:model Achievement
type Achievement struct {
	BaseModel
	Name        string              `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string              `gorm:"size:255" json:"description"`
	Icon        string              `gorm:"size:20" json:"icon"`
	Category    AchievementCategory `gorm:"size:20;index" json:"category"`
	Threshold   int                 `gorm:"default:0" json:"threshold"`
	XPReward    int                 `gorm:"default:0" json:"xpReward"`
	GemReward   int                 `gorm:"default:0" json:"gemReward"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement 用户获得成就的记录，(user, achievement) 唯一
type UserAchievement struct {
	LedgerModel
	UserID        uint        `gorm:"uniqueIndex:idx_user_achievement;not null" json:"userId"`
	AchievementID uint        `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievementId"`
	EarnedAt      time.Time   `json:"earnedAt"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID" json:"achievement"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
