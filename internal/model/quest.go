package model

import "time"

type QuestType string

const (
	QuestEarnXP          QuestType = "earn_xp"
	QuestCompleteLessons QuestType = "complete_lessons"
	QuestPerfectLesson   QuestType = "perfect_lesson"
	QuestWeeklyWarrior   QuestType = "weekly_warrior"
	QuestStreakMaster    QuestType = "streak_master"
)

// DailyQuest 任务模板，IsWeekly 决定周期键按天还是按 ISO 周
// swagger:model DailyQuest
type DailyQuest struct {
	BaseModel
	QuestType   QuestType `gorm:"size:30;index;not null" json:"questType"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:255" json:"description"`
	TargetValue int       `gorm:"not null;default:1" json:"targetValue"`
	XPReward    int       `gorm:"default:0" json:"xpReward"`
	GemReward   int       `gorm:"default:0" json:"gemReward"`
	IsWeekly    bool      `gorm:"default:false" json:"isWeekly"`
	IsActive    bool      `gorm:"default:true;index" json:"isActive"`
}

func (DailyQuest) TableName() string {
	return "daily_quests"
}

// UserDailyQuest 某用户在某周期内的任务实例
type UserDailyQuest struct {
	LedgerModel
	UserID      uint       `gorm:"uniqueIndex:idx_user_quest_period;not null" json:"userId"`
	QuestID     uint       `gorm:"uniqueIndex:idx_user_quest_period;not null" json:"questId"`
	PeriodKey   string     `gorm:"uniqueIndex:idx_user_quest_period;size:10;not null" json:"periodKey"`
	Progress    int        `gorm:"default:0" json:"progress"`
	Completed   bool       `gorm:"default:false;index" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Quest       DailyQuest `gorm:"foreignKey:QuestID" json:"quest"`
}

func (UserDailyQuest) TableName() string {
	return "user_daily_quests"
}
