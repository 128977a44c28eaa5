package model

import "time"

type LearningLanguage string

const (
	LanguageSpanish  LearningLanguage = "spanish"
	LanguageChinese  LearningLanguage = "chinese"
	LanguageFrench   LearningLanguage = "french"
	LanguageJapanese LearningLanguage = "japanese"
)

func (l LearningLanguage) Valid() bool {
	switch l {
	case LanguageSpanish, LanguageChinese, LanguageFrench, LanguageJapanese:
		return true
	}
	return false
}

// Profile 用户的游戏化状态：红心、宝石、经验、连胜
// swagger:model Profile
type Profile struct {
	LedgerModel
	UserID             uint              `gorm:"uniqueIndex;not null" json:"userId"`
	DisplayName        string            `gorm:"size:100" json:"displayName"`
	Hearts             int               `gorm:"not null;default:5" json:"hearts"`
	MaxHearts          int               `gorm:"not null;default:5" json:"maxHearts"`
	Gems               int               `gorm:"not null;default:0" json:"gems"`
	XP                 int               `gorm:"not null;default:0;index" json:"xp"`
	StreakDays         int               `gorm:"not null;default:0" json:"streakDays"`
	LastActiveDate     *time.Time        `json:"lastActiveDate,omitempty"`
	LastHeartRestoreAt *time.Time        `json:"lastHeartRestoreAt,omitempty"`
	LearningLanguage   *LearningLanguage `gorm:"size:20" json:"learningLanguage,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}
