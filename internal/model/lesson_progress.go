package model

import "time"

// swagger:model LessonProgress
type LessonProgress struct {
	LedgerModel
	UserID     uint      `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"userId"`
	LessonID   uint      `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"lessonId"`
	Completed  bool      `gorm:"default:false;index" json:"completed"`
	Score      int       `gorm:"default:0" json:"score"`
	Perfect    bool      `gorm:"default:false" json:"perfect"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
