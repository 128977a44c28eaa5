package model

import "time"

// Attempt 每次答题提交的不可变记录
// swagger:model Attempt
type Attempt struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint      `gorm:"index:idx_attempt_user_exercise;not null" json:"userId"`
	ExerciseID       uint      `gorm:"index:idx_attempt_user_exercise;not null" json:"exerciseId"`
	LessonID         uint      `gorm:"index" json:"lessonId"`
	SubmittedText    string    `gorm:"size:255" json:"submittedText"`
	SelectedChoiceID *uint     `json:"selectedChoiceId,omitempty"`
	IsCorrect        bool      `gorm:"default:false" json:"isCorrect"`
	CreatedAt        time.Time `gorm:"index" json:"createdAt"`
}

func (Attempt) TableName() string {
	return "attempts"
}
