package model

// ExerciseStatus 会话中单个练习的状态
type ExerciseStatus string

const (
	StatusUnattempted   ExerciseStatus = "unattempted"
	StatusAttemptedOnce ExerciseStatus = "attempted_once"
	StatusPerfect       ExerciseStatus = "perfect"
	StatusCorrected     ExerciseStatus = "corrected"
	StatusFailed        ExerciseStatus = "failed"
)

func (s ExerciseStatus) Terminal() bool {
	return s == StatusPerfect || s == StatusCorrected || s == StatusFailed
}
