package util

import "errors"

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrLessonNotFound    = errors.New("lesson not found")
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrOutOfHearts       = errors.New("out of hearts")
	ErrExerciseClosed    = errors.New("exercise already answered in this session")
	ErrInvalidLanguage   = errors.New("unsupported learning language")
	ErrUnknownShopItem   = errors.New("unknown shop item")
	ErrInsufficientGems  = errors.New("not enough gems")
	ErrHeartsAlreadyFull = errors.New("hearts already full")
	ErrLessonIncomplete  = errors.New("lesson has unanswered exercises")
)
