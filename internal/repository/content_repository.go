package repository

import (
	"context"
	"errors"
	"lingua_backend/internal/model"
	"lingua_backend/internal/util"

	"gorm.io/gorm"
)

// ContentRepository 课程内容只读访问
type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

// GetLesson 加载课时及按顺序排列的练习和选项
func (r *ContentRepository) GetLesson(ctx context.Context, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.WithContext(ctx).
		Preload("Exercises", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Exercises.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&lesson, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}
