// Package testutil opens an isolated in-memory sqlite database with the
// production schema and seeds small course fixtures.
package testutil

import (
	"fmt"
	"lingua_backend/internal/model"
	"lingua_backend/pkg/database"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB returns a migrated and seeded database private to t.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 单连接：事务内的语句必须走 tx
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// ExerciseSpec describes one exercise of a fixture lesson.
type ExerciseSpec struct {
	Type    model.ExerciseType
	Prompt  string
	Answer  string
	Choices []model.ExerciseChoice
}

// Translate is a shorthand for a Translate exercise.
func Translate(prompt, answer string) ExerciseSpec {
	return ExerciseSpec{Type: model.ExerciseTranslate, Prompt: prompt, Answer: answer}
}

// MultipleChoice builds an MC exercise whose first choice is correct.
func MultipleChoice(prompt string, correct string, wrong ...string) ExerciseSpec {
	choices := []model.ExerciseChoice{{Text: correct, IsCorrect: true}}
	for _, w := range wrong {
		choices = append(choices, model.ExerciseChoice{Text: w})
	}
	return ExerciseSpec{Type: model.ExerciseMultipleChoice, Prompt: prompt, Answer: correct, Choices: choices}
}

// SeedLesson creates course → section → unit → lesson with the given
// exercises and returns the lesson with exercises and choices loaded.
func SeedLesson(t *testing.T, db *gorm.DB, title string, specs ...ExerciseSpec) *model.Lesson {
	t.Helper()

	course := model.Course{Title: "Spanish", Slug: uuid.NewString(), ToLanguage: "Spanish"}
	require.NoError(t, db.Create(&course).Error)
	section := model.Section{CourseID: course.ID, Title: "Basics", Order: 1}
	require.NoError(t, db.Create(&section).Error)
	unit := model.Unit{SectionID: section.ID, Title: "Greetings", Order: 1}
	require.NoError(t, db.Create(&unit).Error)

	lesson := model.Lesson{UnitID: unit.ID, Title: title, Order: 1}
	require.NoError(t, db.Create(&lesson).Error)

	for i, spec := range specs {
		ex := model.Exercise{
			LessonID:   lesson.ID,
			Order:      i + 1,
			Type:       spec.Type,
			Prompt:     spec.Prompt,
			AnswerText: spec.Answer,
			Choices:    spec.Choices,
		}
		require.NoError(t, db.Create(&ex).Error)
		lesson.Exercises = append(lesson.Exercises, ex)
	}
	return &lesson
}

// SeedProfile creates a profile with explicit balances.
func SeedProfile(t *testing.T, db *gorm.DB, p model.Profile) *model.Profile {
	t.Helper()
	if p.MaxHearts == 0 {
		p.MaxHearts = 5
	}
	balances := map[string]interface{}{
		"hearts": p.Hearts,
		"gems":   p.Gems,
		"xp":     p.XP,
	}
	require.NoError(t, db.Create(&p).Error)
	// 零值字段会被数据库默认值覆盖，显式写回
	require.NoError(t, db.Model(&model.Profile{}).Where("id = ?", p.ID).Updates(balances).Error)
	require.NoError(t, db.First(&p, p.ID).Error)
	return &p
}

// Profile reloads a profile by user id.
func Profile(t *testing.T, db *gorm.DB, userID uint) model.Profile {
	t.Helper()
	var p model.Profile
	require.NoError(t, db.Where("user_id = ?", userID).First(&p).Error)
	return p
}
