package model

// 课程内容由内容团队维护，这里只读

// swagger:model Course
type Course struct {
	BaseModel
	Title        string    `gorm:"size:120;not null" json:"title"`
	Slug         string    `gorm:"size:120;uniqueIndex" json:"slug"`
	FromLanguage string    `gorm:"size:50;default:'English'" json:"fromLanguage"`
	ToLanguage   string    `gorm:"size:50" json:"toLanguage"`
	Description  string    `gorm:"type:text" json:"description"`
	Sections     []Section `json:"sections,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type Section struct {
	BaseModel
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	Title    string `gorm:"size:120;not null" json:"title"`
	Order    int    `gorm:"column:sort_order;default:1" json:"order"`
	Units    []Unit `json:"units,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}

type Unit struct {
	BaseModel
	SectionID   uint     `gorm:"index;not null" json:"sectionId"`
	Title       string   `gorm:"size:120;not null" json:"title"`
	Order       int      `gorm:"column:sort_order;default:1" json:"order"`
	Description string   `gorm:"type:text" json:"description"`
	Lessons     []Lesson `json:"lessons,omitempty"`
}

func (Unit) TableName() string {
	return "units"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	UnitID    uint       `gorm:"index" json:"unitId"`
	Title     string     `gorm:"size:120;not null" json:"title"`
	Order     int        `gorm:"column:sort_order;default:1" json:"order"`
	Exercises []Exercise `json:"exercises,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

type ExerciseType string

const (
	ExerciseMultipleChoice ExerciseType = "MC"
	ExerciseTranslate      ExerciseType = "TR"
	ExerciseMatchPairs     ExerciseType = "MP"
	ExerciseListen         ExerciseType = "LI"
	ExerciseSpeak          ExerciseType = "SP"
)

// DisplayName 用于提示词和接口展示
func (t ExerciseType) DisplayName() string {
	switch t {
	case ExerciseMultipleChoice:
		return "Multiple Choice"
	case ExerciseTranslate:
		return "Translate"
	case ExerciseMatchPairs:
		return "Match Pairs"
	case ExerciseListen:
		return "Listen"
	case ExerciseSpeak:
		return "Speak"
	default:
		return string(t)
	}
}

// swagger:model Exercise
type Exercise struct {
	BaseModel
	LessonID   uint             `gorm:"index;not null" json:"lessonId"`
	Order      int              `gorm:"column:sort_order;default:1" json:"order"`
	Type       ExerciseType     `gorm:"size:2;default:'TR'" json:"type"`
	Prompt     string           `gorm:"size:255;not null" json:"prompt"`
	AnswerText string           `gorm:"size:255" json:"-"`
	Hint       string           `gorm:"size:255" json:"-"`
	IsNewWord  bool             `gorm:"default:false" json:"isNewWord"`
	AudioFile  string           `gorm:"size:255" json:"-"`
	Choices    []ExerciseChoice `json:"choices,omitempty"`
}

func (Exercise) TableName() string {
	return "exercises"
}

type ExerciseChoice struct {
	BaseModel
	ExerciseID uint   `gorm:"index;not null" json:"exerciseId"`
	Text       string `gorm:"size:255;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
}

func (ExerciseChoice) TableName() string {
	return "exercise_choices"
}
