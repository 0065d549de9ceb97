package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SurveyStatus string

const (
	StatusDraft     SurveyStatus = "Draft"
	StatusPublished SurveyStatus = "Published"
	StatusLive      SurveyStatus = "Live"
	StatusClosed    SurveyStatus = "Closed"
	StatusArchived  SurveyStatus = "Archived"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	Dropdown     QuestionType = "dropdown"
	Slider       QuestionType = "slider"
	RatingStar   QuestionType = "rating_star"
	RatingSmiley QuestionType = "rating_smiley"
	RatingNumber QuestionType = "rating_number"
	TextShort    QuestionType = "text_short"
	TextLong     QuestionType = "text_long"
	DatePicker   QuestionType = "date_picker"
	FileUpload   QuestionType = "file_upload"
	Email        QuestionType = "email"
)

// IsChoice reports whether answers to this type are one or more labeled options.
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultiChoice || t == Dropdown
}

// IsNumeric reports whether answers to this type are parsed as numbers.
func (t QuestionType) IsNumeric() bool {
	return t == Slider || t == RatingStar || t == RatingSmiley || t == RatingNumber
}

// IsText reports whether answers to this type are free-form text subject to
// word-frequency analysis.
func (t QuestionType) IsText() bool {
	return t == TextShort || t == TextLong
}

type Survey struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string      `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Slug        string       `json:"slug" gorm:"uniqueIndex;size:64"`
	Status      SurveyStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,survey_status"`

	// Scheduling. Both dates are required before the survey may go Live.
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	// CloseDate is set when the survey closes or is unpublished back to Draft.
	CloseDate *time.Time `json:"close_date"`

	// Locked is set once the survey has ever been Published or Live and
	// prevents destructive edits to the question schema.
	Locked bool `json:"locked" gorm:"default:false"`

	Pages Pages `json:"pages" gorm:"type:jsonb;serializer:json"`

	// Settings holds free-form presentation options (theme, language,
	// thank-you text). The service stores them opaquely.
	Settings datatypes.JSONMap `json:"settings,omitempty" gorm:"type:jsonb"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:64;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Survey) TableName() string {
	return "surveys"
}

type Pages []Page

type Page struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	// Branching rules are stored but not interpreted by this service.
	BranchRules []BranchRule `json:"branch_rules,omitempty"`
}

type Question struct {
	ID       string           `json:"id"`
	Type     QuestionType     `json:"type" validate:"omitempty,question_type"`
	Title    string           `json:"title"`
	Options  []Option         `json:"options,omitempty"`
	Settings QuestionSettings `json:"settings"`
}

type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionSettings carries type-specific bounds. Zero values mean "unset".
type QuestionSettings struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Step     *float64 `json:"step,omitempty"`
	Required bool     `json:"required,omitempty"`
}

type BranchRule struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
	TargetPage string `json:"target_page"`
}

// FlattenQuestions returns all questions in page order, the order analytics
// reports follow.
func (s *Survey) FlattenQuestions() []Question {
	var questions []Question
	for _, page := range s.Pages {
		questions = append(questions, page.Questions...)
	}
	return questions
}

// QuestionCount counts questions across all pages.
func (s *Survey) QuestionCount() int {
	n := 0
	for _, page := range s.Pages {
		n += len(page.Questions)
	}
	return n
}
