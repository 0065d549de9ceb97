package models

import (
	"time"
)

type ResponseStatus string

const (
	ResponseNotStarted ResponseStatus = "NotStarted"
	ResponseInProgress ResponseStatus = "InProgress"
	ResponseCompleted  ResponseStatus = "Completed"
)

// Response is one respondent's answer set for one survey. At most one
// Response exists per (survey_id, respondent_email) pair; auto-save upserts
// into the same row.
type Response struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	SurveyID        uint           `json:"survey_id" gorm:"not null;index;uniqueIndex:idx_survey_respondent"`
	RespondentEmail string         `json:"respondent_email" gorm:"not null;size:320;uniqueIndex:idx_survey_respondent" validate:"required,email"`
	Status          ResponseStatus `json:"status" gorm:"default:NotStarted"`

	Answers Answers `json:"answers" gorm:"type:jsonb;serializer:json"`

	StartedAt   *time.Time       `json:"started_at"`
	SubmittedAt *time.Time       `json:"submitted_at"`
	Metadata    ResponseMetadata `json:"metadata" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Response) TableName() string {
	return "responses"
}

type Answers []Answer

// Answer holds a raw respondent value for one question. Value is free-form:
// a string for text/choice answers, a number for ratings, an array for
// multi-choice selections. Aggregation normalizes or excludes it later.
type Answer struct {
	QuestionID string      `json:"question_id"`
	Value      interface{} `json:"value"`
	PageIndex  int         `json:"page_index"`
}

type ResponseMetadata struct {
	TimeSpentSeconds int   `json:"time_spent_seconds"`
	PagesVisited     []int `json:"pages_visited"`
	LastPageIndex    int   `json:"last_page_index"`
}
