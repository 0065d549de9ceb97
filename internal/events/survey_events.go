package events

import (
	"time"
)

// EventType represents different types of survey events
type EventType string

const (
	// Lifecycle events
	EventSurveyPublished EventType = "survey.published"
	EventSurveyWentLive  EventType = "survey.went_live"
	EventSurveyClosed    EventType = "survey.closed"
	EventSurveyArchived  EventType = "survey.archived"

	// Response events
	EventResponseSubmitted EventType = "response.submitted"

	// Invitation events; a downstream consumer delivers the actual email
	EventInvitationCreated EventType = "invitation.created"
)

// SurveyEvent is the base event structure published to the survey topic
type SurveyEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Lifecycle event payloads

type SurveyPublishedEvent struct {
	SurveyID    uint       `json:"survey_id"`
	SurveyTitle string     `json:"survey_title"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedBy   string     `json:"created_by"`
}

type SurveyWentLiveEvent struct {
	SurveyID    uint      `json:"survey_id"`
	SurveyTitle string    `json:"survey_title"`
	WentLiveAt  time.Time `json:"went_live_at"`
	EndDate     time.Time `json:"end_date"`
}

type SurveyClosedEvent struct {
	SurveyID    uint      `json:"survey_id"`
	SurveyTitle string    `json:"survey_title"`
	ClosedAt    time.Time `json:"closed_at"`
	// DateDriven is true when closure was triggered by the end date rather
	// than an explicit request.
	DateDriven bool `json:"date_driven"`
}

type SurveyArchivedEvent struct {
	SurveyID    uint      `json:"survey_id"`
	SurveyTitle string    `json:"survey_title"`
	ArchivedAt  time.Time `json:"archived_at"`
}

// Response event payloads

type ResponseSubmittedEvent struct {
	SurveyID        uint      `json:"survey_id"`
	ResponseID      uint      `json:"response_id"`
	RespondentEmail string    `json:"respondent_email"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// Invitation event payloads

type InvitationCreatedEvent struct {
	SurveyID        uint   `json:"survey_id"`
	SurveyTitle     string `json:"survey_title"`
	InvitationID    uint   `json:"invitation_id"`
	RespondentEmail string `json:"respondent_email"`
	Token           string `json:"token"`
	InvitedBy       string `json:"invited_by"`
}
