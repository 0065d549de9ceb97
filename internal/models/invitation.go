package models

import "time"

type InvitationStatus string

const (
	InvitationPending InvitationStatus = "Pending"
	InvitationSent    InvitationStatus = "Sent"
)

// Invitation records that a respondent was asked to fill in a survey. Actual
// email delivery is handled by a downstream consumer of invitation events.
type Invitation struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	SurveyID        uint             `json:"survey_id" gorm:"not null;index;uniqueIndex:idx_invite_survey_email"`
	RespondentEmail string           `json:"respondent_email" gorm:"not null;size:320;uniqueIndex:idx_invite_survey_email" validate:"required,email"`
	Token           string           `json:"token" gorm:"uniqueIndex;size:64"`
	Status          InvitationStatus `json:"status" gorm:"default:Pending"`
	InvitedBy       string           `json:"invited_by" gorm:"size:64"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (Invitation) TableName() string {
	return "invitations"
}
