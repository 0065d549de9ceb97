package services

import (
	"context"
	"time"

	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"gorm.io/datatypes"
)

// Clock abstracts wall-clock time so date-boundary lifecycle behavior is
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// ===== REQUEST / RESPONSE STRUCTS =====

type CreateSurveyRequest struct {
	Title       string            `json:"title" validate:"required,min=1,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=2000"`
	StartDate   *time.Time        `json:"start_date"`
	EndDate     *time.Time        `json:"end_date"`
	Pages       models.Pages      `json:"pages"`
	Settings    datatypes.JSONMap `json:"settings"`
}

type UpdateSurveyRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string              `json:"description" validate:"omitempty,max=2000"`
	StartDate   *time.Time           `json:"start_date"`
	EndDate     *time.Time           `json:"end_date"`
	Pages       *models.Pages        `json:"pages"`
	Settings    datatypes.JSONMap    `json:"settings"`
	Status      *models.SurveyStatus `json:"status" validate:"omitempty,survey_status"`
}

type UpdateStatusRequest struct {
	Status models.SurveyStatus `json:"status" validate:"required,survey_status"`
	Reason *string             `json:"reason"`
}

type SurveyListResponse struct {
	Surveys []*models.Survey `json:"surveys"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

type SaveResponseRequest struct {
	RespondentEmail string                  `json:"respondent_email" validate:"required,email"`
	Answers         models.Answers          `json:"answers"`
	Metadata        models.ResponseMetadata `json:"metadata"`
}

type ResponseListResponse struct {
	Responses []*models.Response `json:"responses"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
}

type InviteRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,email"`
}

// InvitationRedemption is what a respondent's invitation link resolves to.
type InvitationRedemption struct {
	SurveyID        uint   `json:"survey_id"`
	SurveySlug      string `json:"survey_slug"`
	SurveyTitle     string `json:"survey_title"`
	RespondentEmail string `json:"respondent_email"`
}

// ===== SERVICE INTERFACES =====

type SurveyService interface {
	Create(ctx context.Context, req *CreateSurveyRequest, creatorID string) (*models.Survey, error)
	// GetByID reconciles any overdue time-driven transitions before
	// returning the survey, persisting them when they fire.
	GetByID(ctx context.Context, id uint, userID string) (*models.Survey, error)
	GetBySlug(ctx context.Context, slug string) (*models.Survey, error)
	Update(ctx context.Context, id uint, req *UpdateSurveyRequest, userID string) (*models.Survey, error)
	Delete(ctx context.Context, id uint, userID string) error
	List(ctx context.Context, filters repositories.SurveyFilters, userID string) (*SurveyListResponse, error)

	UpdateStatus(ctx context.Context, id uint, req *UpdateStatusRequest, userID string) (*models.Survey, error)
	Publish(ctx context.Context, id uint, userID string) (*models.Survey, error)
	Unpublish(ctx context.Context, id uint, userID string) (*models.Survey, error)
	GoLive(ctx context.Context, id uint, userID string) (*models.Survey, error)
	Close(ctx context.Context, id uint, userID string) (*models.Survey, error)
	Archive(ctx context.Context, id uint, userID string) (*models.Survey, error)
}

type ResponseService interface {
	// SaveDraft is the auto-save path: it upserts the (survey, respondent)
	// response and leaves it InProgress.
	SaveDraft(ctx context.Context, surveyID uint, req *SaveResponseRequest) (*models.Response, error)
	// Submit finalizes the response and stamps SubmittedAt.
	Submit(ctx context.Context, surveyID uint, req *SaveResponseRequest) (*models.Response, error)
	GetByRespondent(ctx context.Context, surveyID uint, email string) (*models.Response, error)
	ListBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters, userID string) (*ResponseListResponse, error)
}

type AnalyticsService interface {
	GetSurveyReport(ctx context.Context, surveyID uint, userID string) (*models.AnalyticsReport, error)
	InvalidateReport(ctx context.Context, surveyID uint) error
}

type InvitationService interface {
	Invite(ctx context.Context, surveyID uint, req *InviteRequest, userID string) ([]*models.Invitation, error)
	ListBySurvey(ctx context.Context, surveyID uint, userID string) ([]*models.Invitation, error)
	// Redeem resolves an invitation token to the survey it opens. The token
	// itself is the credential; no authenticated user is involved.
	Redeem(ctx context.Context, token string) (*InvitationRedemption, error)
}

type ExportService interface {
	// ExportSurveyXLSX renders all responses plus the per-question summary
	// into an XLSX workbook.
	ExportSurveyXLSX(ctx context.Context, surveyID uint, userID string) ([]byte, error)
}

// ServiceManager bundles all services behind one constructor.
type ServiceManager interface {
	Survey() SurveyService
	Response() ResponseService
	Analytics() AnalyticsService
	Invitation() InvitationService
	Export() ExportService
}
