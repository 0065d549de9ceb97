package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/surveyforge/survey-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type SurveyFilters struct {
	Status    *models.SurveyStatus `json:"status"`
	CreatedBy *string              `json:"created_by"`
	DateFrom  *time.Time           `json:"date_from"`
	DateTo    *time.Time           `json:"date_to"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "title", "start_date"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

type ResponseFilters struct {
	Status *models.ResponseStatus `json:"status"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type SurveyRepository interface {
	Create(ctx context.Context, survey *models.Survey) error
	GetByID(ctx context.Context, id uint) (*models.Survey, error)
	GetBySlug(ctx context.Context, slug string) (*models.Survey, error)
	Update(ctx context.Context, survey *models.Survey) error
	// UpdateStatusIf persists a reconciled survey only while its stored
	// status still matches expected, so two racing lazy evaluations cannot
	// clobber each other. A lost race is not an error: the winner already
	// wrote the same end state.
	UpdateStatusIf(ctx context.Context, survey *models.Survey, expected models.SurveyStatus) (bool, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters SurveyFilters) ([]*models.Survey, int64, error)
	HasResponses(ctx context.Context, surveyID uint) (bool, error)
}

type ResponseRepository interface {
	// Upsert saves a response keyed by (survey_id, respondent_email),
	// creating it on first auto-save and updating the same row afterwards.
	Upsert(ctx context.Context, response *models.Response) error
	GetBySurveyAndEmail(ctx context.Context, surveyID uint, email string) (*models.Response, error)
	ListBySurvey(ctx context.Context, surveyID uint, filters ResponseFilters) ([]*models.Response, int64, error)
	// GetAllBySurvey loads every response for a survey without pagination,
	// for analytics aggregation and export.
	GetAllBySurvey(ctx context.Context, surveyID uint) ([]*models.Response, error)
	CountBySurvey(ctx context.Context, surveyID uint) (int64, error)
}

type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	ListBySurvey(ctx context.Context, surveyID uint) ([]*models.Invitation, error)
	MarkSent(ctx context.Context, id uint) error
}

// Repository bundles the per-aggregate repositories.
type Repository interface {
	Survey() SurveyRepository
	Response() ResponseRepository
	Invitation() InvitationRepository
}

// IsNotFoundError reports whether err is the storage layer's record-missing
// condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
