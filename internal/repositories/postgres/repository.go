package postgres

import (
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	survey     repositories.SurveyRepository
	response   repositories.ResponseRepository
	invitation repositories.InvitationRepository
}

// NewRepository bundles the PostgreSQL-backed repositories.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		survey:     NewSurveyPostgreSQL(db),
		response:   NewResponsePostgreSQL(db),
		invitation: NewInvitationPostgreSQL(db),
	}
}

func (r *repository) Survey() repositories.SurveyRepository {
	return r.survey
}

func (r *repository) Response() repositories.ResponseRepository {
	return r.response
}

func (r *repository) Invitation() repositories.InvitationRepository {
	return r.invitation
}

// AutoMigrate creates or updates the service's tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Survey{},
		&models.Response{},
		&models.Invitation{},
	)
}
