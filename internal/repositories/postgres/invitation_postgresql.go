package postgres

import (
	"context"
	"fmt"

	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type InvitationPostgreSQL struct {
	db *gorm.DB
}

func NewInvitationPostgreSQL(db *gorm.DB) repositories.InvitationRepository {
	return &InvitationPostgreSQL{db: db}
}

func (r *InvitationPostgreSQL) Create(ctx context.Context, invitation *models.Invitation) error {
	if err := r.db.WithContext(ctx).Create(invitation).Error; err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (r *InvitationPostgreSQL) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *InvitationPostgreSQL) ListBySurvey(ctx context.Context, surveyID uint) ([]*models.Invitation, error) {
	var invitations []*models.Invitation
	err := r.db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("created_at asc").
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

func (r *InvitationPostgreSQL) MarkSent(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ?", id).
		Update("status", models.InvitationSent).Error
	if err != nil {
		return fmt.Errorf("failed to mark invitation sent: %w", err)
	}
	return nil
}
