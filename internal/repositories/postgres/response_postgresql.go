package postgres

import (
	"context"
	"fmt"

	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

// Upsert writes a response keyed by (survey_id, respondent_email). The
// conflict target matches the table's unique index so concurrent auto-saves
// for the same respondent collapse into one row.
func (r *ResponsePostgreSQL) Upsert(ctx context.Context, response *models.Response) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "survey_id"}, {Name: "respondent_email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "answers", "started_at", "submitted_at", "metadata", "updated_at",
			}),
		}).
		Create(response).Error
	if err != nil {
		return fmt.Errorf("failed to upsert response: %w", err)
	}
	return nil
}

// GetBySurveyAndEmail retrieves the single response for one respondent
func (r *ResponsePostgreSQL) GetBySurveyAndEmail(ctx context.Context, surveyID uint, email string) (*models.Response, error) {
	var response models.Response
	err := r.db.WithContext(ctx).
		Where("survey_id = ? AND respondent_email = ?", surveyID, email).
		First(&response).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListBySurvey retrieves responses for a survey with pagination
func (r *ResponsePostgreSQL) ListBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Response{}).Where("survey_id = ?", surveyID)

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count responses: %w", err)
	}

	query = query.Order("created_at desc")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var responses []*models.Response
	if err := query.Find(&responses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list responses: %w", err)
	}

	return responses, total, nil
}

// GetAllBySurvey loads the complete response set for aggregation
func (r *ResponsePostgreSQL) GetAllBySurvey(ctx context.Context, surveyID uint) ([]*models.Response, error) {
	var responses []*models.Response
	err := r.db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("created_at asc").
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	return responses, nil
}

// CountBySurvey counts all responses for a survey
func (r *ResponsePostgreSQL) CountBySurvey(ctx context.Context, surveyID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return count, nil
}
