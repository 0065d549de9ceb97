package postgres

import (
	"context"
	"fmt"

	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type SurveyPostgreSQL struct {
	db *gorm.DB
}

func NewSurveyPostgreSQL(db *gorm.DB) repositories.SurveyRepository {
	return &SurveyPostgreSQL{db: db}
}

// Create creates a new survey in Draft status
func (r *SurveyPostgreSQL) Create(ctx context.Context, survey *models.Survey) error {
	survey.Status = models.StatusDraft
	if err := r.db.WithContext(ctx).Create(survey).Error; err != nil {
		return fmt.Errorf("failed to create survey: %w", err)
	}
	return nil
}

// GetByID retrieves a survey by ID
func (r *SurveyPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	if err := r.db.WithContext(ctx).First(&survey, id).Error; err != nil {
		return nil, err
	}
	return &survey, nil
}

// GetBySlug retrieves a survey by its public slug
func (r *SurveyPostgreSQL) GetBySlug(ctx context.Context, slug string) (*models.Survey, error) {
	var survey models.Survey
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&survey).Error; err != nil {
		return nil, err
	}
	return &survey, nil
}

// Update persists the full survey document
func (r *SurveyPostgreSQL) Update(ctx context.Context, survey *models.Survey) error {
	if err := r.db.WithContext(ctx).Save(survey).Error; err != nil {
		return fmt.Errorf("failed to update survey: %w", err)
	}
	return nil
}

// UpdateStatusIf persists lifecycle fields with an atomic conditional write.
func (r *SurveyPostgreSQL) UpdateStatusIf(ctx context.Context, survey *models.Survey, expected models.SurveyStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("id = ? AND status = ?", survey.ID, expected).
		Updates(map[string]interface{}{
			"status":     survey.Status,
			"locked":     survey.Locked,
			"close_date": survey.CloseDate,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update survey status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Delete soft deletes a survey
func (r *SurveyPostgreSQL) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Survey{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}
	return nil
}

// List retrieves surveys matching the filters along with the total count
func (r *SurveyPostgreSQL) List(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Survey{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count surveys: %w", err)
	}

	query = query.Order(buildOrderClause(filters.SortBy, filters.SortOrder))
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var surveys []*models.Survey
	if err := query.Find(&surveys).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list surveys: %w", err)
	}

	return surveys, total, nil
}

// HasResponses reports whether any response rows exist for the survey
func (r *SurveyPostgreSQL) HasResponses(ctx context.Context, surveyID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count responses: %w", err)
	}
	return count > 0, nil
}

func buildOrderClause(sortBy, sortOrder string) string {
	switch sortBy {
	case "title", "start_date", "end_date", "created_at":
	default:
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return sortBy + " " + sortOrder
}
