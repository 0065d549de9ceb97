package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surveyforge/survey-service/internal/analytics"
	"github.com/surveyforge/survey-service/internal/cache"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/utils"
)

const reportCacheTTL = 5 * time.Minute

type analyticsService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger utils.Logger
	clock  Clock
}

func NewAnalyticsService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	logger utils.Logger,
	clock Clock,
) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
		clock:  clock,
	}
}

func (s *analyticsService) GetSurveyReport(ctx context.Context, surveyID uint, userID string) (*models.AnalyticsReport, error) {
	survey, err := s.repo.Survey().GetByID(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, surveyID, "report", "read", "not owner")
	}

	cacheKey := reportCacheKey(surveyID)
	var cached models.AnalyticsReport
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		s.logger.Debug("Analytics report cache hit", "survey_id", surveyID)
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Error("Analytics cache read failed", "survey_id", surveyID, "error", err)
	}

	stored, err := s.repo.Response().GetAllBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	responses := make([]models.Response, 0, len(stored))
	for _, r := range stored {
		responses = append(responses, *r)
	}

	report := analytics.ComputeReport(surveyID, survey.FlattenQuestions(), responses)
	report.GeneratedAt = s.clock.Now()

	if err := s.cache.Set(ctx, cacheKey, report, reportCacheTTL); err != nil {
		s.logger.Error("Analytics cache write failed", "survey_id", surveyID, "error", err)
	}

	s.logger.Info("Analytics report generated",
		"survey_id", surveyID,
		"responses", report.TotalResponses,
		"questions", len(report.Questions))

	return report, nil
}

func (s *analyticsService) InvalidateReport(ctx context.Context, surveyID uint) error {
	return s.cache.Delete(ctx, reportCacheKey(surveyID))
}

func reportCacheKey(surveyID uint) string {
	return fmt.Sprintf("survey:%d:report", surveyID)
}
