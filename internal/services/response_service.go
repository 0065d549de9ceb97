package services

import (
	"context"
	"fmt"

	"github.com/surveyforge/survey-service/internal/events"
	"github.com/surveyforge/survey-service/internal/lifecycle"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/utils"
)

type responseService struct {
	repo      repositories.Repository
	analytics AnalyticsService
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
	clock     Clock
}

func NewResponseService(
	repo repositories.Repository,
	analytics AnalyticsService,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
	clock Clock,
) ResponseService {
	return &responseService{
		repo:      repo,
		analytics: analytics,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		clock:     clock,
	}
}

func (s *responseService) SaveDraft(ctx context.Context, surveyID uint, req *SaveResponseRequest) (*models.Response, error) {
	return s.save(ctx, surveyID, req, false)
}

func (s *responseService) Submit(ctx context.Context, surveyID uint, req *SaveResponseRequest) (*models.Response, error) {
	return s.save(ctx, surveyID, req, true)
}

func (s *responseService) save(ctx context.Context, surveyID uint, req *SaveResponseRequest, final bool) (*models.Response, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.acceptingSurvey(ctx, surveyID); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	response, err := s.repo.Response().GetBySurveyAndEmail(ctx, surveyID, req.RespondentEmail)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to load response: %w", err)
		}
		response = &models.Response{
			SurveyID:        surveyID,
			RespondentEmail: req.RespondentEmail,
			StartedAt:       &now,
		}
	}

	// A completed response is immutable; neither auto-save nor a repeat
	// submit may overwrite it.
	if response.Status == models.ResponseCompleted {
		return nil, ErrResponseAlreadyFinal
	}

	response.Answers = req.Answers
	response.Metadata = req.Metadata
	response.Status = models.ResponseInProgress
	if response.StartedAt == nil {
		response.StartedAt = &now
	}
	if final {
		response.Status = models.ResponseCompleted
		response.SubmittedAt = &now
	}

	if err := s.repo.Response().Upsert(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	if final {
		s.logger.Info("Response submitted",
			"survey_id", surveyID,
			"respondent", req.RespondentEmail,
			"answers", len(req.Answers))

		if s.publisher != nil {
			if err := s.publisher.PublishSurveyEvent(ctx, events.EventResponseSubmitted, events.ResponseSubmittedEvent{
				SurveyID:        surveyID,
				ResponseID:      response.ID,
				RespondentEmail: req.RespondentEmail,
				SubmittedAt:     now,
			}); err != nil {
				s.logger.Error("Failed to publish response event", "survey_id", surveyID, "error", err)
			}
		}

		// New data invalidates any cached analytics report.
		if s.analytics != nil {
			if err := s.analytics.InvalidateReport(ctx, surveyID); err != nil {
				s.logger.Error("Failed to invalidate analytics report", "survey_id", surveyID, "error", err)
			}
		}
	}

	return response, nil
}

func (s *responseService) GetByRespondent(ctx context.Context, surveyID uint, email string) (*models.Response, error) {
	if email == "" {
		return nil, ErrRespondentEmailNeeded
	}

	response, err := s.repo.Response().GetBySurveyAndEmail(ctx, surveyID, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return response, nil
}

func (s *responseService) ListBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters, userID string) (*ResponseListResponse, error) {
	survey, err := s.repo.Survey().GetByID(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, surveyID, "responses", "list", "not owner")
	}

	responses, total, err := s.repo.Response().ListBySurvey(ctx, surveyID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	return &ResponseListResponse{
		Responses: responses,
		Total:     total,
		Page:      filters.Offset / max(filters.Limit, 1),
		Size:      filters.Limit,
	}, nil
}

// acceptingSurvey loads the survey, catches up overdue transitions, and
// verifies it is currently taking responses.
func (s *responseService) acceptingSurvey(ctx context.Context, surveyID uint) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetByID(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	previous := survey.Status
	if lifecycle.Reconcile(survey, s.clock.Now()) {
		if _, err := s.repo.Survey().UpdateStatusIf(ctx, survey, previous); err != nil {
			s.logger.Error("Failed to persist reconciled survey",
				"survey_id", survey.ID, "error", err)
		}
	}

	if survey.Status != models.StatusLive {
		return nil, ErrSurveyNotAccepting
	}
	return survey, nil
}
