package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/surveyforge/survey-service/internal/events"
	"github.com/surveyforge/survey-service/internal/lifecycle"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/utils"
)

type surveyService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
	clock     Clock
}

func NewSurveyService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
	clock Clock,
) SurveyService {
	return &surveyService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		clock:     clock,
	}
}

// ===== CRUD =====

func (s *surveyService) Create(ctx context.Context, req *CreateSurveyRequest, creatorID string) (*models.Survey, error) {
	s.logger.Info("Creating survey", "creator_id", creatorID, "title", req.Title)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey := &models.Survey{
		Title:       req.Title,
		Description: req.Description,
		Slug:        newSlug(),
		Status:      models.StatusDraft,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Pages:       req.Pages,
		Settings:    req.Settings,
		CreatedBy:   creatorID,
	}

	if err := s.repo.Survey().Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}

	s.logger.Info("Survey created successfully", "survey_id", survey.ID)
	return survey, nil
}

func (s *surveyService) GetByID(ctx context.Context, id uint, userID string) (*models.Survey, error) {
	survey, err := s.loadAndReconcile(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canAccess(survey, userID) {
		return nil, NewPermissionError(userID, id, "survey", "read", "not owner")
	}

	return survey, nil
}

func (s *surveyService) GetBySlug(ctx context.Context, slug string) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetBySlug(ctx, slug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	s.reconcile(ctx, survey)
	return survey, nil
}

func (s *surveyService) Update(ctx context.Context, id uint, req *UpdateSurveyRequest, userID string) (*models.Survey, error) {
	s.logger.Info("Updating survey", "survey_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// Catch up on any overdue time-driven transitions before touching the
	// document, so the update is applied against its current state.
	survey, err := s.loadAndReconcile(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canAccess(survey, userID) {
		return nil, NewPermissionError(userID, id, "survey", "update", "not owner")
	}
	if survey.Status == models.StatusArchived {
		return nil, ErrSurveyArchived
	}

	now := s.clock.Now()

	// Supplying an already-passed end date closes the survey on the spot.
	// Every other requested change, including a status field in the same
	// request, is ignored on this path.
	if req.EndDate != nil && !req.EndDate.After(now) &&
		(survey.Status == models.StatusPublished || survey.Status == models.StatusLive) {
		endDate := *req.EndDate
		previous := survey.Status
		survey.EndDate = &endDate
		survey.Status = models.StatusClosed
		survey.CloseDate = &endDate

		if err := s.repo.Survey().Update(ctx, survey); err != nil {
			return nil, fmt.Errorf("failed to close survey: %w", err)
		}
		s.publishLifecycleEvent(ctx, survey, previous, true)
		return survey, nil
	}

	if req.Title != nil {
		survey.Title = *req.Title
	}
	if req.Description != nil {
		survey.Description = req.Description
	}
	if req.StartDate != nil {
		survey.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		survey.EndDate = req.EndDate
	}
	if req.Pages != nil {
		if survey.Locked {
			return nil, ErrSurveyLocked
		}
		survey.Pages = *req.Pages
	}
	if req.Settings != nil {
		survey.Settings = req.Settings
	}

	previous := survey.Status
	if req.Status != nil && *req.Status != survey.Status {
		if err := lifecycle.RequestTransition(survey, *req.Status, now); err != nil {
			return nil, err
		}
	}

	// Date edits may themselves make a time-driven transition due.
	lifecycle.Reconcile(survey, now)

	if err := s.repo.Survey().Update(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}

	if survey.Status != previous {
		s.publishLifecycleEvent(ctx, survey, previous, req.Status == nil)
	}

	s.logger.Info("Survey updated successfully", "survey_id", id, "status", survey.Status)
	return survey, nil
}

func (s *surveyService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting survey", "survey_id", id, "user_id", userID)

	survey, err := s.getSurvey(ctx, id)
	if err != nil {
		return err
	}
	if !s.canAccess(survey, userID) {
		return NewPermissionError(userID, id, "survey", "delete", "not owner")
	}

	hasResponses, err := s.repo.Survey().HasResponses(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check responses: %w", err)
	}
	if hasResponses {
		return ErrSurveyNotDeletable
	}

	if err := s.repo.Survey().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}

	s.logger.Info("Survey deleted successfully", "survey_id", id)
	return nil
}

func (s *surveyService) List(ctx context.Context, filters repositories.SurveyFilters, userID string) (*SurveyListResponse, error) {
	// Creators only see their own surveys.
	filters.CreatedBy = &userID

	surveys, total, err := s.repo.Survey().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}

	// Listed surveys get the same catch-up treatment as single reads so a
	// dashboard never shows a survey that should already be Live or Closed.
	for _, survey := range surveys {
		s.reconcile(ctx, survey)
	}

	return &SurveyListResponse{
		Surveys: surveys,
		Total:   total,
		Page:    filters.Offset / max(filters.Limit, 1),
		Size:    filters.Limit,
	}, nil
}

// ===== STATUS MANAGEMENT =====

func (s *surveyService) UpdateStatus(ctx context.Context, id uint, req *UpdateStatusRequest, userID string) (*models.Survey, error) {
	s.logger.Info("Updating survey status", "survey_id", id, "new_status", req.Status, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.loadAndReconcile(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canAccess(survey, userID) {
		return nil, NewPermissionError(userID, id, "survey", "update_status", "not owner")
	}

	previous := survey.Status
	if err := lifecycle.RequestTransition(survey, req.Status, s.clock.Now()); err != nil {
		return nil, err
	}

	if survey.Status != previous {
		if err := s.repo.Survey().Update(ctx, survey); err != nil {
			return nil, fmt.Errorf("failed to update survey status: %w", err)
		}
		s.publishLifecycleEvent(ctx, survey, previous, false)
	}

	s.logger.Info("Survey status updated successfully",
		"survey_id", id,
		"new_status", survey.Status,
		"reason", req.Reason)

	return survey, nil
}

func (s *surveyService) Publish(ctx context.Context, id uint, userID string) (*models.Survey, error) {
	return s.UpdateStatus(ctx, id, &UpdateStatusRequest{Status: models.StatusPublished}, userID)
}

func (s *surveyService) Unpublish(ctx context.Context, id uint, userID string) (*models.Survey, error) {
	return s.UpdateStatus(ctx, id, &UpdateStatusRequest{Status: models.StatusDraft}, userID)
}

func (s *surveyService) GoLive(ctx context.Context, id uint, userID string) (*models.Survey, error) {
	return s.UpdateStatus(ctx, id, &UpdateStatusRequest{Status: models.StatusLive}, userID)
}

func (s *surveyService) Close(ctx context.Context, id uint, userID string) (*models.Survey, error) {
	now := s.clock.Now()
	survey, err := s.UpdateStatus(ctx, id, &UpdateStatusRequest{Status: models.StatusClosed}, userID)
	if err != nil {
		return nil, err
	}
	// Explicit closure stamps the moment the user asked for it.
	if survey.CloseDate == nil {
		survey.CloseDate = &now
		if err := s.repo.Survey().Update(ctx, survey); err != nil {
			return nil, fmt.Errorf("failed to stamp close date: %w", err)
		}
	}
	return survey, nil
}

func (s *surveyService) Archive(ctx context.Context, id uint, userID string) (*models.Survey, error) {
	return s.UpdateStatus(ctx, id, &UpdateStatusRequest{Status: models.StatusArchived}, userID)
}

// ===== HELPERS =====

func (s *surveyService) getSurvey(ctx context.Context, id uint) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	return survey, nil
}

func (s *surveyService) loadAndReconcile(ctx context.Context, id uint) (*models.Survey, error) {
	survey, err := s.getSurvey(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reconcile(ctx, survey)
	return survey, nil
}

// reconcile runs the lazy catch-up evaluator and persists any transition it
// fired with a conditional write. Losing the write race is fine: another
// reader already persisted the same converged state.
func (s *surveyService) reconcile(ctx context.Context, survey *models.Survey) {
	previous := survey.Status
	if !lifecycle.Reconcile(survey, s.clock.Now()) {
		return
	}

	won, err := s.repo.Survey().UpdateStatusIf(ctx, survey, previous)
	if err != nil {
		s.logger.Error("Failed to persist reconciled survey",
			"survey_id", survey.ID,
			"from", previous,
			"to", survey.Status,
			"error", err)
		return
	}
	if won {
		s.publishLifecycleEvent(ctx, survey, previous, true)
	}
}

func (s *surveyService) canAccess(survey *models.Survey, userID string) bool {
	return survey.CreatedBy == userID
}

func (s *surveyService) publishLifecycleEvent(ctx context.Context, survey *models.Survey, previous models.SurveyStatus, dateDriven bool) {
	if s.publisher == nil {
		return
	}

	now := s.clock.Now()
	var err error

	switch survey.Status {
	case models.StatusPublished:
		err = s.publisher.PublishSurveyEvent(ctx, events.EventSurveyPublished, events.SurveyPublishedEvent{
			SurveyID:    survey.ID,
			SurveyTitle: survey.Title,
			StartDate:   survey.StartDate,
			EndDate:     survey.EndDate,
			CreatedBy:   survey.CreatedBy,
		})
	case models.StatusLive:
		var endDate = now
		if survey.EndDate != nil {
			endDate = *survey.EndDate
		}
		err = s.publisher.PublishSurveyEvent(ctx, events.EventSurveyWentLive, events.SurveyWentLiveEvent{
			SurveyID:    survey.ID,
			SurveyTitle: survey.Title,
			WentLiveAt:  now,
			EndDate:     endDate,
		})
	case models.StatusClosed:
		closedAt := now
		if survey.CloseDate != nil {
			closedAt = *survey.CloseDate
		}
		err = s.publisher.PublishSurveyEvent(ctx, events.EventSurveyClosed, events.SurveyClosedEvent{
			SurveyID:    survey.ID,
			SurveyTitle: survey.Title,
			ClosedAt:    closedAt,
			DateDriven:  dateDriven,
		})
	case models.StatusArchived:
		err = s.publisher.PublishSurveyEvent(ctx, events.EventSurveyArchived, events.SurveyArchivedEvent{
			SurveyID:    survey.ID,
			SurveyTitle: survey.Title,
			ArchivedAt:  now,
		})
	}

	if err != nil {
		// Event delivery is best effort; the state change already happened.
		s.logger.Error("Failed to publish lifecycle event",
			"survey_id", survey.ID,
			"from", previous,
			"to", survey.Status,
			"error", err)
	}
}

func newSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
