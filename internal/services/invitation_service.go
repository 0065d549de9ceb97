package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/surveyforge/survey-service/internal/events"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/utils"
)

type invitationService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
}

func NewInvitationService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
) InvitationService {
	return &invitationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *invitationService) Invite(ctx context.Context, surveyID uint, req *InviteRequest, userID string) ([]*models.Invitation, error) {
	s.logger.Info("Creating invitations", "survey_id", surveyID, "count", len(req.Emails), "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.ownedSurvey(ctx, surveyID, userID, "invite")
	if err != nil {
		return nil, err
	}
	if survey.Status == models.StatusArchived {
		return nil, ErrSurveyArchived
	}

	invitations := make([]*models.Invitation, 0, len(req.Emails))
	for _, email := range req.Emails {
		invitation := &models.Invitation{
			SurveyID:        surveyID,
			RespondentEmail: strings.ToLower(strings.TrimSpace(email)),
			Token:           strings.ReplaceAll(uuid.NewString(), "-", ""),
			Status:          models.InvitationPending,
			InvitedBy:       userID,
		}

		if err := s.repo.Invitation().Create(ctx, invitation); err != nil {
			// The (survey, email) pair is unique; a duplicate invite for one
			// address does not abort the rest of the batch.
			s.logger.Warn("Skipping duplicate invitation",
				"survey_id", surveyID,
				"email", invitation.RespondentEmail,
				"error", err)
			continue
		}
		invitations = append(invitations, invitation)

		if s.publisher != nil {
			if err := s.publisher.PublishSurveyEvent(ctx, events.EventInvitationCreated, events.InvitationCreatedEvent{
				SurveyID:        surveyID,
				SurveyTitle:     survey.Title,
				InvitationID:    invitation.ID,
				RespondentEmail: invitation.RespondentEmail,
				Token:           invitation.Token,
				InvitedBy:       userID,
			}); err != nil {
				s.logger.Error("Failed to publish invitation event",
					"survey_id", surveyID,
					"invitation_id", invitation.ID,
					"error", err)
				continue
			}

			// The event is on the broker, so the mailer owns delivery now.
			// Pending means the handoff has not happened yet and the batch
			// can be re-invited.
			if err := s.repo.Invitation().MarkSent(ctx, invitation.ID); err != nil {
				s.logger.Error("Failed to mark invitation sent",
					"survey_id", surveyID,
					"invitation_id", invitation.ID,
					"error", err)
				continue
			}
			invitation.Status = models.InvitationSent
		}
	}

	if len(invitations) == 0 {
		return nil, ErrInvitationDuplicate
	}

	s.logger.Info("Invitations created", "survey_id", surveyID, "created", len(invitations))
	return invitations, nil
}

func (s *invitationService) ListBySurvey(ctx context.Context, surveyID uint, userID string) ([]*models.Invitation, error) {
	if _, err := s.ownedSurvey(ctx, surveyID, userID, "list_invitations"); err != nil {
		return nil, err
	}

	invitations, err := s.repo.Invitation().ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

func (s *invitationService) Redeem(ctx context.Context, token string) (*InvitationRedemption, error) {
	invitation, err := s.repo.Invitation().GetByToken(ctx, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	survey, err := s.repo.Survey().GetByID(ctx, invitation.SurveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	return &InvitationRedemption{
		SurveyID:        survey.ID,
		SurveySlug:      survey.Slug,
		SurveyTitle:     survey.Title,
		RespondentEmail: invitation.RespondentEmail,
	}, nil
}

func (s *invitationService) ownedSurvey(ctx context.Context, surveyID uint, userID, action string) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetByID(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, surveyID, "invitations", action, "not owner")
	}
	return survey, nil
}
