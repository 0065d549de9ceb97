package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/surveyforge/survey-service/internal/events"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/utils"
	"gorm.io/gorm"
)

// ===== MOCKS =====

type MockSurveyRepository struct {
	mock.Mock
}

func (m *MockSurveyRepository) Create(ctx context.Context, survey *models.Survey) error {
	args := m.Called(ctx, survey)
	return args.Error(0)
}

func (m *MockSurveyRepository) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Survey), args.Error(1)
}

func (m *MockSurveyRepository) GetBySlug(ctx context.Context, slug string) (*models.Survey, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Survey), args.Error(1)
}

func (m *MockSurveyRepository) Update(ctx context.Context, survey *models.Survey) error {
	args := m.Called(ctx, survey)
	return args.Error(0)
}

func (m *MockSurveyRepository) UpdateStatusIf(ctx context.Context, survey *models.Survey, expected models.SurveyStatus) (bool, error) {
	args := m.Called(ctx, survey, expected)
	return args.Bool(0), args.Error(1)
}

func (m *MockSurveyRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSurveyRepository) List(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Survey), args.Get(1).(int64), args.Error(2)
}

func (m *MockSurveyRepository) HasResponses(ctx context.Context, surveyID uint) (bool, error) {
	args := m.Called(ctx, surveyID)
	return args.Bool(0), args.Error(1)
}

type MockRepository struct {
	surveyRepo     *MockSurveyRepository
	responseRepo   *MockResponseRepository
	invitationRepo *MockInvitationRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		surveyRepo:     &MockSurveyRepository{},
		responseRepo:   &MockResponseRepository{},
		invitationRepo: &MockInvitationRepository{},
	}
}

func (m *MockRepository) Survey() repositories.SurveyRepository         { return m.surveyRepo }
func (m *MockRepository) Response() repositories.ResponseRepository     { return m.responseRepo }
func (m *MockRepository) Invitation() repositories.InvitationRepository { return m.invitationRepo }

// fixedClock pins Now for deterministic date-boundary tests.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var serviceNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestSurveyService(repo *MockRepository, publisher events.EventPublisher) SurveyService {
	return NewSurveyService(
		repo,
		publisher,
		utils.NewDevelopmentLogger(),
		utils.NewValidator(),
		fixedClock{now: serviceNow},
	)
}

func testSurvey(status models.SurveyStatus) *models.Survey {
	return &models.Survey{
		ID:        1,
		Title:     "Quarterly Pulse",
		Slug:      "abc123",
		Status:    status,
		CreatedBy: "user-1",
		Pages: models.Pages{
			{
				ID: "p1",
				Questions: []models.Question{
					{ID: "q1", Type: models.TextShort, Title: "Any comments?"},
				},
			},
		},
	}
}

func timeRef(t time.Time) *time.Time { return &t }

// ===== TESTS =====

func TestSurveyService_Create(t *testing.T) {
	repo := newMockRepository()
	service := newTestSurveyService(repo, nil)

	repo.surveyRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Survey) bool {
		return s.Title == "New Survey" && s.Status == models.StatusDraft &&
			s.CreatedBy == "user-1" && s.Slug != ""
	})).Return(nil)

	survey, err := service.Create(context.Background(), &CreateSurveyRequest{
		Title: "New Survey",
	}, "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, survey.Status)
	assert.False(t, survey.Locked)
	repo.surveyRepo.AssertExpectations(t)
}

func TestSurveyService_Create_ValidationFailure(t *testing.T) {
	repo := newMockRepository()
	service := newTestSurveyService(repo, nil)

	_, err := service.Create(context.Background(), &CreateSurveyRequest{
		Title: "",
	}, "user-1")

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	repo.surveyRepo.AssertNotCalled(t, "Create")
}

func TestSurveyService_GetByID_NotFound(t *testing.T) {
	repo := newMockRepository()
	service := newTestSurveyService(repo, nil)

	repo.surveyRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.GetByID(context.Background(), 99, "user-1")

	assert.ErrorIs(t, err, ErrSurveyNotFound)
}

func TestSurveyService_GetByID_NotOwner(t *testing.T) {
	repo := newMockRepository()
	service := newTestSurveyService(repo, nil)

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(testSurvey(models.StatusDraft), nil)

	_, err := service.GetByID(context.Background(), 1, "someone-else")

	assert.True(t, IsUnauthorized(err))
}

func TestSurveyService_GetByID_ReconcilesAndPersists(t *testing.T) {
	// Published survey whose start date has passed: reading it must take it
	// Live and persist the transition with a conditional write.
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(slog.Default())
	service := newTestSurveyService(repo, publisher)

	survey := testSurvey(models.StatusPublished)
	survey.StartDate = timeRef(serviceNow.Add(-24 * time.Hour))
	survey.EndDate = timeRef(serviceNow.Add(24 * time.Hour))

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(survey, nil)
	repo.surveyRepo.On("UpdateStatusIf", mock.Anything, mock.MatchedBy(func(s *models.Survey) bool {
		return s.Status == models.StatusLive && s.Locked
	}), models.StatusPublished).Return(true, nil)

	got, err := service.GetByID(context.Background(), 1, "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusLive, got.Status)
	repo.surveyRepo.AssertExpectations(t)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSurveyWentLive, published[0].Type)
}

func TestSurveyService_GetByID_LostReconcileRaceSkipsEvent(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(slog.Default())
	service := newTestSurveyService(repo, publisher)

	survey := testSurvey(models.StatusPublished)
	survey.StartDate = timeRef(serviceNow.Add(-24 * time.Hour))
	survey.EndDate = timeRef(serviceNow.Add(24 * time.Hour))

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(survey, nil)
	// Another reader already persisted the transition.
	repo.surveyRepo.On("UpdateStatusIf", mock.Anything, mock.Anything, models.StatusPublished).Return(false, nil)

	got, err := service.GetByID(context.Background(), 1, "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusLive, got.Status)
	assert.Empty(t, publisher.GetPublishedEvents(), "losing the write race must not duplicate the event")
}

func TestSurveyService_Update_PastEndDateClosesImmediately(t *testing.T) {
	// Setting an end date that has already passed closes the survey on the
	// spot; a status change requested alongside is ignored.
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(slog.Default())
	service := newTestSurveyService(repo, publisher)

	survey := testSurvey(models.StatusLive)
	survey.Locked = true
	survey.StartDate = timeRef(serviceNow.Add(-72 * time.Hour))
	survey.EndDate = timeRef(serviceNow.Add(72 * time.Hour))

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(survey, nil)
	repo.surveyRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *models.Survey) bool {
		return s.Status == models.StatusClosed &&
			s.CloseDate != nil && s.CloseDate.Equal(serviceNow.Add(-1*time.Hour))
	})).Return(nil)

	pastEnd := serviceNow.Add(-1 * time.Hour)
	requested := models.StatusDraft
	got, err := service.Update(context.Background(), 1, &UpdateSurveyRequest{
		EndDate: &pastEnd,
		Status:  &requested,
	}, "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, got.Status)
	require.NotNil(t, got.CloseDate)
	assert.Equal(t, pastEnd, *got.CloseDate)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSurveyClosed, published[0].Type)
	payload := published[0].Data.(events.SurveyClosedEvent)
	assert.True(t, payload.DateDriven)
}

func TestSurveyService_Update_LockedPagesRejected(t *testing.T) {
	repo := newMockRepository()
	service := newTestSurveyService(repo, nil)

	survey := testSurvey(models.StatusPublished)
	survey.Locked = true
	survey.StartDate = timeRef(serviceNow.Add(24 * time.Hour))
	survey.EndDate = timeRef(serviceNow.Add(96 * time.Hour))

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(survey, nil)

	pages := models.Pages{{ID: "p2"}}
	_, err := service.Update(context.Background(), 1, &UpdateSurveyRequest{
		Pages: &pages,
	}, "user-1")

	assert.ErrorIs(t, err, ErrSurveyLocked)
	repo.surveyRepo.AssertNotCalled(t, "Update")
}

func TestSurveyService_Update_ArchivedRejected(t *testing.T) {
	repo := newMockRepository()
	service := newTestSurveyService(repo, nil)

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(testSurvey(models.StatusArchived), nil)

	title := "Renamed"
	_, err := service.Update(context.Background(), 1, &UpdateSurveyRequest{
		Title: &title,
	}, "user-1")

	assert.ErrorIs(t, err, ErrSurveyArchived)
}

func TestSurveyService_UpdateStatus_InvalidTransition(t *testing.T) {
	repo := newMockRepository()
	service := newTestSurveyService(repo, nil)

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(testSurvey(models.StatusArchived), nil)

	_, err := service.UpdateStatus(context.Background(), 1, &UpdateStatusRequest{
		Status: models.StatusLive,
	}, "user-1")

	require.Error(t, err)
	assert.True(t, IsInvalidState(err))
	repo.surveyRepo.AssertNotCalled(t, "Update")
}

func TestSurveyService_Publish(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(slog.Default())
	service := newTestSurveyService(repo, publisher)

	survey := testSurvey(models.StatusDraft)
	survey.StartDate = timeRef(serviceNow.Add(24 * time.Hour))
	survey.EndDate = timeRef(serviceNow.Add(96 * time.Hour))

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(survey, nil)
	repo.surveyRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *models.Survey) bool {
		return s.Status == models.StatusPublished && s.Locked
	})).Return(nil)

	got, err := service.Publish(context.Background(), 1, "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, got.Status)
	assert.True(t, got.Locked)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSurveyPublished, published[0].Type)
}

func TestSurveyService_Delete_BlockedByResponses(t *testing.T) {
	repo := newMockRepository()
	service := newTestSurveyService(repo, nil)

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(testSurvey(models.StatusDraft), nil)
	repo.surveyRepo.On("HasResponses", mock.Anything, uint(1)).Return(true, nil)

	err := service.Delete(context.Background(), 1, "user-1")

	assert.ErrorIs(t, err, ErrSurveyNotDeletable)
	repo.surveyRepo.AssertNotCalled(t, "Delete")
}

func TestSurveyService_Delete(t *testing.T) {
	repo := newMockRepository()
	service := newTestSurveyService(repo, nil)

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(testSurvey(models.StatusDraft), nil)
	repo.surveyRepo.On("HasResponses", mock.Anything, uint(1)).Return(false, nil)
	repo.surveyRepo.On("Delete", mock.Anything, uint(1)).Return(nil)

	err := service.Delete(context.Background(), 1, "user-1")

	assert.NoError(t, err)
	repo.surveyRepo.AssertExpectations(t)
}
