package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/surveyforge/survey-service/internal/cache"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/utils"
)

// memoryCache is a map-backed CacheService for tests.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = payload
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func newTestAnalyticsService(repo *MockRepository, cacheService cache.CacheService) AnalyticsService {
	return NewAnalyticsService(repo, cacheService, utils.NewDevelopmentLogger(), fixedClock{now: serviceNow})
}

func ratedSurvey() *models.Survey {
	survey := testSurvey(models.StatusClosed)
	survey.Pages = models.Pages{
		{
			ID: "p1",
			Questions: []models.Question{
				{ID: "q1", Type: models.RatingStar, Title: "Rating"},
			},
		},
	}
	return survey
}

func TestAnalyticsService_GetSurveyReport(t *testing.T) {
	repo := newMockRepository()
	service := newTestAnalyticsService(repo, newMemoryCache())

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(ratedSurvey(), nil)
	repo.responseRepo.On("GetAllBySurvey", mock.Anything, uint(1)).Return([]*models.Response{
		{Answers: models.Answers{{QuestionID: "q1", Value: 4.0}}},
		{Answers: models.Answers{{QuestionID: "q1", Value: 2.0}}},
	}, nil)

	report, err := service.GetSurveyReport(context.Background(), 1, "user-1")

	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalResponses)
	require.Len(t, report.Questions, 1)
	require.NotNil(t, report.Questions[0].Numeric)
	assert.InDelta(t, 3.0, report.Questions[0].Numeric.Avg, 1e-9)
	assert.Equal(t, serviceNow, report.GeneratedAt)
}

func TestAnalyticsService_GetSurveyReport_CachesSecondRead(t *testing.T) {
	repo := newMockRepository()
	service := newTestAnalyticsService(repo, newMemoryCache())

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(ratedSurvey(), nil)
	repo.responseRepo.On("GetAllBySurvey", mock.Anything, uint(1)).Return([]*models.Response{
		{Answers: models.Answers{{QuestionID: "q1", Value: 5.0}}},
	}, nil).Once()

	first, err := service.GetSurveyReport(context.Background(), 1, "user-1")
	require.NoError(t, err)

	second, err := service.GetSurveyReport(context.Background(), 1, "user-1")
	require.NoError(t, err)

	assert.Equal(t, first.TotalResponses, second.TotalResponses)
	repo.responseRepo.AssertNumberOfCalls(t, "GetAllBySurvey", 1)
}

func TestAnalyticsService_InvalidateReport_ForcesRecompute(t *testing.T) {
	repo := newMockRepository()
	memory := newMemoryCache()
	service := newTestAnalyticsService(repo, memory)

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(ratedSurvey(), nil)
	repo.responseRepo.On("GetAllBySurvey", mock.Anything, uint(1)).Return([]*models.Response{
		{Answers: models.Answers{{QuestionID: "q1", Value: 5.0}}},
	}, nil)

	_, err := service.GetSurveyReport(context.Background(), 1, "user-1")
	require.NoError(t, err)

	require.NoError(t, service.InvalidateReport(context.Background(), 1))

	_, err = service.GetSurveyReport(context.Background(), 1, "user-1")
	require.NoError(t, err)

	repo.responseRepo.AssertNumberOfCalls(t, "GetAllBySurvey", 2)
}

func TestAnalyticsService_GetSurveyReport_NotOwner(t *testing.T) {
	repo := newMockRepository()
	service := newTestAnalyticsService(repo, cache.NoopCache{})

	repo.surveyRepo.On("GetByID", mock.Anything, uint(1)).Return(ratedSurvey(), nil)

	_, err := service.GetSurveyReport(context.Background(), 1, "stranger")

	assert.True(t, IsUnauthorized(err))
}
