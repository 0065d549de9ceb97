package services

import (
	"github.com/surveyforge/survey-service/internal/cache"
	"github.com/surveyforge/survey-service/internal/events"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/utils"
)

type serviceManager struct {
	survey     SurveyService
	response   ResponseService
	analytics  AnalyticsService
	invitation InvitationService
	export     ExportService
}

// NewServiceManager wires every service against the shared repository bundle,
// event publisher and cache.
func NewServiceManager(
	repo repositories.Repository,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	logger utils.Logger,
	validator *utils.Validator,
	clock Clock,
) ServiceManager {
	if clock == nil {
		clock = SystemClock()
	}

	analyticsService := NewAnalyticsService(repo, cacheService, logger, clock)

	return &serviceManager{
		survey:     NewSurveyService(repo, publisher, logger, validator, clock),
		response:   NewResponseService(repo, analyticsService, publisher, logger, validator, clock),
		analytics:  analyticsService,
		invitation: NewInvitationService(repo, publisher, logger, validator),
		export:     NewExportService(repo, logger),
	}
}

func (m *serviceManager) Survey() SurveyService         { return m.survey }
func (m *serviceManager) Response() ResponseService     { return m.response }
func (m *serviceManager) Analytics() AnalyticsService   { return m.analytics }
func (m *serviceManager) Invitation() InvitationService { return m.invitation }
func (m *serviceManager) Export() ExportService         { return m.export }
