package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/surveyforge/survey-service/internal/services"
	"github.com/surveyforge/survey-service/internal/utils"
)

type HandlerManager struct {
	surveyHandler     *SurveyHandler
	responseHandler   *ResponseHandler
	analyticsHandler  *AnalyticsHandler
	invitationHandler *InvitationHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		surveyHandler:     NewSurveyHandler(serviceManager.Survey(), validator, logger),
		responseHandler:   NewResponseHandler(serviceManager.Response(), validator, logger),
		analyticsHandler:  NewAnalyticsHandler(serviceManager.Analytics(), serviceManager.Export(), logger),
		invitationHandler: NewInvitationHandler(serviceManager.Invitation(), validator, logger),
	}
}

// SetupRoutes sets up all API routes. authMiddleware guards the creator-facing
// routes; respondent-facing routes stay open.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "survey-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Respondent routes. The slug is the public handle of a survey.
		public := v1.Group("/public")
		{
			public.GET("/surveys/:slug", hm.surveyHandler.GetSurveyBySlug)
			public.GET("/invitations/:token", hm.invitationHandler.RedeemInvitation)
		}
		v1.POST("/surveys/:id/responses/draft", hm.responseHandler.SaveDraft)
		v1.POST("/surveys/:id/responses", hm.responseHandler.SubmitResponse)
		v1.GET("/surveys/:id/responses/mine", hm.responseHandler.GetResponse)

		// Creator routes
		surveys := v1.Group("/surveys", authMiddleware)
		{
			surveys.POST("", hm.surveyHandler.CreateSurvey)
			surveys.GET("", hm.surveyHandler.ListSurveys)
			surveys.GET("/:id", hm.surveyHandler.GetSurvey)
			surveys.PUT("/:id", hm.surveyHandler.UpdateSurvey)
			surveys.DELETE("/:id", hm.surveyHandler.DeleteSurvey)

			// Lifecycle transitions
			surveys.PUT("/:id/status", hm.surveyHandler.UpdateSurveyStatus)
			surveys.POST("/:id/publish", hm.surveyHandler.PublishSurvey)
			surveys.POST("/:id/unpublish", hm.surveyHandler.UnpublishSurvey)
			surveys.POST("/:id/go-live", hm.surveyHandler.GoLiveSurvey)
			surveys.POST("/:id/close", hm.surveyHandler.CloseSurvey)
			surveys.POST("/:id/archive", hm.surveyHandler.ArchiveSurvey)

			// Response management
			surveys.GET("/:id/responses", hm.responseHandler.ListResponses)

			// Analytics and export
			surveys.GET("/:id/report", hm.analyticsHandler.GetReport)
			surveys.GET("/:id/export", hm.analyticsHandler.ExportResponses)

			// Invitations
			surveys.POST("/:id/invitations", hm.invitationHandler.InviteRespondents)
			surveys.GET("/:id/invitations", hm.invitationHandler.ListInvitations)
		}
	}
}
