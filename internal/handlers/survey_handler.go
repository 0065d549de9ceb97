package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/services"
	"github.com/surveyforge/survey-service/internal/utils"
)

type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
	validator     *utils.Validator
}

func NewSurveyHandler(
	surveyService services.SurveyService,
	validator *utils.Validator,
	logger utils.Logger,
) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
		validator:     validator,
	}
}

// CreateSurvey creates a new survey in Draft status
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	var req services.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, survey)
}

// GetSurvey retrieves a survey by ID, catching up overdue transitions
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting survey", "survey_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// GetSurveyBySlug retrieves a survey through its public slug. Respondents use
// this route, so it carries no owner check.
func (h *SurveyHandler) GetSurveyBySlug(c *gin.Context) {
	slug := ParseStringParam(c, "slug")
	if slug == "" {
		return
	}

	survey, err := h.surveyService.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// UpdateSurvey updates an existing survey
func (h *SurveyHandler) UpdateSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating survey", "survey_id", id)

	var req services.UpdateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// DeleteSurvey deletes a survey without responses
func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting survey", "survey_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.surveyService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Survey deleted successfully",
	})
}

// ListSurveys lists the caller's surveys with filtering and pagination
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseSurveyFilters(c)

	result, err := h.surveyService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateSurveyStatus requests an explicit lifecycle transition
func (h *SurveyHandler) UpdateSurveyStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating survey status", "survey_id", id, "new_status", req.Status)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.UpdateStatus(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// PublishSurvey moves a Draft survey to Published
func (h *SurveyHandler) PublishSurvey(c *gin.Context) {
	h.transition(c, h.surveyService.Publish)
}

// UnpublishSurvey moves a Published survey back to Draft
func (h *SurveyHandler) UnpublishSurvey(c *gin.Context) {
	h.transition(c, h.surveyService.Unpublish)
}

// GoLiveSurvey moves a survey to Live after validating go-live preconditions
func (h *SurveyHandler) GoLiveSurvey(c *gin.Context) {
	h.transition(c, h.surveyService.GoLive)
}

// CloseSurvey closes a survey to new responses
func (h *SurveyHandler) CloseSurvey(c *gin.Context) {
	h.transition(c, h.surveyService.Close)
}

// ArchiveSurvey moves a survey to its terminal Archived state
func (h *SurveyHandler) ArchiveSurvey(c *gin.Context) {
	h.transition(c, h.surveyService.Archive)
}

func (h *SurveyHandler) transition(c *gin.Context, op func(ctx context.Context, id uint, userID string) (*models.Survey, error)) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	survey, err := op(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

func (h *SurveyHandler) parseSurveyFilters(c *gin.Context) repositories.SurveyFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 10)

	filters := repositories.SurveyFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if status := c.Query("status"); status != "" {
		surveyStatus := models.SurveyStatus(status)
		filters.Status = &surveyStatus
	}

	return filters
}
