package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/services"
	"github.com/surveyforge/survey-service/internal/utils"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
	validator       *utils.Validator
}

func NewResponseHandler(
	responseService services.ResponseService,
	validator *utils.Validator,
	logger utils.Logger,
) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
		validator:       validator,
	}
}

// SaveDraft auto-saves a respondent's in-progress answers
func (h *ResponseHandler) SaveDraft(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	var req services.SaveResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	response, err := h.responseService.SaveDraft(c.Request.Context(), surveyID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SubmitResponse finalizes a respondent's answers
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	h.LogRequest(c, "Submitting response", "survey_id", surveyID)

	var req services.SaveResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	response, err := h.responseService.Submit(c.Request.Context(), surveyID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetResponse returns one respondent's saved response for a survey
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	email := c.Query("respondent_email")

	response, err := h.responseService.GetByRespondent(c.Request.Context(), surveyID, email)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListResponses lists a survey's responses for its owner
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseResponseFilters(c)

	result, err := h.responseService.ListBySurvey(c.Request.Context(), surveyID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ResponseHandler) parseResponseFilters(c *gin.Context) repositories.ResponseFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 10)

	filters := repositories.ResponseFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	if status := c.Query("status"); status != "" {
		responseStatus := models.ResponseStatus(status)
		filters.Status = &responseStatus
	}

	return filters
}
