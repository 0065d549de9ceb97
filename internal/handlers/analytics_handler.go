package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/surveyforge/survey-service/internal/services"
	"github.com/surveyforge/survey-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
	exportService    services.ExportService
}

func NewAnalyticsHandler(
	analyticsService services.AnalyticsService,
	exportService services.ExportService,
	logger utils.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
		exportService:    exportService,
	}
}

// GetReport returns the aggregated per-question analytics report
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	h.LogRequest(c, "Getting analytics report", "survey_id", surveyID)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.GetSurveyReport(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportResponses streams the survey's responses as an XLSX workbook
func (h *AnalyticsHandler) ExportResponses(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	h.LogRequest(c, "Exporting survey responses", "survey_id", surveyID)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	workbook, err := h.exportService.ExportSurveyXLSX(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("survey-%d-responses.xlsx", surveyID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		workbook)
}
