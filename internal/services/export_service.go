package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/surveyforge/survey-service/internal/analytics"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

const (
	responsesSheet = "Responses"
	summarySheet   = "Summary"
)

type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportSurveyXLSX writes a workbook with one row per response plus a summary
// sheet mirroring the analytics report.
func (s *exportService) ExportSurveyXLSX(ctx context.Context, surveyID uint, userID string) ([]byte, error) {
	s.logger.Info("Exporting survey responses", "survey_id", surveyID, "user_id", userID)

	survey, err := s.repo.Survey().GetByID(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, surveyID, "export", "read", "not owner")
	}

	stored, err := s.repo.Response().GetAllBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	responses := make([]models.Response, 0, len(stored))
	for _, r := range stored {
		responses = append(responses, *r)
	}

	questions := survey.FlattenQuestions()

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", responsesSheet)
	if err := s.writeResponsesSheet(f, questions, responses); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	report := analytics.ComputeReport(surveyID, questions, responses)
	if err := s.writeSummarySheet(f, report); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Survey export complete",
		"survey_id", surveyID,
		"responses", len(responses),
		"bytes", buf.Len())

	return buf.Bytes(), nil
}

func (s *exportService) writeResponsesSheet(f *excelize.File, questions []models.Question, responses []models.Response) error {
	header := []interface{}{"Respondent", "Status", "Started At", "Submitted At"}
	for _, q := range questions {
		header = append(header, q.Title)
	}
	if err := f.SetSheetRow(responsesSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, response := range responses {
		answers := make(map[string]interface{}, len(response.Answers))
		for _, answer := range response.Answers {
			answers[answer.QuestionID] = answer.Value
		}

		row := []interface{}{
			response.RespondentEmail,
			string(response.Status),
			formatTimePtr(response.StartedAt),
			formatTimePtr(response.SubmittedAt),
		}
		for _, q := range questions {
			row = append(row, formatCellValue(answers[q.ID]))
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(responsesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write response row: %w", err)
		}
	}

	return nil
}

func (s *exportService) writeSummarySheet(f *excelize.File, report *models.AnalyticsReport) error {
	rows := [][]interface{}{
		{"Total Responses", report.TotalResponses},
		{},
		{"Question", "Type", "Responses", "Skipped", "Details"},
	}

	for _, qa := range report.Questions {
		rows = append(rows, []interface{}{
			qa.Title,
			string(qa.Type),
			qa.TotalResponses,
			qa.Skipped,
			summarizeQuestion(qa),
		})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		r := row
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	return nil
}

func summarizeQuestion(qa models.QuestionAnalytics) string {
	switch {
	case qa.Choice != nil:
		parts := make([]string, 0, len(qa.Choice.Counts))
		for label, count := range qa.Choice.Counts {
			parts = append(parts, fmt.Sprintf("%s: %d", label, count))
		}
		return strings.Join(parts, ", ")
	case qa.Numeric != nil:
		return fmt.Sprintf("avg %.2f, min %g, max %g", qa.Numeric.Avg, qa.Numeric.Min, qa.Numeric.Max)
	case qa.Text != nil:
		words := make([]string, 0, min(len(qa.Text.TopWords), 5))
		for i, wc := range qa.Text.TopWords {
			if i == 5 {
				break
			}
			words = append(words, fmt.Sprintf("%s (%d)", wc.Word, wc.Count))
		}
		return strings.Join(words, ", ")
	default:
		return ""
	}
}

func formatCellValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, element := range v {
			parts = append(parts, formatCellValue(element))
		}
		return strings.Join(parts, "; ")
	case []string:
		return strings.Join(v, "; ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
