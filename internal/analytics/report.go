// Package analytics computes per-question statistics from a survey's question
// schema and its full response set. The computation is pure and request
// scoped: no I/O, no caching, cost proportional to the number of answers plus
// total text length.
//
// Malformed individual answers never fail a report. A bad datum is excluded
// from the affected statistic and tallied on the question's Skipped counter,
// so one pathological response cannot block aggregate reporting.
package analytics

import (
	"strconv"
	"time"

	"github.com/surveyforge/survey-service/internal/models"
)

// ComputeReport builds an AnalyticsReport for one survey. questions must be
// the schema-ordered flattened question list; responses is every stored
// response for the survey, complete or partial.
func ComputeReport(surveyID uint, questions []models.Question, responses []models.Response) *models.AnalyticsReport {
	report := &models.AnalyticsReport{
		SurveyID:       surveyID,
		TotalResponses: len(responses),
		Questions:      make([]models.QuestionAnalytics, 0, len(questions)),
		GeneratedAt:    time.Now(),
	}

	for _, question := range questions {
		report.Questions = append(report.Questions, computeQuestion(question, responses))
	}

	return report
}

func computeQuestion(question models.Question, responses []models.Response) models.QuestionAnalytics {
	qa := models.QuestionAnalytics{
		QuestionID: question.ID,
		Type:       question.Type,
		Title:      question.Title,
	}

	// Gather answers across all responses. A response counts toward this
	// question's total once it contributes at least one answer, regardless
	// of how the value aggregates later.
	var answers []interface{}
	for _, response := range responses {
		contributed := false
		for _, answer := range response.Answers {
			if answer.QuestionID != question.ID {
				continue
			}
			answers = append(answers, answer.Value)
			contributed = true
		}
		if contributed {
			qa.TotalResponses++
		}
	}

	// Closed dispatch over the question type: adding a type means adding a
	// case here.
	switch question.Type {
	case models.SingleChoice, models.MultiChoice, models.Dropdown:
		qa.Choice, qa.Skipped = aggregateChoice(question, answers)
	case models.Slider, models.RatingStar, models.RatingSmiley, models.RatingNumber:
		qa.Numeric, qa.Skipped = aggregateNumeric(answers)
	case models.TextShort, models.TextLong:
		qa.Text, qa.Skipped = aggregateText(answers)
	case models.DatePicker, models.FileUpload, models.Email:
		// Counted bucket only; no further statistics for these types.
	}

	return qa
}

// aggregateChoice counts occurrences per option label. Array values (multi
// choice) contribute one count per element. Raw values matching an option id
// are normalized to that option's label; anything else counts under its own
// string form.
func aggregateChoice(question models.Question, answers []interface{}) (*models.ChoiceStats, int) {
	labels := make(map[string]string, len(question.Options))
	for _, option := range question.Options {
		labels[option.ID] = option.Text
	}

	stats := &models.ChoiceStats{Counts: make(map[string]int)}
	skipped := 0

	count := func(value interface{}) {
		raw, ok := asString(value)
		if !ok || raw == "" {
			skipped++
			return
		}
		if label, found := labels[raw]; found {
			stats.Counts[label]++
			return
		}
		stats.Counts[raw]++
	}

	for _, value := range answers {
		switch v := value.(type) {
		case []interface{}:
			for _, element := range v {
				count(element)
			}
		case []string:
			for _, element := range v {
				count(element)
			}
		case nil:
			// An empty selection contributes nothing but is not anomalous.
		default:
			count(v)
		}
	}

	return stats, skipped
}

func aggregateNumeric(answers []interface{}) (*models.NumericStats, int) {
	stats := &models.NumericStats{Distribution: make(map[string]int)}
	skipped := 0

	var sum float64
	var parsed int

	for _, value := range answers {
		number, ok := asNumber(value)
		if !ok {
			skipped++
			continue
		}
		if parsed == 0 || number < stats.Min {
			stats.Min = number
		}
		if parsed == 0 || number > stats.Max {
			stats.Max = number
		}
		sum += number
		parsed++
		stats.Distribution[formatNumber(number)]++
	}

	if parsed > 0 {
		stats.Avg = sum / float64(parsed)
	}

	return stats, skipped
}

func aggregateText(answers []interface{}) (*models.TextStats, int) {
	var texts []string
	skipped := 0

	for _, value := range answers {
		text, ok := asString(value)
		if !ok {
			skipped++
			continue
		}
		texts = append(texts, text)
	}

	return &models.TextStats{TopWords: TopWords(texts, topWordLimit)}, skipped
}

// asNumber coerces an answer value to float64. JSON numbers decode as
// float64; stored values may also be integers or numeric strings.
func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		number, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return number, true
	default:
		return 0, false
	}
}

func asString(value interface{}) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
