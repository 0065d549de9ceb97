package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surveyforge/survey-service/internal/models"
)

func choiceQuestion(id string, qt models.QuestionType, options ...string) models.Question {
	q := models.Question{ID: id, Type: qt, Title: "Question " + id}
	for i, text := range options {
		q.Options = append(q.Options, models.Option{
			ID:   id + "-o" + string(rune('1'+i)),
			Text: text,
		})
	}
	return q
}

func responseWith(answers ...models.Answer) models.Response {
	return models.Response{
		Status:  models.ResponseCompleted,
		Answers: answers,
	}
}

func answer(questionID string, value interface{}) models.Answer {
	return models.Answer{QuestionID: questionID, Value: value}
}

// ===== REPORT SHAPE =====

func TestComputeReport_FollowsSchemaOrder(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Type: models.TextShort, Title: "First"},
		{ID: "q2", Type: models.RatingStar, Title: "Second"},
		{ID: "q3", Type: models.SingleChoice, Title: "Third"},
	}

	report := ComputeReport(7, questions, nil)

	assert.Equal(t, uint(7), report.SurveyID)
	assert.Equal(t, 0, report.TotalResponses)
	require.Len(t, report.Questions, 3)
	assert.Equal(t, "q1", report.Questions[0].QuestionID)
	assert.Equal(t, "q2", report.Questions[1].QuestionID)
	assert.Equal(t, "q3", report.Questions[2].QuestionID)
}

func TestComputeReport_IgnoresUnknownQuestionIDs(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Type: models.RatingStar, Title: "Rating"},
	}
	responses := []models.Response{
		responseWith(
			answer("q1", 4.0),
			answer("deleted-question", "stale answer"),
		),
	}

	report := ComputeReport(1, questions, responses)

	require.Len(t, report.Questions, 1)
	assert.Equal(t, 1, report.Questions[0].TotalResponses)
	assert.Equal(t, 0, report.Questions[0].Skipped)
}

func TestComputeReport_PartialResponsesTolerated(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Type: models.RatingStar, Title: "Rating"},
		{ID: "q2", Type: models.TextShort, Title: "Comment"},
	}
	responses := []models.Response{
		responseWith(answer("q1", 5.0), answer("q2", "great product")),
		responseWith(answer("q1", 3.0)), // never reached q2
		{Status: models.ResponseInProgress},
	}

	report := ComputeReport(1, questions, responses)

	assert.Equal(t, 3, report.TotalResponses)
	assert.Equal(t, 2, report.Questions[0].TotalResponses)
	assert.Equal(t, 1, report.Questions[1].TotalResponses)
}

// ===== CHOICE AGGREGATION =====

func TestComputeReport_MultiChoiceCounts(t *testing.T) {
	q := choiceQuestion("q1", models.MultiChoice, "Feature One", "Feature Two", "Feature Three")
	questions := []models.Question{q}

	responses := []models.Response{
		responseWith(answer("q1", []interface{}{"q1-o1", "q1-o2"})),
		responseWith(answer("q1", []interface{}{"q1-o1", "q1-o2", "q1-o3"})),
		responseWith(answer("q1", []interface{}{"q1-o1", "q1-o3"})),
		responseWith(answer("q1", []interface{}{"q1-o2"})),
		// An empty selection still counts as a response to the question.
		responseWith(answer("q1", []interface{}{})),
	}

	report := ComputeReport(1, questions, responses)

	qa := report.Questions[0]
	require.NotNil(t, qa.Choice)
	assert.Equal(t, map[string]int{
		"Feature One":   3,
		"Feature Two":   3,
		"Feature Three": 2,
	}, qa.Choice.Counts)
	assert.Equal(t, 5, qa.TotalResponses)
	assert.Equal(t, 0, qa.Skipped)
}

func TestComputeReport_SingleChoiceNormalizesOptionIDs(t *testing.T) {
	q := choiceQuestion("q1", models.SingleChoice, "Yes", "No")
	responses := []models.Response{
		responseWith(answer("q1", "q1-o1")),
		responseWith(answer("q1", "q1-o1")),
		responseWith(answer("q1", "q1-o2")),
		// A value that is no known option id counts under its raw form.
		responseWith(answer("q1", "write-in")),
	}

	report := ComputeReport(1, []models.Question{q}, responses)

	qa := report.Questions[0]
	require.NotNil(t, qa.Choice)
	assert.Equal(t, 2, qa.Choice.Counts["Yes"])
	assert.Equal(t, 1, qa.Choice.Counts["No"])
	assert.Equal(t, 1, qa.Choice.Counts["write-in"])
}

func TestComputeReport_ChoiceBadValuesSkipped(t *testing.T) {
	q := choiceQuestion("q1", models.Dropdown, "Red", "Blue")
	responses := []models.Response{
		responseWith(answer("q1", "q1-o1")),
		responseWith(answer("q1", 42.0)),
		responseWith(answer("q1", nil)),
	}

	report := ComputeReport(1, []models.Question{q}, responses)

	qa := report.Questions[0]
	assert.Equal(t, 1, qa.Choice.Counts["Red"])
	assert.Equal(t, 1, qa.Skipped, "non-string choice value is skipped")
	assert.Equal(t, 3, qa.TotalResponses, "nil selection still counts as a response")
}

// ===== NUMERIC AGGREGATION =====

func TestComputeReport_NumericStats(t *testing.T) {
	q := models.Question{ID: "q1", Type: models.Slider, Title: "Score"}
	responses := []models.Response{
		responseWith(answer("q1", 8.0)),
		responseWith(answer("q1", 10.0)),
		responseWith(answer("q1", 2.0)),
		responseWith(answer("q1", 6.0)),
		responseWith(answer("q1", 7.0)),
		responseWith(answer("q1", "not-a-number")),
	}

	report := ComputeReport(1, []models.Question{q}, responses)

	qa := report.Questions[0]
	require.NotNil(t, qa.Numeric)
	assert.InDelta(t, 6.6, qa.Numeric.Avg, 1e-9)
	assert.Equal(t, 2.0, qa.Numeric.Min)
	assert.Equal(t, 10.0, qa.Numeric.Max)
	assert.Equal(t, 1, qa.Skipped, "unparseable value excluded from stats but tallied")
	assert.Equal(t, 6, qa.TotalResponses)
}

func TestComputeReport_NumericDistribution(t *testing.T) {
	q := models.Question{ID: "q1", Type: models.RatingNumber, Title: "NPS"}
	responses := []models.Response{
		responseWith(answer("q1", 9.0)),
		responseWith(answer("q1", 9.0)),
		responseWith(answer("q1", 7.0)),
		responseWith(answer("q1", "9")), // numeric string coerces
		responseWith(answer("q1", 7.5)),
	}

	report := ComputeReport(1, []models.Question{q}, responses)

	qa := report.Questions[0]
	require.NotNil(t, qa.Numeric)
	assert.Equal(t, map[string]int{
		"9":   3,
		"7":   1,
		"7.5": 1,
	}, qa.Numeric.Distribution)
	assert.Equal(t, 0, qa.Skipped)
}

func TestComputeReport_NumericAllBadValues(t *testing.T) {
	q := models.Question{ID: "q1", Type: models.RatingSmiley, Title: "Mood"}
	responses := []models.Response{
		responseWith(answer("q1", "happy")),
		responseWith(answer("q1", map[string]interface{}{"oops": true})),
	}

	report := ComputeReport(1, []models.Question{q}, responses)

	qa := report.Questions[0]
	require.NotNil(t, qa.Numeric)
	assert.Equal(t, 0.0, qa.Numeric.Avg)
	assert.Equal(t, 0.0, qa.Numeric.Min)
	assert.Equal(t, 0.0, qa.Numeric.Max)
	assert.Empty(t, qa.Numeric.Distribution)
	assert.Equal(t, 2, qa.Skipped)
}

// ===== TEXT AGGREGATION =====

func TestComputeReport_TextTopWords(t *testing.T) {
	q := models.Question{ID: "q1", Type: models.TextLong, Title: "Feedback"}
	responses := []models.Response{
		responseWith(answer("q1", "The delivery was fast and the packaging was great")),
		responseWith(answer("q1", "Fast delivery, great support")),
		responseWith(answer("q1", 123.0)), // not text
	}

	report := ComputeReport(1, []models.Question{q}, responses)

	qa := report.Questions[0]
	require.NotNil(t, qa.Text)
	assert.Equal(t, 1, qa.Skipped)

	words := make(map[string]int, len(qa.Text.TopWords))
	for _, wc := range qa.Text.TopWords {
		words[wc.Word] = wc.Count
	}
	assert.Equal(t, 2, words["delivery"])
	assert.Equal(t, 2, words["fast"])
	assert.Equal(t, 2, words["great"])
	assert.NotContains(t, words, "the")
	assert.NotContains(t, words, "and")
	assert.NotContains(t, words, "was")
}

// ===== UNSUPPORTED / PASS-THROUGH TYPES =====

func TestComputeReport_CountedOnlyTypes(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Type: models.DatePicker, Title: "Date"},
		{ID: "q2", Type: models.FileUpload, Title: "Attachment"},
		{ID: "q3", Type: models.Email, Title: "Contact"},
	}
	responses := []models.Response{
		responseWith(
			answer("q1", "2025-06-01"),
			answer("q2", "report.pdf"),
			answer("q3", "user@example.com"),
		),
	}

	report := ComputeReport(1, questions, responses)

	for _, qa := range report.Questions {
		assert.Equal(t, 1, qa.TotalResponses)
		assert.Nil(t, qa.Choice)
		assert.Nil(t, qa.Numeric)
		assert.Nil(t, qa.Text)
		assert.Equal(t, 0, qa.Skipped)
	}
}
