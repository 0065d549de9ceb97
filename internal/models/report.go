package models

import "time"

// AnalyticsReport is derived from a survey's question schema and its full
// response set. It is never persisted; callers cache it if they need to.
type AnalyticsReport struct {
	SurveyID       uint                `json:"survey_id"`
	TotalResponses int                 `json:"total_responses"`
	Questions      []QuestionAnalytics `json:"questions"`
	GeneratedAt    time.Time           `json:"generated_at"`
}

// QuestionAnalytics carries the per-question statistic whose shape depends on
// the question's semantic type. Exactly one of Choice, Numeric or Text is set
// for the corresponding type family; all are nil for types without analytics.
type QuestionAnalytics struct {
	QuestionID string       `json:"question_id"`
	Type       QuestionType `json:"type"`
	Title      string       `json:"title"`

	// TotalResponses counts responses contributing at least one answer to
	// this question, not the survey-wide response count.
	TotalResponses int `json:"total_responses"`

	// Skipped counts malformed answers excluded from the statistic (for
	// example a non-numeric value on a rating question). Exclusion never
	// fails the report.
	Skipped int `json:"skipped,omitempty"`

	Choice  *ChoiceStats  `json:"choice,omitempty"`
	Numeric *NumericStats `json:"numeric,omitempty"`
	Text    *TextStats    `json:"text,omitempty"`
}

type ChoiceStats struct {
	// Counts maps option label to occurrence count. Multi-choice answers
	// increment several labels, so the sum may exceed TotalResponses.
	Counts map[string]int `json:"counts"`
}

type NumericStats struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	// Distribution maps the exact numeric value, formatted with the shortest
	// round-trip representation, to its occurrence count.
	Distribution map[string]int `json:"distribution"`
}

type TextStats struct {
	TopWords []WordCount `json:"top_words"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}
