package errors

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("title", "is required", "")

	assert.Equal(t, "title", err.Field)
	assert.Equal(t, "is required", err.Message)
	assert.Equal(t, "", err.Value)
	assert.Equal(t, "validation error on field 'title': is required", err.Error())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("status", "must be a valid survey status", "survey_status", "Running")

	assert.Equal(t, "status", err.Field)
	assert.Equal(t, "survey_status", err.Rule)
	assert.Equal(t, "Running", err.Value)
}

func TestValidationErrors_ErrorString(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("title", "is required", nil))
	assert.Equal(t, "validation failed: title is required", errs.Error())

	errs = append(errs, *NewValidationError("end_date", "must be in the future", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

// newFailingValidator registers the survey-domain rules with always-failing
// implementations so the message mapping can be exercised in isolation.
func newFailingValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	fail := func(fl validator.FieldLevel) bool { return false }
	for _, rule := range []string{"question_type", "survey_status", "future_date"} {
		require.NoError(t, v.RegisterValidation(rule, fail))
	}
	return v
}

func TestToValidationErrors_FriendlyMessages(t *testing.T) {
	type payload struct {
		Title        string `validate:"required"`
		Email        string `validate:"omitempty,email"`
		SortOrder    string `validate:"omitempty,oneof=asc desc"`
		QuestionType string `validate:"omitempty,question_type"`
		Status       string `validate:"omitempty,survey_status"`
		EndDate      string `validate:"omitempty,future_date"`
	}

	v := newFailingValidator(t)
	err := v.Struct(payload{
		Email:        "not-an-email",
		SortOrder:    "sideways",
		QuestionType: "matrix",
		Status:       "Running",
		EndDate:      "2020-01-01",
	})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 6)

	messages := make(map[string]string, len(errs))
	rules := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		messages[fieldErr.Field] = fieldErr.Message
		rules[fieldErr.Field] = fieldErr.Rule
	}

	assert.Equal(t, "is required", messages["Title"])
	assert.Equal(t, "must be a valid email address", messages["Email"])
	assert.Equal(t, "must be one of: asc desc", messages["SortOrder"])
	assert.Contains(t, messages["QuestionType"], "must be a valid question type")
	assert.Contains(t, messages["QuestionType"], "single_choice")
	assert.Equal(t, "must be a valid survey status (Draft, Published, Live, Closed, Archived)", messages["Status"])
	assert.Equal(t, "must be in the future", messages["EndDate"])
	assert.Equal(t, "survey_status", rules["Status"])
	assert.Equal(t, "question_type", rules["QuestionType"])
}

func TestToValidationErrors_ParamMessages(t *testing.T) {
	type payload struct {
		Short string `validate:"min=3"`
		Long  string `validate:"max=5"`
	}

	err := validator.New().Struct(payload{Short: "ab", Long: "too long"})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 2)

	messages := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		messages[fieldErr.Field] = fieldErr.Message
	}

	assert.Equal(t, "must be at least 3", messages["Short"])
	assert.Equal(t, "must be at most 5", messages["Long"])
}

func TestToValidationErrors_UnknownRuleFallsBack(t *testing.T) {
	type payload struct {
		ID string `validate:"uuid"`
	}

	err := validator.New().Struct(payload{ID: "not-a-uuid"})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "validation failed for rule 'uuid'", errs[0].Message)
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	errs := ToValidationErrors(errors.New("connection refused"))

	assert.Empty(t, errs)
}
