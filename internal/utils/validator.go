package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/surveyforge/survey-service/internal/errors"
	"github.com/surveyforge/survey-service/internal/models"
)

// Validator wraps go-playground/validator with the service's custom rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate checks struct tags and converts failures to the shared
// ValidationErrors type.
func (v *Validator) Validate(value interface{}) error {
	if err := v.validate.Struct(value); err != nil {
		return errors.ToValidationErrors(err)
	}
	return nil
}

// Custom validation functions

func ValidateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.SingleChoice,
		models.MultiChoice,
		models.Dropdown,
		models.Slider,
		models.RatingStar,
		models.RatingSmiley,
		models.RatingNumber,
		models.TextShort,
		models.TextLong,
		models.DatePicker,
		models.FileUpload,
		models.Email,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateSurveyStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.SurveyStatus{
		models.StatusDraft,
		models.StatusPublished,
		models.StatusLive,
		models.StatusClosed,
		models.StatusArchived,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", ValidateQuestionType)
	validate.RegisterValidation("survey_status", ValidateSurveyStatus)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
