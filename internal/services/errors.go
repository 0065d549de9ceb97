package services

import (
	"errors"
	"fmt"

	apperrors "github.com/surveyforge/survey-service/internal/errors"
	"github.com/surveyforge/survey-service/internal/lifecycle"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")

	// Survey specific errors
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrSurveyAccessDenied = errors.New("access denied to survey")
	ErrSurveyLocked       = errors.New("survey is locked - question schema can no longer be edited")
	ErrSurveyNotDeletable = errors.New("survey cannot be deleted - has existing responses")
	ErrSurveyArchived     = errors.New("survey is archived")

	// Response specific errors
	ErrResponseNotFound      = errors.New("response not found")
	ErrSurveyNotAccepting    = errors.New("survey is not accepting responses")
	ErrResponseAlreadyFinal  = errors.New("response has already been submitted")
	ErrRespondentEmailNeeded = errors.New("respondent email is required")

	// Invitation specific errors
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrInvitationDuplicate = errors.New("respondent already invited to this survey")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID   string `json:"user_id"`
	SurveyID uint   `json:"survey_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.SurveyID, pe.Reason)
}

// ===== ERROR HELPERS =====

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID string, surveyID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		SurveyID: surveyID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSurveyNotFound) ||
		errors.Is(err, ErrResponseNotFound) ||
		errors.Is(err, ErrInvitationNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrSurveyAccessDenied) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsInvalidState checks if error is a rejected lifecycle transition
func IsInvalidState(err error) bool {
	var ise *lifecycle.InvalidStateError
	return errors.As(err, &ise)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSurveyNotDeletable) ||
		errors.Is(err, ErrResponseAlreadyFinal) ||
		errors.Is(err, ErrInvitationDuplicate)
}
