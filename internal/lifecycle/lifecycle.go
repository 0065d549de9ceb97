// Package lifecycle owns the survey status state machine: legal transitions,
// the go-live preconditions, and the time-driven transitions that are
// evaluated lazily whenever a survey is observed instead of by a background
// scheduler.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/surveyforge/survey-service/internal/models"
)

// InvalidStateError reports a lifecycle transition that violates a
// precondition. It is returned to the caller verbatim and never retried.
type InvalidStateError struct {
	SurveyID uint
	From     models.SurveyStatus
	To       models.SurveyStatus
	Reason   string
}

func (e *InvalidStateError) Error() string {
	return e.Reason
}

func newInvalidState(s *models.Survey, to models.SurveyStatus, reason string) *InvalidStateError {
	return &InvalidStateError{
		SurveyID: s.ID,
		From:     s.Status,
		To:       to,
		Reason:   reason,
	}
}

// allowedTransitions lists the explicit, user-requested moves. Time-driven
// moves go through Reconcile instead. Archived is terminal.
var allowedTransitions = map[models.SurveyStatus][]models.SurveyStatus{
	models.StatusDraft:     {models.StatusPublished, models.StatusLive, models.StatusClosed, models.StatusArchived},
	models.StatusPublished: {models.StatusDraft, models.StatusLive, models.StatusClosed, models.StatusArchived},
	models.StatusLive:      {models.StatusClosed, models.StatusArchived},
	models.StatusClosed:    {models.StatusLive, models.StatusArchived},
	models.StatusArchived:  {},
}

func transitionAllowed(from, to models.SurveyStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// RequestTransition applies an explicit status change to the survey in place.
// The caller persists the mutated survey. now is the caller's clock reading;
// it keeps date-boundary behavior deterministic under test.
func RequestTransition(survey *models.Survey, target models.SurveyStatus, now time.Time) error {
	if survey.Status == target {
		return nil
	}
	if !transitionAllowed(survey.Status, target) {
		return newInvalidState(survey, target,
			fmt.Sprintf("Cannot transition survey from %s to %s", survey.Status, target))
	}

	switch target {
	case models.StatusPublished:
		survey.Status = models.StatusPublished
		survey.Locked = true
		survey.CloseDate = nil

	case models.StatusDraft:
		// Unpublish keeps the lock but records when distribution stopped.
		closedAt := now
		survey.Status = models.StatusDraft
		survey.CloseDate = &closedAt

	case models.StatusLive:
		if err := ValidateCanGoLive(survey, now); err != nil {
			return err
		}
		// A stale close date from an earlier unpublish or closure must not
		// survive into the new live window.
		survey.Status = models.StatusLive
		survey.Locked = true
		survey.CloseDate = nil

	case models.StatusClosed:
		// Date-driven closure stamps CloseDate in Reconcile; an explicit
		// close leaves it to the caller.
		survey.Status = models.StatusClosed

	case models.StatusArchived:
		// Archival authority lies with the caller; no preconditions here.
		survey.Status = models.StatusArchived
	}

	return nil
}

// ValidateCanGoLive checks the preconditions for entering Live. The start
// date is compared at day granularity so a survey may go live on its
// scheduled start day before the exact time; the end date must still be
// strictly in the future.
func ValidateCanGoLive(survey *models.Survey, now time.Time) error {
	if survey.QuestionCount() == 0 {
		return newInvalidState(survey, models.StatusLive,
			"Cannot go live: Survey must have at least one question")
	}
	if survey.StartDate == nil {
		return newInvalidState(survey, models.StatusLive,
			"Cannot go live: Survey has no start date")
	}
	if startOfDay(*survey.StartDate).After(startOfDay(now)) {
		return newInvalidState(survey, models.StatusLive,
			"Cannot go live before the start date "+survey.StartDate.Format("2006-01-02"))
	}
	if survey.EndDate == nil {
		return newInvalidState(survey, models.StatusLive,
			"Cannot go live: Survey has no end date")
	}
	if !survey.EndDate.After(now) {
		return newInvalidState(survey, models.StatusLive,
			"Cannot go live - survey end date has already passed")
	}
	return nil
}

// Reconcile applies any time-driven transitions the survey should already
// have undergone by now, and reports whether it changed the survey. It is
// idempotent: a second call with the same now is a no-op.
//
// Order matters: an overdue end date closes the survey before a reached
// start date can take it live, and a survey taken live by its start date is
// immediately re-checked against its end date, so one that slept through
// both dates wakes up Closed.
//
// Go-live preconditions are not re-validated here: they held when the survey
// was published with its dates, and a scheduled survey must not wedge in
// Published because of a later schema edit. Reconcile is a total function.
func Reconcile(survey *models.Survey, now time.Time) bool {
	changed := false

	if closeIfOverdue(survey, now) {
		return true
	}

	if survey.Status == models.StatusPublished &&
		survey.StartDate != nil && !survey.StartDate.After(now) {
		survey.Status = models.StatusLive
		survey.Locked = true
		changed = true

		// Both dates may already be in the past.
		closeIfOverdue(survey, now)
	}

	return changed
}

// closeIfOverdue closes a Published or Live survey whose end date has been
// reached, stamping CloseDate with the end date that triggered closure.
func closeIfOverdue(survey *models.Survey, now time.Time) bool {
	if survey.EndDate == nil || survey.EndDate.After(now) {
		return false
	}
	if survey.Status != models.StatusPublished && survey.Status != models.StatusLive {
		return false
	}
	endDate := *survey.EndDate
	survey.Status = models.StatusClosed
	survey.CloseDate = &endDate
	return true
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
