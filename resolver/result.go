package resolver

import (
	"museum-backend/models"
)

// Outcome is the four-way result of a check-in attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota + 1
	OutcomeAlreadyCheckedIn
	OutcomeIncomplete
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAlreadyCheckedIn:
		return "already_checked_in"
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeError:
		return "error"
	}
	return "unknown"
}

// Result is what staff see after a scan. Visitor is set for success and
// already-checked-in; MissingFields and Email only for incomplete; Message
// only for errors.
type Result struct {
	Outcome       Outcome
	Flow          Flow
	Visitor       *models.Visitor
	MissingFields []string
	Email         string
	Message       string
}

func Success(v *models.Visitor) Result {
	return Result{Outcome: OutcomeSuccess, Visitor: v}
}

func AlreadyCheckedIn(v *models.Visitor) Result {
	return Result{Outcome: OutcomeAlreadyCheckedIn, Visitor: v}
}

// Incomplete never carries a visitor, so a half-filled record cannot end up
// on the success panel.
func Incomplete(missing []string, email string) Result {
	return Result{Outcome: OutcomeIncomplete, MissingFields: missing, Email: email}
}

func Failure(message string) Result {
	return Result{Outcome: OutcomeError, Message: message}
}

func (r Result) IsSuccess() bool {
	return r.Outcome == OutcomeSuccess
}

func (r Result) withFlow(f Flow) Result {
	r.Flow = f
	return r
}
