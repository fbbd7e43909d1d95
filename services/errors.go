package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow failures so the transport layer can map them
// to response codes without string matching.
type ErrorKind string

const (
	KindForbidden              ErrorKind = "forbidden"
	KindInvalidState           ErrorKind = "invalid_state"
	KindSequenceViolation      ErrorKind = "sequence_violation"
	KindIllegalTransition      ErrorKind = "illegal_transition"
	KindDuplicateReview        ErrorKind = "duplicate_review"
	KindRoundClosed            ErrorKind = "round_closed"
	KindReviewAlreadySubmitted ErrorKind = "review_already_submitted"
	KindNotFound               ErrorKind = "not_found"
)

// WorkflowError carries an error kind plus a human-readable message. All
// validation happens before any write, so a returned WorkflowError implies
// nothing was committed.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
}

func (e *WorkflowError) Error() string {
	return e.Message
}

// Errf builds a WorkflowError with a formatted message.
func Errf(kind ErrorKind, format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the workflow error kind, if err is one.
func KindOf(err error) (ErrorKind, bool) {
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr.Kind, true
	}
	return "", false
}
