package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a bearer token is missing or rejected.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden is returned when the caller does not own the game.
	ErrForbidden = errors.New("only the game owner can do that")
	// ErrSlugTaken indicates another game already uses the slug.
	ErrSlugTaken = errors.New("slug already exists")
	// ErrGameNotFound indicates no game matches the id or slug.
	ErrGameNotFound = errors.New("game not found")
	// ErrQuestionNotFound indicates a question id is unknown for the game.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrPlayerNotFound is returned when a player row does not exist.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrGameClosed rejects answer submission on a closed game.
	ErrGameClosed = errors.New("game is closed")
	// ErrIncompleteAnswers rejects a bulk submission with unanswered questions.
	ErrIncompleteAnswers = errors.New("every question needs an answer before submitting")
	// ErrNothingToSubmit is returned when no drafted answers are pending.
	ErrNothingToSubmit = errors.New("nothing to submit")
	// ErrAnswerLocked is returned when selecting on a submitted slot without reopening it.
	ErrAnswerLocked = errors.New("answer already submitted")
	// ErrNotDrafted is returned when submitting a slot that has no drafted value.
	ErrNotDrafted = errors.New("answer has no drafted value")
	// ErrNotSubmitted is returned when reopening a slot that was never submitted.
	ErrNotSubmitted = errors.New("answer has not been submitted")
)

// ValidationError reports a bad input field. It is raised before any storage call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// BackendError wraps a failure returned by the storage layer.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Backend wraps err as a BackendError unless it is nil or already wrapped.
func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Op: op, Err: err}
}
