package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by document stores for a missing document.
	ErrNotFound = errors.New("document not found")
	// ErrExamNotFound indicates an unknown exam id.
	ErrExamNotFound = errors.New("exam not found")
	// ErrAttemptNotFound is returned when an attempt has expired or never existed.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAttemptNotStarted is returned for answers given before the exam starts.
	ErrAttemptNotStarted = errors.New("attempt not started")
	// ErrAttemptFinished is returned for changes to a submitted or abandoned attempt.
	ErrAttemptFinished = errors.New("attempt already finished")
	// ErrAttemptNotSubmitted is returned when saving before a score exists.
	ErrAttemptNotSubmitted = errors.New("attempt not submitted")
	// ErrForbidden is returned when a caller acts on someone else's data.
	ErrForbidden = errors.New("forbidden")
	// ErrStudentNotFound indicates no student carries the given identifier.
	ErrStudentNotFound = errors.New("student not found")
	// ErrTeacherNotFound indicates the teacher document is absent.
	ErrTeacherNotFound = errors.New("teacher not found")
	// ErrAlreadyFriends is returned when a request targets an existing friend.
	ErrAlreadyFriends = errors.New("already friends")
	// ErrRequestPending is returned when an identical request is still open.
	ErrRequestPending = errors.New("request already sent")
	// ErrInvalidCredentials is returned on a failed sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when an account already uses the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUnauthenticated is returned for a missing, expired or revoked session.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError reports a bad input field, detected before any store call.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field string, value interface{}, message string) error {
	return ValidationError{Field: field, Value: value, Message: message}
}
