package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a quiz session has not been started or was ended.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotStarted is returned when a sequencer is used before Initialize.
	ErrSessionNotStarted = errors.New("quiz session not started")
	// ErrQuizComplete is returned when an answer is submitted after the last question.
	ErrQuizComplete = errors.New("quiz already complete")
	// ErrQuizNotComplete is returned when a score is requested for an unfinished session.
	ErrQuizNotComplete = errors.New("quiz not complete")
	// ErrStudentNotFound is returned by student lookups that found no match.
	ErrStudentNotFound = errors.New("student not found")
)

// ValidationError rejects blank or malformed user input before the store is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ParseError reports a question source whose content could not be read.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed read or write against the backing store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsParse reports whether err is (or wraps) a ParseError.
func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}
