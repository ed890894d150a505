package services

import "fmt"

// ValidationError is client-correctable: the request broke a lending rule.
// Never retried automatically.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

func validationErr(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// StateConflictError means the loan is not in a status that admits the
// requested transition.
type StateConflictError struct {
	Message string `json:"message"`
}

func (e *StateConflictError) Error() string { return e.Message }

func conflictErr(format string, args ...interface{}) *StateConflictError {
	return &StateConflictError{Message: fmt.Sprintf(format, args...)}
}
