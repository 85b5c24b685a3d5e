package controller

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every error returned by the reconciliation core matches one
// of them with errors.Is.
var (
	ErrValidation    = errors.New("validation error")
	ErrAuthorization = errors.New("authorization error")
	ErrSecret        = errors.New("secret error")
	ErrApply         = errors.New("apply error")
	ErrDelete        = errors.New("delete error")
)

// Step names a reconciliation step, as reported in the status message.
type Step string

const (
	StepValidation    Step = "validation"
	StepAuthorization Step = "authorization"
	StepSecret        Step = "secret"
	StepContainers    Step = "containers"
	StepStatefulSet   Step = "statefulset"
	StepService       Step = "service"
)

// StepError is the failure of one reconciliation step.
type StepError struct {
	Step  Step
	Class error
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("failed at %s: %v", e.Step, e.Err)
}

// Unwrap exposes both the class and the cause.
func (e *StepError) Unwrap() []error {
	return []error{e.Class, e.Err}
}

func stepError(step Step, class, err error) *StepError {
	return &StepError{Step: step, Class: class, Err: err}
}

// IsPermanent tells whether retrying with the same spec cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrValidation)
}

// DeleteError is a teardown that stopped at the first failing delete.
type DeleteError struct {
	// Deleted holds the objects removed, or found already absent, before the failure.
	Deleted []string
	// Pending holds the object that failed followed by the ones not attempted.
	Pending []string
	Err     error
}

func (e *DeleteError) Error() string {
	failed := ""
	if len(e.Pending) > 0 {
		failed = e.Pending[0]
	}

	return fmt.Sprintf("failed at deleting %s: %v (deleted: [%s], pending: [%s])",
		failed, e.Err, strings.Join(e.Deleted, ", "), strings.Join(e.Pending, ", "))
}

func (e *DeleteError) Unwrap() []error {
	return []error{ErrDelete, e.Err}
}
