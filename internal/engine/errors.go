package engine

import (
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
)

var (
	// ErrNotFound is returned when no workflow execution exists for the case id
	ErrNotFound = errors.New("workflow execution not found")

	// ErrAlreadyExists is returned when a start targets an id that is still active
	ErrAlreadyExists = errors.New("workflow execution already exists")

	// ErrUnavailable is returned when no engine connection handle exists
	ErrUnavailable = errors.New("workflow engine is not available")

	// ErrRemote wraps any other transport or service level failure
	ErrRemote = errors.New("workflow engine error")
)

// translateError maps Temporal service errors onto the adapter's sentinel
// errors. Remote diagnostics are preserved for logging but callers branch on
// the sentinels only.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return ErrNotFound
	}

	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &alreadyStarted) {
		return ErrAlreadyExists
	}

	return fmt.Errorf("%w: %v", ErrRemote, err)
}
