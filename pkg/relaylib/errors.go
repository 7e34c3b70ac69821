package relaylib

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode marks a submission that could not be parsed as JSON at
	// the transport boundary. It never reaches the validator.
	ErrDecode = errors.New("submission is not valid JSON")

	// ErrUnknownTargetKind is returned when a stored task carries a
	// target kind the dispatcher does not know. With a validated task
	// this cannot happen; it guards future kinds.
	ErrUnknownTargetKind = errors.New("unknown target kind")
)

// ValidationError reports a malformed submission. It names the offending
// field so producers can fix their payloads.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DispatchError reports a failed dispatch attempt. The task stays
// consumed: relayq is fire-once and never re-queues.
type DispatchError struct {
	TaskID string
	Target string
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s to %s: %v", e.TaskID, e.Target, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
