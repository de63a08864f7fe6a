package weather

import (
	"errors"
	"fmt"
)

// ErrNoRecords is returned by readers when the table holds no matching rows.
var ErrNoRecords = errors.New("no weather records stored")

// FetchError reports a failed request to the forecast API: either the
// request itself failed (Err set, StatusCode zero) or the API answered
// with something other than 200.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("failed to fetch data: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("failed to fetch data: status %d: %v", e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("failed to fetch data: status %d", e.StatusCode)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError reports a payload that lacks an expected field, or carries
// it with an unusable type.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected payload: %s %s", e.Field, e.Reason)
}

// PersistenceError wraps any failure talking to the destination store.
// Op names the statement that failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StageError tags a run failure with the step that produced it.
type StageError struct {
	Step Step
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
