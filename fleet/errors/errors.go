package errors

import "fmt"

// EntityValidationError identifies a malformed input record with enough
// detail to locate it. Computation for the offending record is aborted;
// sibling records continue.
type EntityValidationError struct {
	Err        error
	EntityType string
	EntityID   string
}

func (e *EntityValidationError) Error() string {
	return fmt.Sprintf("invalid %s record %s: %s", e.EntityType, e.EntityID, e.Err)
}

func (e *EntityValidationError) Unwrap() error { return e.Err }

type EntityNotFoundError struct {
	Err        error
	EntityType string
	EntityID   string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("no %s found for id %s: %s", e.EntityType, e.EntityID, e.Err)
}

func (e *EntityNotFoundError) Unwrap() error { return e.Err }
