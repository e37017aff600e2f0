package content

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("content not found")

// DuplicateIDError reports an id that is already taken in a store.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate content id %q", e.ID)
}

// NotFoundError wraps ErrNotFound with the id that was looked up.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("content %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidFilterError reports a query filter value outside its closed set.
type InvalidFilterError struct {
	Field string
	Value string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid %s filter %q", e.Field, e.Value)
}
