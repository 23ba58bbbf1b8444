package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when no record has the requested id.
var ErrNotFound = errors.New("employee not found")

const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// NotFoundError reports a missing record. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("employee %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FetchError wraps a transport or store failure on a read.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to %s employees: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError wraps a transport or store failure on a mutation.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to %s employee: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ValidationError is returned for input rejected before reaching the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
