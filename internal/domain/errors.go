package domain

import (
	"errors"
	"fmt"
)

type EntityKind string

const (
	KindAccount      EntityKind = "account"
	KindProfile      EntityKind = "profile"
	KindContent      EntityKind = "content"
	KindTag          EntityKind = "tag"
	KindContentOrTag EntityKind = "content or tag"
)

// ValidationError reports an attribute that failed its schema rule before
// anything was persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// NotFoundError reports a primary or foreign key that resolved to no row.
type NotFoundError struct {
	Kind EntityKind
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Kind)
}

func NotFound(kind EntityKind) error {
	return &NotFoundError{Kind: kind}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// InvalidScopeError reports an unknown scope name on a filtered read.
type InvalidScopeError struct {
	Scope string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("unknown scope %q", e.Scope)
}

// TransactionError wraps a storage-level failure that rolled back a
// composite write. Domain-typed causes pass through unwrapped.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction rolled back: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// HookError reports an afterCreate hook failure. It is logged by the hook
// dispatcher and never returned to the caller of the write that fired it.
type HookError struct {
	Kind EntityKind
	ID   uint
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("afterCreate %s %d: %v", e.Kind, e.ID, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }
