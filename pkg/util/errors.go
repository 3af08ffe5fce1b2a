// Package util provides logging, IP helpers, and the error types shared by
// the reconciliation engine.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below unwraps to one of these so
// callers can classify a failed pass with errors.Is.
var (
	ErrPreconditionFailed = errors.New("precondition not met")
	ErrValidationFailed   = errors.New("validation failed")
	ErrInUse              = errors.New("resource in use")
	ErrDependencyMissing  = errors.New("required dependency missing")
	ErrDuplicate          = errors.New("duplicate identity")
	ErrOutOfRange         = errors.New("value out of range")
	ErrConflict           = errors.New("structural conflict")
	ErrUnsupported        = errors.New("unsupported combination")
)

// PreconditionError represents a failed precondition check with context
type PreconditionError struct {
	Operation    string
	Resource     string
	Precondition string
	Details      string
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("precondition failed for %s on %s: %s", e.Operation, e.Resource, e.Precondition)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionFailed
}

// NewPreconditionError creates a new precondition error
func NewPreconditionError(operation, resource, precondition, details string) *PreconditionError {
	return &PreconditionError{
		Operation:    operation,
		Resource:     resource,
		Precondition: precondition,
		Details:      details,
	}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// DependencyError represents a reference to something that does not exist
type DependencyError struct {
	Resource      string
	DependsOn     string
	DependsOnType string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s requires %s '%s' to exist", e.Resource, e.DependsOnType, e.DependsOn)
}

func (e *DependencyError) Unwrap() error {
	return ErrDependencyMissing
}

// NewDependencyError creates a dependency error
func NewDependencyError(resource, dependsOnType, dependsOn string) *DependencyError {
	return &DependencyError{
		Resource:      resource,
		DependsOn:     dependsOn,
		DependsOnType: dependsOnType,
	}
}

// InUseError represents a resource that cannot be claimed because it's in use
type InUseError struct {
	Resource string
	UsedBy   []string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s is in use by: %s", e.Resource, strings.Join(e.UsedBy, ", "))
}

func (e *InUseError) Unwrap() error {
	return ErrInUse
}

// NewInUseError creates an in-use error
func NewInUseError(resource string, usedBy ...string) *InUseError {
	return &InUseError{
		Resource: resource,
		UsedBy:   usedBy,
	}
}

// DuplicateError is raised when the same identity appears twice in one
// configured list.
type DuplicateError struct {
	Kind string
	ID   string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s '%s'", e.Kind, e.ID)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

// NewDuplicateError creates a duplicate identity error
func NewDuplicateError(kind string, id interface{}) *DuplicateError {
	return &DuplicateError{Kind: kind, ID: fmt.Sprint(id)}
}

// RangeError reports a field whose value lies outside its allowed bounds or
// cannot be parsed.
type RangeError struct {
	Resource string
	Field    string
	Value    string
	Bounds   string
}

func (e *RangeError) Error() string {
	msg := fmt.Sprintf("%s: %s %s is invalid", e.Resource, e.Field, e.Value)
	if e.Bounds != "" {
		msg += ", must be " + e.Bounds
	}
	return msg
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// NewRangeError creates a range error
func NewRangeError(resource, field string, value interface{}, bounds string) *RangeError {
	return &RangeError{
		Resource: resource,
		Field:    field,
		Value:    fmt.Sprint(value),
		Bounds:   bounds,
	}
}

// ConflictError reports two pieces of configuration that cannot both hold.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Resource, e.Reason)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a structural conflict error
func NewConflictError(resource, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Resource: resource, Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedError reports a combination of settings the engine refuses.
type UnsupportedError struct {
	Resource string
	Reason   string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported configuration on %s: %s", e.Resource, e.Reason)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// NewUnsupportedError creates an unsupported combination error
func NewUnsupportedError(resource, format string, args ...interface{}) *UnsupportedError {
	return &UnsupportedError{Resource: resource, Reason: fmt.Sprintf(format, args...)}
}
