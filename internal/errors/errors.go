package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/scc-digitalhub/custom-resource-manager/pkg/types"
)

// PermissionDeniedError represents a caller that may not operate on a resource kind
type PermissionDeniedError struct {
	KindID string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("access to %s is not allowed", e.KindID)
}

func NewPermissionDeniedError(kindID string) *PermissionDeniedError {
	return &PermissionDeniedError{
		KindID: kindID,
	}
}

// NotFoundError represents a missing schema, resource kind or instance
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		Message: message,
	}
}

// InvalidArgumentError represents malformed input such as a kind id without a group
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

func NewInvalidArgumentError(message string) *InvalidArgumentError {
	return &InvalidArgumentError{
		Message: message,
	}
}

// ValidationFailedError carries every schema violation found in a payload
type ValidationFailedError struct {
	Violations []types.Violation
}

func (e *ValidationFailedError) Error() string {
	messages := make([]string, 0, len(e.Violations))
	for _, violation := range e.Violations {
		messages = append(messages, violation.String())
	}
	return "resource validation failed: " + strings.Join(messages, "; ")
}

func NewValidationFailedError(violations []types.Violation) *ValidationFailedError {
	return &ValidationFailedError{
		Violations: violations,
	}
}

// ConflictError represents a concurrent modification reported by the object store
type ConflictError struct {
	Operation string
	Err       error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflicted with a concurrent change: %v", e.Operation, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

func (e *ConflictError) Retryable() bool {
	return true
}

func NewConflictError(operation string, err error) *ConflictError {
	return &ConflictError{
		Operation: operation,
		Err:       err,
	}
}

// TransientError represents a temporary object store failure
type TransientError struct {
	Operation string
	Err       error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s failed temporarily: %v", e.Operation, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func (e *TransientError) Retryable() bool {
	return true
}

func NewTransientError(operation string, err error) *TransientError {
	return &TransientError{
		Operation: operation,
		Err:       err,
	}
}

// CanceledError represents a store call that was canceled or ran out of time
type CanceledError struct {
	Operation string
	Err       error
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("%s was canceled: %v", e.Operation, e.Err)
}

func (e *CanceledError) Unwrap() error {
	return e.Err
}

func NewCanceledError(operation string, err error) *CanceledError {
	return &CanceledError{
		Operation: operation,
		Err:       err,
	}
}

// MarshalingError represents when marshaling or unmarshaling operations fail
type MarshalingError struct {
	Message string
}

func (e *MarshalingError) Error() string {
	return e.Message
}

func NewMarshalingError(message string) *MarshalingError {
	return &MarshalingError{
		Message: message,
	}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsRetryable reports whether the caller may retry the operation unchanged.
func IsRetryable(err error) bool {
	var retryable interface{ Retryable() bool }
	return stderrors.As(err, &retryable) && retryable.Retryable()
}
