// Package services implements the workflow management layer between the HTTP
// surface and the store: validation, activation rules and status transitions.
package services

import (
	"errors"
	"fmt"

	"github.com/nexuslab/vigil/pkg/persistence"
)

// Business logic errors mapped to 4xx responses by the web layer.
var (
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

	ErrWorkflowNil          = errors.New("workflow cannot be nil")
	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrInvalidStatus        = errors.New("invalid workflow status")
	ErrNodesRequired        = errors.New("workflow must have at least one node")
	// ErrTriggerNodeRequired is the activation rule: an active workflow needs
	// at least one configured trigger wired to an action node.
	ErrTriggerNodeRequired = errors.New("workflow must have at least one configured trigger connected to an action")
	ErrInvalidNodeConfig   = errors.New("invalid node configuration")
)

// ServiceError wraps service-level errors with operation context.
type ServiceError struct {
	Op      string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError reports whether err should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrNodesRequired) ||
		errors.Is(err, ErrTriggerNodeRequired) ||
		errors.Is(err, ErrInvalidNodeConfig)
}

// NewValidationError creates a validation error with context.
func NewValidationError(op, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}
