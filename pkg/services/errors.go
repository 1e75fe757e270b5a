// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/formflow/pkg/condition"
	"github.com/dukex/formflow/pkg/palette"
	"github.com/dukex/formflow/pkg/persistence"
	"github.com/dukex/formflow/pkg/schemafield"
	"github.com/dukex/formflow/pkg/stagelist"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest = errors.New("invalid request")
	ErrDefinitionNil  = errors.New("definition cannot be nil")
	ErrItemNotStage   = errors.New("palette item cannot resolve a placeholder")

	// Not Found Errors (404 Not Found).
	ErrDefinitionNotFound = persistence.ErrDefinitionNotFound
	ErrSessionNotFound    = errors.New("no authoring session is open for this definition")

	// Business Logic Conflicts (409 Conflict).
	ErrStageNotEditing = errors.New("stage is not being edited")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
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

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	var opErr *stagelist.OperationError
	if errors.As(err, &opErr) && opErr.Kind == stagelist.KindInvalid {
		return true
	}

	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrDefinitionNil) ||
		errors.Is(err, ErrItemNotStage) ||
		errors.Is(err, persistence.ErrInvalidDefinition) ||
		errors.Is(err, condition.ErrUnsupportedStyle) ||
		errors.Is(err, condition.ErrConditionOutOfRange) ||
		errors.Is(err, condition.ErrKindMismatch) ||
		errors.Is(err, condition.ErrReadOnly) ||
		errors.Is(err, condition.ErrUnknownOption) ||
		errors.Is(err, condition.ErrInvalidComparator) ||
		errors.Is(err, condition.ErrNotTriggerStage) ||
		errors.Is(err, condition.ErrNotApprovalStage) ||
		errors.Is(err, schemafield.ErrInvalidSchema)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, palette.ErrItemNotFound) ||
		errors.Is(err, palette.ErrUnknownGroup)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return stagelist.IsGuarded(err) ||
		stagelist.IsRejected(err) ||
		errors.Is(err, ErrStageNotEditing) ||
		errors.Is(err, condition.ErrModalOpen) ||
		errors.Is(err, condition.ErrDuplicateApprover)
}
