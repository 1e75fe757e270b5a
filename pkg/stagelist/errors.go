package stagelist

import (
	"errors"
	"fmt"
)

var (
	ErrNilDefinition     = errors.New("workflow definition is nil")
	ErrInvalidIndex      = errors.New("stage index out of range")
	ErrGuardedOperation  = errors.New("trigger and approval stages cannot be moved or deleted")
	ErrEditInProgress    = errors.New("another stage is being edited")
	ErrInsertNotAllowed  = errors.New("a placeholder can only follow the last stage when it is not a placeholder")
	ErrNotPlaceholder    = errors.New("stage is not a placeholder")
	ErrInvalidStage      = errors.New("stage cannot resolve a placeholder")
	ErrNotEditing        = errors.New("stage is not being edited")
	ErrNotEditable       = errors.New("placeholder stages cannot be edited")
	ErrNoTarget          = errors.New("move has no valid target")
	ErrDuplicateApprover = errors.New("approver already present on stage")
	ErrStageReshaped     = errors.New("an edit cannot change a stage's flow type or turn it into a placeholder")
)

// ErrorKind classifies a refused operation.
type ErrorKind int

const (
	// KindInvalid is a request that names something that does not exist.
	KindInvalid ErrorKind = iota + 1
	// KindGuarded is a request that would break a structural rule.
	KindGuarded
	// KindRejected is a request refused because of the current edit state.
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindGuarded:
		return "guarded"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// OperationError reports a refused list operation. The list is left unchanged.
type OperationError struct {
	Op    string
	Kind  ErrorKind
	Index int
	Err   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s stage %d: %v", e.Op, e.Index, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func (e *OperationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsGuarded reports whether err refused a structural change to a fixed stage.
func IsGuarded(err error) bool {
	var opErr *OperationError

	return errors.As(err, &opErr) && opErr.Kind == KindGuarded
}

// IsRejected reports whether err was caused by the edit lock.
func IsRejected(err error) bool {
	var opErr *OperationError

	return errors.As(err, &opErr) && opErr.Kind == KindRejected
}

func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrGuardedOperation), errors.Is(err, ErrInsertNotAllowed), errors.Is(err, ErrDuplicateApprover),
		errors.Is(err, ErrStageReshaped):
		return KindGuarded
	case errors.Is(err, ErrEditInProgress), errors.Is(err, ErrNotEditing):
		return KindRejected
	default:
		return KindInvalid
	}
}
