// Package repositories holds the error taxonomy and result types shared by
// the entity repositories.
package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jrazmi/helix/sdk/validation"
)

var (
	ErrNotFound              = errors.New("record not found")
	ErrUniqueViolation       = errors.New("unique constraint violation")
	ErrForeignKeyViolation   = errors.New("referenced record does not exist")
	ErrCheckViolation        = errors.New("check constraint violation")
	ErrVersionConflict       = errors.New("data version conflict")
	ErrManagerCycle          = errors.New("manager assignment would create a cycle")
	ErrTenantMismatch        = errors.New("records belong to different tenants")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrValidation            = errors.New("validation failed")
	ErrEmptyFilter           = errors.New("filter must not be empty")
	ErrNoChanges             = errors.New("no fields to update")
	ErrOperationNotSupported = errors.New("operation not supported")
)

// ConstraintError reports which database constraint rejected a write. It
// unwraps to one of ErrUniqueViolation, ErrForeignKeyViolation or
// ErrCheckViolation.
type ConstraintError struct {
	Kind       error
	Constraint string
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Constraint)
}

func (e *ConstraintError) Unwrap() error {
	return e.Kind
}

// GroupCount is one row of a group-by query. Key is nil for the NULL group.
type GroupCount struct {
	Key   *string `db:"key" json:"key"`
	Count int64   `db:"count" json:"count"`
}

// Aggregate summarises a numeric column. Avg, Min and Max are nil when no
// row has a value.
type Aggregate struct {
	Count int64    `db:"count" json:"count"`
	Avg   *float64 `db:"avg" json:"avg"`
	Min   *float64 `db:"min" json:"min"`
	Max   *float64 `db:"max" json:"max"`
}

// Validate runs struct tag validation and tags failures with ErrValidation.
func Validate(input any) error {
	if err := validation.Check(input); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// CheckID rejects ids that are not UUIDs before they reach the database.
func CheckID(name, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s must be a UUID", ErrValidation, name)
	}
	return nil
}
