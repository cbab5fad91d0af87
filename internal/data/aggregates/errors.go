package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/materials-catalog/internal/data/repos/materials"
	domainagg "github.com/yungbote/materials-catalog/internal/domain/aggregates"
)

var (
	ErrValidation = errors.New("aggregate validation")
	// ErrReference means a referenced row (for example a category) does not exist.
	ErrReference = errors.New("aggregate reference")
	ErrNotFound  = errors.New("aggregate not found")
	ErrConflict  = errors.New("aggregate conflict")
	ErrRetryable = errors.New("aggregate retryable")
	// ErrTransaction marks begin/commit failures reported by the store.
	ErrTransaction = errors.New("aggregate transaction")
)

func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

func ReferenceError(msg string) error {
	return errors.Join(ErrReference, errors.New(strings.TrimSpace(msg)))
}

func NotFoundError(msg string) error {
	return errors.Join(ErrNotFound, errors.New(strings.TrimSpace(msg)))
}

func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// Public text for store constraint failures. The driver message stays in Cause.
const (
	conflictMessage  = "the change conflicts with existing data"
	referenceMessage = "a referenced record does not exist"
)

func storeConflict(op string, err error) error {
	return domainagg.NewError(domainagg.CodeConflict, op, conflictMessage, err)
}

func storeReference(op string, err error) error {
	return domainagg.NewError(domainagg.CodeReference, op, referenceMessage, err)
}

// MapError maps infrastructure/domain failures into aggregate error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case errors.Is(err, ErrReference):
		return domainagg.Wrap(domainagg.CodeReference, op, err)
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, ErrConflict):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case errors.Is(err, ErrRetryable), errors.Is(err, materials.ErrConcurrentInsert):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return storeConflict(op, err) // unique_violation
		case "23503":
			return storeReference(op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return domainagg.Wrap(domainagg.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"):
		return storeConflict(op, err)
	case strings.Contains(msg, "foreign key constraint failed"):
		return storeReference(op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}
	if errors.Is(err, ErrTransaction) {
		return domainagg.Wrap(domainagg.CodeTransaction, op, err)
	}
	return domainagg.Wrap(domainagg.CodeInternal, op, err)
}
