package e

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func Wrap(message string, err error) error {
	return fmt.Errorf("%s: %w", message, err)
}

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternal             = errors.New("internal error")
	ErrDeadline             = errors.New("deadline exceeded")
	ErrCanceled             = errors.New("context canceled")
	ErrUniqueViolation      = errors.New("unique violation")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrIgnored              = errors.New("message ignored")
	ErrQueueClosed          = errors.New("queue closed")
	ErrPublishFailed        = errors.New("publish failed")
)

// UnsupportedCode is the failure code replied for actions without a handler.
const UnsupportedCode = -1

// OperationError is the failure signal returned by the request/reply bridge.
type OperationError struct {
	Code    int
	Message string
	Err     error
}

func (o *OperationError) Error() string {
	return fmt.Sprintf("operation failed (%d): %s", o.Code, o.Message)
}

func (o *OperationError) Unwrap() error { return o.Err }

func Unsupported(action string) error {
	return &OperationError{
		Code:    UnsupportedCode,
		Message: "Unsupported operation",
		Err:     fmt.Errorf("action %q: %w", action, ErrUnsupportedOperation),
	}
}


func WrapError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrDeadline)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, ErrCanceled)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, ErrUniqueViolation)
		case "23503", "23514":
			return fmt.Errorf("%s: %w", op, ErrInvalidInput)
		default:
			return fmt.Errorf("%s: pg error %s: %w", op, pgErr.Code, ErrInternal)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrInvalidInput) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %v: %w", op, err, ErrInternal)
}
