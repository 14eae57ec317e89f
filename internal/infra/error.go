package infra

import (
	"errors"
	"log/slog"

	"pride-notify/internal/pkg/errs"
)

type StoreErrorKind string

// StoreError is returned by outcome stores so callers can tell a broken
// database apart from bad input without importing a driver.
type StoreError struct {
	Kind StoreErrorKind
	msg  string
	err  error
}

func (e StoreError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e StoreError) Unwrap() error {
	return e.err
}

// WrapRepoErr logs the failure once at the store boundary and wraps it with a stack.
func WrapRepoErr(slogger *slog.Logger, kind StoreErrorKind, msg string, err error) error {
	logArgs := []any{slog.String("kind", string(kind))}
	if err != nil {
		logArgs = append(logArgs, slog.String("cause", err.Error()))
		err = errs.Wrap(err, msg)
	}
	slogger.Error("outcome store error: "+msg, logArgs...)

	return StoreError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind StoreErrorKind) bool {
	var e StoreError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

const (
	KindDBFailure    StoreErrorKind = "DB_FAILURE"
	KindDuplicateKey StoreErrorKind = "DUPLICATE_KEY"
)
