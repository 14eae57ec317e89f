//go:build unit

package infra_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"pride-notify/internal/infra"

	"github.com/stretchr/testify/assert"
)

func TestWrapRepoErr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cause := errors.New("connection reset")

	err := infra.WrapRepoErr(logger, infra.KindDBFailure, "failed to count loan_due_logs", cause)

	assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	assert.False(t, infra.IsKind(err, infra.KindDuplicateKey))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DB_FAILURE: failed to count loan_due_logs")
	assert.Contains(t, buf.String(), "connection reset")
}

func TestIsKind_OtherError(t *testing.T) {
	assert.False(t, infra.IsKind(errors.New("plain"), infra.KindDBFailure))
	assert.False(t, infra.IsKind(nil, infra.KindDBFailure))
}
