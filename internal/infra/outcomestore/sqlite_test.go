//go:build unit

package outcomestore_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/infra/outcomestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *outcomestore.SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := outcomestore.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, outcomestore.MigrateSQLite(context.Background(), db, logger))
	return outcomestore.NewSQLiteStore(db, logger)
}

func TestSQLiteStore_AppendAndList(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	base := time.Date(2024, 3, 1, 6, 50, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, loanOutcome("0700000001", base, true)))
	require.NoError(t, store.Append(ctx, loanOutcome("0700000002", base.Add(time.Minute), false)))

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	n, err := store.CountOutcomes(ctx, notification.VariantLoanDue, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := store.ListOutcomes(ctx, notification.VariantLoanDue, from, to, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	newest, oldest := rows[0], rows[1]
	assert.Equal(t, "0700000002", newest.Recipient, "newest first")
	assert.Equal(t, "failed", newest.Status)
	assert.False(t, newest.Succeeded)
	require.NotNil(t, newest.ErrorDetail)
	assert.Contains(t, *newest.ErrorDetail, "502")
	assert.Nil(t, newest.ResponseData)

	assert.Equal(t, "success", oldest.Status)
	assert.Equal(t, map[string]any{"status": "queued"}, oldest.ResponseData)
	assert.Equal(t, "Jane", oldest.AccountName)
	assert.Equal(t, "01HRUN", oldest.RunID)
	assert.Equal(t, 1, oldest.Attempt)
	assert.True(t, base.Equal(oldest.CreatedAt))
	assert.Equal(t, map[string]any{"amount_due": 15000.0, "due_date": "2024-03-05"}, oldest.Details)
}

func TestSQLiteStore_ListPaginationAndRange(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	var batch []*notification.Outcome
	for i := range 5 {
		batch = append(batch, loanOutcome(fmt.Sprintf("070000000%d", i), base.Add(time.Duration(i)*time.Hour), true))
	}
	// outside the range
	batch = append(batch, loanOutcome("0799999999", base.AddDate(0, 0, 2), true))
	require.NoError(t, store.AppendBatch(ctx, batch))

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	n, err := store.CountOutcomes(ctx, notification.VariantLoanDue, from, to)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	page, err := store.ListOutcomes(ctx, notification.VariantLoanDue, from, to, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "0700000002", page[0].Recipient)
	assert.Equal(t, "0700000001", page[1].Recipient)

	all, err := store.ListOutcomes(ctx, notification.VariantLoanDue, from, to, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSQLiteStore_AppendBatch_MixedVariants(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	at := time.Date(2024, 7, 1, 7, 20, 0, 0, time.UTC)
	dob := time.Date(1990, 7, 1, 0, 0, 0, 0, time.UTC)

	birthday := notification.NewSuccessOutcome(&notification.Message{
		Variant:   notification.VariantBirthday,
		Channel:   notification.ChannelSMS,
		Recipient: "0700000009",
		Body:      "Happy Birthday",
		Log:       notification.LogFields{AccountName: "John", ClientType: "IND", Date: &dob},
	}, map[string]any{"raw_response": "OK"}, notification.RunInfo{RunID: "r", Attempt: 2}, at)
	custom := notification.NewSuccessOutcome(&notification.Message{
		Variant:   notification.VariantCustomMessage,
		Channel:   notification.ChannelEmail,
		Recipient: "ops@example.com",
		Body:      "Branch closed",
	}, nil, notification.RunInfo{RunID: "r", Attempt: 2}, at)

	require.NoError(t, store.AppendBatch(ctx, []*notification.Outcome{birthday, custom, loanOutcome("1", at, true)}))

	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	rows, err := store.ListOutcomes(ctx, notification.VariantBirthday, from, to, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{"client_type": "IND", "date_of_birth": "1990-07-01"}, rows[0].Details)
	assert.Equal(t, 2, rows[0].Attempt)

	rows, err = store.ListOutcomes(ctx, notification.VariantCustomMessage, from, to, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Details)

	n, err := store.CountOutcomes(ctx, notification.VariantLoanDue, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMigrateSQLite_Idempotent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := outcomestore.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, outcomestore.MigrateSQLite(context.Background(), db, logger))
	require.NoError(t, outcomestore.MigrateSQLite(context.Background(), db, logger))

	var versions int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}
