//go:build unit

package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/queries"
	querymock "pride-notify/internal/usecase/queries/mock"
	"pride-notify/internal/usecase/readmodel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var kampala = time.FixedZone("EAT", 3*60*60)

func TestOutcomeQueries_ParseRange(t *testing.T) {
	q := queries.NewOutcomeQueries(nil, kampala)

	r, err := q.ParseRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, kampala), r.Start)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, kampala), r.End)

	tests := []struct {
		name       string
		start, end string
	}{
		{"missing start", "", "2024-03-31"},
		{"missing end", "2024-03-01", " "},
		{"bad format", "01/03/2024", "2024-03-31"},
		{"bad end format", "2024-03-01", "2024-13-01"},
		{"reversed", "2024-03-02", "2024-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := q.ParseRange(tt.start, tt.end)
			assert.True(t, errs.Is(err, errs.ErrInvalidDateRange), "got %v", err)
		})
	}
}

func TestOutcomeQueries_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := querymock.NewMockOutcomeLogReadStore(ctrl)
	q := queries.NewOutcomeQueries(store, kampala)

	r, err := q.ParseRange("2024-03-01", "2024-03-01")
	require.NoError(t, err)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, kampala)
	to := time.Date(2024, 3, 2, 0, 0, 0, 0, kampala)

	rows := []*readmodel.OutcomeLogRM{{Recipient: "0700000003"}, {Recipient: "0700000002"}}
	store.EXPECT().CountOutcomes(gomock.Any(), notification.VariantLoanDue, from, to).Return(23, nil)
	store.EXPECT().ListOutcomes(gomock.Any(), notification.VariantLoanDue, from, to, 10, 10).Return(rows, nil)

	page, err := q.List(context.Background(), "loan_due", r, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 23, page.Count)
	assert.Equal(t, rows, page.Logs)
	assert.Equal(t, queries.Pagination{TotalPages: 3, CurrentPage: 2, PerPage: 10, TotalRecords: 23}, page.Pagination)
}

func TestOutcomeQueries_List_PastLastPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := querymock.NewMockOutcomeLogReadStore(ctrl)
	q := queries.NewOutcomeQueries(store, time.UTC)

	r, _ := q.ParseRange("2024-03-01", "2024-03-01")
	store.EXPECT().CountOutcomes(gomock.Any(), notification.VariantBirthday, gomock.Any(), gomock.Any()).Return(3, nil)

	page, err := q.List(context.Background(), "birthday", r, 9, 500)
	require.NoError(t, err)
	assert.Empty(t, page.Logs)
	assert.NotNil(t, page.Logs)
	assert.Equal(t, queries.MaxPageSize, page.Pagination.PerPage)
	assert.Equal(t, 1, page.Pagination.TotalPages)
}

func TestOutcomeQueries_UnknownVariant(t *testing.T) {
	q := queries.NewOutcomeQueries(nil, time.UTC)
	r, _ := q.ParseRange("2024-03-01", "2024-03-01")

	_, err := q.List(context.Background(), "fax", r, 1, 10)
	assert.True(t, errs.Is(err, errs.ErrUnknownVariant))

	_, err = q.Export(context.Background(), "fax", r)
	assert.True(t, errs.Is(err, errs.ErrUnknownVariant))
}

func TestOutcomeQueries_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := querymock.NewMockOutcomeLogReadStore(ctrl)
	q := queries.NewOutcomeQueries(store, time.UTC)
	r, _ := q.ParseRange("2024-03-01", "2024-03-31")

	store.EXPECT().ListOutcomes(gomock.Any(), notification.VariantATMCardExpiry,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 0, 0).
		Return(nil, nil)

	export, err := q.Export(context.Background(), "atm_card_expiry", r)
	require.NoError(t, err)
	assert.Equal(t, 0, export.Count)
	assert.NotNil(t, export.Logs)
	assert.Equal(t, r, export.Range)

	store.EXPECT().ListOutcomes(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), 0, 0).
		Return(nil, errors.New("db down"))
	_, err = q.Export(context.Background(), "atm_card_expiry", r)
	assert.Error(t, err)
}
