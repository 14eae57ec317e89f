//go:build unit

package notification_test

import (
	"encoding/json"
	"testing"
	"time"

	"pride-notify/internal/domain/notification"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	testCases := []struct {
		in   any
		want string
	}{
		{in: 1234567.6, want: "1,234,568"},
		{in: 15000, want: "15,000"},
		{in: json.Number("999.5"), want: "1,000"},
		{in: "2,500,000.49", want: "2,500,000"},
		{in: "0.4", want: "0"},
		{in: decimal.RequireFromString("-1500.5"), want: "-1,501"},
		{in: int64(12), want: "12"},
	}
	for _, tc := range testCases {
		d, err := notification.ParseAmount(tc.in)
		require.NoError(t, err, "input %v", tc.in)
		assert.Equal(t, tc.want, notification.FormatAmount(d), "input %v", tc.in)
	}
}

func TestFormatAmount_BeyondInt64(t *testing.T) {
	d := decimal.RequireFromString("98765432109876543210.4")
	assert.Equal(t, "98,765,432,109,876,543,210", notification.FormatAmount(d))
	assert.Equal(t, "-123,456,789,012,345,678,901", notification.FormatAmount(decimal.RequireFromString("-123456789012345678901.2")))
}

func TestAmountInRange(t *testing.T) {
	testCases := []struct {
		in   string
		want bool
	}{
		{in: "0", want: true},
		{in: "9999999999999999.99", want: true},
		{in: "-9999999999999999.99", want: true},
		{in: "9999999999999999.995", want: false},
		{in: "10000000000000000", want: false},
		{in: "98765432109876543210.4", want: false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, notification.AmountInRange(decimal.RequireFromString(tc.in)), "input %s", tc.in)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []any{"abc", "", true, map[string]any{}} {
		_, err := notification.ParseAmount(in)
		assert.Error(t, err, "input %v", in)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	testCases := []struct {
		name string
		in   any
	}{
		{name: "date only", in: "2024-03-05"},
		{name: "iso without zone", in: "2024-03-05T00:00:00"},
		{name: "rfc3339", in: "2024-03-05T00:00:00Z"},
		{name: "oracle style", in: "05-MAR-2024"},
		{name: "time value", in: want},
		{name: "spreadsheet serial number", in: json.Number("45356")},
		{name: "spreadsheet serial string", in: "45356"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := notification.ParseDate(tc.in)
			require.NoError(t, err)
			assert.Equal(t, "05-03-2024", notification.FormatDate(got))
		})
	}
}

func TestParseDate_SerialAroundLeapBug(t *testing.T) {
	got, err := notification.ParseDate(59.0)
	require.NoError(t, err)
	assert.Equal(t, "28-02-1900", notification.FormatDate(got))

	got, err = notification.ParseDate(61.0)
	require.NoError(t, err)
	assert.Equal(t, "01-03-1900", notification.FormatDate(got))
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []any{"not a date", "31/31/2024", -3.0, false} {
		_, err := notification.ParseDate(in)
		assert.Error(t, err, "input %v", in)
	}
}

func TestMaskAccount(t *testing.T) {
	assert.Equal(t, "*****45678", notification.MaskAccount("0012345678"))
	assert.Equal(t, "1234", notification.MaskAccount("1234"))
}
