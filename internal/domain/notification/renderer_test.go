//go:build unit

package notification_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pride-notify/internal/domain/notification"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrDecimal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ptrDate(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRender(t *testing.T) {
	testCases := []struct {
		name    string
		record  notification.RawRecord
		variant notification.Variant
		want    *notification.Message
	}{
		{
			name: "loan due",
			record: notification.RawRecord{
				"CUST_NM": "Jane Doe", "TEL_NUMBER": "256772000001",
				"AMT_DUE": json.Number("15000"), "DUE_DT": "2024-03-05",
			},
			variant: notification.VariantLoanDue,
			want: &notification.Message{
				Variant:   notification.VariantLoanDue,
				Channel:   notification.ChannelSMS,
				Recipient: "256772000001",
				Body:      "Dear Jane Doe, your loan installment of 15,000 UGX is due on 05-03-2024.",
				Log:       notification.LogFields{AccountName: "Jane Doe", Amount: ptrDecimal("15000"), Date: ptrDate(2024, time.March, 5)},
			},
		},
		{
			name: "loan due rounds and groups",
			record: notification.RawRecord{
				"CUST_NM": "Jane", "TEL_NUMBER": "0772000001",
				"AMT_DUE": 1234567.6, "DUE_DT": "2024-12-31T00:00:00",
			},
			variant: notification.VariantLoanDue,
			want: &notification.Message{
				Variant:   notification.VariantLoanDue,
				Channel:   notification.ChannelSMS,
				Recipient: "0772000001",
				Body:      "Dear Jane, your loan installment of 1,234,568 UGX is due on 31-12-2024.",
				Log:       notification.LogFields{AccountName: "Jane", Amount: ptrDecimal("1234567.6"), Date: ptrDate(2024, time.December, 31)},
			},
		},
		{
			name: "birthday prefers CONTACT",
			record: notification.RawRecord{
				"ACCT_NM": "John", "BIRTH_DT": "1990-07-01", "CONTACT": "0700000002",
				"TEL_NUMBER": "0700000009", "CLIENT_TYPE": "IND",
			},
			variant: notification.VariantBirthday,
			want: &notification.Message{
				Variant:   notification.VariantBirthday,
				Channel:   notification.ChannelSMS,
				Recipient: "0700000002",
				Body:      "Dear John, Happy Birthday! Thank you for banking with us. We wish you a blessed year ahead.",
				Log:       notification.LogFields{AccountName: "John", ClientType: "IND", Date: ptrDate(1990, time.July, 1)},
			},
		},
		{
			name: "custom message is passed through verbatim",
			record: notification.RawRecord{
				"CUSTOM_MESSAGE": "  Offices closed {{.Holiday}} 100% ", "TEL_NUMBER": "0700000003",
			},
			variant: notification.VariantCustomMessage,
			want: &notification.Message{
				Variant:   notification.VariantCustomMessage,
				Channel:   notification.ChannelSMS,
				Recipient: "0700000003",
				Body:      "  Offices closed {{.Holiday}} 100% ",
			},
		},
		{
			name: "custom message by email",
			record: notification.RawRecord{
				"CUSTOM_MESSAGE": "<p>Hello</p>", "EMAIL": "ops@example.com", "SUBJECT": "Notice",
			},
			variant: notification.VariantCustomMessage,
			want: &notification.Message{
				Variant:   notification.VariantCustomMessage,
				Channel:   notification.ChannelEmail,
				Recipient: "ops@example.com",
				Subject:   "Notice",
				Body:      "<p>Hello</p>",
			},
		},
		{
			name: "escrow masks the account",
			record: notification.RawRecord{
				"CUST_NM": "Acme Ltd", "ESCROW_ACCT_NO": "0012345678", "TRAN_AMT": "250000",
				"TRAN_DT": "2024-01-10", "TEL_NUMBER": "0700000004", "NARRATION": "Deposit",
			},
			variant: notification.VariantEscrowStatementLine,
			want: &notification.Message{
				Variant:   notification.VariantEscrowStatementLine,
				Channel:   notification.ChannelSMS,
				Recipient: "0700000004",
				Body:      "Dear Acme Ltd, a transaction of 250,000 UGX was posted to escrow account *****45678 on 10-01-2024. Ref: Deposit.",
				Log: notification.LogFields{
					AccountName: "Acme Ltd", Reference: "*****45678", Detail: "Deposit",
					Amount: ptrDecimal("250000"), Date: ptrDate(2024, time.January, 10),
				},
			},
		},
		{
			name: "atm card expiry",
			record: notification.RawRecord{
				"CUST_NM": "Mary", "CARD_TITLE": "VISA CLASSIC", "EXPIRY_DT": "2026-11-30", "TEL_NUMBER": "0700000005",
			},
			variant: notification.VariantATMCardExpiry,
			want: &notification.Message{
				Variant:   notification.VariantATMCardExpiry,
				Channel:   notification.ChannelSMS,
				Recipient: "0700000005",
				Body:      "Dear Mary, your ATM card VISA CLASSIC expires on 30-11-2026. Please visit your nearest branch to renew it.",
				Log:       notification.LogFields{AccountName: "Mary", Reference: "VISA CLASSIC", Date: ptrDate(2026, time.November, 30)},
			},
		},
		{
			name: "group loan receipt",
			record: notification.RawRecord{
				"GROUP_CUST_NO": "G001", "GROUP_NM": "Tukolere", "AMT_PAID": 300000,
				"TRAN_DT": "2024-02-01", "TEL_NUMBER": "0700000006", "CUST_NM": "Peter",
			},
			variant: notification.VariantGroupLoanReceipt,
			want: &notification.Message{
				Variant:   notification.VariantGroupLoanReceipt,
				Channel:   notification.ChannelSMS,
				Recipient: "0700000006",
				Body:      "Dear Peter, we have received 300,000 UGX towards the loan of group Tukolere (G001) on 01-02-2024. Thank you.",
				Log: notification.LogFields{
					AccountName: "Peter", Reference: "G001", Detail: "Tukolere",
					Amount: ptrDecimal("300000"), Date: ptrDate(2024, time.February, 1),
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := notification.Render(tc.record, tc.variant)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Message mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_LedgerEmail(t *testing.T) {
	got, err := notification.Render(notification.RawRecord{
		"GL_ACCT_NO": "100-200", "LEDGER_BAL": "1000000.5", "REPORT_DT": "2024-06-30",
		"EMAIL": "finance@example.com", "ACCT_NM": "Cash <Main>",
	}, notification.VariantLedgerReportLine)
	require.NoError(t, err)

	assert.Equal(t, notification.ChannelEmail, got.Channel)
	assert.Equal(t, "finance@example.com", got.Recipient)
	assert.Equal(t, "Ledger balance report for 100-200 as at 30-06-2024", got.Subject)
	assert.Contains(t, got.Body, "1,000,001 UGX")
	assert.Contains(t, got.Body, "Cash &lt;Main&gt;")
}

func TestRender_Errors(t *testing.T) {
	testCases := []struct {
		name      string
		record    notification.RawRecord
		variant   notification.Variant
		kind      notification.ErrorKind
		field     string
		recipient string
	}{
		{
			name:      "null due date",
			record:    notification.RawRecord{"CUST_NM": "Jane", "AMT_DUE": 100, "DUE_DT": nil, "TEL_NUMBER": "0700"},
			variant:   notification.VariantLoanDue,
			kind:      notification.KindMissingField,
			field:     "DUE_DT",
			recipient: "0700",
		},
		{
			name:      "unparsable due date",
			record:    notification.RawRecord{"CUST_NM": "Jane", "AMT_DUE": 100, "DUE_DT": "someday", "TEL_NUMBER": "0700"},
			variant:   notification.VariantLoanDue,
			kind:      notification.KindInvalidField,
			field:     "DUE_DT",
			recipient: "0700",
		},
		{
			name:      "bad amount",
			record:    notification.RawRecord{"CUST_NM": "Jane", "AMT_DUE": "ten", "DUE_DT": "2024-01-01", "TEL_NUMBER": "0700"},
			variant:   notification.VariantLoanDue,
			kind:      notification.KindInvalidField,
			field:     "AMT_DUE",
			recipient: "0700",
		},
		{
			name:      "amount too large for the log column",
			record:    notification.RawRecord{"CUST_NM": "Jane", "AMT_DUE": "98765432109876543210.4", "DUE_DT": "2024-01-01", "TEL_NUMBER": "0700"},
			variant:   notification.VariantLoanDue,
			kind:      notification.KindInvalidField,
			field:     "AMT_DUE",
			recipient: "0700",
		},
		{
			name:      "negative escrow amount too large",
			record:    notification.RawRecord{"CUST_NM": "Acme", "ESCROW_ACCT_NO": "0012345678", "TRAN_AMT": json.Number("-10000000000000000"), "TRAN_DT": "2024-01-10", "TEL_NUMBER": "0700"},
			variant:   notification.VariantEscrowStatementLine,
			kind:      notification.KindInvalidField,
			field:     "TRAN_AMT",
			recipient: "0700",
		},
		{
			name:    "no recipient",
			record:  notification.RawRecord{"ACCT_NM": "John", "BIRTH_DT": "1990-07-01"},
			variant: notification.VariantBirthday,
			kind:    notification.KindMissingField,
			field:   "CONTACT",
		},
		{
			name:    "ledger without email",
			record:  notification.RawRecord{"GL_ACCT_NO": "1", "LEDGER_BAL": 1, "REPORT_DT": "2024-01-01"},
			variant: notification.VariantLedgerReportLine,
			kind:    notification.KindMissingField,
			field:   "EMAIL",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := notification.Render(tc.record, tc.variant)
			require.Error(t, err)
			require.NotNil(t, msg, "partial message is returned for logging")

			var re *notification.RenderError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tc.kind, re.Kind)
			assert.Equal(t, tc.field, re.Field)
			assert.Equal(t, tc.recipient, msg.Recipient)
			assert.Empty(t, msg.Body)
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	rec := notification.RawRecord{"CUST_NM": "Jane", "AMT_DUE": "15000", "DUE_DT": "2024-03-05", "TEL_NUMBER": "0700"}
	a, err := notification.Render(rec, notification.VariantLoanDue)
	require.NoError(t, err)
	b, err := notification.Render(rec, notification.VariantLoanDue)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
