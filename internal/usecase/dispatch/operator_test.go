//go:build unit

package dispatch_test

import (
	"context"
	"testing"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/dispatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func ledgerRecord() notification.RawRecord {
	return notification.RawRecord{
		"GL_ACCT_NO": "100-200", "LEDGER_BAL": 1000, "REPORT_DT": "2024-06-30", "EMAIL": "finance@example.com",
	}
}

func TestOrchestrator_SendSMS(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.expectSession()
	var sent []*notification.Message
	f.session.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *notification.Message) (*dispatch.GatewayResponse, error) {
			sent = append(sent, m)
			return okResponse(), nil
		}).Times(2)
	var recorded []*notification.Outcome
	f.repo.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, o *notification.Outcome) error {
		recorded = append(recorded, o)
		return nil
	}).Times(3)

	res, err := f.orchestrator(defaultOpts()).SendSMS(ctx, []notification.RawRecord{
		loanRecord("0700000001"),
		ledgerRecord(),
		{"SOMETHING_ELSE": "x"},
		{"CUSTOM_MESSAGE": "Branch closed on Monday", "TEL_NUMBER": "0700000002"},
	})
	require.NoError(t, err)

	assert.Equal(t, dispatch.OperatorCategory, res.Category)
	assert.Equal(t, dispatch.StateDone, res.State)
	assert.Equal(t, 4, res.Fetched)
	assert.Equal(t, 2, res.Succeeded())
	assert.Equal(t, 1, res.Failed())
	require.Len(t, res.Rejections, 1)
	assert.Equal(t, 2, res.Rejections[0].Index)

	require.Len(t, sent, 2)
	assert.Equal(t, "0700000001", sent[0].Recipient)
	assert.Equal(t, "Branch closed on Monday", sent[1].Body)

	require.Len(t, recorded, 3)
	assert.False(t, recorded[1].Succeeded(), "email-only record is recorded without a send")
	assert.Equal(t, notification.VariantLedgerReportLine, recorded[1].Variant())
	assert.Contains(t, recorded[1].ErrorDetail(), "only sms is accepted")
	assert.Equal(t, notification.VariantCustomMessage, recorded[2].Variant())
}

func TestOrchestrator_SendSMS_NothingClassifiable(t *testing.T) {
	f := newFixture(t)

	res, err := f.orchestrator(defaultOpts()).SendSMS(context.Background(), []notification.RawRecord{{"X": 1}})
	require.Error(t, err)

	var ce *notification.ClassificationError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, dispatch.StateFailed, res.State)
}

func TestOrchestrator_SendSMS_TestModeRedirects(t *testing.T) {
	f := newFixture(t)
	opts := defaultOpts()
	opts.TestMode = dispatch.TestMode{Enabled: true, Recipient: "0777000000", Limit: 1}

	f.expectSession()
	f.session.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *notification.Message) (*dispatch.GatewayResponse, error) {
			assert.Equal(t, "0777000000", m.Recipient)
			return okResponse(), nil
		})
	f.repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.orchestrator(opts).SendSMS(context.Background(), []notification.RawRecord{
		loanRecord("0700000001"), loanRecord("0700000002"),
	})
	require.NoError(t, err)
	assert.Len(t, res.Outcomes, 1)
}

func operatorEmail() dispatch.Email {
	return dispatch.Email{
		Sender:  "ops@example.com",
		Subject: "Branch notice",
		HTML:    "<p>Closed Monday</p>",
		To:      []string{"a@example.com", " b@example.com "},
		Cc:      []string{"c@example.com"},
		Attachments: []notification.Attachment{
			{Filename: "notice.pdf", ContentType: "application/pdf", Content: []byte("%PDF")},
		},
	}
}

func TestOrchestrator_SendEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.expectSession()
	f.session.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *notification.Message) (*dispatch.GatewayResponse, error) {
			assert.Equal(t, notification.ChannelEmail, m.Channel)
			assert.Equal(t, notification.VariantCustomMessage, m.Variant)
			assert.Equal(t, "ops@example.com", m.Sender)
			assert.Equal(t, "a@example.com,b@example.com", m.Recipient)
			assert.Equal(t, []string{"c@example.com"}, m.Cc)
			assert.Len(t, m.Attachments, 1)
			return okResponse(), nil
		})
	var recorded *notification.Outcome
	f.repo.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, o *notification.Outcome) error {
		recorded = o
		return nil
	})

	outcome, err := f.orchestrator(defaultOpts()).SendEmail(ctx, operatorEmail())
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
	assert.Same(t, outcome, recorded)
	assert.Equal(t, "<p>Closed Monday</p>", recorded.Body())
}

func TestOrchestrator_SendEmail_GatewayRejectionIsRecorded(t *testing.T) {
	f := newFixture(t)

	f.expectSession()
	f.session.EXPECT().Send(gomock.Any(), gomock.Any()).
		Return(nil, notification.NewGatewayError(notification.KindGatewayStatus, 502, "relay down", nil))
	f.repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	outcome, err := f.orchestrator(defaultOpts()).SendEmail(context.Background(), operatorEmail())
	require.Error(t, err)

	var gwErr *notification.GatewayError
	assert.ErrorAs(t, err, &gwErr)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Succeeded())
}

func TestOrchestrator_SendEmail_TestModeDropsCc(t *testing.T) {
	f := newFixture(t)
	opts := defaultOpts()
	opts.TestMode = dispatch.TestMode{Enabled: true, EmailRecipient: "qa@example.com"}

	f.expectSession()
	f.session.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *notification.Message) (*dispatch.GatewayResponse, error) {
			assert.Equal(t, "qa@example.com", m.Recipient)
			assert.Empty(t, m.Cc)
			return okResponse(), nil
		})
	f.repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.orchestrator(opts).SendEmail(context.Background(), operatorEmail())
	require.NoError(t, err)
}

func TestOrchestrator_SendEmail_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dispatch.Email)
	}{
		{name: "no recipients", mutate: func(e *dispatch.Email) { e.To = []string{" ", ""} }},
		{name: "no subject", mutate: func(e *dispatch.Email) { e.Subject = "" }},
		{name: "no body", mutate: func(e *dispatch.Email) { e.HTML = "  " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			email := operatorEmail()
			tt.mutate(&email)

			_, err := f.orchestrator(defaultOpts()).SendEmail(context.Background(), email)
			require.Error(t, err)
			assert.True(t, errs.Is(err, dispatch.ErrInvalidEmail))
		})
	}
}
