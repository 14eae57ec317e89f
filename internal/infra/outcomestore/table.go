// Package outcomestore persists dispatch outcomes into one log table per variant.
package outcomestore

import (
	"encoding/json"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/errs"
)

type columnKind int

const (
	kindText columnKind = iota
	kindNumeric
	kindDate
)

type column struct {
	name  string
	kind  columnKind
	value func(notification.LogFields) any
}

type table struct {
	name  string
	extra []column
}

// amountScale matches the NUMERIC(18,2) amount columns.
const amountScale = 2

// positions within commonColumns that dialects re-encode
const (
	idIdx       = 0
	responseIdx = 8
	createdIdx  = 10
)

var commonColumns = []string{
	"id", "run_id", "attempt", "recipient", "account_name", "message",
	"status", "succeeded", "response_data", "error_detail", "created_at",
}

func text(f func(notification.LogFields) string) func(notification.LogFields) any {
	return func(l notification.LogFields) any {
		if s := f(l); s != "" {
			return s
		}
		return nil
	}
}

// amount hands the exact decimal to the dialect, which picks the wire type.
func amount(l notification.LogFields) any {
	if l.Amount == nil {
		return nil
	}
	return *l.Amount
}

func date(l notification.LogFields) any {
	if l.Date == nil {
		return nil
	}
	return *l.Date
}

func reference(l notification.LogFields) string  { return l.Reference }
func detail(l notification.LogFields) string     { return l.Detail }
func clientType(l notification.LogFields) string { return l.ClientType }

var tables = map[notification.Variant]table{
	notification.VariantLoanDue: {name: "loan_due_logs", extra: []column{
		{name: "amount_due", kind: kindNumeric, value: amount},
		{name: "due_date", kind: kindDate, value: date},
	}},
	notification.VariantBirthday: {name: "birthday_logs", extra: []column{
		{name: "client_type", kind: kindText, value: text(clientType)},
		{name: "date_of_birth", kind: kindDate, value: date},
	}},
	notification.VariantGroupLoanReceipt: {name: "group_loan_logs", extra: []column{
		{name: "group_cust_no", kind: kindText, value: text(reference)},
		{name: "group_name", kind: kindText, value: text(detail)},
		{name: "amount_paid", kind: kindNumeric, value: amount},
		{name: "tran_date", kind: kindDate, value: date},
	}},
	notification.VariantATMCardExpiry: {name: "atm_expiry_logs", extra: []column{
		{name: "card_title", kind: kindText, value: text(reference)},
		{name: "expiry_date", kind: kindDate, value: date},
	}},
	notification.VariantCustomMessage: {name: "custom_message_logs"},
	notification.VariantEscrowStatementLine: {name: "escrow_logs", extra: []column{
		{name: "escrow_acct_no", kind: kindText, value: text(reference)},
		{name: "narration", kind: kindText, value: text(detail)},
		{name: "tran_amount", kind: kindNumeric, value: amount},
		{name: "tran_date", kind: kindDate, value: date},
	}},
	notification.VariantLedgerReportLine: {name: "ledger_report_logs", extra: []column{
		{name: "gl_acct_no", kind: kindText, value: text(reference)},
		{name: "ledger_balance", kind: kindNumeric, value: amount},
		{name: "report_date", kind: kindDate, value: date},
	}},
}

func tableFor(v notification.Variant) (table, error) {
	t, ok := tables[v]
	if !ok {
		return table{}, errs.Mark(errs.Newf("no log table for variant %q", v), errs.ErrUnknownVariant)
	}
	return t, nil
}

func (t table) columns() []string {
	cols := make([]string, 0, len(commonColumns)+len(t.extra))
	cols = append(cols, commonColumns...)
	for _, c := range t.extra {
		cols = append(cols, c.name)
	}
	return cols
}

// row returns the values in columns() order. Dates, timestamps and the
// response document are left for the dialect to encode.
func (t table) row(o *notification.Outcome) ([]any, error) {
	var response []byte
	if payload := o.Response(); payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errs.Wrap(err, "marshal response payload")
		}
		response = b
	}

	var errDetail any
	if d := o.ErrorDetail(); d != "" {
		errDetail = d
	}

	log := o.Log()
	row := make([]any, 0, len(commonColumns)+len(t.extra))
	row = append(row,
		o.ID(),
		o.Run().RunID,
		o.Run().Attempt,
		o.Recipient(),
		log.AccountName,
		o.Body(),
		o.Status(),
		o.Succeeded(),
		response,
		errDetail,
		o.CreatedAt().UTC(),
	)
	for _, c := range t.extra {
		row = append(row, c.value(log))
	}
	return row, nil
}

// groupByTable preserves the input order within each table.
func groupByTable(outcomes []*notification.Outcome) ([]table, map[string][]*notification.Outcome, error) {
	var order []table
	groups := make(map[string][]*notification.Outcome)
	for _, o := range outcomes {
		t, err := tableFor(o.Variant())
		if err != nil {
			return nil, nil, err
		}
		if _, seen := groups[t.name]; !seen {
			order = append(order, t)
		}
		groups[t.name] = append(groups[t.name], o)
	}
	return order, groups, nil
}

// dateOnly trims a date column value to midnight UTC of its calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
