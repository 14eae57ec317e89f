package notification

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/shopspring/decimal"
)

var (
	loanDueTmpl = texttemplate.Must(texttemplate.New("loan_due").Option("missingkey=error").Parse(
		"Dear {{.Name}}, your loan installment of {{.Amount}} {{.Currency}} is due on {{.Date}}."))

	birthdayTmpl = texttemplate.Must(texttemplate.New("birthday").Option("missingkey=error").Parse(
		"Dear {{.Name}}, Happy Birthday! Thank you for banking with us. We wish you a blessed year ahead."))

	groupReceiptTmpl = texttemplate.Must(texttemplate.New("group_loan_receipt").Option("missingkey=error").Parse(
		"Dear {{.Name}}, we have received {{.Amount}} {{.Currency}} towards the loan of group {{.Group}} ({{.GroupNo}}) on {{.Date}}. Thank you."))

	atmExpiryTmpl = texttemplate.Must(texttemplate.New("atm_card_expiry").Option("missingkey=error").Parse(
		"Dear {{.Name}}, your ATM card {{.Card}} expires on {{.Date}}. Please visit your nearest branch to renew it."))

	escrowTmpl = texttemplate.Must(texttemplate.New("escrow_statement_line").Option("missingkey=error").Parse(
		"Dear {{.Name}}, a transaction of {{.Amount}} {{.Currency}} was posted to escrow account {{.Account}} on {{.Date}}.{{if .Narration}} Ref: {{.Narration}}.{{end}}"))

	ledgerSubjectTmpl = texttemplate.Must(texttemplate.New("ledger_report_subject").Option("missingkey=error").Parse(
		"Ledger balance report for {{.Account}} as at {{.Date}}"))

	ledgerBodyTmpl = htmltemplate.Must(htmltemplate.New("ledger_report_body").Option("missingkey=error").Parse(
		`<p>Dear {{.Name}},</p><p>The closing balance of GL account <strong>{{.Account}}</strong> as at {{.Date}} is <strong>{{.Amount}} {{.Currency}}</strong>.</p>`))
)

const defaultCustomSubject = "Notification"

type renderFunc func(rec RawRecord, msg *Message) error

var renderers = map[Variant]renderFunc{
	VariantCustomMessage:       renderCustom,
	VariantLoanDue:             renderLoanDue,
	VariantBirthday:            renderBirthday,
	VariantGroupLoanReceipt:    renderGroupReceipt,
	VariantATMCardExpiry:       renderATMExpiry,
	VariantEscrowStatementLine: renderEscrow,
	VariantLedgerReportLine:    renderLedger,
}

// Render builds the message for a classified record. On a RenderError the
// returned message is still non-nil and carries whatever was resolved
// (recipient, log fields) so the failure can be recorded against it.
func Render(rec RawRecord, v Variant) (*Message, error) {
	fn, ok := renderers[v]
	if !ok {
		return nil, &RenderError{Kind: KindInvalidField, Variant: v, Field: "variant"}
	}
	msg := &Message{Variant: v, Channel: ChannelSMS}
	if err := fn(rec, msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// fieldReader collects values for one variant, stopping at the first problem.
type fieldReader struct {
	rec     RawRecord
	variant Variant
	err     error
}

func (r *fieldReader) text(field string) string {
	if r.err != nil {
		return ""
	}
	s, ok := r.rec.Text(field)
	if !ok {
		r.err = &RenderError{Kind: KindMissingField, Variant: r.variant, Field: field}
	}
	return s
}

func (r *fieldReader) amount(field string) (string, *decimal.Decimal) {
	if r.err != nil {
		return "", nil
	}
	if !r.rec.Has(field) {
		r.err = &RenderError{Kind: KindMissingField, Variant: r.variant, Field: field}
		return "", nil
	}
	d, err := ParseAmount(r.rec[field])
	if err != nil {
		r.err = &RenderError{Kind: KindInvalidField, Variant: r.variant, Field: field, err: err}
		return "", nil
	}
	if !AmountInRange(d) {
		r.err = &RenderError{Kind: KindInvalidField, Variant: r.variant, Field: field,
			err: fmt.Errorf("amount %s is outside the loggable range", d.String())}
		return "", nil
	}
	return FormatAmount(d), &d
}

func (r *fieldReader) date(field string) (string, *time.Time) {
	if r.err != nil {
		return "", nil
	}
	if !r.rec.Has(field) {
		r.err = &RenderError{Kind: KindMissingField, Variant: r.variant, Field: field}
		return "", nil
	}
	t, err := ParseDate(r.rec[field])
	if err != nil {
		r.err = &RenderError{Kind: KindInvalidField, Variant: r.variant, Field: field, err: err}
		return "", nil
	}
	return FormatDate(t), &t
}

func execText(t *texttemplate.Template, data map[string]string) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func execHTML(t *htmltemplate.Template, data map[string]string) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func firstText(rec RawRecord, fields ...string) string {
	for _, f := range fields {
		if s, ok := rec.Text(f); ok {
			return s
		}
	}
	return ""
}

func requireRecipient(msg *Message, field string) error {
	if msg.Recipient == "" {
		return &RenderError{Kind: KindMissingField, Variant: msg.Variant, Field: field}
	}
	return nil
}

func renderCustom(rec RawRecord, msg *Message) error {
	msg.Log.AccountName = firstText(rec, FieldCustomerName, FieldAccountName)
	msg.Recipient = firstText(rec, FieldTelNumber, FieldContact)
	if msg.Recipient == "" {
		if email, ok := rec.Text(FieldEmail); ok {
			msg.Channel = ChannelEmail
			msg.Recipient = email
			msg.Subject = defaultCustomSubject
			if s, ok := rec.Text(FieldSubject); ok {
				msg.Subject = s
			}
		}
	}
	if err := requireRecipient(msg, FieldTelNumber); err != nil {
		return err
	}
	// Operator text goes out verbatim, never through a template.
	body, ok := rec[FieldCustomMessage].(string)
	if !ok {
		body, _ = rec.Text(FieldCustomMessage)
	}
	if strings.TrimSpace(body) == "" {
		return &RenderError{Kind: KindMissingField, Variant: msg.Variant, Field: FieldCustomMessage}
	}
	msg.Body = body
	return nil
}

func renderLoanDue(rec RawRecord, msg *Message) error {
	msg.Recipient = firstText(rec, FieldTelNumber)
	msg.Log.AccountName = firstText(rec, FieldCustomerName)

	r := &fieldReader{rec: rec, variant: msg.Variant}
	name := r.text(FieldCustomerName)
	amount, amountVal := r.amount(FieldAmountDue)
	msg.Log.Amount = amountVal
	due, dueVal := r.date(FieldDueDate)
	msg.Log.Date = dueVal
	if r.err != nil {
		return r.err
	}
	if err := requireRecipient(msg, FieldTelNumber); err != nil {
		return err
	}

	body, err := execText(loanDueTmpl, map[string]string{
		"Name": name, "Amount": amount, "Currency": Currency, "Date": due,
	})
	if err != nil {
		return &RenderError{Kind: KindInvalidField, Variant: msg.Variant, Field: "template", err: err}
	}
	msg.Body = body
	return nil
}

func renderBirthday(rec RawRecord, msg *Message) error {
	msg.Recipient = firstText(rec, FieldContact, FieldTelNumber)
	msg.Log.AccountName = firstText(rec, FieldAccountName)
	msg.Log.ClientType = firstText(rec, FieldClientType)

	r := &fieldReader{rec: rec, variant: msg.Variant}
	name := r.text(FieldAccountName)
	_, dob := r.date(FieldBirthDate)
	msg.Log.Date = dob
	if r.err != nil {
		return r.err
	}
	if err := requireRecipient(msg, FieldContact); err != nil {
		return err
	}

	body, err := execText(birthdayTmpl, map[string]string{"Name": name})
	if err != nil {
		return &RenderError{Kind: KindInvalidField, Variant: msg.Variant, Field: "template", err: err}
	}
	msg.Body = body
	return nil
}

func renderGroupReceipt(rec RawRecord, msg *Message) error {
	msg.Recipient = firstText(rec, FieldTelNumber)
	msg.Log.AccountName = firstText(rec, FieldCustomerName, FieldGroupName)
	msg.Log.Reference = firstText(rec, FieldGroupCustNo)
	msg.Log.Detail = firstText(rec, FieldGroupName)

	r := &fieldReader{rec: rec, variant: msg.Variant}
	groupNo := r.text(FieldGroupCustNo)
	group := r.text(FieldGroupName)
	amount, amountVal := r.amount(FieldAmountPaid)
	msg.Log.Amount = amountVal
	date, dateVal := r.date(FieldTranDate)
	msg.Log.Date = dateVal
	if r.err != nil {
		return r.err
	}
	if err := requireRecipient(msg, FieldTelNumber); err != nil {
		return err
	}

	name := firstText(rec, FieldCustomerName)
	if name == "" {
		name = "Member"
	}
	body, err := execText(groupReceiptTmpl, map[string]string{
		"Name": name, "Amount": amount, "Currency": Currency,
		"Group": group, "GroupNo": groupNo, "Date": date,
	})
	if err != nil {
		return &RenderError{Kind: KindInvalidField, Variant: msg.Variant, Field: "template", err: err}
	}
	msg.Body = body
	return nil
}

func renderATMExpiry(rec RawRecord, msg *Message) error {
	msg.Recipient = firstText(rec, FieldTelNumber)
	msg.Log.AccountName = firstText(rec, FieldCustomerName)
	msg.Log.Reference = firstText(rec, FieldCardTitle)

	r := &fieldReader{rec: rec, variant: msg.Variant}
	name := r.text(FieldCustomerName)
	card := r.text(FieldCardTitle)
	expiry, expiryVal := r.date(FieldExpiryDate)
	msg.Log.Date = expiryVal
	if r.err != nil {
		return r.err
	}
	if err := requireRecipient(msg, FieldTelNumber); err != nil {
		return err
	}

	body, err := execText(atmExpiryTmpl, map[string]string{"Name": name, "Card": card, "Date": expiry})
	if err != nil {
		return &RenderError{Kind: KindInvalidField, Variant: msg.Variant, Field: "template", err: err}
	}
	msg.Body = body
	return nil
}

func renderEscrow(rec RawRecord, msg *Message) error {
	msg.Recipient = firstText(rec, FieldTelNumber)
	msg.Log.AccountName = firstText(rec, FieldCustomerName)
	msg.Log.Reference = MaskAccount(firstText(rec, FieldEscrowAcctNo))
	msg.Log.Detail = firstText(rec, FieldNarration)

	r := &fieldReader{rec: rec, variant: msg.Variant}
	name := r.text(FieldCustomerName)
	acct := r.text(FieldEscrowAcctNo)
	amount, amountVal := r.amount(FieldTranAmount)
	msg.Log.Amount = amountVal
	date, dateVal := r.date(FieldTranDate)
	msg.Log.Date = dateVal
	if r.err != nil {
		return r.err
	}
	if err := requireRecipient(msg, FieldTelNumber); err != nil {
		return err
	}

	body, err := execText(escrowTmpl, map[string]string{
		"Name": name, "Amount": amount, "Currency": Currency,
		"Account": MaskAccount(acct), "Date": date, "Narration": msg.Log.Detail,
	})
	if err != nil {
		return &RenderError{Kind: KindInvalidField, Variant: msg.Variant, Field: "template", err: err}
	}
	msg.Body = body
	return nil
}

func renderLedger(rec RawRecord, msg *Message) error {
	msg.Channel = ChannelEmail
	msg.Recipient = firstText(rec, FieldEmail)
	msg.Log.AccountName = firstText(rec, FieldAccountName)
	msg.Log.Reference = firstText(rec, FieldGLAcctNo)

	r := &fieldReader{rec: rec, variant: msg.Variant}
	acct := r.text(FieldGLAcctNo)
	balance, balanceVal := r.amount(FieldLedgerBalance)
	msg.Log.Amount = balanceVal
	date, dateVal := r.date(FieldReportDate)
	msg.Log.Date = dateVal
	if r.err != nil {
		return r.err
	}
	if err := requireRecipient(msg, FieldEmail); err != nil {
		return err
	}

	name := msg.Log.AccountName
	if name == "" {
		name = "Team"
	}
	data := map[string]string{
		"Name": name, "Account": acct, "Amount": balance, "Currency": Currency, "Date": date,
	}
	subject, err := execText(ledgerSubjectTmpl, data)
	if err != nil {
		return &RenderError{Kind: KindInvalidField, Variant: msg.Variant, Field: "template", err: err}
	}
	body, err := execHTML(ledgerBodyTmpl, data)
	if err != nil {
		return &RenderError{Kind: KindInvalidField, Variant: msg.Variant, Field: "template", err: err}
	}
	msg.Subject = subject
	msg.Body = body
	return nil
}
