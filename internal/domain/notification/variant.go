package notification

import (
	"time"

	"pride-notify/internal/pkg/errs"
)

// Variant is the closed set of notification kinds a record can be.
type Variant string

const (
	VariantCustomMessage       Variant = "custom_message"
	VariantLoanDue             Variant = "loan_due"
	VariantBirthday            Variant = "birthday"
	VariantGroupLoanReceipt    Variant = "group_loan_receipt"
	VariantATMCardExpiry       Variant = "atm_card_expiry"
	VariantEscrowStatementLine Variant = "escrow_statement_line"
	VariantLedgerReportLine    Variant = "ledger_report_line"
)

// Variants lists every variant in classifier rule order.
func Variants() []Variant {
	return []Variant{
		VariantCustomMessage,
		VariantLoanDue,
		VariantBirthday,
		VariantGroupLoanReceipt,
		VariantATMCardExpiry,
		VariantEscrowStatementLine,
		VariantLedgerReportLine,
	}
}

func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants() {
		if string(v) == s {
			return v, nil
		}
	}
	return "", errs.Mark(errs.Newf("variant %q", s), errs.ErrUnknownVariant)
}

func (v Variant) String() string {
	return string(v)
}

// Category names one scheduled upstream feed.
type Category string

const (
	CategoryLoansDue     Category = "loans_due"
	CategoryBirthdays    Category = "birthdays"
	CategoryGroupLoans   Category = "group_loans"
	CategoryATMExpiry    Category = "atm_expiry"
	CategoryEscrow       Category = "escrow"
	CategoryLedgerReport Category = "ledger_report"
	CategoryCustom       Category = "custom"
)

// CategorySpec is the static description of a feed: how long to wait for it,
// which key wraps its list, and which variant it normally carries.
type CategorySpec struct {
	Name     Category
	Timeout  time.Duration
	Envelope string
	Expects  Variant
}

var categories = []CategorySpec{
	{Name: CategoryLoansDue, Timeout: 30 * time.Second, Expects: VariantLoanDue},
	{Name: CategoryBirthdays, Timeout: 10 * time.Second, Envelope: "Person", Expects: VariantBirthday},
	{Name: CategoryGroupLoans, Timeout: 30 * time.Second, Expects: VariantGroupLoanReceipt},
	{Name: CategoryATMExpiry, Timeout: 20 * time.Second, Expects: VariantATMCardExpiry},
	{Name: CategoryEscrow, Timeout: 20 * time.Second, Expects: VariantEscrowStatementLine},
	{Name: CategoryLedgerReport, Timeout: 30 * time.Second, Envelope: "Report", Expects: VariantLedgerReportLine},
	{Name: CategoryCustom, Timeout: 10 * time.Second, Expects: VariantCustomMessage},
}

func Categories() []CategorySpec {
	out := make([]CategorySpec, len(categories))
	copy(out, categories)
	return out
}

func LookupCategory(name string) (CategorySpec, error) {
	for _, c := range categories {
		if string(c.Name) == name {
			return c, nil
		}
	}
	return CategorySpec{}, errs.Mark(errs.Newf("category %q", name), errs.ErrUnknownCategory)
}
