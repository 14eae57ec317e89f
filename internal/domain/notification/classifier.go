package notification

type fieldRule struct {
	field   string
	variant Variant
}

// rules run in order and the first present field wins.
var rules = []fieldRule{
	{field: FieldCustomMessage, variant: VariantCustomMessage},
	{field: FieldAmountDue, variant: VariantLoanDue},
	{field: FieldBirthDate, variant: VariantBirthday},
	{field: FieldGroupCustNo, variant: VariantGroupLoanReceipt},
	{field: FieldCardTitle, variant: VariantATMCardExpiry},
	{field: FieldEscrowAcctNo, variant: VariantEscrowStatementLine},
	{field: FieldGLAcctNo, variant: VariantLedgerReportLine},
}

// Classify decides which notification a record represents from the fields it carries.
func Classify(rec RawRecord) (Variant, error) {
	for _, p := range rules {
		if rec.Has(p.field) {
			return p.variant, nil
		}
	}
	return "", &ClassificationError{Kind: KindUnrecognized, Fields: rec.FieldNames()}
}
