package notification

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Upstream field names. Their presence is the only type signal a record carries.
const (
	FieldCustomMessage = "CUSTOM_MESSAGE"
	FieldSubject       = "SUBJECT"
	FieldAmountDue     = "AMT_DUE"
	FieldDueDate       = "DUE_DT"
	FieldCustomerName  = "CUST_NM"
	FieldTelNumber     = "TEL_NUMBER"
	FieldBirthDate     = "BIRTH_DT"
	FieldAccountName   = "ACCT_NM"
	FieldClientType    = "CLIENT_TYPE"
	FieldContact       = "CONTACT"
	FieldGroupCustNo   = "GROUP_CUST_NO"
	FieldGroupName     = "GROUP_NM"
	FieldAmountPaid    = "AMT_PAID"
	FieldTranDate      = "TRAN_DT"
	FieldCardTitle     = "CARD_TITLE"
	FieldExpiryDate    = "EXPIRY_DT"
	FieldEscrowAcctNo  = "ESCROW_ACCT_NO"
	FieldTranAmount    = "TRAN_AMT"
	FieldNarration     = "NARRATION"
	FieldGLAcctNo      = "GL_ACCT_NO"
	FieldLedgerBalance = "LEDGER_BAL"
	FieldReportDate    = "REPORT_DT"
	FieldEmail         = "EMAIL"
)

// RawRecord is one untyped upstream record, keyed by field name.
type RawRecord map[string]any

// Has reports whether field is present with a non-null, non-blank value.
func (r RawRecord) Has(field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Text renders the field as trimmed text. Numbers keep their exact decimal form.
func (r RawRecord) Text(field string) (string, bool) {
	if !r.Has(field) {
		return "", false
	}
	switch v := r[field].(type) {
	case string:
		return strings.TrimSpace(v), true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case decimal.Decimal:
		return v.String(), true
	case time.Time:
		return v.Format(time.RFC3339), true
	default:
		return fmt.Sprint(v), true
	}
}

// FieldNames returns the present field names in sorted order.
func (r RawRecord) FieldNames() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		if r.Has(k) {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}
