package notification

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	Currency          = "UGX"
	DisplayDateLayout = "02-01-2006"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"02-Jan-06",
}

// ParseAmount accepts strings (with or without grouping commas) and any numeric type.
func ParseAmount(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return decimal.Zero, fmt.Errorf("empty amount")
		}
		return decimal.NewFromString(s)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, fmt.Errorf("amount %v is not finite", n)
		}
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T", v)
	}
}

// maxAmount is the exclusive bound of a NUMERIC(18,2) log column.
var maxAmount = decimal.New(1, 16)

// AmountInRange reports whether d, rounded to cents, fits the amount log columns.
func AmountInRange(d decimal.Decimal) bool {
	return d.Round(2).Abs().LessThan(maxAmount)
}

// FormatAmount rounds half away from zero to whole units and groups thousands: 1234567.6 -> "1,234,568".
func FormatAmount(d decimal.Decimal) string {
	whole := d.Round(0)
	if whole.BigInt().IsInt64() {
		p := message.NewPrinter(language.English)
		return p.Sprintf("%d", whole.IntPart())
	}
	return groupDigits(whole.String())
}

// groupDigits inserts thousands separators into an integer string.
func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	var b strings.Builder
	b.WriteString(sign)
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// ParseDate accepts time.Time, ISO-8601 style strings, Oracle style dd-Mon-yyyy strings,
// and spreadsheet serial day numbers.
func ParseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case json.Number:
		f, err := d.Float64()
		if err != nil {
			return time.Time{}, err
		}
		return serialDate(f)
	case float64:
		return serialDate(d)
	case int:
		return serialDate(float64(d))
	case int64:
		return serialDate(float64(d))
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return serialDate(f)
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func FormatDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

// serialDate converts a 1900-system spreadsheet day number, which counts a
// non-existent 1900-02-29 as day 60.
func serialDate(serial float64) (time.Time, error) {
	if serial < 1 || serial > 2958465 {
		return time.Time{}, fmt.Errorf("serial date %v out of range", serial)
	}
	days := int(serial)
	if days > 60 {
		days--
	}
	base := time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, days), nil
}

// MaskAccount keeps the last five characters of an account number.
func MaskAccount(acct string) string {
	acct = strings.TrimSpace(acct)
	const visible = 5
	if len(acct) <= visible {
		return acct
	}
	return strings.Repeat("*", len(acct)-visible) + acct[len(acct)-visible:]
}
