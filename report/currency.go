package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount with the rupee glyph and en-IN digit
// grouping: the last three digits form one group, every group before that
// has two digits (1234567 -> ₹12,34,567). Amounts are rounded to whole
// rupees for display; stored values keep their precision.
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	negative := rounded.IsNegative()
	digits := rounded.Abs().String()

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString("₹")
	b.WriteString(groupIndian(digits))
	return b.String()
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}
