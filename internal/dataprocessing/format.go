package dataprocessing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// parseIntField parses an integer id field from its raw text form.
func parseIntField(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

// formatDollars renders an amount as $1,234.56 with thousands grouping.
func formatDollars(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	return "$" + sign + groupThousands(intPart) + "." + fracPart
}

// formatCount renders a row count with thousands grouping.
func formatCount(n int) string {
	if n < 0 {
		return "-" + groupThousands(strconv.Itoa(-n))
	}
	return groupThousands(strconv.Itoa(n))
}

// groupThousands inserts comma separators into a digit string.
func groupThousands(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
