package exporter

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// formatAmount formats a money value for CSV output with exactly 2
// decimal places, so values like 13.4 appear as 13.40
func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}
