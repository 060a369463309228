package domain

import "github.com/shopspring/decimal"

// Currency of every amount handled by the storefront.
const Currency = "LKR"

// FormatAmount rounds for display. Internal arithmetic never calls this.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
