package session

import "github.com/shopspring/decimal"

// parseDecimal tolerates a missing or malformed tag value by returning
// zero; NewOrderSingle's own validation (symbol/quantity/price
// presence) is what turns that into a Rejected report, not a panic
// here.
func parseDecimal(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}
