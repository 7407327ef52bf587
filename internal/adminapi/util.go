package adminapi

import "github.com/shopspring/decimal"

func decimalFromString(v string) (decimal.Decimal, error) {
	return decimal.NewFromString(v)
}
