package optimize

import "github.com/shopspring/decimal"

var kWhPerMWh = decimal.NewFromInt(1000)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// share returns ref × ratio truncated to cents, so the result never exceeds
// the exact product.
func share(ref float64, ratio string) decimal.Decimal {
	return dec(ref).Mul(decimal.RequireFromString(ratio)).Truncate(2)
}

// payment is price (currency/MWh) × kW / 1000, rounded to cents.
func payment(price, kw float64) decimal.Decimal {
	return dec(price).Mul(dec(kw)).Div(kWhPerMWh).Round(2)
}

func roundKW(v float64) float64 {
	return dec(v).Round(6).InexactFloat64()
}
