package optimize

import "github.com/shopspring/decimal"

// fallbackPrice is min(1.05 × weighted average cost, 0.95 × ref). Without any
// capacity the unweighted mean cost is used, and a non-positive result falls
// back to 0.95 × ref so that a price is always produced.
func fallbackPrice(items []item, ref float64) decimal.Decimal {
	ceiling := share(ref, "0.95")
	var num, den, sum decimal.Decimal
	for _, it := range items {
		capKW := dec(max(it.cap, 0))
		num = num.Add(dec(it.cost).Mul(capKW))
		den = den.Add(capKW)
		sum = sum.Add(dec(it.cost))
	}
	var wac decimal.Decimal
	switch {
	case den.IsPositive():
		wac = num.Div(den)
	case len(items) > 0:
		wac = sum.Div(decimal.NewFromInt(int64(len(items))))
	}
	price := decimal.Min(wac.Mul(decimal.RequireFromString(minMarkup)), ceiling).Truncate(2)
	if !price.IsPositive() {
		price = ceiling
	}
	return price
}

// fallbackDispatch commits every item at full capacity.
func fallbackDispatch(items []item) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = roundKW(max(it.cap, 0))
	}
	return out
}
