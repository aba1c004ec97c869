package optimize

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
)

// item is one dispatchable supplier in the LP.
type item struct {
	id   string
	cost float64 // agreed or assumed price, currency/MWh
	cap  float64 // kW
}

// Dispatch bounds and the markup the clearing price must keep over the
// weighted cost.
const (
	lowerCoverage = 0.9
	upperCoverage = 1.1
	minMarkup     = "1.05"
)

// program is the profit LP written directly in standard form.
//
// The objective grows with the bid price and total dispatch is bounded away
// from zero, so the optimal price sits on its ceiling P. With the price fixed
// the markup constraint P·Σd ≥ 1.05·Σcᵢdᵢ becomes linear:
//
//	min  -Σ (P - cᵢ)·dᵢ / 1000
//	s.t. dᵢ + sᵢ = capᵢ
//	     Σd - t  = 0.9·R
//	     t + sₜ  = 0.2·R
//	     Σ (1.05·cᵢ - P)·dᵢ + s_f = 0   (only when some coefficient is positive)
//
// with every variable non-negative.
type program struct {
	c []float64
	A *mat.Dense
	b []float64
	n int
}

func buildProgram(items []item, required float64, price decimal.Decimal) program {
	n := len(items)
	markup := make([]float64, n)
	withMarkup := false
	for i, it := range items {
		markup[i] = decimal.RequireFromString(minMarkup).Mul(dec(it.cost)).Sub(price).InexactFloat64()
		if markup[i] > 0 {
			withMarkup = true
		}
	}
	rows := n + 2
	cols := 2*n + 2
	if withMarkup {
		rows++
		cols++
	}
	t := n
	A := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)
	p := price.InexactFloat64()
	for i, it := range items {
		c[i] = -(p - it.cost) / 1000
		A.Set(i, i, 1)
		A.Set(i, n+1+i, 1)
		b[i] = math.Max(0, it.cap)
		A.Set(n, i, 1)
	}
	A.Set(n, t, -1)
	b[n] = lowerCoverage * required
	A.Set(n+1, t, 1)
	A.Set(n+1, 2*n+1, 1)
	b[n+1] = (upperCoverage - lowerCoverage) * required
	if withMarkup {
		for i := range items {
			A.Set(n+2, i, markup[i])
		}
		A.Set(n+2, 2*n+2, 1)
	}
	return program{c: c, A: A, b: b, n: n}
}

// dispatch extracts the per-item dispatch from a solution vector, clamped to
// the item capacities.
func (p program) dispatch(items []item, x []float64) []float64 {
	out := make([]float64, p.n)
	for i := range out {
		v := 0.0
		if i < len(x) {
			v = x[i]
		}
		out[i] = roundKW(math.Min(math.Max(v, 0), math.Max(0, items[i].cap)))
	}
	return out
}
