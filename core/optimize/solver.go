package optimize

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/vpp/core/model"
)

// ErrInfeasible and ErrUnbounded report that the LP could not produce a
// dispatch. Both are recovered with the closed-form fallback.
var (
	ErrInfeasible = errors.New("lp infeasible")
	ErrUnbounded  = errors.New("lp unbounded")
)

// Solution is the raw solver output.
type Solution struct {
	Status    model.SolverStatus
	Objective float64
	X         []float64
}

// Solver minimises cᵀx subject to Ax = b, x ≥ 0.
type Solver interface {
	Solve(c []float64, A mat.Matrix, b []float64) (Solution, error)
}

// SimplexSolver is the gonum simplex implementation of Solver.
type SimplexSolver struct {
	Tol float64
}

// Solve runs lp.Simplex and maps its errors onto solver statuses.
func (s SimplexSolver) Solve(c []float64, A mat.Matrix, b []float64) (Solution, error) {
	tol := s.Tol
	if tol <= 0 {
		tol = 1e-7
	}
	opt, x, err := lp.Simplex(c, A, b, tol, nil)
	switch {
	case err == nil:
		return Solution{Status: model.StatusOptimal, Objective: opt, X: x}, nil
	case errors.Is(err, lp.ErrInfeasible):
		return Solution{Status: model.StatusInfeasible}, ErrInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return Solution{Status: model.StatusUnbounded}, ErrUnbounded
	default:
		return Solution{Status: model.StatusFailed}, err
	}
}
