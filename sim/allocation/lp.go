package allocation

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// SolveStatus is the explicit outcome of a linear-program solve. Callers branch
// on it instead of recovering from errors.
type SolveStatus int

const (
	StatusOptimal SolveStatus = iota
	StatusInfeasible
	StatusUnbounded
	StatusNumericFailure
	StatusUnavailable
)

func (s SolveStatus) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusNumericFailure:
		return "numeric-failure"
	case StatusUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Problem is the allocation LP over 2N variables: allocations x followed by
// stockout slacks s.
//
//	minimize   Σ AllocCost_i·x_i + SlackCost_i·s_i
//	subject to x_i + s_i ≥ Shortfall_i
//	           Σ x_i ≤ Supply
//	           0 ≤ x_i ≤ Upper_i,  s_i ≥ 0
type Problem struct {
	AllocCost []float64
	SlackCost []float64
	Shortfall []float64
	Upper     []float64
	Supply    float64
}

// N returns the number of districts in the problem.
func (p Problem) N() int { return len(p.AllocCost) }

// Solution carries the allocation vector when Status is StatusOptimal.
type Solution struct {
	X      []float64
	Status SolveStatus
	Err    error
}

// OK reports whether the solve produced a usable allocation.
func (s Solution) OK() bool { return s.Status == StatusOptimal && s.X != nil }

// Solver solves allocation LPs. Implementations must never panic on a
// well-formed Problem; every failure is reported through Solution.Status.
type Solver interface {
	Solve(p Problem) Solution
}

// SimplexSolver solves the LP with gonum's dense simplex implementation.
type SimplexSolver struct {
	// Tol is the reduced-cost tolerance passed to lp.Simplex.
	Tol float64
}

// NewSimplexSolver returns a SimplexSolver with the default tolerance.
func NewSimplexSolver() *SimplexSolver {
	return &SimplexSolver{Tol: 1e-10}
}

// Solve converts the problem to standard form and runs the simplex method.
//
// Standard-form columns are laid out as
//
//	[x_0..x_{N-1} | s_0..s_{N-1} | u_0..u_{N-1} | w_0..w_{N-1} | v]
//
// where u are coverage surpluses, w are upper-bound slacks and v is unused
// supply. Rows are the N coverage equalities, the N bound equalities and the
// supply equality. With x = 0 the basis {s, w, v} is feasible, so phase I is
// skipped.
func (ss *SimplexSolver) Solve(p Problem) (sol Solution) {
	defer func() {
		if r := recover(); r != nil {
			sol = Solution{Status: StatusNumericFailure, Err: fmt.Errorf("lp: simplex panicked: %v", r)}
		}
	}()
	n := p.N()
	if n == 0 {
		return Solution{X: []float64{}, Status: StatusOptimal}
	}
	if len(p.SlackCost) != n || len(p.Shortfall) != n || len(p.Upper) != n {
		return Solution{Status: StatusNumericFailure, Err: errors.New("lp: problem vectors differ in length")}
	}

	rows := 2*n + 1
	cols := 4*n + 1
	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)

	for i := 0; i < n; i++ {
		xi, si, ui, wi := i, n+i, 2*n+i, 3*n+i

		c[xi] = p.AllocCost[i]
		c[si] = p.SlackCost[i]

		// coverage: x_i + s_i - u_i = shortfall_i
		a.Set(i, xi, 1)
		a.Set(i, si, 1)
		a.Set(i, ui, -1)
		b[i] = p.Shortfall[i]

		// bound: x_i + w_i = upper_i
		a.Set(n+i, xi, 1)
		a.Set(n+i, wi, 1)
		b[n+i] = p.Upper[i]

		// supply: Σ x_i + v = supply
		a.Set(2*n, xi, 1)
	}
	v := 4 * n
	a.Set(2*n, v, 1)
	b[2*n] = p.Supply

	basic := make([]int, 0, rows)
	for i := 0; i < n; i++ {
		basic = append(basic, n+i)
	}
	for i := 0; i < n; i++ {
		basic = append(basic, 3*n+i)
	}
	basic = append(basic, v)

	for i := range b {
		if b[i] < 0 {
			return Solution{Status: StatusInfeasible, Err: fmt.Errorf("lp: negative right-hand side %g in row %d", b[i], i)}
		}
	}

	_, x, err := lp.Simplex(c, a, b, ss.Tol, basic)
	if err != nil {
		return Solution{Status: statusFromError(err), Err: err}
	}
	out := make([]float64, n)
	copy(out, x[:n])
	return Solution{X: out, Status: StatusOptimal}
}

func statusFromError(err error) SolveStatus {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return StatusInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return StatusUnbounded
	default:
		return StatusNumericFailure
	}
}

// unavailableSolver reports every solve as unavailable. Used when an
// Optimizer is deliberately built without LP support.
type unavailableSolver struct{}

func (unavailableSolver) Solve(Problem) Solution {
	return Solution{Status: StatusUnavailable, Err: errors.New("lp: solver unavailable")}
}

// NoSolver returns a Solver that is always unavailable; LP-backed policies
// built with it degrade to proportional allocation every period.
func NoSolver() Solver { return unavailableSolver{} }
