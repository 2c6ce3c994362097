package algebra

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// ErrTimeout is returned when a solve did not finish within its budget.
// Callers (kernel.Problem) are expected to log this at warn level and treat
// the target equation as unsolved rather than propagate it as a fatal error.
var ErrTimeout = errors.New("algebra: solve exceeded its time budget")

// ErrNoSolution is returned when the residual system has no solution the
// solver can find: an inconsistent linear system, or (for the bisection
// fallback) no sign change anywhere in the search interval.
var ErrNoSolution = errors.New("algebra: no solution found")

// DefaultBudget is the time budget a Problem applies to a solve when the
// caller did not configure one explicitly, matching the 2-second timeout
// the original equation killer enforced via func_set_timeout.
const DefaultBudget = 2 * time.Second

// Solve finds values for syms that drive the first len(syms) equations of
// eqs to zero; equations beyond those are not consulted, and fewer
// equations than syms yields ErrNoSolution. The caller (kernel's equation
// killer) first narrows a larger pool down to the connected subsystem of
// its target via get_minimum_equations.
//
// The whole call is wrapped in a goroutine raced against budget, the same
// shape the teacher's World.Run uses to bound rule evaluation: a runaway
// bisection search can never block a Problem past its configured budget.
func Solve(budget time.Duration, eqs []*Expr, syms []Symbol) (map[Symbol]minikanren.Rational, error) {
	if budget <= 0 {
		budget = DefaultBudget
	}
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	type result struct {
		vals map[Symbol]minikanren.Rational
		err  error
	}
	done := make(chan result, 1)
	go func() {
		vals, err := solveSystem(ctx, eqs, syms)
		done <- result{vals, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ErrTimeout
	case r := <-done:
		return r.vals, r.err
	}
}

func solveSystem(ctx context.Context, eqs []*Expr, syms []Symbol) (map[Symbol]minikanren.Rational, error) {
	if len(syms) == 0 || len(eqs) < len(syms) {
		return nil, ErrNoSolution
	}

	linear := true
	coeffRows := make([]map[Symbol]minikanren.Rational, 0, len(syms))
	constRows := make([]minikanren.Rational, 0, len(syms))
	for _, eq := range eqs[:len(syms)] {
		coeffs, constant, ok := linearCoeffs(eq, syms)
		if !ok {
			linear = false
			break
		}
		coeffRows = append(coeffRows, coeffs)
		constRows = append(constRows, constant)
	}

	if linear {
		return gaussianSolve(coeffRows, constRows, syms)
	}

	if len(syms) == 1 {
		return bisectionSolve(ctx, eqs[0], syms[0])
	}

	return nil, ErrNoSolution
}

// linearCoeffs inspects a simplified expression `e` (interpreted as
// `e == 0`) and reports, per target symbol, its linear coefficient plus the
// remaining constant term. ok is false the moment any target symbol
// appears inside a non-linear position (an exponent other than 1, a
// product of two target symbols, or inside sin/cos/tan).
func linearCoeffs(e *Expr, syms []Symbol) (map[Symbol]minikanren.Rational, minikanren.Rational, bool) {
	isTarget := func(s Symbol) bool {
		for _, t := range syms {
			if t == s {
				return true
			}
		}
		return false
	}

	simplified := Simplify(e)
	var terms []*Expr
	if simplified.Kind == KindAdd {
		terms = simplified.Args
	} else {
		terms = []*Expr{simplified}
	}

	coeffs := map[Symbol]minikanren.Rational{}
	constant := minikanren.NewRational(0, 1)

	for _, term := range terms {
		coeff, base := splitCoeff(term)
		if base == nil {
			constant = constant.Add(coeff)
			continue
		}
		if base.Kind == KindSym && isTarget(base.Sym) {
			cur, ok := coeffs[base.Sym]
			if !ok {
				cur = minikanren.NewRational(0, 1)
			}
			coeffs[base.Sym] = cur.Add(coeff)
			continue
		}
		if mentionsAny(base, syms) {
			return nil, constant, false
		}
		return nil, constant, false
	}

	return coeffs, constant, true
}

func mentionsAny(e *Expr, syms []Symbol) bool {
	free := FreeSymbols(e)
	for _, s := range syms {
		if _, ok := free[s]; ok {
			return true
		}
	}
	return false
}

// gaussianSolve solves coeffRows[i] . x + constRows[i] = 0 for x, using
// exact Rational arithmetic with partial pivoting, then rounds each result
// to six decimal places.
func gaussianSolve(coeffRows []map[Symbol]minikanren.Rational, constRows []minikanren.Rational, syms []Symbol) (map[Symbol]minikanren.Rational, error) {
	n := len(syms)
	zero := minikanren.NewRational(0, 1)

	matrix := make([][]minikanren.Rational, n)
	for i := 0; i < n; i++ {
		row := make([]minikanren.Rational, n+1)
		for j, s := range syms {
			c, ok := coeffRows[i][s]
			if !ok {
				c = zero
			}
			row[j] = c
		}
		row[n] = zero.Sub(constRows[i])
		matrix[i] = row
	}

	for col := 0; col < n; col++ {
		pivot := -1
		for r := col; r < n; r++ {
			if !matrix[r][col].IsZero() {
				pivot = r
				break
			}
		}
		if pivot == -1 {
			return nil, ErrNoSolution
		}
		matrix[col], matrix[pivot] = matrix[pivot], matrix[col]

		pivotVal := matrix[col][col]
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			if matrix[r][col].IsZero() {
				continue
			}
			factor := matrix[r][col].Div(pivotVal)
			for c := col; c <= n; c++ {
				matrix[r][c] = matrix[r][c].Sub(factor.Mul(matrix[col][c]))
			}
		}
	}

	out := map[Symbol]minikanren.Rational{}
	for i, s := range syms {
		if matrix[i][i].IsZero() {
			return nil, ErrNoSolution
		}
		out[s] = rationalFromFloat(matrix[i][n].Div(matrix[i][i]).ToFloat(), 6)
	}
	return out, nil
}

// bisectionSolve is the fallback for a single free symbol appearing
// non-linearly (typically inside sin/cos/tan, as with law-of-cosines style
// equations). It samples the residual across a wide bracket to find a sign
// change, then bisects to six-decimal precision, matching the rounding the
// rest of the engine applies to numeric results.
func bisectionSolve(ctx context.Context, eq *Expr, sym Symbol) (map[Symbol]minikanren.Rational, error) {
	const lo, hi = -1e6, 1e6
	const samples = 4096

	residual := func(x float64) float64 { return evalFloat(eq, sym, x) }

	step := (hi - lo) / samples
	prevX := lo
	prevV := residual(prevX)
	var braLo, braHi float64
	found := false

	for i := 1; i <= samples; i++ {
		select {
		case <-ctx.Done():
			return nil, ErrTimeout
		default:
		}
		x := lo + step*float64(i)
		v := residual(x)
		if prevV == 0 {
			braLo, braHi = prevX, prevX
			found = true
			break
		}
		if (prevV < 0) != (v < 0) {
			braLo, braHi = prevX, x
			found = true
			break
		}
		prevX, prevV = x, v
	}
	if !found {
		return nil, ErrNoSolution
	}

	for i := 0; i < 200 && braHi-braLo > 1e-9; i++ {
		select {
		case <-ctx.Done():
			return nil, ErrTimeout
		default:
		}
		mid := (braLo + braHi) / 2
		v := residual(mid)
		if v == 0 {
			braLo, braHi = mid, mid
			break
		}
		if (residual(braLo) < 0) != (v < 0) {
			braHi = mid
		} else {
			braLo = mid
		}
	}

	root := (braLo + braHi) / 2
	return map[Symbol]minikanren.Rational{sym: rationalFromFloat(root, 6)}, nil
}

// evalFloat evaluates e numerically given a single substituted symbol. It
// assumes e has no other free symbols (the caller is responsible for
// resolving every other unknown to a constant first).
func evalFloat(e *Expr, sym Symbol, val float64) float64 {
	switch e.Kind {
	case KindConst:
		return e.Const.ToFloat()
	case KindSym:
		if e.Sym == sym {
			return val
		}
		return 0
	case KindAdd:
		sum := 0.0
		for _, a := range e.Args {
			sum += evalFloat(a, sym, val)
		}
		return sum
	case KindMul:
		prod := 1.0
		for _, a := range e.Args {
			prod *= evalFloat(a, sym, val)
		}
		return prod
	case KindPow:
		base := evalFloat(e.Args[0], sym, val)
		exp := evalFloat(e.Args[1], sym, val)
		return powFloat(base, exp)
	case KindSin:
		return sinFloat(evalFloat(e.Args[0], sym, val))
	case KindCos:
		return cosFloat(evalFloat(e.Args[0], sym, val))
	case KindTan:
		return tanFloat(evalFloat(e.Args[0], sym, val))
	default:
		return 0
	}
}

// powFloat special-cases integer exponents so that e.g. squaring a negative
// base behaves as ordinary arithmetic rather than via math.Pow's more
// permissive (and sometimes surprising) float semantics.
func powFloat(base, exp float64) float64 {
	if exp == math.Trunc(exp) {
		n := int(exp)
		neg := n < 0
		if neg {
			n = -n
		}
		acc := 1.0
		for i := 0; i < n; i++ {
			acc *= base
		}
		if neg {
			return 1 / acc
		}
		return acc
	}
	return math.Pow(base, exp)
}

// Angles are expressed in degrees throughout the attribute grammar (a
// MeasureOfAngle is a degree value), so the float evaluator converts before
// calling into math's radian-based trig, mirroring simplifyTrig.
func sinFloat(degrees float64) float64 { return math.Sin(degrees * math.Pi / 180) }
func cosFloat(degrees float64) float64 { return math.Cos(degrees * math.Pi / 180) }
func tanFloat(degrees float64) float64 { return math.Tan(degrees * math.Pi / 180) }
