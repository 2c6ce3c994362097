package algebra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveLinearSystem(t *testing.T) {
	// x + y - 5 = 0
	// x - y - 1 = 0
	// x = 3, y = 2
	x, y := Sym("x"), Sym("y")
	eq1 := Sub(Add(x, y), ConstInt(5))
	eq2 := Sub(Sub(x, y), ConstInt(1))

	vals, err := Solve(time.Second, []*Expr{eq1, eq2}, []Symbol{"x", "y"})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, vals["x"].ToFloat(), 1e-9)
	assert.InDelta(t, 2.0, vals["y"].ToFloat(), 1e-9)
}

func TestSolveInconsistentSystem(t *testing.T) {
	x, y := Sym("x"), Sym("y")
	eq1 := Sub(Add(x, y), ConstInt(5))
	eq2 := Sub(Add(x, y), ConstInt(6))

	_, err := Solve(time.Second, []*Expr{eq1, eq2}, []Symbol{"x", "y"})
	assert.ErrorIs(t, err, ErrNoSolution)
}

func TestSolveSingleLinearUnknown(t *testing.T) {
	x := Sym("x")
	// 2x - 10 = 0 -> x = 5
	eq := Sub(Mul(ConstInt(2), x), ConstInt(10))

	vals, err := Solve(time.Second, []*Expr{eq}, []Symbol{"x"})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, vals["x"].ToFloat(), 1e-9)
}

func TestSolveNonLinearBisection(t *testing.T) {
	x := Sym("x")
	// x^2 - 9 = 0, searching from a wide bracket finds -3 first.
	eq := Sub(Pow(x, ConstInt(2)), ConstInt(9))

	vals, err := Solve(time.Second, []*Expr{eq}, []Symbol{"x"})
	require.NoError(t, err)
	assert.InDelta(t, 9.0, vals["x"].ToFloat()*vals["x"].ToFloat(), 1e-3)
}

func TestSolveTimeout(t *testing.T) {
	x := Sym("x")
	eq := Sub(Pow(x, ConstInt(2)), ConstInt(-9))

	_, err := Solve(time.Nanosecond, []*Expr{eq}, []Symbol{"x"})
	assert.True(t, err == ErrTimeout || err == ErrNoSolution)
}
