package kernel

import (
	"testing"
	"time"

	"github.com/formalgeo/geokernel/algebra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S6. Timeout recovery: a pool built to exceed the budget logs a warning
// and commits no value, but subsequent easier targets still solve.
func TestScenarioTimeoutRecovery(t *testing.T) {
	p := NewProblem(nil, WithSolveBudget(time.Nanosecond))

	hard := algebra.Sub(algebra.Pow(sym("x"), algebra.ConstInt(2)), algebra.ConstInt(-9))
	err := p.LoadProblem([]InitFact{
		{Predicate: "Equation", Expr: hard},
	}, Goal{})
	require.NoError(t, err)

	_, ok := p.store.ValueOfSym("x")
	assert.False(t, ok)

	// An easier target on a fresh Problem with a normal budget still
	// solves; the prior timeout did not poison the algebra layer itself.
	p2 := NewProblem(nil)
	require.NoError(t, p2.LoadProblem([]InitFact{
		{Predicate: "Equation", Expr: algebra.Sub(sym("y"), algebra.ConstInt(4))},
	}, Goal{}))
	v, ok := p2.store.ValueOfSym("y")
	require.True(t, ok)
	assert.InDelta(t, 4.0, v.Const.ToFloat(), 1e-9)
}

func TestGetMinimumEquationsConnectedComponent(t *testing.T) {
	a, b, c := algebra.Sym("a"), algebra.Sym("b"), algebra.Sym("c")
	eq1 := algebra.Sub(a, b)
	eq2 := algebra.Sub(b, c)
	unrelated := algebra.Sub(algebra.Sym("p"), algebra.Sym("q"))

	entries := []eqEntry{
		{key: "eq1", sourceID: 1, expr: eq1},
		{key: "eq2", sourceID: 2, expr: eq2},
		{key: "unrelated", sourceID: 3, expr: unrelated},
	}

	target := algebra.Sub(a, algebra.ConstInt(1))
	subsystem, syms := getMinimumEquations(algebra.FreeSymbols(target), entries)

	keys := map[string]bool{}
	for _, e := range subsystem {
		keys[e.key] = true
	}
	assert.True(t, keys["eq1"])
	assert.True(t, keys["eq2"])
	assert.False(t, keys["unrelated"])

	symSet := map[algebra.Symbol]bool{}
	for _, s := range syms {
		symSet[s] = true
	}
	assert.True(t, symSet["a"])
	assert.True(t, symSet["b"])
	assert.True(t, symSet["c"])
}

func TestSimplificationValueReplaceFixpoint(t *testing.T) {
	p := NewProblem(nil)
	require.NoError(t, p.LoadProblem([]InitFact{
		{Predicate: "Equation", Expr: algebra.Sub(sym("a"), algebra.ConstInt(3))},
		{Predicate: "Equation", Expr: algebra.Sub(algebra.Sub(sym("b"), sym("a")), algebra.ConstInt(4))},
		{Predicate: "Equation", Expr: algebra.Sub(algebra.Add(sym("c"), sym("b")), algebra.ConstInt(20))},
	}, Goal{}))

	for _, name := range []algebra.Symbol{"a", "b", "c"} {
		v, ok := p.store.ValueOfSym(name)
		require.True(t, ok, "expected %s to be known", name)
		_ = v
	}
	va, _ := p.store.ValueOfSym("a")
	vb, _ := p.store.ValueOfSym("b")
	vc, _ := p.store.ValueOfSym("c")
	assert.InDelta(t, 3.0, va.Const.ToFloat(), 1e-9)
	assert.InDelta(t, 7.0, vb.Const.ToFloat(), 1e-9)
	assert.InDelta(t, 13.0, vc.Const.ToFloat(), 1e-9)

	assert.Empty(t, p.store.workingPool)
}
