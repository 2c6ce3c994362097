package kernel

import (
	"testing"

	"github.com/formalgeo/geokernel/algebra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Invariant 1: every premise id of a fact is strictly less than the fact's
// own id.
func TestInvariantIDMonotonicity(t *testing.T) {
	p := NewProblem([]PredicateDef{{Name: "Line", Arity: 2, Roles: []string{"x", "y"}, Category: Relation}})
	require.NoError(t, p.LoadProblem([]InitFact{
		{Predicate: "Line", Points: []string{"A", "B"}},
	}, Goal{}))

	id, _, err := p.store.AddLogicFact("Line", []string{"B", "C"}, []FactID{0}, "derived")
	require.NoError(t, err)

	for _, prov := range p.store.provenance {
		for _, premise := range prov.Premises {
			assert.Less(t, premise, prov.ID)
		}
	}
	assert.Greater(t, id, FactID(0))
}

// Invariant 2: a second add of an existing item returns the same id and
// does not widen its premise set.
func TestInvariantDeduplication(t *testing.T) {
	st := newStore()
	st.registerPredicate(PredicateDef{Name: "Line", Arity: 2, Category: Relation})

	id1, added1, err := st.AddLogicFact("Line", []string{"A", "B"}, []FactID{}, "init_problem")
	require.NoError(t, err)
	assert.True(t, added1)

	id2, added2, err := st.AddLogicFact("Line", []string{"A", "B"}, []FactID{99}, "something_else")
	require.NoError(t, err)
	assert.False(t, added2)
	assert.Equal(t, id1, id2)
	assert.NotContains(t, st.provenance[id1].Premises, FactID(99))
}

// Invariant 6: adding expr is equivalent to adding -expr.
func TestInvariantCanonicalEquationSign(t *testing.T) {
	st := newStore()
	a, b := algebra.Sym("a"), algebra.Sym("b")
	e := algebra.Sub(a, b)
	neg := algebra.Neg(e)

	id1, added1 := st.AddEquationFact(e, nil, "init_problem")
	assert.True(t, added1)
	id2, added2 := st.AddEquationFact(neg, nil, "init_problem")
	assert.False(t, added2)
	assert.Equal(t, id1, id2)
}

// Invariant 4: solve_target(e) and solve_target(-e) agree up to sign, or
// both return unknown.
func TestInvariantSolveTargetSignSymmetric(t *testing.T) {
	p := NewProblem(nil)
	require.NoError(t, p.LoadProblem([]InitFact{
		{Predicate: "Equation", Expr: algebra.Sub(sym("a"), algebra.ConstInt(5))},
	}, Goal{}))

	v1, _, _, ok1 := p.solveTarget(sym("a"))
	v2, _, _, ok2 := p.solveTarget(algebra.Neg(sym("a")))
	require.True(t, ok1)
	require.True(t, ok2)
	assert.InDelta(t, v1.Const.ToFloat(), -v2.Const.ToFloat(), 1e-9)
}

func TestInvariantSolveTargetUnknownBoth(t *testing.T) {
	p := NewProblem(nil)
	require.NoError(t, p.LoadProblem(nil, Goal{}))

	_, _, _, ok1 := p.solveTarget(sym("z"))
	_, _, _, ok2 := p.solveTarget(algebra.Neg(sym("z")))
	assert.False(t, ok1)
	assert.False(t, ok2)
}
