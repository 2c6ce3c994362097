package kernel

import (
	"testing"

	"github.com/formalgeo/geokernel/algebra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sym(s string) *algebra.Expr { return algebra.Sym(algebra.Symbol(s)) }

// S1. Trivial algebra: Equation a-3, Equation b-a-4, goal (value, b, 7).
func TestScenarioTrivialAlgebra(t *testing.T) {
	p := NewProblem(nil)
	eqA := algebra.Sub(sym("a"), algebra.ConstInt(3))
	eqB := algebra.Sub(algebra.Sub(sym("b"), sym("a")), algebra.ConstInt(4))

	err := p.LoadProblem([]InitFact{
		{Predicate: "Equation", Expr: eqA},
		{Predicate: "Equation", Expr: eqB},
	}, Goal{Kind: GoalValue, Item: sym("b"), Answer: 7})
	require.NoError(t, err)

	va, ok := p.store.ValueOfSym("a")
	require.True(t, ok)
	assert.InDelta(t, 3.0, va.Const.ToFloat(), 1e-9)

	vb, ok := p.store.ValueOfSym("b")
	require.True(t, ok)
	assert.InDelta(t, 7.0, vb.Const.ToFloat(), 1e-9)

	result := p.CheckGoal()
	assert.True(t, result.Solved)
	assert.InDelta(t, 7.0, result.SolvedAnswer, 1e-9)
	assert.Len(t, result.Premises, 2)
}

// S2. Equation unreachable: only a+b-5, goal (value, a, 2) is unreachable.
func TestScenarioEquationUnreachable(t *testing.T) {
	p := NewProblem(nil)
	eq := algebra.Sub(algebra.Add(sym("a"), sym("b")), algebra.ConstInt(5))

	err := p.LoadProblem([]InitFact{
		{Predicate: "Equation", Expr: eq},
	}, Goal{Kind: GoalValue, Item: sym("a"), Answer: 2})
	require.NoError(t, err)

	result := p.CheckGoal()
	assert.False(t, result.Solved)

	_, ok := p.store.ValueOfSym("a")
	assert.False(t, ok)
}

func triangleSetup(t *testing.T) *Problem {
	t.Helper()
	p := NewProblem([]PredicateDef{
		{Name: "Line", Arity: 2, Roles: []string{"x", "y"}, Category: Relation},
		{Name: "Triangle", Arity: 3, Roles: []string{"x", "y", "z"}, Category: Relation},
		{Name: "Collinear", Arity: 3, Roles: []string{"x", "y", "z"}, Category: Relation},
	})
	err := p.LoadProblem([]InitFact{
		{Predicate: "Line", Points: []string{"A", "B"}},
		{Predicate: "Line", Points: []string{"B", "C"}},
		{Predicate: "Line", Points: []string{"A", "C"}},
		{Predicate: "Triangle", Points: []string{"A", "B", "C"}},
	}, Goal{Kind: GoalLogic, Predicate: "Triangle", Points: []string{"A", "B", "C"}})
	require.NoError(t, err)
	return p
}

// S3. Positive-logic match.
func TestScenarioPositiveLogicMatch(t *testing.T) {
	p := triangleSetup(t)
	rel, err := p.evaluatePattern([]Atom{
		{Kind: AtomPositiveLogic, Predicate: "Triangle", Roles: []string{"x", "y", "z"}},
		{Kind: AtomPositiveLogic, Predicate: "Line", Roles: []string{"x", "y"}},
		{Kind: AtomPositiveLogic, Predicate: "Line", Roles: []string{"y", "z"}},
		{Kind: AtomPositiveLogic, Predicate: "Line", Roles: []string{"x", "z"}},
	})
	require.NoError(t, err)
	require.Len(t, rel.rows, 1)
	assert.Equal(t, []string{"A", "B", "C"}, rel.rows[0].items)
}

// S4. Negated-logic filter.
func TestScenarioNegatedLogicFilter(t *testing.T) {
	p := triangleSetup(t)

	rel, err := p.evaluatePattern([]Atom{
		{Kind: AtomPositiveLogic, Predicate: "Triangle", Roles: []string{"x", "y", "z"}},
		{Kind: AtomNegatedLogic, Predicate: "Collinear", Roles: []string{"x", "y", "z"}},
	})
	require.NoError(t, err)
	assert.Len(t, rel.rows, 1)

	_, _, err = p.store.AddLogicFact("Collinear", []string{"A", "B", "C"}, nil, "init_problem")
	require.NoError(t, err)

	rel, err = p.evaluatePattern([]Atom{
		{Kind: AtomPositiveLogic, Predicate: "Triangle", Roles: []string{"x", "y", "z"}},
		{Kind: AtomNegatedLogic, Predicate: "Collinear", Roles: []string{"x", "y", "z"}},
	})
	require.NoError(t, err)
	assert.Len(t, rel.rows, 0)
}

// S5. Provenance: applying a theorem stamps applied-name + premises;
// re-application is a no-op.
func TestScenarioProvenanceAndIdempotence(t *testing.T) {
	p := NewProblem([]PredicateDef{
		{Name: "Line", Arity: 2, Roles: []string{"x", "y"}, Category: Relation},
		{Name: "Midpoint", Arity: 3, Roles: []string{"m", "x", "y"}, Category: Relation},
	})
	require.NoError(t, p.LoadProblem([]InitFact{
		{Predicate: "Line", Points: []string{"A", "B"}},
	}, Goal{Kind: GoalLogic, Predicate: "Midpoint", Points: []string{"M", "A", "B"}}))

	def := TheoremDef{
		Name:    "midpoint_definition_forward",
		Vars:    []string{"m", "x", "y"},
		ParaLen: []int{1, 2},
		Body: []Clause{
			{
				Premises: []Atom{
					{Kind: AtomPositiveLogic, Predicate: "Line", Roles: []string{"x", "y"}},
				},
				Conclusions: []ConclusionTemplate{
					{Predicate: "Midpoint", Roles: []string{"m", "x", "y"}},
				},
			},
		},
	}

	added, err := p.ApplyTheoremAccurate(def, []string{"M", "A", "B"})
	require.NoError(t, err)
	assert.True(t, added)

	id, ok := p.store.LogicFactID("Midpoint", []string{"M", "A", "B"})
	require.True(t, ok)
	prov := p.store.provenance[id]
	assert.Equal(t, "midpoint_definition_forward(M,AB)", prov.Theorem)
	assert.Len(t, prov.Premises, 1)

	addedAgain, err := p.ApplyTheoremAccurate(def, []string{"M", "A", "B"})
	require.NoError(t, err)
	assert.False(t, addedAgain)
}

func TestDefinitionTheoremRejectedInForwardMode(t *testing.T) {
	p := NewProblem(nil)
	_, err := p.ApplyTheoremAccurate(TheoremDef{Name: "foo_definition", Vars: []string{"a"}}, []string{"A"})
	require.Error(t, err)
	var defErr *DefinitionError
	assert.ErrorAs(t, err, &defErr)
}

func TestProofTraceTerminatesAtInitProblem(t *testing.T) {
	p := NewProblem(nil)
	eqA := algebra.Sub(sym("a"), algebra.ConstInt(3))
	eqB := algebra.Sub(algebra.Sub(sym("b"), sym("a")), algebra.ConstInt(4))
	require.NoError(t, p.LoadProblem([]InitFact{
		{Predicate: "Equation", Expr: eqA},
		{Predicate: "Equation", Expr: eqB},
	}, Goal{Kind: GoalValue, Item: sym("b"), Answer: 7}))

	result := p.CheckGoal()
	require.True(t, result.Solved)

	trace := p.ProofTrace(result.Premises)
	require.NotEmpty(t, trace)
	for _, prov := range trace {
		if len(prov.Premises) == 0 {
			assert.Equal(t, "init_problem", prov.Theorem)
		}
	}
}

func TestCloneSnapshotsCounter(t *testing.T) {
	p := NewProblem([]PredicateDef{{Name: "Line", Arity: 2, Roles: []string{"x", "y"}, Category: Relation}})
	require.NoError(t, p.LoadProblem([]InitFact{{Predicate: "Line", Points: []string{"A", "B"}}}, Goal{}))

	clone := p.Clone()
	_, added, err := clone.store.AddLogicFact("Line", []string{"B", "C"}, nil, "init_problem")
	require.NoError(t, err)
	assert.True(t, added)

	assert.False(t, p.store.HasLogicFact("Line", []string{"B", "C"}))
}
