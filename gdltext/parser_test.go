package gdltext

import (
	"testing"

	"github.com/formalgeo/geokernel/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePredicateDecl(t *testing.T) {
	prog, err := Parse(`predicate Triangle(x,y,z): Relation`)
	require.NoError(t, err)
	require.Len(t, prog.Predicates, 1)
	assert.Equal(t, "Triangle", prog.Predicates[0].Name)
	assert.Equal(t, []string{"x", "y", "z"}, prog.Predicates[0].Roles)
	assert.Equal(t, "Relation", prog.Predicates[0].Category)

	defs, err := PredicateDefs(prog)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, kernel.Relation, defs[0].Category)
	assert.Equal(t, 3, defs[0].Arity)
}

func TestParseFactsIncludingEqual(t *testing.T) {
	prog, err := Parse(`
predicate Line(x,y): Relation

Line(A,B)
Equal(LengthOfLine(A,B), 5)
`)
	require.NoError(t, err)
	require.Len(t, prog.Facts, 2)
	assert.Equal(t, "Line", prog.Facts[0].Call.Name)
	assert.Equal(t, "Equal", prog.Facts[1].Call.Name)
	require.Len(t, prog.Facts[1].Call.Args, 2)
}

func TestParseTheorem(t *testing.T) {
	src := `
predicate Line(x,y): Relation
predicate Midpoint(m,x,y): Relation

midpoint_definition_forward(m,x,y) para(1,2) {
  Line(x,y) => Midpoint(m,x,y)
}
`
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Theorems, 1)
	th := prog.Theorems[0]
	assert.Equal(t, "midpoint_definition_forward", th.Name)
	assert.Equal(t, []string{"m", "x", "y"}, th.Vars)
	assert.Equal(t, []int{1, 2}, th.ParaLen)
	require.Len(t, th.Clauses, 1)
	require.Len(t, th.Clauses[0].Premises, 1)
	require.Len(t, th.Clauses[0].Conclusions, 1)

	defs, err := TheoremDefs(prog)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Line", defs[0].Body[0].Premises[0].Predicate)
	assert.Equal(t, []string{"x", "y"}, defs[0].Body[0].Premises[0].Roles)
	assert.Equal(t, "Midpoint", defs[0].Body[0].Conclusions[0].Predicate)
}

func TestParseNegatedAndConstraintAtom(t *testing.T) {
	src := `
predicate Triangle(x,y,z): Relation
predicate Collinear(x,y,z): Relation

no_degenerate_triangle(x,y,z) para(3) {
  Triangle(x,y,z), ~Collinear(x,y,z), ~Equal(LengthOfLine(x,y), 0) =>
}
`
	prog, err := Parse(src)
	require.NoError(t, err)
	defs, err := TheoremDefs(prog)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	prem := defs[0].Body[0].Premises
	require.Len(t, prem, 3)
	assert.Equal(t, kernel.AtomPositiveLogic, prem[0].Kind)
	assert.Equal(t, kernel.AtomNegatedLogic, prem[1].Kind)
	assert.Equal(t, kernel.AtomNotEqual, prem[2].Kind)
}

// Mirrors kernel's S1 scenario (trivial algebra), driven entirely from
// textual source.
func TestCompileSourceTrivialAlgebra(t *testing.T) {
	src := `
Equal(a, 3)
Equal(b - a, 4)
goal value(b) = 7
`
	problem, theorems, err := CompileSource(src)
	require.NoError(t, err)
	assert.Empty(t, theorems)

	result := problem.CheckGoal()
	assert.True(t, result.Solved)
	assert.InDelta(t, 7.0, result.SolvedAnswer, 1e-9)
}

// Mirrors the provenance half of kernel's S5 scenario, driven entirely from
// textual source: a Line fact, a midpoint_definition_forward theorem,
// applied accurately once, checked against a logic goal.
func TestCompileSourceTheoremApplication(t *testing.T) {
	src := `
predicate Line(x,y): Relation
predicate Midpoint(m,x,y): Relation

midpoint_definition_forward(m,x,y) para(1,2) {
  Line(x,y) => Midpoint(m,x,y)
}

Line(A,B)
goal logic Midpoint(M,A,B)
`
	problem, theorems, err := CompileSource(src)
	require.NoError(t, err)
	require.Len(t, theorems, 1)

	added, err := problem.ApplyTheoremAccurate(theorems[0], []string{"M", "A", "B"})
	require.NoError(t, err)
	assert.True(t, added)

	result := problem.CheckGoal()
	assert.True(t, result.Solved)
	assert.Contains(t, result.Theorem, "midpoint_definition_forward")
}

func TestParseAttributeExpressionWithFunctions(t *testing.T) {
	prog, err := Parse(`Equal(sin(MeasureOfAngle(A,B,C)) * LengthOfLine(A,B), 1)`)
	require.NoError(t, err)
	require.Len(t, prog.Facts, 1)
	tree, err := buildTree(prog.Facts[0].Call.Args[0])
	require.NoError(t, err)
	assert.Equal(t, kernel.TreeMul, tree.Op)
}
