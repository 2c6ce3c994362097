package algebra

import (
	"testing"

	"github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeSymbols(t *testing.T) {
	e := Add(Sym("a"), Mul(ConstInt(2), Sym("b")), Pow(Sym("a"), ConstInt(2)))
	free := FreeSymbols(e)
	require.Len(t, free, 2)
	assert.Contains(t, free, Symbol("a"))
	assert.Contains(t, free, Symbol("b"))
}

func TestSubs(t *testing.T) {
	e := Add(Sym("a"), Sym("b"))
	got := Subs(e, "a", ConstInt(3))
	assert.True(t, Equal(got, Add(ConstInt(3), Sym("b"))))
}

func TestCanonicalSignInvariant(t *testing.T) {
	// a - b must simplify/hash identically to -(b - a).
	a, b := Sym("a"), Sym("b")
	lhs := Sub(a, b)
	rhs := Neg(Sub(b, a))
	assert.Equal(t, CanonicalKey(lhs), CanonicalKey(rhs))
	assert.True(t, Equal(lhs, rhs))
}

func TestSimplifyCollectsLikeTerms(t *testing.T) {
	// 2x + 3x - x should simplify to 4x.
	x := Sym("x")
	e := Add(Mul(ConstInt(2), x), Mul(ConstInt(3), x), Neg(x))
	got := Simplify(e)
	want := Simplify(Mul(ConstInt(4), x))
	assert.Equal(t, want.canonicalKey(), got.canonicalKey())
}

func TestSimplifyFoldsConstants(t *testing.T) {
	e := Add(ConstInt(2), ConstInt(3), Sym("x"))
	got := Simplify(e)
	assert.Equal(t, KindAdd, got.Kind)

	var hasConst5 bool
	for _, a := range got.Args {
		if a.Kind == KindConst && a.Const.Equals(minikanren.NewRational(5, 1)) {
			hasConst5 = true
		}
	}
	assert.True(t, hasConst5)
}

func TestSimplifyZeroSum(t *testing.T) {
	x := Sym("x")
	got := Simplify(Sub(x, x))
	assert.Equal(t, KindConst, got.Kind)
	assert.True(t, got.Const.IsZero())
}

func TestSimplifyPowIdentities(t *testing.T) {
	x := Sym("x")
	assert.True(t, Equal(Pow(x, ConstInt(0)), ConstInt(1)))
	assert.True(t, Equal(Pow(x, ConstInt(1)), x))
	assert.True(t, Equal(Pow(ConstInt(2), ConstInt(3)), ConstInt(8)))
}

func TestSimplifyTrigConstants(t *testing.T) {
	got := Simplify(SinE(ConstInt(0)))
	require.Equal(t, KindConst, got.Kind)
	assert.InDelta(t, 0.0, got.Const.ToFloat(), 1e-6)

	got = Simplify(CosE(ConstInt(0)))
	assert.InDelta(t, 1.0, got.Const.ToFloat(), 1e-6)
}
