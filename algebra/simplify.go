package algebra

import (
	"math"
	"sort"

	"github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// Simplify reduces e to a canonical rational-normal form: nested Add/Mul are
// flattened, constant sub-expressions are folded, a constant factor is
// distributed over a single sum, like terms are collected by their
// canonical key, and operand lists are sorted. This is what makes `a-b` and
// `-(b-a)` compare and hash equal (data-model invariant 6 in spec.md §3);
// choosing one sign between an equation and its negation is done by the
// kernel's canonicalEquation (kernel/equation_sort.go).
func Simplify(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case KindConst, KindSym:
		return e
	case KindAdd:
		return simplifyAdd(e)
	case KindMul:
		return simplifyMul(e)
	case KindPow:
		return simplifyPow(e)
	case KindSin:
		return simplifyTrig(e, math.Sin)
	case KindCos:
		return simplifyTrig(e, math.Cos)
	case KindTan:
		return simplifyTrig(e, math.Tan)
	default:
		return e
	}
}

func flattenAdd(args []*Expr, out *[]*Expr) {
	for _, a := range args {
		s := Simplify(a)
		if s.Kind == KindAdd {
			flattenAdd(s.Args, out)
		} else {
			*out = append(*out, s)
		}
	}
}

func flattenMul(args []*Expr, out *[]*Expr) {
	for _, a := range args {
		s := Simplify(a)
		if s.Kind == KindMul {
			flattenMul(s.Args, out)
		} else {
			*out = append(*out, s)
		}
	}
}

// splitCoeff recognizes `coeff * base` shapes (where base may itself be a
// product of several non-constant factors) so like terms can be collected.
func splitCoeff(e *Expr) (minikanren.Rational, *Expr) {
	one := minikanren.NewRational(1, 1)
	if e.Kind == KindConst {
		return e.Const, nil
	}
	if e.Kind == KindMul && len(e.Args) > 0 && e.Args[0].Kind == KindConst {
		rest := e.Args[1:]
		if len(rest) == 0 {
			return e.Args[0].Const, nil
		}
		if len(rest) == 1 {
			return e.Args[0].Const, rest[0]
		}
		return e.Args[0].Const, &Expr{Kind: KindMul, Args: append([]*Expr{}, rest...)}
	}
	return one, e
}

func simplifyAdd(e *Expr) *Expr {
	var flat []*Expr
	flattenAdd(e.Args, &flat)

	constSum := minikanren.NewRational(0, 1)
	type term struct {
		coeff minikanren.Rational
		base  *Expr
	}
	order := []string{}
	byKey := map[string]*term{}

	for _, f := range flat {
		coeff, base := splitCoeff(f)
		if base == nil {
			constSum = constSum.Add(coeff)
			continue
		}
		key := base.canonicalKey()
		if t, ok := byKey[key]; ok {
			t.coeff = t.coeff.Add(coeff)
		} else {
			byKey[key] = &term{coeff: coeff, base: base}
			order = append(order, key)
		}
	}

	sort.Strings(order)

	var out []*Expr
	if !constSum.IsZero() {
		out = append(out, Const(constSum))
	}
	for _, k := range order {
		t := byKey[k]
		if t.coeff.IsZero() {
			continue
		}
		if t.coeff.Equals(minikanren.NewRational(1, 1)) {
			out = append(out, t.base)
		} else {
			out = append(out, &Expr{Kind: KindMul, Args: []*Expr{Const(t.coeff), t.base}})
		}
	}

	switch len(out) {
	case 0:
		return Const0
	case 1:
		return out[0]
	default:
		return &Expr{Kind: KindAdd, Args: out}
	}
}

func simplifyMul(e *Expr) *Expr {
	var flat []*Expr
	flattenMul(e.Args, &flat)

	constProd := minikanren.NewRational(1, 1)
	type factor struct {
		exp  *Expr
		base *Expr
	}
	order := []string{}
	byKey := map[string]*factor{}

	for _, f := range flat {
		if f.Kind == KindConst {
			constProd = constProd.Mul(f.Const)
			continue
		}
		base, exp := f, Const1
		if f.Kind == KindPow {
			base, exp = f.Args[0], f.Args[1]
		}
		key := base.canonicalKey()
		if ft, ok := byKey[key]; ok {
			if ft.exp.Kind == KindConst && exp.Kind == KindConst {
				ft.exp = Const(ft.exp.Const.Add(exp.Const))
			} else {
				ft.exp = Add(ft.exp, exp)
			}
		} else {
			byKey[key] = &factor{exp: exp, base: base}
			order = append(order, key)
		}
	}

	if constProd.IsZero() {
		return Const0
	}

	// A constant times a single sum is distributed over the sum's terms, so
	// that -(b-a) reaches the same canonical form as a-b.
	if len(order) == 1 && !constProd.Equals(minikanren.NewRational(1, 1)) {
		ft := byKey[order[0]]
		exp := Simplify(ft.exp)
		if ft.base.Kind == KindAdd && exp.Kind == KindConst && exp.Const.Equals(minikanren.NewRational(1, 1)) {
			terms := make([]*Expr, len(ft.base.Args))
			for i, a := range ft.base.Args {
				terms[i] = Mul(Const(constProd), a)
			}
			return Simplify(Add(terms...))
		}
	}

	sort.Strings(order)

	var out []*Expr
	if !constProd.Equals(minikanren.NewRational(1, 1)) || len(order) == 0 {
		out = append(out, Const(constProd))
	}
	for _, k := range order {
		ft := byKey[k]
		expSimplified := Simplify(ft.exp)
		if expSimplified.Kind == KindConst && expSimplified.Const.IsZero() {
			continue
		}
		if expSimplified.Kind == KindConst && expSimplified.Const.Equals(minikanren.NewRational(1, 1)) {
			out = append(out, ft.base)
		} else {
			out = append(out, &Expr{Kind: KindPow, Args: []*Expr{ft.base, expSimplified}})
		}
	}

	switch len(out) {
	case 0:
		return Const1
	case 1:
		return out[0]
	default:
		return &Expr{Kind: KindMul, Args: out}
	}
}

func simplifyPow(e *Expr) *Expr {
	base := Simplify(e.Args[0])
	exp := Simplify(e.Args[1])
	if exp.Kind == KindConst {
		if exp.Const.IsZero() {
			return Const1
		}
		if exp.Const.Equals(minikanren.NewRational(1, 1)) {
			return base
		}
	}
	if base.Kind == KindConst && exp.Kind == KindConst && exp.Const.Den == 1 {
		n := exp.Const.Num
		acc := minikanren.NewRational(1, 1)
		b := base.Const
		if n < 0 {
			if b.IsZero() {
				return &Expr{Kind: KindPow, Args: []*Expr{base, exp}}
			}
			b = minikanren.NewRational(1, 1).Div(b)
			n = -n
		}
		for i := 0; i < n; i++ {
			acc = acc.Mul(b)
		}
		return Const(acc)
	}
	return &Expr{Kind: KindPow, Args: []*Expr{base, exp}}
}

// simplifyTrig evaluates sin/cos/tan of a constant, closed-form angle
// (assumed to be expressed in degrees, matching the geometry domain's
// MeasureOfAngle attribute). Non-constant arguments are left untouched:
// spec.md §4.A is explicit that simplify does not apply trigonometric
// identities beyond evaluating constants.
func simplifyTrig(e *Expr, fn func(float64) float64) *Expr {
	arg := Simplify(e.Args[0])
	if arg.Kind != KindConst {
		return &Expr{Kind: e.Kind, Args: []*Expr{arg}}
	}
	radians := arg.Const.ToFloat() * math.Pi / 180
	return Const(rationalFromFloat(fn(radians), 6))
}

func rationalFromFloat(f float64, decimals int) minikanren.Rational {
	scale := 1
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	return minikanren.NewRational(int(math.Round(f*float64(scale))), scale)
}
