// Package algebra hosts the symbolic expression layer: a small algebraic
// AST closed under + - * / ^ and sin/cos/tan, free-symbol queries,
// substitution, canonical simplification, and a bounded equation solver.
package algebra

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// Symbol is a named algebraic variable. The kernel package is responsible
// for back-referencing a Symbol to the geometric item it denotes; this
// package only ever sees the name.
type Symbol string

// Kind tags the shape of an Expr node.
type Kind byte

const (
	KindConst Kind = iota
	KindSym
	KindAdd
	KindMul
	KindPow
	KindSin
	KindCos
	KindTan
)

// Expr is an immutable algebraic expression node. Add and Mul are
// variadic (n-ary) so that simplification can flatten and collect terms
// without rebuilding deeply nested binary trees. Pow always has exactly
// two Args (base, exponent); Sin/Cos/Tan always have exactly one.
type Expr struct {
	Kind  Kind
	Const minikanren.Rational
	Sym   Symbol
	Args  []*Expr
}

// Const0 and Const1 are the two constants simplification reaches for most often.
var (
	Const0 = Const(minikanren.NewRational(0, 1))
	Const1 = Const(minikanren.NewRational(1, 1))
)

func Const(v minikanren.Rational) *Expr { return &Expr{Kind: KindConst, Const: v} }

// ConstInt builds a constant expression from an integer literal.
func ConstInt(n int) *Expr { return Const(minikanren.NewRational(n, 1)) }

func Sym(s Symbol) *Expr { return &Expr{Kind: KindSym, Sym: s} }

func Add(args ...*Expr) *Expr { return &Expr{Kind: KindAdd, Args: args} }

func Mul(args ...*Expr) *Expr { return &Expr{Kind: KindMul, Args: args} }

// Neg returns -e, built as a Mul by the constant -1 so simplification's
// term-collection logic handles it uniformly with other coefficients.
func Neg(e *Expr) *Expr { return Mul(ConstInt(-1), e) }

// Sub returns a - b, built as Add(a, Neg(b)).
func Sub(a, b *Expr) *Expr { return Add(a, Neg(b)) }

// Div returns a / b, built as Mul(a, Pow(b, -1)).
func Div(a, b *Expr) *Expr { return Mul(a, Pow(b, ConstInt(-1))) }

func Pow(base, exp *Expr) *Expr { return &Expr{Kind: KindPow, Args: []*Expr{base, exp}} }

func SinE(arg *Expr) *Expr { return &Expr{Kind: KindSin, Args: []*Expr{arg}} }
func CosE(arg *Expr) *Expr { return &Expr{Kind: KindCos, Args: []*Expr{arg}} }
func TanE(arg *Expr) *Expr { return &Expr{Kind: KindTan, Args: []*Expr{arg}} }

// FreeSymbols returns the set of symbols appearing anywhere in e.
func FreeSymbols(e *Expr) map[Symbol]struct{} {
	out := map[Symbol]struct{}{}
	var walk func(*Expr)
	walk = func(n *Expr) {
		if n == nil {
			return
		}
		if n.Kind == KindSym {
			out[n.Sym] = struct{}{}
			return
		}
		for _, a := range n.Args {
			walk(a)
		}
	}
	walk(e)
	return out
}

// Subs returns a new expression with every occurrence of s replaced by v.
// It is pure: e is never mutated.
func Subs(e *Expr, s Symbol, v *Expr) *Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case KindConst:
		return e
	case KindSym:
		if e.Sym == s {
			return v
		}
		return e
	default:
		args := make([]*Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = Subs(a, s, v)
		}
		return &Expr{Kind: e.Kind, Args: args}
	}
}

// Equal reports structural equality after both sides have been simplified
// to canonical form.
func Equal(a, b *Expr) bool {
	return Simplify(a).canonicalKey() == Simplify(b).canonicalKey()
}

// String renders e in ordinary infix notation, mostly for debugging and
// provenance messages.
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KindConst:
		return e.Const.String()
	case KindSym:
		return string(e.Sym)
	case KindAdd:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.String()
		}
		return "(" + strings.Join(parts, " + ") + ")"
	case KindMul:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.String()
		}
		return "(" + strings.Join(parts, " * ") + ")"
	case KindPow:
		return fmt.Sprintf("(%s ^ %s)", e.Args[0], e.Args[1])
	case KindSin:
		return fmt.Sprintf("sin(%s)", e.Args[0])
	case KindCos:
		return fmt.Sprintf("cos(%s)", e.Args[0])
	case KindTan:
		return fmt.Sprintf("tan(%s)", e.Args[0])
	default:
		return "<invalid expr>"
	}
}

// canonicalKey returns a stable string key for an already-simplified
// expression, used both for Equal and as the hash key the condition store
// deduplicates Equation facts by (data-model invariant 6).
func (e *Expr) canonicalKey() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindConst:
		return "#" + e.Const.String()
	case KindSym:
		return "$" + string(e.Sym)
	default:
		keys := make([]string, len(e.Args))
		for i, a := range e.Args {
			keys[i] = a.canonicalKey()
		}
		if e.Kind == KindAdd || e.Kind == KindMul {
			sort.Strings(keys)
		}
		tag := [...]string{"", "", "+", "*", "^", "sin", "cos", "tan"}[e.Kind]
		return tag + "(" + strings.Join(keys, ",") + ")"
	}
}

// CanonicalKey exposes canonicalKey for packages that need a stable hash
// for an expression already known to be in simplified form (the condition
// store, when interning Equation facts).
func CanonicalKey(e *Expr) string { return Simplify(e).canonicalKey() }
