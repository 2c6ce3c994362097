package kernel

import (
	"github.com/formalgeo/geokernel/algebra"
	"github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// TreeOp tags the shape of an AttrTree node.
type TreeOp int

const (
	TreeConst TreeOp = iota
	TreeAttr
	TreeAdd
	TreeSub
	TreeMul
	TreeDiv
	TreePow
	TreeSin
	TreeCos
	TreeTan
)

// AttrTree is the small AST a theorem's Equal/~Equal atom carries before
// its role letters are bound to concrete points: a TreeAttr leaf names an
// attribute kind plus the role letters that will become its point tuple;
// every other node is an ordinary algebraic operator. Instantiate resolves
// TreeAttr leaves through the store's attribute grammar and rebuilds the
// rest with algebra package constructors.
type AttrTree struct {
	Op    TreeOp
	Const minikanren.Rational
	Kind  AttrKind
	Roles []string
	Args  []*AttrTree
}

func ConstTree(num, den int) *AttrTree {
	return &AttrTree{Op: TreeConst, Const: minikanren.NewRational(num, den)}
}

func AttrLeaf(kind AttrKind, roles ...string) *AttrTree {
	return &AttrTree{Op: TreeAttr, Kind: kind, Roles: roles}
}

func AddTree(a, b *AttrTree) *AttrTree { return &AttrTree{Op: TreeAdd, Args: []*AttrTree{a, b}} }
func SubTree(a, b *AttrTree) *AttrTree { return &AttrTree{Op: TreeSub, Args: []*AttrTree{a, b}} }
func MulTree(a, b *AttrTree) *AttrTree { return &AttrTree{Op: TreeMul, Args: []*AttrTree{a, b}} }
func DivTree(a, b *AttrTree) *AttrTree { return &AttrTree{Op: TreeDiv, Args: []*AttrTree{a, b}} }
func PowTree(a, b *AttrTree) *AttrTree { return &AttrTree{Op: TreePow, Args: []*AttrTree{a, b}} }
func SinTree(a *AttrTree) *AttrTree    { return &AttrTree{Op: TreeSin, Args: []*AttrTree{a}} }
func CosTree(a *AttrTree) *AttrTree    { return &AttrTree{Op: TreeCos, Args: []*AttrTree{a}} }
func TanTree(a *AttrTree) *AttrTree    { return &AttrTree{Op: TreeTan, Args: []*AttrTree{a}} }

// FreeRoles returns the distinct role letters appearing in any TreeAttr
// leaf of t, in first-occurrence order.
func (t *AttrTree) FreeRoles() []string {
	seen := map[string]bool{}
	var out []string
	var walk func(*AttrTree)
	walk = func(n *AttrTree) {
		if n == nil {
			return
		}
		if n.Op == TreeAttr {
			for _, r := range n.Roles {
				if !seen[r] {
					seen[r] = true
					out = append(out, r)
				}
			}
			return
		}
		for _, a := range n.Args {
			walk(a)
		}
	}
	walk(t)
	return out
}

// Instantiate resolves t against a concrete role binding (role letter ->
// point name) into an algebra.Expr, interning each TreeAttr leaf's Symbol
// through the store's attribute grammar.
func (t *AttrTree) Instantiate(store *Store, binding map[string]string) *algebra.Expr {
	switch t.Op {
	case TreeConst:
		return algebra.Const(t.Const)
	case TreeAttr:
		points := make([]string, len(t.Roles))
		for i, r := range t.Roles {
			points[i] = binding[r]
		}
		sym := store.SymbolFor(t.Kind, points)
		return algebra.Sym(sym)
	case TreeAdd:
		return algebra.Add(t.Args[0].Instantiate(store, binding), t.Args[1].Instantiate(store, binding))
	case TreeSub:
		return algebra.Sub(t.Args[0].Instantiate(store, binding), t.Args[1].Instantiate(store, binding))
	case TreeMul:
		return algebra.Mul(t.Args[0].Instantiate(store, binding), t.Args[1].Instantiate(store, binding))
	case TreeDiv:
		return algebra.Div(t.Args[0].Instantiate(store, binding), t.Args[1].Instantiate(store, binding))
	case TreePow:
		return algebra.Pow(t.Args[0].Instantiate(store, binding), t.Args[1].Instantiate(store, binding))
	case TreeSin:
		return algebra.SinE(t.Args[0].Instantiate(store, binding))
	case TreeCos:
		return algebra.CosE(t.Args[0].Instantiate(store, binding))
	case TreeTan:
		return algebra.TanE(t.Args[0].Instantiate(store, binding))
	default:
		return algebra.Const0
	}
}
