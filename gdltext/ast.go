package gdltext

import (
	"fmt"
	"strconv"

	"github.com/formalgeo/geokernel/kernel"
)

// categoryFromString maps a predicate declaration's category word onto a
// kernel.Category, the way the teacher's grammar maps a biscuit fact's
// leading symbol onto a concrete Go type.
func categoryFromString(name string) (kernel.Category, error) {
	switch name {
	case "BasicEntity":
		return kernel.BasicEntity, nil
	case "Entity":
		return kernel.Entity, nil
	case "Relation":
		return kernel.Relation, nil
	case "Attribution":
		return kernel.Attribution, nil
	case "Construction":
		return kernel.Construction, nil
	default:
		return 0, fmt.Errorf("gdltext: unknown predicate category %q", name)
	}
}

// attrKindFromString maps an attribute call's name onto a kernel.AttrKind.
func attrKindFromString(name string) (kernel.AttrKind, bool) {
	switch name {
	case "LengthOfLine":
		return kernel.LengthOfLine, true
	case "LengthOfArc":
		return kernel.LengthOfArc, true
	case "MeasureOfAngle":
		return kernel.MeasureOfAngle, true
	case "MeasureOfArc":
		return kernel.MeasureOfArc, true
	case "RatioOfLine":
		return kernel.RatioOfLine, true
	case "AreaOfTriangle":
		return kernel.AreaOfTriangle, true
	case "AreaOfQuadrilateral":
		return kernel.AreaOfQuadrilateral, true
	default:
		return 0, false
	}
}

// PredicateDefs builds the kernel.PredicateDef slice a Program's predicate
// declarations describe. It never needs a *kernel.Problem: roles are
// documentation-only (kernel matching is purely positional).
func PredicateDefs(prog *Program) ([]kernel.PredicateDef, error) {
	defs := make([]kernel.PredicateDef, 0, len(prog.Predicates))
	for _, d := range prog.Predicates {
		cat, err := categoryFromString(d.Category)
		if err != nil {
			return nil, err
		}
		defs = append(defs, kernel.PredicateDef{
			Name:     d.Name,
			Arity:    len(d.Roles),
			Roles:    d.Roles,
			Category: cat,
		})
	}
	return defs, nil
}

// buildTree turns a parsed Tree into a kernel.AttrTree, the way the
// teacher's grammar.go turns a parsed Term into a biscuit.Term.
func buildTree(t *Tree) (*kernel.AttrTree, error) {
	left, err := buildMulTerm(t.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range t.Rest {
		right, err := buildMulTerm(op.Right)
		if err != nil {
			return nil, err
		}
		if op.Op == "+" {
			left = kernel.AddTree(left, right)
		} else {
			left = kernel.SubTree(left, right)
		}
	}
	return left, nil
}

func buildMulTerm(t *MulTerm) (*kernel.AttrTree, error) {
	left, err := buildPowTerm(t.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range t.Rest {
		right, err := buildPowTerm(op.Right)
		if err != nil {
			return nil, err
		}
		if op.Op == "*" {
			left = kernel.MulTree(left, right)
		} else {
			left = kernel.DivTree(left, right)
		}
	}
	return left, nil
}

func buildPowTerm(t *PowTerm) (*kernel.AttrTree, error) {
	base, err := buildUnary(t.Base)
	if err != nil {
		return nil, err
	}
	if t.Exp == nil {
		return base, nil
	}
	exp, err := buildPowTerm(t.Exp)
	if err != nil {
		return nil, err
	}
	return kernel.PowTree(base, exp), nil
}

func buildUnary(t *UnaryTerm) (*kernel.AttrTree, error) {
	p, err := buildPrimary(t.Primary)
	if err != nil {
		return nil, err
	}
	if t.Neg {
		return kernel.SubTree(kernel.ConstTree(0, 1), p), nil
	}
	return p, nil
}

func buildPrimary(p *Primary) (*kernel.AttrTree, error) {
	switch {
	case p.Float != nil:
		return constTreeFromFloat(*p.Float), nil
	case p.Int != nil:
		return kernel.ConstTree(*p.Int, 1), nil
	case p.Func != nil:
		arg, err := buildTree(p.Func.Arg)
		if err != nil {
			return nil, err
		}
		switch p.Func.Name {
		case "sin":
			return kernel.SinTree(arg), nil
		case "cos":
			return kernel.CosTree(arg), nil
		default:
			return kernel.TanTree(arg), nil
		}
	case p.AttrCall != nil:
		kind, ok := attrKindFromString(p.AttrCall.Name)
		if !ok {
			return nil, fmt.Errorf("gdltext: unknown attribute kind %q", p.AttrCall.Name)
		}
		return kernel.AttrLeaf(kind, p.AttrCall.Roles...), nil
	case p.Ident != nil:
		return kernel.AttrLeaf(kernel.Free, *p.Ident), nil
	case p.Sub != nil:
		return buildTree(p.Sub)
	default:
		return nil, fmt.Errorf("gdltext: empty tree primary")
	}
}

// constTreeFromFloat turns a decimal literal into a rational AttrTree
// constant over a fixed denominator of 10^6, rounding the literal to six
// decimal places.
func constTreeFromFloat(f float64) *kernel.AttrTree {
	const scale = 1_000_000
	return kernel.ConstTree(int(f*scale+sign(f)*0.5), scale)
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

// roleOf extracts the bare role/point letter a CallDecl argument must be
// when it is used as a logic-atom argument rather than an Equal/NotEqual
// operand: a plain Primary.Ident tree with no operators around it.
func roleOf(t *Tree) (string, error) {
	if len(t.Rest) != 0 {
		return "", fmt.Errorf("gdltext: expected a bare role/point, got an expression")
	}
	if len(t.Left.Rest) != 0 {
		return "", fmt.Errorf("gdltext: expected a bare role/point, got an expression")
	}
	pt := t.Left.Left
	if pt.Exp != nil {
		return "", fmt.Errorf("gdltext: expected a bare role/point, got an expression")
	}
	u := pt.Base
	if u.Neg || u.Primary.Ident == nil {
		return "", fmt.Errorf("gdltext: expected a bare role/point")
	}
	return *u.Primary.Ident, nil
}

// buildAtomKind converts a CallDecl into either a kernel.Atom (Equal/NotEqual
// over two trees, or a logic predicate over role letters) used inside a
// theorem's premises.
func buildAtomKind(call *CallDecl, negated bool) (kernel.Atom, error) {
	switch call.Name {
	case "Equal", "NotEqual":
		if len(call.Args) != 2 {
			return kernel.Atom{}, fmt.Errorf("gdltext: %s needs exactly two operands", call.Name)
		}
		lhs, err := buildTree(call.Args[0])
		if err != nil {
			return kernel.Atom{}, err
		}
		rhs, err := buildTree(call.Args[1])
		if err != nil {
			return kernel.Atom{}, err
		}
		kind := kernel.AtomEqual
		if call.Name == "NotEqual" {
			kind = kernel.AtomNotEqual
		}
		if negated {
			if kind == kernel.AtomEqual {
				kind = kernel.AtomNotEqual
			} else {
				kind = kernel.AtomEqual
			}
		}
		return kernel.Atom{Kind: kind, Tree: kernel.SubTree(lhs, rhs)}, nil
	default:
		roles := make([]string, len(call.Args))
		for i, a := range call.Args {
			r, err := roleOf(a)
			if err != nil {
				return kernel.Atom{}, err
			}
			roles[i] = r
		}
		kind := kernel.AtomPositiveLogic
		if negated {
			kind = kernel.AtomNegatedLogic
		}
		return kernel.Atom{Kind: kind, Predicate: call.Name, Roles: roles}, nil
	}
}

// buildConclusion converts a CallDecl appearing on a clause's right-hand
// side into a kernel.ConclusionTemplate.
func buildConclusion(call *CallDecl) (kernel.ConclusionTemplate, error) {
	if call.Name == "Equal" {
		if len(call.Args) != 2 {
			return kernel.ConclusionTemplate{}, fmt.Errorf("gdltext: Equal conclusion needs exactly two operands")
		}
		lhs, err := buildTree(call.Args[0])
		if err != nil {
			return kernel.ConclusionTemplate{}, err
		}
		rhs, err := buildTree(call.Args[1])
		if err != nil {
			return kernel.ConclusionTemplate{}, err
		}
		return kernel.ConclusionTemplate{Tree: kernel.SubTree(lhs, rhs)}, nil
	}
	roles := make([]string, len(call.Args))
	for i, a := range call.Args {
		r, err := roleOf(a)
		if err != nil {
			return kernel.ConclusionTemplate{}, err
		}
		roles[i] = r
	}
	return kernel.ConclusionTemplate{Predicate: call.Name, Roles: roles}, nil
}

// TheoremDefs builds the kernel.TheoremDef slice a Program's theorem
// declarations describe.
func TheoremDefs(prog *Program) ([]kernel.TheoremDef, error) {
	defs := make([]kernel.TheoremDef, 0, len(prog.Theorems))
	for _, d := range prog.Theorems {
		def := kernel.TheoremDef{Name: d.Name, Vars: d.Vars, ParaLen: d.ParaLen}
		for _, c := range d.Clauses {
			clause := kernel.Clause{}
			for _, pr := range c.Premises {
				atom, err := buildAtomKind(pr.Call, pr.Negated)
				if err != nil {
					return nil, fmt.Errorf("gdltext: theorem %s: %w", d.Name, err)
				}
				clause.Premises = append(clause.Premises, atom)
			}
			for _, cc := range c.Conclusions {
				concl, err := buildConclusion(cc)
				if err != nil {
					return nil, fmt.Errorf("gdltext: theorem %s: %w", d.Name, err)
				}
				clause.Conclusions = append(clause.Conclusions, concl)
			}
			def.Body = append(def.Body, clause)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// identityBinding builds a role->point binding where every role named by t
// maps to itself: top-level facts and goals are already written against
// concrete point/symbol names, not role letters.
func identityBinding(t *kernel.AttrTree) map[string]string {
	binding := map[string]string{}
	for _, r := range t.FreeRoles() {
		binding[r] = r
	}
	return binding
}

// InitFacts builds the kernel.InitFact slice a Program's top-level facts
// describe, resolving attribute symbols through problem's store.
func InitFacts(problem *kernel.Problem, prog *Program) ([]kernel.InitFact, error) {
	facts := make([]kernel.InitFact, 0, len(prog.Facts))
	for _, f := range prog.Facts {
		if f.Call.Name == "Equal" {
			if len(f.Call.Args) != 2 {
				return nil, fmt.Errorf("gdltext: Equal fact needs exactly two operands")
			}
			lhs, err := buildTree(f.Call.Args[0])
			if err != nil {
				return nil, err
			}
			rhs, err := buildTree(f.Call.Args[1])
			if err != nil {
				return nil, err
			}
			diff := kernel.SubTree(lhs, rhs)
			expr := problem.InstantiateTree(diff, identityBinding(diff))
			facts = append(facts, kernel.InitFact{Predicate: "Equation", Expr: expr})
			continue
		}
		points := make([]string, len(f.Call.Args))
		for i, a := range f.Call.Args {
			r, err := roleOf(a)
			if err != nil {
				return nil, err
			}
			points[i] = r
		}
		facts = append(facts, kernel.InitFact{Predicate: f.Call.Name, Points: points})
	}
	return facts, nil
}

// GoalFromProgram builds the kernel.Goal a Program's optional goal clause describes.
// ok is false when the program carries no goal clause.
func GoalFromProgram(problem *kernel.Problem, prog *Program) (goal kernel.Goal, ok bool, err error) {
	if prog.Goal == nil {
		return kernel.Goal{}, false, nil
	}
	switch {
	case prog.Goal.Value != nil:
		v := prog.Goal.Value
		tree, err := buildTree(v.Item)
		if err != nil {
			return kernel.Goal{}, false, err
		}
		answer, err := strconv.ParseFloat(v.Answer, 64)
		if err != nil {
			return kernel.Goal{}, false, fmt.Errorf("gdltext: bad goal answer %q: %w", v.Answer, err)
		}
		expr := problem.InstantiateTree(tree, identityBinding(tree))
		kind := kernel.GoalValue
		if v.Kind == "equal" {
			kind = kernel.GoalEqual
		}
		return kernel.Goal{Kind: kind, Item: expr, Answer: answer}, true, nil

	case prog.Goal.Logic != nil:
		call := prog.Goal.Logic.Call
		points := make([]string, len(call.Args))
		for i, a := range call.Args {
			r, err := roleOf(a)
			if err != nil {
				return kernel.Goal{}, false, err
			}
			points[i] = r
		}
		return kernel.Goal{Kind: kernel.GoalLogic, Predicate: call.Name, Points: points}, true, nil

	default:
		return kernel.Goal{}, false, fmt.Errorf("gdltext: empty goal clause")
	}
}
