package kernel

import "math"

// AtomKind tags the shape of one premise-pattern atom (spec.md §4.D).
type AtomKind int

const (
	AtomPositiveLogic AtomKind = iota
	AtomNegatedLogic
	AtomEqual
	AtomNotEqual
)

// Atom is one element of a theorem clause's premise pattern: either a
// (possibly negated) predicate atom over role letters, or an (in)equality
// over an attribute tree.
type Atom struct {
	Kind      AtomKind
	Predicate string
	Roles     []string
	Tree      *AttrTree
}

// matchRow is one row of the matcher's running relation: a concrete
// point binding (aligned positionally with relation.vars) and the set of
// fact ids that justify it so far.
type matchRow struct {
	ids   []FactID
	items []string
}

// relation is the matcher's running R = (ids, items, vars) from spec.md
// §4.D.
type relation struct {
	vars []string
	rows []matchRow
}

func (r *relation) varIndex() map[string]int {
	idx := make(map[string]int, len(r.vars))
	for i, v := range r.vars {
		idx[v] = i
	}
	return idx
}

func roleSubset(roles, vars []string) bool {
	set := make(map[string]bool, len(vars))
	for _, v := range vars {
		set[v] = true
	}
	for _, r := range roles {
		if !set[r] {
			return false
		}
	}
	return true
}

func unionIDs(base []FactID, extra FactID) []FactID {
	for _, id := range base {
		if id == extra {
			return base
		}
	}
	return append(append([]FactID{}, base...), extra)
}

func unionIDsSlice(base []FactID, extra []FactID) []FactID {
	out := append([]FactID{}, base...)
	for _, id := range extra {
		found := false
		for _, have := range out {
			if have == id {
				found = true
				break
			}
		}
		if !found {
			out = append(out, id)
		}
	}
	return out
}

// evaluatePattern runs the full matcher (spec.md §4.D) over a clause's
// premise pattern, a non-empty sequence of atoms that must begin with a
// positive logic atom.
func (p *Problem) evaluatePattern(atoms []Atom) (*relation, error) {
	if len(atoms) == 0 {
		return nil, &DefinitionError{Msg: "empty premise pattern"}
	}
	first := atoms[0]
	if first.Kind != AtomPositiveLogic {
		return nil, &DefinitionError{Msg: "premise pattern must begin with a positive logic atom"}
	}

	ids, items, vars, err := p.store.GetItems(first.Predicate, first.Roles)
	if err != nil {
		return nil, err
	}
	rel := &relation{vars: vars}
	for i := range items {
		rel.rows = append(rel.rows, matchRow{ids: append([]FactID{}, ids[i]...), items: items[i]})
	}

	for _, atom := range atoms[1:] {
		if len(rel.rows) == 0 {
			return rel, nil
		}
		rel, err = p.applyAtom(rel, atom)
		if err != nil {
			return nil, err
		}
	}
	return rel, nil
}

func (p *Problem) applyAtom(rel *relation, atom Atom) (*relation, error) {
	switch atom.Kind {
	case AtomPositiveLogic:
		if roleSubset(atom.Roles, rel.vars) {
			return p.semiJoin(rel, atom)
		}
		return p.constrainedProduct(rel, atom)
	case AtomNegatedLogic:
		if !roleSubset(atom.Roles, rel.vars) {
			return nil, &DefinitionError{Msg: "negated atom " + atom.Predicate + " introduces unbound roles"}
		}
		return p.antiJoin(rel, atom)
	case AtomEqual:
		return p.algebraFilter(rel, atom, true)
	case AtomNotEqual:
		return p.algebraFilter(rel, atom, false)
	default:
		return nil, &DefinitionError{Msg: "unknown atom kind"}
	}
}

// semiJoin keeps row i iff the projected tuple is present in the sort,
// adding that fact's id to ids[i].
func (p *Problem) semiJoin(rel *relation, atom Atom) (*relation, error) {
	idx := rel.varIndex()
	out := &relation{vars: rel.vars}
	for _, row := range rel.rows {
		points := make([]string, len(atom.Roles))
		for i, r := range atom.Roles {
			points[i] = row.items[idx[r]]
		}
		id, ok := p.store.LogicFactID(atom.Predicate, points)
		if !ok {
			continue
		}
		out.rows = append(out.rows, matchRow{ids: unionIDs(row.ids, id), items: row.items})
	}
	return out, nil
}

// antiJoin keeps row i iff the projected tuple is absent from the sort.
// ids[i] is left unchanged, per spec.md §4.D.
func (p *Problem) antiJoin(rel *relation, atom Atom) (*relation, error) {
	idx := rel.varIndex()
	out := &relation{vars: rel.vars}
	for _, row := range rel.rows {
		points := make([]string, len(atom.Roles))
		for i, r := range atom.Roles {
			points[i] = row.items[idx[r]]
		}
		if p.store.HasLogicFact(atom.Predicate, points) {
			continue
		}
		out.rows = append(out.rows, row)
	}
	return out, nil
}

// constrainedProduct handles a positive logic atom that introduces new
// roles: a cartesian product with the sort's full extension, constrained
// to equate columns that share a role name with rel.
func (p *Problem) constrainedProduct(rel *relation, atom Atom) (*relation, error) {
	ids, items, subVars, err := p.store.GetItems(atom.Predicate, atom.Roles)
	if err != nil {
		return nil, err
	}
	relIdx := rel.varIndex()
	subIdx := make(map[string]int, len(subVars))
	for i, v := range subVars {
		subIdx[v] = i
	}

	newVars := append([]string{}, rel.vars...)
	var extraCols []string
	for _, v := range subVars {
		if _, ok := relIdx[v]; !ok {
			extraCols = append(extraCols, v)
			newVars = append(newVars, v)
		}
	}

	out := &relation{vars: newVars}
	for _, row := range rel.rows {
		for si, subItem := range items {
			ok := true
			for _, v := range subVars {
				if ri, had := relIdx[v]; had && row.items[ri] != subItem[subIdx[v]] {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			newItems := append([]string{}, row.items...)
			for _, v := range extraCols {
				newItems = append(newItems, subItem[subIdx[v]])
			}
			out.rows = append(out.rows, matchRow{ids: unionIDsSlice(row.ids, ids[si]), items: newItems})
		}
	}
	return out, nil
}

// algebraFilter evaluates an Equal/~Equal atom for every row, instantiating
// the attribute tree against that row's bindings and calling solve_target.
func (p *Problem) algebraFilter(rel *relation, atom Atom, positive bool) (*relation, error) {
	idx := rel.varIndex()
	out := &relation{vars: rel.vars}
	for _, row := range rel.rows {
		binding := map[string]string{}
		for _, v := range atom.Tree.FreeRoles() {
			ri, ok := idx[v]
			if !ok {
				return nil, &DefinitionError{Msg: "algebraic atom references unbound role " + v}
			}
			binding[v] = row.items[ri]
		}
		expr := atom.Tree.Instantiate(p.store, binding)
		val, premises, _, ok := p.solveTarget(expr)

		if positive {
			if !ok || math.Abs(val.Const.ToFloat()) > tolerance {
				continue
			}
			out.rows = append(out.rows, matchRow{ids: unionIDsSlice(row.ids, premises), items: row.items})
			continue
		}

		if !ok {
			if p.negatedAlgebraUnknownSatisfied {
				out.rows = append(out.rows, row)
			}
			continue
		}
		if math.Abs(val.Const.ToFloat()) > tolerance {
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}
