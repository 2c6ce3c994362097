package kernel

import "github.com/formalgeo/geokernel/algebra"

// canonicalEquation picks one canonical sign for an equation's simplified
// form (first non-zero coefficient positive, per spec.md §9's canonicalization
// note) so that adding `expr` and adding `-expr` land on the same stored
// item, upholding data-model invariant 6.
func canonicalEquation(e *algebra.Expr) *algebra.Expr {
	s := algebra.Simplify(e)
	var lead *algebra.Expr
	if s.Kind == algebra.KindAdd {
		lead = s.Args[0]
	} else {
		lead = s
	}

	negative := false
	switch {
	case lead.Kind == algebra.KindConst:
		negative = lead.Const.IsNegative()
	case lead.Kind == algebra.KindMul && len(lead.Args) > 0 && lead.Args[0].Kind == algebra.KindConst:
		negative = lead.Args[0].Const.IsNegative()
	}

	if negative {
		return algebra.Simplify(algebra.Neg(s))
	}
	return s
}

// AddEquationFact commits the canonical form of expr (interpreted as
// expr == 0) to the Equation sort, deduplicating exactly as AddLogicFact
// does for every other predicate.
func (st *Store) AddEquationFact(expr *algebra.Expr, premises []FactID, theorem string) (FactID, bool) {
	sort, ok := st.sorts["Equation"]
	if !ok {
		st.registerPredicate(PredicateDef{Name: "Equation", Arity: 0, Category: Equation})
		sort = st.sorts["Equation"]
	}

	canon := canonicalEquation(expr)
	key := algebra.CanonicalKey(canon)
	if id, exists := sort.byKey[key]; exists {
		return id, false
	}

	id := st.newFactID()
	sort.byKey[key] = id
	sort.order = append(sort.order, key)
	st.provenance[id] = &Provenance{
		ID:        id,
		Predicate: "Equation",
		Item:      Item{Expr: canon},
		Theorem:   theorem,
		Premises:  append([]FactID{}, premises...),
	}
	return id, true
}

// EquationFactID looks up an already-committed Equation fact by its
// canonical form, matching expr or its negation indifferently (canonical
// sign makes both resolve to the same key).
func (st *Store) EquationFactID(expr *algebra.Expr) (FactID, bool) {
	sort, ok := st.sorts["Equation"]
	if !ok {
		return 0, false
	}
	key := algebra.CanonicalKey(canonicalEquation(expr))
	id, exists := sort.byKey[key]
	return id, exists
}

// CommitValue records that sym's value is now known, by adding the fact
// (Equation, sym - value) with the union of the equation's own premises
// and the premises of every symbol already substituted into it. A symbol
// already known is a no-op returning its value fact's id (invariant 3: at
// most one committed value per symbol). When (Equation, sym - value) is
// already a fact, such as an initial `a - 3`, that fact becomes sym's value
// record and no new fact is added.
func (st *Store) CommitValue(sym algebra.Symbol, value *algebra.Expr, premises []FactID, theorem string) (FactID, bool) {
	if id, known := st.valueFactID[sym]; known {
		return id, false
	}
	eq := algebra.Sub(algebra.Sym(sym), value)
	id, added := st.AddEquationFact(eq, premises, theorem)
	st.valueOfSym[sym] = value
	st.valueFactID[sym] = id
	return id, added
}

// ValueOfSym reports the committed numeric value of sym, if any.
func (st *Store) ValueOfSym(sym algebra.Symbol) (*algebra.Expr, bool) {
	v, ok := st.valueOfSym[sym]
	return v, ok
}

// seedWorkingPool adds a freshly-committed Equation fact to the working
// pool unless it is already numerically trivial (data-model invariant 4:
// the working pool never holds a zero-free-symbol equation).
func (st *Store) seedWorkingPool(id FactID, expr *algebra.Expr) {
	canon := canonicalEquation(expr)
	if len(algebra.FreeSymbols(canon)) == 0 {
		return
	}
	key := algebra.CanonicalKey(canon)
	if _, exists := st.workingPool[key]; exists {
		return
	}
	st.workingPool[key] = &workingEquation{sourceID: id, current: canon}
}

// eqEntry is a working-pool equation paired with the provenance it
// contributes if it ends up part of a solved subsystem.
type eqEntry struct {
	key      string
	sourceID FactID
	expr     *algebra.Expr
}

func (st *Store) workingEntries() []eqEntry {
	out := make([]eqEntry, 0, len(st.workingPool))
	for k, we := range st.workingPool {
		out = append(out, eqEntry{key: k, sourceID: we.sourceID, expr: we.current})
	}
	// Deterministic order keeps subsystem extraction and test expectations
	// stable across runs; map iteration order is not.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].key > out[j].key; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
