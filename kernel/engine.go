package kernel

import (
	"errors"

	"github.com/formalgeo/geokernel/algebra"
	"go.uber.org/zap"
)

// tolerance is the absolute numeric tolerance used throughout the pattern
// matcher and goal checker (spec.md §4.D, §4.F).
const tolerance = 0.01

// logSolveFailure routes a solve timeout or failure through the logger
// instead of silently dropping it, matching the original's
// warnings.warn(...) call on the same events (the supplemented "equation
// hygiene warning" feature).
func (p *Problem) logSolveFailure(err error, eq *algebra.Expr) {
	if errors.Is(err, algebra.ErrTimeout) {
		p.logger.Warn("equation solve exceeded its time budget", zap.String("equation", eq.String()))
		return
	}
	p.logger.Warn("equation solve found no closed-form solution", zap.String("equation", eq.String()), zap.Error(err))
}

// substituteKnown replaces every free symbol of e that already has a
// committed value, returning the rewritten (unsimplified) expression and
// the fact ids of the values it substituted.
func (p *Problem) substituteKnown(e *algebra.Expr) (*algebra.Expr, []FactID) {
	var premises []FactID
	result := e
	for sym := range algebra.FreeSymbols(e) {
		if v, ok := p.store.valueOfSym[sym]; ok {
			result = algebra.Subs(result, sym, v)
			premises = append(premises, p.store.valueFactID[sym])
		}
	}
	return result, premises
}

// simplificationValueReplace runs spec.md §4.C.1 to fixpoint: substitute
// known values into every working equation; drop it if it becomes
// numerically trivial; solve it immediately if exactly one free symbol
// remains.
func (p *Problem) simplificationValueReplace() {
	changed := true
	for changed {
		changed = false
		for _, entry := range p.store.workingEntries() {
			we, stillPresent := p.store.workingPool[entry.key]
			if !stillPresent {
				continue
			}
			substituted, premises := p.substituteKnown(we.current)
			substituted = algebra.Simplify(substituted)
			free := algebra.FreeSymbols(substituted)

			if len(free) == 0 {
				delete(p.store.workingPool, entry.key)
				changed = true
				continue
			}

			if len(free) == 1 {
				var sym algebra.Symbol
				for s := range free {
					sym = s
				}
				vals, err := algebra.Solve(p.solveBudget, []*algebra.Expr{substituted}, []algebra.Symbol{sym})
				if err != nil {
					p.logSolveFailure(err, substituted)
					we.current = substituted
					continue
				}
				allPremises := append([]FactID{we.sourceID}, premises...)
				p.store.CommitValue(sym, algebra.Const(vals[sym]), allPremises, "solve_eq")
				delete(p.store.workingPool, entry.key)
				changed = true
				continue
			}

			we.current = substituted
		}
	}
}

// getMinimumEquations is spec.md §4.C.3: a BFS over the bipartite
// (symbol, equation) graph starting from target's free symbols, returning
// the connected component of working equations and every symbol it
// reaches. The target equation itself is not in the result; solveTarget
// appends it.
func getMinimumEquations(targetFree map[algebra.Symbol]struct{}, entries []eqEntry) ([]eqEntry, []algebra.Symbol) {
	bySym := map[algebra.Symbol][]eqEntry{}
	for _, e := range entries {
		for s := range algebra.FreeSymbols(e.expr) {
			bySym[s] = append(bySym[s], e)
		}
	}

	visitedSym := map[algebra.Symbol]bool{}
	visitedKey := map[string]bool{}
	var syms []algebra.Symbol
	var result []eqEntry
	var frontier []algebra.Symbol

	for s := range targetFree {
		if !visitedSym[s] {
			visitedSym[s] = true
			syms = append(syms, s)
			frontier = append(frontier, s)
		}
	}

	for len(frontier) > 0 {
		var next []algebra.Symbol
		for _, s := range frontier {
			for _, e := range bySym[s] {
				if visitedKey[e.key] {
					continue
				}
				visitedKey[e.key] = true
				result = append(result, e)
				for ns := range algebra.FreeSymbols(e.expr) {
					if !visitedSym[ns] {
						visitedSym[ns] = true
						syms = append(syms, ns)
						next = append(next, ns)
					}
				}
			}
		}
		frontier = next
	}

	return result, syms
}

func premiseSetToSlice(set map[FactID]bool) []FactID {
	out := make([]FactID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// solveEquations is spec.md §4.C.4: for each still-unvisited working
// equation, extract its minimal subsystem, substitute known values, solve,
// and commit every returned value.
func (p *Problem) solveEquations() {
	visited := map[string]bool{}
	entries := p.store.workingEntries()

	for _, e0 := range entries {
		if visited[e0.key] {
			continue
		}
		subsystem, syms := getMinimumEquations(algebra.FreeSymbols(e0.expr), entries)
		for _, s := range subsystem {
			visited[s.key] = true
		}
		if len(syms) == 0 {
			continue
		}

		eqs := make([]*algebra.Expr, 0, len(subsystem))
		premiseSet := map[FactID]bool{}
		for _, s := range subsystem {
			substituted, premises := p.substituteKnown(s.expr)
			substituted = algebra.Simplify(substituted)
			if len(algebra.FreeSymbols(substituted)) == 0 {
				continue
			}
			eqs = append(eqs, substituted)
			premiseSet[s.sourceID] = true
			for _, pr := range premises {
				premiseSet[pr] = true
			}
		}
		if len(eqs) < len(syms) {
			continue
		}

		vals, err := algebra.Solve(p.solveBudget, eqs, syms)
		if err != nil {
			p.logSolveFailure(err, e0.expr)
			continue
		}

		premises := premiseSetToSlice(premiseSet)
		for _, sym := range syms {
			if v, ok := vals[sym]; ok {
				p.store.CommitValue(sym, algebra.Const(v), premises, "solve_eq")
			}
		}
	}
}

// solveTarget is spec.md §4.C.5. It returns the resolved value, the
// premises that justify it, the theorem attribution to report it under
// (the sentinel "solve_eq" unless target was already a committed fact
// under some other theorem), and whether resolution succeeded at all.
func (p *Problem) solveTarget(target *algebra.Expr) (*algebra.Expr, []FactID, string, bool) {
	if id, ok := p.store.EquationFactID(target); ok {
		theorem := p.store.provenance[id].Theorem
		return algebra.Const0, []FactID{id}, theorem, true
	}

	substituted, premises := p.substituteKnown(target)
	substituted = algebra.Simplify(substituted)
	free := algebra.FreeSymbols(substituted)
	if len(free) == 0 {
		// Values found by equation solving are reported through the
		// equations they were solved from, down to facts of other origin.
		var out []FactID
		for len(premises) > 0 {
			id := premises[0]
			premises = premises[1:]
			if prov := p.store.provenance[id]; prov != nil && prov.Theorem == "solve_eq" {
				premises = append(premises, prov.Premises...)
			} else {
				out = unionIDsSlice(out, []FactID{id})
			}
		}
		return substituted, out, "solve_eq", true
	}

	t := p.freshSymbol("t_")
	eq := algebra.Sub(algebra.Sym(t), substituted)

	entries := p.store.workingEntries()
	subsystem, syms := getMinimumEquations(algebra.FreeSymbols(eq), entries)

	hasTarget := false
	for _, s := range syms {
		if s == t {
			hasTarget = true
		}
	}
	if !hasTarget {
		syms = append(syms, t)
	}

	premiseSet := map[FactID]bool{}
	for _, pr := range premises {
		premiseSet[pr] = true
	}
	eqs := make([]*algebra.Expr, 0, len(subsystem)+1)
	for _, s := range subsystem {
		sub, pr := p.substituteKnown(s.expr)
		eqs = append(eqs, algebra.Simplify(sub))
		premiseSet[s.sourceID] = true
		for _, x := range pr {
			premiseSet[x] = true
		}
	}
	eqs = append(eqs, eq)

	if len(eqs) < len(syms) {
		return nil, nil, "", false
	}

	vals, err := algebra.Solve(p.solveBudget, eqs, syms)
	if err != nil {
		p.logSolveFailure(err, eq)
		return nil, nil, "", false
	}

	v, ok := vals[t]
	if !ok {
		return nil, nil, "", false
	}
	return algebra.Const(v), premiseSetToSlice(premiseSet), "solve_eq", true
}
