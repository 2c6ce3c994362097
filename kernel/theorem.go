package kernel

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/formalgeo/geokernel/algebra"
)

// ConclusionTemplate is one conclusion of a theorem clause: either a logic
// predicate over role letters, or an Equation built from an attribute tree.
type ConclusionTemplate struct {
	Predicate string
	Roles     []string
	Tree      *AttrTree
}

func (c ConclusionTemplate) instantiate(store *Store, binding map[string]string) (predicate string, points []string, expr *algebra.Expr) {
	if c.Tree != nil {
		return "Equation", nil, c.Tree.Instantiate(store, binding)
	}
	return c.Predicate, resolvePoints(c.Roles, binding), nil
}

// Clause is one (premises, conclusions) pair of a theorem's body.
type Clause struct {
	Premises    []Atom
	Conclusions []ConclusionTemplate
}

// TheoremDef is a theorem: its ordered role letters, the grouping used only
// to format the applied name, and its clause list.
type TheoremDef struct {
	Name    string
	Vars    []string
	ParaLen []int
	Body    []Clause
}

func resolvePoints(roles []string, binding map[string]string) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = binding[r]
	}
	return out
}

func isDefinitionTheorem(name string) bool {
	return strings.HasSuffix(name, "_definition")
}

func formatAppliedName(def TheoremDef, params []string) string {
	var chunks []string
	idx := 0
	for _, n := range def.ParaLen {
		end := idx + n
		if end > len(params) {
			end = len(params)
		}
		chunks = append(chunks, strings.Join(params[idx:end], ""))
		idx = end
	}
	return fmt.Sprintf("%s(%s)", def.Name, strings.Join(chunks, ","))
}

// Selection is the output of a dry-run rough application: the bindings
// that satisfied the pattern, paired with the facts that would be
// committed for each.
type Selection struct {
	Bindings []map[string]string
	Would    []PendingFact
}

// PendingFact is one fact TryTheoremRough would commit, had it not been a
// dry run.
type PendingFact struct {
	Predicate string
	Points    []string
	Expr      *algebra.Expr
	Premises  []FactID
}

// checkClauseAccurate validates a clause's premise pattern directly under a
// caller-supplied binding (accurate mode, spec.md §4.E): no join engine is
// involved, each atom is checked in turn against the concrete binding.
func (p *Problem) checkClauseAccurate(clause Clause, binding map[string]string) (bool, []FactID, error) {
	var premises []FactID
	for _, atom := range clause.Premises {
		switch atom.Kind {
		case AtomPositiveLogic:
			points := resolvePoints(atom.Roles, binding)
			id, ok := p.store.LogicFactID(atom.Predicate, points)
			if !ok {
				return false, nil, nil
			}
			premises = append(premises, id)
		case AtomNegatedLogic:
			points := resolvePoints(atom.Roles, binding)
			if p.store.HasLogicFact(atom.Predicate, points) {
				return false, nil, nil
			}
		case AtomEqual:
			expr := atom.Tree.Instantiate(p.store, binding)
			val, pr, _, ok := p.solveTarget(expr)
			if !ok || math.Abs(val.Const.ToFloat()) > tolerance {
				return false, nil, nil
			}
			premises = append(premises, pr...)
		case AtomNotEqual:
			expr := atom.Tree.Instantiate(p.store, binding)
			val, _, _, ok := p.solveTarget(expr)
			if ok && math.Abs(val.Const.ToFloat()) <= tolerance {
				return false, nil, nil
			}
			if !ok && !p.negatedAlgebraUnknownSatisfied {
				return false, nil, nil
			}
		default:
			return false, nil, &DefinitionError{Msg: "unknown atom kind in theorem premise"}
		}
	}
	return true, premises, nil
}

func (p *Problem) commitConclusion(concl ConclusionTemplate, binding map[string]string, premises []FactID, appliedName string) bool {
	predicate, points, expr := concl.instantiate(p.store, binding)
	if predicate == "Equation" {
		_, added := p.store.AddEquationFact(expr, premises, appliedName)
		if added {
			p.store.seedWorkingPool(p.lastEquationID(expr), expr)
		}
		return added
	}
	_, added, _ := p.store.AddLogicFact(predicate, points, premises, appliedName)
	return added
}

// lastEquationID recovers the fact id AddEquationFact just assigned to
// expr's canonical form, so the freshly committed equation can be seeded
// into the working pool for propagation.
func (p *Problem) lastEquationID(expr *algebra.Expr) FactID {
	id, _ := p.store.EquationFactID(expr)
	return id
}

// ApplyTheoremAccurate is spec.md §4.E's accurate mode.
func (p *Problem) ApplyTheoremAccurate(def TheoremDef, params []string) (bool, error) {
	start := time.Now()
	if len(params) != len(def.Vars) {
		return false, &DefinitionError{Msg: fmt.Sprintf("theorem %s: expected %d parameters, got %d", def.Name, len(def.Vars), len(params))}
	}
	if isDefinitionTheorem(def.Name) {
		return false, &DefinitionError{Msg: "theorem " + def.Name + " is a *_definition theorem and cannot be applied in forward mode"}
	}

	binding := make(map[string]string, len(def.Vars))
	for i, v := range def.Vars {
		binding[v] = params[i]
	}

	added := false
	for _, clause := range def.Body {
		ok, premises, err := p.checkClauseAccurate(clause, binding)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		appliedName := formatAppliedName(def, params)
		for _, concl := range clause.Conclusions {
			if p.commitConclusion(concl, binding, premises, appliedName) {
				added = true
			}
		}
	}

	p.solveEquations()
	p.store.stepLog = append(p.store.stepLog, Step{Theorem: def.Name, Elapsed: time.Since(start)})
	return added, nil
}

// ApplyTheoremRough is spec.md §4.E's rough mode: the matcher enumerates
// every satisfying binding and each one is committed independently.
func (p *Problem) ApplyTheoremRough(def TheoremDef) (bool, error) {
	start := time.Now()
	if isDefinitionTheorem(def.Name) {
		return false, &DefinitionError{Msg: "theorem " + def.Name + " is a *_definition theorem and cannot be applied in forward mode"}
	}

	added := false
	for _, clause := range def.Body {
		rel, err := p.evaluatePattern(clause.Premises)
		if err != nil {
			return false, err
		}
		for _, row := range rel.rows {
			binding := make(map[string]string, len(rel.vars))
			for i, v := range rel.vars {
				binding[v] = row.items[i]
			}
			params := make([]string, len(def.Vars))
			for i, v := range def.Vars {
				params[i] = binding[v]
			}
			appliedName := formatAppliedName(def, params)
			for _, concl := range clause.Conclusions {
				if p.commitConclusion(concl, binding, row.ids, appliedName) {
					added = true
				}
			}
		}
	}

	p.solveEquations()
	p.store.stepLog = append(p.store.stepLog, Step{Theorem: def.Name, Elapsed: time.Since(start)})
	return added, nil
}

// TryTheoremRough dry-runs a rough-mode application: it returns the
// bindings and would-be facts without committing anything, so a caller
// doing its own forward search can inspect a frontier without mutating
// Problem.
func (p *Problem) TryTheoremRough(def TheoremDef) (Selection, error) {
	var sel Selection
	if isDefinitionTheorem(def.Name) {
		return sel, &DefinitionError{Msg: "theorem " + def.Name + " is a *_definition theorem and cannot be applied in forward mode"}
	}

	for _, clause := range def.Body {
		rel, err := p.evaluatePattern(clause.Premises)
		if err != nil {
			return sel, err
		}
		for _, row := range rel.rows {
			binding := make(map[string]string, len(rel.vars))
			for i, v := range rel.vars {
				binding[v] = row.items[i]
			}
			sel.Bindings = append(sel.Bindings, binding)
			for _, concl := range clause.Conclusions {
				predicate, points, expr := concl.instantiate(p.store, binding)
				sel.Would = append(sel.Would, PendingFact{
					Predicate: predicate,
					Points:    points,
					Expr:      expr,
					Premises:  append([]FactID{}, row.ids...),
				})
			}
		}
	}
	return sel, nil
}
