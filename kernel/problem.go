package kernel

import (
	"strconv"
	"time"

	"github.com/formalgeo/geokernel/algebra"
	"go.uber.org/zap"
)

// Problem owns one run's entire state: the condition store, the active
// goal, and the configuration (logger, solve budget, the negated-algebra
// leniency flag) that governs how the equation engine and pattern matcher
// behave. It does not outlive its run; nothing here is safe to share
// across goroutines.
type Problem struct {
	predicates map[string]PredicateDef
	store      *Store
	goal       Goal
	hasGoal    bool

	logger                         *zap.Logger
	solveBudget                    time.Duration
	negatedAlgebraUnknownSatisfied bool

	nextFreshSym int
}

// NewProblem constructs an empty Problem over the given predicate
// definitions. Options configure logging, the solve time budget, and the
// negated-algebra-premise leniency policy (spec.md §9's Open Question).
func NewProblem(predicates []PredicateDef, opts ...Option) *Problem {
	p := &Problem{
		predicates:                     map[string]PredicateDef{},
		store:                          newStore(),
		logger:                         zap.NewNop(),
		solveBudget:                    algebra.DefaultBudget,
		negatedAlgebraUnknownSatisfied: true,
	}
	for _, def := range predicates {
		p.predicates[def.Name] = def
		p.store.registerPredicate(def)
	}
	for _, opt := range opts {
		opt(p)
	}
	p.store.logger = p.logger
	return p
}

// LoadProblem seeds the store with the problem's initial facts (theorem
// name "init_problem" for every one of them) and records the goal to be
// checked later. It then runs simplification_value_replace once so that
// any equations solvable from the initial data alone are resolved before
// the first theorem application.
func (p *Problem) LoadProblem(facts []InitFact, goal Goal) error {
	for _, f := range facts {
		if f.Predicate == "Equation" {
			if f.Expr == nil {
				return &DefinitionError{Msg: "Equation init fact missing expression"}
			}
			id, _ := p.store.AddEquationFact(f.Expr, nil, "init_problem")
			p.store.seedWorkingPool(id, f.Expr)
			continue
		}
		def, ok := p.predicates[f.Predicate]
		if !ok {
			return &DefinitionError{Msg: "unknown predicate " + f.Predicate}
		}
		if len(f.Points) != def.Arity {
			return &DefinitionError{Msg: "predicate " + f.Predicate + ": arity mismatch"}
		}
		if _, _, err := p.store.AddLogicFact(f.Predicate, f.Points, nil, "init_problem"); err != nil {
			return err
		}
	}
	p.goal = goal
	p.hasGoal = true
	p.simplificationValueReplace()
	return nil
}

// Clone deep-copies the Problem, snapshotting the id counter so the clone
// may be explored (additional theorem applications) and discarded without
// disturbing the parent's future id assignments.
func (p *Problem) Clone() *Problem {
	clone := &Problem{
		predicates:                     p.predicates,
		store:                          p.store.clone(),
		goal:                           p.goal,
		hasGoal:                        p.hasGoal,
		logger:                         p.logger,
		solveBudget:                    p.solveBudget,
		negatedAlgebraUnknownSatisfied: p.negatedAlgebraUnknownSatisfied,
		nextFreshSym:                   p.nextFreshSym,
	}
	return clone
}

// ProofTrace returns the transitive premise closure of ids, topologically
// ordered so that every fact appears after the premises it depends on. By
// invariant 5 this always terminates at facts whose theorem is
// "init_problem".
func (p *Problem) ProofTrace(ids []FactID) []Provenance {
	visited := map[FactID]bool{}
	var order []FactID
	var walk func(FactID)
	walk = func(id FactID) {
		if visited[id] {
			return
		}
		visited[id] = true
		prov, ok := p.store.provenance[id]
		if !ok {
			return
		}
		for _, pr := range prov.Premises {
			walk(pr)
		}
		order = append(order, id)
	}
	for _, id := range ids {
		walk(id)
	}
	out := make([]Provenance, 0, len(order))
	for _, id := range order {
		out = append(out, *p.store.provenance[id])
	}
	return out
}

// StepLog returns the append-only (theorem, elapsed) reporting log.
func (p *Problem) StepLog() []Step { return p.store.StepLog() }

// InstantiateTree resolves an AttrTree against a concrete role binding into
// an algebra.Expr, interning any attribute leaves through this Problem's
// store. It exists for front ends (gdltext) that build InitFacts/Goals from
// a tree written against role letters rather than an already-built Expr.
func (p *Problem) InstantiateTree(tree *AttrTree, binding map[string]string) *algebra.Expr {
	return tree.Instantiate(p.store, binding)
}

// freshSymbol mints a Symbol guaranteed not to collide with any attribute
// symbol, used by solve_target to name its temporary `t - target` equation.
func (p *Problem) freshSymbol(prefix string) algebra.Symbol {
	p.nextFreshSym++
	for {
		candidate := algebra.Symbol(prefix + strconv.Itoa(p.nextFreshSym))
		if _, taken := p.store.attrOfSym[candidate]; !taken {
			return candidate
		}
		p.nextFreshSym++
	}
}
