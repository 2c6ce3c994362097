package kernel

import (
	"math"

	"github.com/formalgeo/geokernel/algebra"
)

// GoalKind tags what kind of condition a Goal checks.
type GoalKind int

const (
	GoalValue GoalKind = iota
	GoalEqual
	GoalLogic
)

// Goal is the problem's target condition: an algebraic item compared
// against an expected answer (value/equal), or a logic predicate instance
// expected to be in the store (logic).
type Goal struct {
	Kind      GoalKind
	Item      *algebra.Expr
	Predicate string
	Points    []string
	Answer    float64
}

// GoalResult is the outcome of CheckGoal.
type GoalResult struct {
	Solved       bool
	SolvedAnswer float64
	Premises     []FactID
	Theorem      string
}

// CheckGoal is spec.md §4.F.
func (p *Problem) CheckGoal() GoalResult {
	switch p.goal.Kind {
	case GoalValue, GoalEqual:
		if p.goal.Item == nil {
			return GoalResult{Solved: false}
		}
		val, premises, theorem, ok := p.solveTarget(p.goal.Item)
		if !ok {
			return GoalResult{Solved: false}
		}
		answer := val.Const.ToFloat()
		if math.Abs(answer-p.goal.Answer) > tolerance {
			return GoalResult{Solved: false}
		}
		return GoalResult{Solved: true, SolvedAnswer: answer, Premises: premises, Theorem: theorem}

	case GoalLogic:
		id, ok := p.store.LogicFactID(p.goal.Predicate, p.goal.Points)
		if !ok {
			return GoalResult{Solved: false}
		}
		prov := p.store.provenance[id]
		return GoalResult{Solved: true, SolvedAnswer: 1, Premises: []FactID{id}, Theorem: prov.Theorem}

	default:
		return GoalResult{Solved: false}
	}
}
