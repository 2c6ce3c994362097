// Package kernel implements the condition store, equation engine, pattern
// matcher, theorem applier, and goal checker that together form the
// reasoning core: forward theorem application over a provenance-carrying
// fact base, interleaved with algebraic equation propagation.
package kernel

import (
	"time"

	"github.com/formalgeo/geokernel/algebra"
)

// FactID is a dense, monotonically increasing identifier assigned to a fact
// in strict commit order. Any premise id referenced by a fact is strictly
// less than the fact's own id (data-model invariant 1).
type FactID int64

// Category tags which kind of sort a predicate belongs to. Equation is the
// only category carrying extra per-symbol bookkeeping (value_of_sym,
// attr_of_sym, the working equation pool); every other category is a plain
// deduplicating set of point-tuple items.
type Category int

const (
	BasicEntity Category = iota
	Entity
	Relation
	Attribution
	Construction
	Equation
)

// PredicateDef declares one predicate's arity, its point-letter roles (used
// only for documentation/debugging; matching itself is purely positional),
// and its category.
type PredicateDef struct {
	Name     string
	Arity    int
	Roles    []string
	Category Category
}

// Item is the payload half of a Fact: a point tuple for geometric
// predicates, or an algebraic expression (interpreted as expr = 0) for the
// Equation predicate.
type Item struct {
	Points []string
	Expr   *algebra.Expr
}

// Provenance records how a fact came to be: the applied theorem name (or
// the sentinel "init_problem" / "solve_eq") and the premise ids that
// justified it.
type Provenance struct {
	ID        FactID
	Predicate string
	Item      Item
	Theorem   string
	Premises  []FactID
}

// Step is one entry of the append-only step log: a theorem application and
// how long it took. Nothing in the reasoner reads the step log back; it
// exists purely for external reporting.
type Step struct {
	Theorem string
	Elapsed time.Duration
}

// InitFact is one fact supplied to LoadProblem: either a geometric
// predicate instance (Points populated) or an Equation (Expr populated).
type InitFact struct {
	Predicate string
	Points    []string
	Expr      *algebra.Expr
}

// DefinitionError reports a malformed call into the kernel: an unknown
// predicate or theorem name, an arity mismatch, or an attempt to apply a
// *_definition theorem in forward mode. It is always fatal to the call that
// raised it; no facts are committed.
type DefinitionError struct {
	Msg string
}

func (e *DefinitionError) Error() string { return e.Msg }
