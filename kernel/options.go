package kernel

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Problem at construction time, following the same
// functional-options shape the teacher's builder package uses to configure
// a token builder.
type Option func(*Problem)

// WithLogger routes solver timeout/failure warnings through logger instead
// of a no-op logger. Theorem steps go to the step log, not to the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Problem) {
		if logger != nil {
			p.logger = logger
			p.store.logger = logger
		}
	}
}

// WithSolveBudget overrides the default 2-second wall-clock budget given to
// every algebra.Solve call.
func WithSolveBudget(d time.Duration) Option {
	return func(p *Problem) { p.solveBudget = d }
}

// WithNegatedAlgebraUnknownSatisfied sets the policy spec.md §9 names as an
// Open Question: whether a negated algebraic premise (~Equal) that cannot
// be resolved (solve_target returns unknown) counts as satisfied. Default
// true, matching the original's closed-world leniency.
func WithNegatedAlgebraUnknownSatisfied(v bool) Option {
	return func(p *Problem) { p.negatedAlgebraUnknownSatisfied = v }
}
