package gdltext

import (
	"github.com/alecthomas/participle/v2"
	"github.com/formalgeo/geokernel/kernel"
)

var programParser = participle.MustBuild[Program](DefaultParserOptions...)

// Parse parses src into a Program AST. It performs no semantic work: no
// predicate, attribute or theorem name is resolved until PredicateDefs,
// TheoremDefs, InitFacts or GoalFromProgram is called on the result.
func Parse(src string) (*Program, error) {
	return programParser.ParseString("", src)
}

// Load is the convenience entry point: given a *kernel.Problem already
// constructed over prog's predicate declarations (via PredicateDefs and
// kernel.NewProblem), it builds the program's facts and goal, calls
// problem.LoadProblem, and returns the program's theorem definitions ready
// for ApplyTheoremAccurate/ApplyTheoremRough.
func Load(problem *kernel.Problem, prog *Program) ([]kernel.TheoremDef, error) {
	facts, err := InitFacts(problem, prog)
	if err != nil {
		return nil, err
	}
	goal, _, err := GoalFromProgram(problem, prog)
	if err != nil {
		return nil, err
	}
	if err := problem.LoadProblem(facts, goal); err != nil {
		return nil, err
	}
	return TheoremDefs(prog)
}

// CompileSource is a one-shot helper: parse src, build the predicate
// declarations, construct a fresh *kernel.Problem over them, load its facts
// and goal, and return both the problem and its theorem definitions.
func CompileSource(src string, opts ...kernel.Option) (*kernel.Problem, []kernel.TheoremDef, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, nil, err
	}
	defs, err := PredicateDefs(prog)
	if err != nil {
		return nil, nil, err
	}
	problem := kernel.NewProblem(defs, opts...)
	theorems, err := Load(problem, prog)
	if err != nil {
		return nil, nil, err
	}
	return problem, theorems, nil
}
