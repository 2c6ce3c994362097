// Package gdltext is a small human-writable front end for the kernel
// package, grounded in the teacher's own parser package and rebuilt against
// participle/v2. It never reaches into kernel internals: every value it
// produces is assembled from kernel's already-exported types, and the
// kernel has no dependency on gdltext at all.
//
// Grammar sketch (facts): Predicate(A,B,C) or Equal(<tree>, <tree>).
// Grammar sketch (theorems): name(vars) para(n,n) { premises => conclusions }.
// This is intentionally small: it exists to make this module's own examples
// and tests readable, not to reproduce the original GDL/CDL grammar.
package gdltext

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var textLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Float", Pattern: `[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `=>|[(){},:+\-*/^~=>|]`},
})

// DefaultParserOptions mirrors the teacher's own defaultParserOptions: a
// fixed lexer plus enough lookahead for the grammar's alternations to
// resolve. A bare fact `Name(a,b,...)` opens like a theorem declaration and
// is told apart only at the missing `para` keyword, so a 64-token lookahead
// lets facts of up to 31 arguments follow the theorem section.
var DefaultParserOptions = []participle.Option{
	participle.Lexer(textLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(64),
}

// Program is a whole gdltext source unit: predicate declarations, theorem
// declarations, bare facts and an optional goal, each section in that
// fixed order.
type Program struct {
	Predicates []*PredicateDecl `@@*`
	Theorems   []*TheoremDecl   `@@*`
	Facts      []*FactStmt      `@@*`
	Goal       *GoalDecl        `@@?`
}

// PredicateDecl declares one predicate's roles and store category, e.g.
// `predicate Triangle(x,y,z): Relation`.
type PredicateDecl struct {
	Name     string   `"predicate" @Ident`
	Roles    []string `"(" (@Ident ("," @Ident)*)? ")"`
	Category string   `":" @Ident`
}

// TheoremDecl is one theorem definition, e.g.
// `midpoint_definition_forward(m,x,y) para(1,2) { Line(x,y) => Midpoint(m,x,y) }`.
type TheoremDecl struct {
	Name    string        `@Ident`
	Vars    []string      `"(" (@Ident ("," @Ident)*)? ")"`
	ParaLen []int         `"para" "(" (@Int ("," @Int)*)? ")"`
	Clauses []*ClauseDecl `"{" @@ ("|" @@)* "}"`
}

// ClauseDecl is one (premises => conclusions) pair of a theorem's body.
type ClauseDecl struct {
	Premises    []*AtomDecl `(@@ ("," @@)*)?`
	Conclusions []*CallDecl `"=>" (@@ ("," @@)*)?`
}

// AtomDecl is one premise atom: an optionally negated call.
type AtomDecl struct {
	Negated bool      `@"~"?`
	Call    *CallDecl `@@`
}

// CallDecl is `Name(arg, arg, ...)`: a logic predicate over bare role/point
// idents, or (when Name is "Equal"/"NotEqual") an equality constraint over
// two arithmetic trees.
type CallDecl struct {
	Name string  `@Ident`
	Args []*Tree `"(" (@@ ("," @@)*)? ")"`
}

// FactStmt is a bare top-level fact statement: `Line(A,B)` or
// `Equal(LengthOfLine(A,B), 5)`.
type FactStmt struct {
	Call *CallDecl `@@`
}

// GoalDecl is the problem's optional goal clause: `goal value(<tree>) = n`,
// `goal equal(<tree>) = n`, or `goal logic Name(points...)`.
type GoalDecl struct {
	Value *ValueGoal `@@`
	Logic *LogicGoal `| @@`
}

type ValueGoal struct {
	Kind   string `"goal" @("value" | "equal")`
	Item   *Tree  `"(" @@ ")" "="`
	Answer string `(@Float | @Int)`
}

type LogicGoal struct {
	Call *CallDecl `"goal" "logic" @@`
}

// Tree is a small arithmetic expression grammar: + - at the top, then
// * /, then ^ (right-associative via recursion), then unary minus, then
// a primary (number, attribute call, function call, bare ident, or a
// parenthesized sub-expression).
type Tree struct {
	Left *MulTerm  `@@`
	Rest []*AddOp  `@@*`
}

type AddOp struct {
	Op    string   `@("+" | "-")`
	Right *MulTerm `@@`
}

type MulTerm struct {
	Left *PowTerm `@@`
	Rest []*MulOp `@@*`
}

type MulOp struct {
	Op    string   `@("*" | "/")`
	Right *PowTerm `@@`
}

type PowTerm struct {
	Base *UnaryTerm `@@`
	Exp  *PowTerm   `("^" @@)?`
}

type UnaryTerm struct {
	Neg     bool     `@"-"?`
	Primary *Primary `@@`
}

type Primary struct {
	Float    *float64  `@Float`
	Int      *int      `| @Int`
	Func     *FuncCall `| @@`
	AttrCall *AttrCall `| @@`
	Ident    *string   `| @Ident`
	Sub      *Tree     `| "(" @@ ")"`
}

// FuncCall is sin(...)/cos(...)/tan(...) over a nested tree.
type FuncCall struct {
	Name string `@("sin" | "cos" | "tan")`
	Arg  *Tree  `"(" @@ ")"`
}

// AttrCall is an attribute kind applied to point letters, e.g.
// `LengthOfLine(A,B)` or `MeasureOfAngle(x,y,z)`.
type AttrCall struct {
	Name  string   `@Ident`
	Roles []string `"(" @Ident ("," @Ident)* ")"`
}
