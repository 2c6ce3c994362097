package kernel

import (
	"strings"

	"github.com/formalgeo/geokernel/algebra"
)

// AttrKind names the kind of geometric measurement an interned Symbol
// denotes. Free is the escape hatch for an uninterpreted named unknown
// introduced directly by a problem's Equation predicate (a bare CDL
// variable such as `x`), which has no underlying point tuple.
type AttrKind int

const (
	LengthOfLine AttrKind = iota
	LengthOfArc
	MeasureOfAngle
	MeasureOfArc
	RatioOfLine
	AreaOfTriangle
	AreaOfQuadrilateral
	Free
)

func (k AttrKind) String() string {
	switch k {
	case LengthOfLine:
		return "LengthOfLine"
	case LengthOfArc:
		return "LengthOfArc"
	case MeasureOfAngle:
		return "MeasureOfAngle"
	case MeasureOfArc:
		return "MeasureOfArc"
	case RatioOfLine:
		return "RatioOfLine"
	case AreaOfTriangle:
		return "AreaOfTriangle"
	case AreaOfQuadrilateral:
		return "AreaOfQuadrilateral"
	case Free:
		return "Free"
	default:
		return "AttrKind(?)"
	}
}

func attrPrefix(k AttrKind) string {
	switch k {
	case LengthOfLine:
		return "ll_"
	case LengthOfArc:
		return "la_"
	case MeasureOfAngle:
		return "ma_"
	case MeasureOfArc:
		return "mar_"
	case RatioOfLine:
		return "rl_"
	case AreaOfTriangle:
		return "at_"
	case AreaOfQuadrilateral:
		return "aq_"
	default:
		return "s_"
	}
}

// canonicalPoints normalizes a point tuple for attribute kinds whose
// underlying geometric quantity does not depend on the order the tuple was
// written in: LengthOfLine(A,B) and LengthOfLine(B,A) name the same
// segment length, and MeasureOfAngle(A,B,C) names the same angle as
// MeasureOfAngle(C,B,A) (the vertex, the middle letter, stays fixed).
// AreaOfTriangle is symmetric under any permutation of its three vertices.
func canonicalPoints(kind AttrKind, points []string) []string {
	out := append([]string{}, points...)
	switch kind {
	case LengthOfLine:
		if len(out) == 2 && out[0] > out[1] {
			out[0], out[1] = out[1], out[0]
		}
	case MeasureOfAngle:
		if len(out) == 3 && out[0] > out[2] {
			out[0], out[2] = out[2], out[0]
		}
	case AreaOfTriangle:
		sortStrings(out)
	}
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

type attrBinding struct {
	Kind   AttrKind
	Points [][]string
}

// SymbolFor interns the algebraic Symbol denoting the geometric measurement
// (kind, points), creating it on first use. Repeated calls with the same
// kind and a canonically-equal point tuple always return the same Symbol,
// implementing spec.md §3's `ll_AB ↔ (LengthOfLine, ("A","B"))` style
// mapping and its symmetric-predicate aliasing.
func (st *Store) SymbolFor(kind AttrKind, points []string) algebra.Symbol {
	canon := canonicalPoints(kind, points)
	key := attrKeyString(kind, canon)
	if sym, ok := st.symForAttr[key]; ok {
		return sym
	}

	var sym algebra.Symbol
	if kind == Free {
		sym = algebra.Symbol(canon[0])
	} else {
		sym = algebra.Symbol(attrPrefix(kind) + strings.Join(canon, ""))
	}

	st.symForAttr[key] = sym
	binding := st.attrOfSym[sym]
	binding.Kind = kind
	binding.Points = append(binding.Points, canon)
	st.attrOfSym[sym] = binding
	return sym
}

// AttrOf returns the attribute kind and the canonical point tuple Symbol
// sym was interned from. Symmetric spellings are recorded once: (A,B) and
// (B,A) both resolve to ll_AB, whose only recorded tuple is (A,B).
func (st *Store) AttrOf(sym algebra.Symbol) (AttrKind, [][]string, bool) {
	b, ok := st.attrOfSym[sym]
	if !ok {
		return 0, nil, false
	}
	return b.Kind, b.Points, true
}

func attrKeyString(kind AttrKind, points []string) string {
	return kind.String() + ":" + strings.Join(points, ",")
}
