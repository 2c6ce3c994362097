package kernel

import (
	"fmt"
	"strings"
)

// Debugger renders facts and provenance traces in a human-readable form,
// the kernel's equivalent of the teacher's SymbolDebugger.
type Debugger struct {
	problem *Problem
}

func NewDebugger(p *Problem) *Debugger { return &Debugger{problem: p} }

func (d *Debugger) describe(prov Provenance) string {
	if prov.Item.Expr != nil {
		return fmt.Sprintf("#%d Equation(%s) <- %s", prov.ID, prov.Item.Expr.String(), prov.Theorem)
	}
	return fmt.Sprintf("#%d %s(%s) <- %s", prov.ID, prov.Predicate, strings.Join(prov.Item.Points, ","), prov.Theorem)
}

// Fact renders a single fact by id.
func (d *Debugger) Fact(id FactID) string {
	prov, ok := d.problem.store.provenance[id]
	if !ok {
		return fmt.Sprintf("#%d <unknown>", id)
	}
	return d.describe(*prov)
}

// Trace renders the full proof trace for ids, one line per fact, premises
// appearing before the facts that depend on them.
func (d *Debugger) Trace(ids []FactID) string {
	var b strings.Builder
	for _, prov := range d.problem.ProofTrace(ids) {
		b.WriteString(d.describe(prov))
		if len(prov.Premises) > 0 {
			b.WriteString(" premises=")
			b.WriteString(fmt.Sprint(prov.Premises))
		}
		b.WriteString("\n")
	}
	return b.String()
}
