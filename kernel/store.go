package kernel

import (
	"strings"

	"github.com/formalgeo/geokernel/algebra"
	"go.uber.org/zap"
)

// workingEquation is one entry of the Equation sort's working pool: the
// fact id the equation was first committed under, and its current form
// after known-value substitution (which shrinks over the life of the
// Problem as more symbols become known).
type workingEquation struct {
	sourceID FactID
	current  *algebra.Expr
}

// sortData is one predicate's deduplicating item set: a map from the
// item's canonical key to the fact id that owns it, plus insertion order so
// that get_items enumerates deterministically.
type sortData struct {
	def   PredicateDef
	byKey map[string]FactID
	order []string
	items map[string][]string
}

// Store is the condition store: a collection of per-predicate sorts plus
// the Equation sort's extra symbol-keyed bookkeeping (value_of_sym,
// attr_of_sym, and the working pool holding each equation's current
// propagated form). It owns the
// monotonic fact id counter and every fact's provenance record.
type Store struct {
	predicates map[string]PredicateDef
	sorts      map[string]*sortData

	valueOfSym  map[algebra.Symbol]*algebra.Expr
	valueFactID map[algebra.Symbol]FactID
	attrOfSym   map[algebra.Symbol]attrBinding
	symForAttr  map[string]algebra.Symbol
	workingPool map[string]*workingEquation

	provenance map[FactID]*Provenance
	nextID     FactID
	stepLog    []Step

	logger *zap.Logger
}

func newStore() *Store {
	return &Store{
		predicates:  map[string]PredicateDef{},
		sorts:       map[string]*sortData{},
		valueOfSym:  map[algebra.Symbol]*algebra.Expr{},
		valueFactID: map[algebra.Symbol]FactID{},
		attrOfSym:   map[algebra.Symbol]attrBinding{},
		symForAttr:  map[string]algebra.Symbol{},
		workingPool: map[string]*workingEquation{},
		provenance:  map[FactID]*Provenance{},
		logger:      zap.NewNop(),
	}
}

func (st *Store) registerPredicate(def PredicateDef) {
	st.predicates[def.Name] = def
	st.sorts[def.Name] = &sortData{
		def:   def,
		byKey: map[string]FactID{},
		items: map[string][]string{},
	}
}

func itemKeyOf(points []string) string {
	return strings.Join(points, "\x1f")
}

func (st *Store) newFactID() FactID {
	id := st.nextID
	st.nextID++
	return id
}

// AddLogicFact commits a new fact for a non-Equation predicate, or returns
// the existing id unchanged if the item is already present (data-model
// invariant 2: a second add of an existing item never widens its premise
// set).
func (st *Store) AddLogicFact(predicate string, points []string, premises []FactID, theorem string) (FactID, bool, error) {
	sort, ok := st.sorts[predicate]
	if !ok {
		return 0, false, &DefinitionError{Msg: "unknown predicate " + predicate}
	}
	if len(points) != sort.def.Arity {
		return 0, false, &DefinitionError{Msg: "predicate " + predicate + ": arity mismatch"}
	}
	key := itemKeyOf(points)
	if id, exists := sort.byKey[key]; exists {
		return id, false, nil
	}
	id := st.newFactID()
	sort.byKey[key] = id
	sort.order = append(sort.order, key)
	sort.items[key] = points
	st.provenance[id] = &Provenance{
		ID:        id,
		Predicate: predicate,
		Item:      Item{Points: points},
		Theorem:   theorem,
		Premises:  append([]FactID{}, premises...),
	}
	return id, true, nil
}

// HasLogicFact reports whether a logic predicate's item is already present.
func (st *Store) HasLogicFact(predicate string, points []string) bool {
	sort, ok := st.sorts[predicate]
	if !ok {
		return false
	}
	_, exists := sort.byKey[itemKeyOf(points)]
	return exists
}

// LogicFactID returns the fact id of an existing logic item.
func (st *Store) LogicFactID(predicate string, points []string) (FactID, bool) {
	sort, ok := st.sorts[predicate]
	if !ok {
		return 0, false
	}
	id, exists := sort.byKey[itemKeyOf(points)]
	return id, exists
}

// GetItems enumerates every fact of predicate and projects its stored
// point tuple onto roles: duplicate role names collapse to a single
// column, and only items whose projected tuple has those duplicated
// columns equal are returned. The returned vars list is the distinct role
// names in first-occurrence order; ids are 1-tuples, one fact id per row.
func (st *Store) GetItems(predicate string, roles []string) (ids [][]FactID, items [][]string, vars []string, err error) {
	sort, ok := st.sorts[predicate]
	if !ok {
		return nil, nil, nil, &DefinitionError{Msg: "unknown predicate " + predicate}
	}
	if len(roles) != sort.def.Arity {
		return nil, nil, nil, &DefinitionError{Msg: "predicate " + predicate + ": role count mismatch"}
	}

	varIndex := map[string]int{}
	for _, r := range roles {
		if _, seen := varIndex[r]; !seen {
			varIndex[r] = len(vars)
			vars = append(vars, r)
		}
	}

	for _, key := range sort.order {
		points := sort.items[key]
		bound := map[string]string{}
		ok := true
		for i, r := range roles {
			if v, seen := bound[r]; seen {
				if v != points[i] {
					ok = false
					break
				}
			} else {
				bound[r] = points[i]
			}
		}
		if !ok {
			continue
		}
		proj := make([]string, len(vars))
		for i, v := range vars {
			proj[i] = bound[v]
		}
		ids = append(ids, []FactID{sort.byKey[key]})
		items = append(items, proj)
	}
	return ids, items, vars, nil
}

// StepLog returns the append-only (theorem, elapsed) log.
func (st *Store) StepLog() []Step {
	return append([]Step{}, st.stepLog...)
}

// clone deep-copies the store for Problem.Clone, snapshotting the id
// counter so a rolled-back exploration branch can resume issuing ids from
// where the parent branch left off without colliding with ids the parent
// itself later issues.
func (st *Store) clone() *Store {
	out := newStore()
	out.logger = st.logger
	out.nextID = st.nextID

	for name, def := range st.predicates {
		out.predicates[name] = def
	}
	for name, s := range st.sorts {
		clone := &sortData{
			def:   s.def,
			byKey: map[string]FactID{},
			items: map[string][]string{},
			order: append([]string{}, s.order...),
		}
		for k, v := range s.byKey {
			clone.byKey[k] = v
		}
		for k, v := range s.items {
			clone.items[k] = append([]string{}, v...)
		}
		out.sorts[name] = clone
	}
	for k, v := range st.valueOfSym {
		out.valueOfSym[k] = v
	}
	for k, v := range st.valueFactID {
		out.valueFactID[k] = v
	}
	for k, v := range st.attrOfSym {
		out.attrOfSym[k] = attrBinding{Kind: v.Kind, Points: append([][]string{}, v.Points...)}
	}
	for k, v := range st.symForAttr {
		out.symForAttr[k] = v
	}
	for k, v := range st.workingPool {
		out.workingPool[k] = &workingEquation{sourceID: v.sourceID, current: v.current}
	}
	for id, prov := range st.provenance {
		p := *prov
		p.Premises = append([]FactID{}, prov.Premises...)
		out.provenance[id] = &p
	}
	out.stepLog = append([]Step{}, st.stepLog...)
	return out
}
