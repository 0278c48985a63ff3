package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dshills/inkwell/internal/model"
)

// Config configures a new State.
type Config struct {
	// Schema defaults to model.DefaultSchema.
	Schema *model.Schema
	// Doc defaults to the schema's empty document.
	Doc *model.Node
	// Selection defaults to the start of the document.
	Selection   Selection
	StoredMarks model.MarkSet
	Plugins     []Plugin
	// Now supplies transaction times. Defaults to time.Now.
	Now func() time.Time
}

// State is an immutable editor state: a document, a selection, stored marks
// and plugin fields. Every change produces a new State.
type State struct {
	schema      *model.Schema
	doc         *model.Node
	selection   Selection
	storedMarks model.MarkSet
	plugins     []Plugin
	fields      map[string]any
	clock       func() time.Time
}

// New creates a state from cfg.
func New(cfg Config) (*State, error) {
	schema := cfg.Schema
	if schema == nil {
		if cfg.Doc != nil {
			schema = cfg.Doc.Type().Schema()
		} else {
			schema = model.DefaultSchema()
		}
	}
	doc := cfg.Doc
	if doc == nil {
		doc = schema.EmptyDoc()
	}
	if err := checkPlugins(cfg.Plugins); err != nil {
		return nil, err
	}
	sel := cfg.Selection
	if sel == nil {
		sel = AtStart(doc)
	} else if sel.To() > doc.Content().Size() || sel.From() < 0 {
		return nil, fmt.Errorf("%w: %v outside document", ErrInvalidSelection, sel)
	}
	clock := cfg.Now
	if clock == nil {
		clock = time.Now
	}
	st := &State{
		schema:      schema,
		doc:         doc,
		selection:   sel,
		storedMarks: cfg.StoredMarks,
		plugins:     append([]Plugin(nil), cfg.Plugins...),
		clock:       clock,
	}
	st.fields = make(map[string]any, len(st.plugins))
	for _, p := range st.plugins {
		if f, ok := p.(StateField); ok {
			st.fields[p.Key()] = f.InitState(st)
		}
	}
	return st, nil
}

func checkPlugins(plugins []Plugin) error {
	seen := make(map[string]bool, len(plugins))
	for _, p := range plugins {
		if seen[p.Key()] {
			return fmt.Errorf("%w: %s", ErrDuplicatePlugin, p.Key())
		}
		seen[p.Key()] = true
	}
	return nil
}

// Schema returns the document schema.
func (st *State) Schema() *model.Schema { return st.schema }

// Doc returns the document.
func (st *State) Doc() *model.Node { return st.doc }

// Selection returns the selection.
func (st *State) Selection() Selection { return st.selection }

// StoredMarks returns the marks applied to the next typed text, or nil.
func (st *State) StoredMarks() model.MarkSet { return st.storedMarks }

// Plugins returns the active plugins in order.
func (st *State) Plugins() []Plugin { return st.plugins }

// Field returns the state field of the plugin with key.
func (st *State) Field(key string) any { return st.fields[key] }

func (st *State) now() time.Time { return st.clock() }

// Tr starts a transaction on this state.
func (st *State) Tr() *Transaction {
	return newTransaction(st)
}

// Apply returns the state after tr. It does not run plugin filters or
// appenders and never modifies st.
func (st *State) Apply(tr *Transaction) (*State, error) {
	if tr.Before() != st.doc {
		return nil, ErrMismatchedTransaction
	}
	return st.applyInner(tr), nil
}

func (st *State) applyInner(tr *Transaction) *State {
	next := &State{
		schema:    st.schema,
		doc:       tr.Doc(),
		selection: tr.Selection(),
		plugins:   st.plugins,
		clock:     st.clock,
	}
	if _, cursor := next.selection.(TextSelection); cursor && next.selection.Empty() {
		next.storedMarks = tr.StoredMarks()
	}
	next.fields = make(map[string]any, len(st.fields))
	for _, p := range st.plugins {
		if f, ok := p.(StateField); ok {
			next.fields[p.Key()] = f.ApplyState(tr, st.fields[p.Key()], st, next)
		}
	}
	return next
}

func (st *State) filterTransaction(tr *Transaction, ignore int) bool {
	for i, p := range st.plugins {
		if i == ignore {
			continue
		}
		if f, ok := p.(TransactionFilter); ok && !f.FilterTransaction(tr, st) {
			return false
		}
	}
	return true
}

type appendSeen struct {
	state *State
	n     int
}

// ApplyTransaction applies tr with the plugin protocol: filters may veto it,
// and appenders may follow it with further transactions, each of which is
// filtered too. It returns the final state and every transaction applied,
// root first. A vetoed root leaves the state unchanged and returns no
// transactions.
func (st *State) ApplyTransaction(root *Transaction) (*State, []*Transaction, error) {
	if root.Before() != st.doc {
		return nil, nil, ErrMismatchedTransaction
	}
	if !st.filterTransaction(root, -1) {
		return st, nil, nil
	}
	trs := []*Transaction{root}
	next := st.applyInner(root)
	var seen []appendSeen
	for {
		added := false
		for i, p := range st.plugins {
			appender, ok := p.(TransactionAppender)
			if !ok {
				continue
			}
			n, old := 0, st
			if seen != nil {
				n, old = seen[i].n, seen[i].state
			}
			var tr *Transaction
			if n < len(trs) {
				tr = appender.AppendTransaction(trs[n:], old, next)
			}
			if tr != nil && tr.Before() == next.doc && next.filterTransaction(tr, i) {
				tr.SetMeta(MetaAppendedTransaction, root)
				if seen == nil {
					seen = make([]appendSeen, len(st.plugins))
					for j := range seen {
						if j < i {
							seen[j] = appendSeen{state: next, n: len(trs)}
						} else {
							seen[j] = appendSeen{state: st}
						}
					}
				}
				trs = append(trs, tr)
				next = next.applyInner(tr)
				added = true
			}
			if seen != nil {
				seen[i] = appendSeen{state: next, n: len(trs)}
			}
		}
		if !added {
			return next, trs, nil
		}
	}
}

// Reconfigure returns a state with the same document and selection and a
// new plugin list. Fields of plugins present in both keep their values.
func (st *State) Reconfigure(plugins []Plugin) (*State, error) {
	if err := checkPlugins(plugins); err != nil {
		return nil, err
	}
	next := &State{
		schema:      st.schema,
		doc:         st.doc,
		selection:   st.selection,
		storedMarks: st.storedMarks,
		plugins:     append([]Plugin(nil), plugins...),
		clock:       st.clock,
	}
	next.fields = make(map[string]any, len(plugins))
	for _, p := range plugins {
		f, ok := p.(StateField)
		if !ok {
			continue
		}
		if v, had := st.fields[p.Key()]; had {
			next.fields[p.Key()] = v
		} else {
			next.fields[p.Key()] = f.InitState(next)
		}
	}
	return next, nil
}

// JSON is the persisted form of a state.
type JSON struct {
	Doc       *model.NodeJSON `json:"doc"`
	Selection SelectionJSON   `json:"selection"`
}

// ToJSON returns the persisted form of the document and selection.
func (st *State) ToJSON() JSON {
	return JSON{Doc: model.ToJSON(st.doc), Selection: st.selection.JSON()}
}

// MarshalJSON implements json.Marshaler.
func (st *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(st.ToJSON())
}

// FromJSON restores a state. cfg supplies schema and plugins; its Doc and
// Selection are replaced by the decoded ones.
func FromJSON(cfg Config, data []byte) (*State, error) {
	var raw JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	schema := cfg.Schema
	if schema == nil {
		schema = model.DefaultSchema()
	}
	doc, err := schema.NodeFromJSON(raw.Doc)
	if err != nil {
		return nil, err
	}
	sel, err := SelectionFromJSON(doc, raw.Selection)
	if err != nil {
		return nil, err
	}
	cfg.Schema, cfg.Doc, cfg.Selection = schema, doc, sel
	return New(cfg)
}
