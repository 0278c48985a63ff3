package lua

import (
	"fmt"
	"regexp"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugins/inputrules"
	"github.com/dshills/inkwell/internal/state"
)

// ModuleName is the global table scripts register rules through.
const ModuleName = "inkwell"

// RuleSet collects the input rules registered by scripts.
type RuleSet struct {
	st     *State
	schema *model.Schema
	log    *logging.Logger

	mu    sync.Mutex
	rules []inputrules.Rule
	names map[string]int
}

// NewRuleSet installs the inkwell module into st.
func NewRuleSet(st *State) *RuleSet {
	rs := &RuleSet{
		st:     st,
		schema: model.DefaultSchema(),
		log:    st.log,
		names:  make(map[string]int),
	}
	st.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"rule":  rs.luaRule,
		"block": rs.luaBlock,
		"wrap":  rs.luaWrap,
		"mark":  rs.luaMark,
	})
	return rs
}

// LoadString runs a rules script.
func (rs *RuleSet) LoadString(code string) error {
	return rs.st.DoString(code)
}

// LoadFile runs a rules script from path.
func (rs *RuleSet) LoadFile(path string) error {
	return rs.st.DoFile(path)
}

// Rules returns the registered rules in registration order.
func (rs *RuleSet) Rules() []inputrules.Rule {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]inputrules.Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len returns the number of registered rules.
func (rs *RuleSet) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.rules)
}

// add registers r, replacing an earlier rule of the same name in place.
func (rs *RuleSet) add(r inputrules.Rule) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if i, ok := rs.names[r.Name]; ok {
		rs.rules[i] = r
		return
	}
	rs.names[r.Name] = len(rs.rules)
	rs.rules = append(rs.rules, r)
}

// compile validates the name and pattern arguments shared by all
// registration functions. Errors are raised into Lua.
func compile(L *lua.LState) (string, string) {
	name := L.CheckString(1)
	pattern := L.CheckString(2)
	if name == "" {
		L.RaiseError("%v", &RuleError{Rule: name, Reason: "name is empty"})
	}
	if _, err := regexp.Compile(pattern); err != nil {
		L.RaiseError("%v", &RuleError{Rule: name, Reason: err.Error()})
	}
	return name, pattern
}

func optAttrs(L *lua.LState, n int, name string) model.Attrs {
	attrs, err := TableToAttrs(L.OptTable(n, nil))
	if err != nil {
		L.RaiseError("%v", &RuleError{Rule: name, Reason: err.Error()})
	}
	return attrs
}

func constAttrs(attrs model.Attrs) func([]string) model.Attrs {
	if attrs == nil {
		return nil
	}
	return func([]string) model.Attrs { return attrs.Clone() }
}

// luaRule implements inkwell.rule(name, pattern, replacement). replacement
// is a string or a function of the match returning a string or nil.
func (rs *RuleSet) luaRule(L *lua.LState) int {
	name, pattern := compile(L)
	switch repl := L.Get(3).(type) {
	case lua.LString:
		rs.add(inputrules.TextRule(name, pattern, string(repl)))
	case *lua.LFunction:
		rs.add(inputrules.Rule{
			Name:    name,
			Pattern: regexp.MustCompile(pattern),
			Handler: rs.functionHandler(name, repl),
		})
	default:
		L.ArgError(3, "string or function expected")
	}
	return 0
}

func (rs *RuleSet) functionHandler(name string, fn *lua.LFunction) inputrules.Handler {
	return func(st *state.State, match []string, start, end int) *state.Transaction {
		ret, err := rs.st.CallFunction(fn, match)
		if err != nil {
			rs.log.WithError(err).Warn("input rule %q failed", name)
			return nil
		}
		s, ok := ret.(lua.LString)
		if !ok {
			return nil
		}
		tr := st.Tr()
		if err := tr.InsertText(string(s), start, end); err != nil {
			return nil
		}
		return tr
	}
}

// luaBlock implements inkwell.block(name, pattern, kind, attrs).
func (rs *RuleSet) luaBlock(L *lua.LState) int {
	name, pattern := compile(L)
	kind := rs.checkNodeKind(L, 3, name)
	if !rs.schema.NodeType(kind).IsTextblock() {
		L.RaiseError("%v", &RuleError{Rule: name, Reason: fmt.Sprintf("%s is not a textblock", kind)})
	}
	attrs := rs.nodeAttrs(L, kind, name)
	rs.add(inputrules.TextblockTypeRule(name, pattern, kind, constAttrs(attrs)))
	return 0
}

// luaWrap implements inkwell.wrap(name, pattern, kind, attrs).
func (rs *RuleSet) luaWrap(L *lua.LState) int {
	name, pattern := compile(L)
	kind := rs.checkNodeKind(L, 3, name)
	if t := rs.schema.NodeType(kind); !t.IsBlock() || t.IsTextblock() || t.IsLeaf() {
		L.RaiseError("%v", &RuleError{Rule: name, Reason: fmt.Sprintf("%s cannot wrap blocks", kind)})
	}
	attrs := rs.nodeAttrs(L, kind, name)
	rs.add(inputrules.WrappingRule(name, pattern, kind, constAttrs(attrs), nil))
	return 0
}

// luaMark implements inkwell.mark(name, pattern, mark, attrs). The first
// submatch becomes the marked text.
func (rs *RuleSet) luaMark(L *lua.LState) int {
	name, pattern := compile(L)
	markName := L.CheckString(3)
	kind, ok := model.ParseMarkKind(markName)
	if !ok {
		L.RaiseError("%v", &RuleError{Rule: name, Reason: fmt.Sprintf("unknown mark %q", markName)})
	}
	attrs := optAttrs(L, 4, name)
	if _, err := rs.schema.Mark(kind, attrs); err != nil {
		L.RaiseError("%v", &RuleError{Rule: name, Reason: err.Error()})
	}
	if regexp.MustCompile(pattern).NumSubexp() < 1 {
		L.RaiseError("%v", &RuleError{Rule: name, Reason: "mark patterns need a submatch"})
	}
	rs.add(inputrules.MarkRule(name, pattern, kind, constAttrs(attrs)))
	return 0
}

func (rs *RuleSet) checkNodeKind(L *lua.LState, n int, rule string) model.NodeKind {
	s := L.CheckString(n)
	kind, ok := model.ParseNodeKind(s)
	if !ok {
		L.RaiseError("%v", &RuleError{Rule: rule, Reason: fmt.Sprintf("unknown node type %q", s)})
	}
	return kind
}

// nodeAttrs reads the optional attrs argument and checks it against kind.
func (rs *RuleSet) nodeAttrs(L *lua.LState, kind model.NodeKind, rule string) model.Attrs {
	attrs := optAttrs(L, 4, rule)
	if _, err := rs.schema.NodeType(kind).ComputeAttrs(attrs); err != nil {
		L.RaiseError("%v", &RuleError{Rule: rule, Reason: err.Error()})
	}
	return attrs
}
