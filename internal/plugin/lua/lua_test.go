package lua

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/plugintest"
	"github.com/dshills/inkwell/internal/plugins/inputrules"
	"github.com/dshills/inkwell/internal/state"
	. "github.com/dshills/inkwell/internal/testutil"
)

func TestStateDoString(t *testing.T) {
	st := NewState()
	defer st.Close()

	if err := st.DoString(`x = 1 + 2`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got := st.GetGlobal("x"); got != lua.LNumber(3) {
		t.Errorf("x = %v, want 3", got)
	}
	if err := st.DoString(`error("boom")`); err == nil {
		t.Error("expected error from script")
	}
}

func TestStateClose(t *testing.T) {
	st := NewState()
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if !st.IsClosed() {
		t.Error("IsClosed = false")
	}
	if err := st.DoString(`x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString after Close = %v, want ErrStateClosed", err)
	}
}

func TestExecutionTimeout(t *testing.T) {
	st := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer st.Close()

	err := st.DoString(`while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("err = %v, want ErrExecutionTimeout", err)
	}
	// The state stays usable.
	if err := st.DoString(`y = 2`); err != nil {
		t.Errorf("DoString after timeout: %v", err)
	}
}

func TestSandbox(t *testing.T) {
	st := NewState()
	defer st.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "io", "os"} {
		if st.GetGlobal(name) != lua.LNil {
			t.Errorf("%s is available in the sandbox", name)
		}
	}
	for _, name := range []string{"string", "table", "math", "pairs"} {
		if st.GetGlobal(name) == lua.LNil {
			t.Errorf("%s is missing", name)
		}
	}
}

func TestPrintLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LogLevelDebug, Output: &buf})
	st := NewState(WithLogger(log))
	defer st.Close()

	if err := st.DoString(`print("hello", 42)`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if !strings.Contains(buf.String(), "hello\t42") && !strings.Contains(buf.String(), `hello\t42`) {
		t.Errorf("log = %q, want printed values", buf.String())
	}
	if !strings.Contains(buf.String(), "component=lua") {
		t.Errorf("log = %q, want lua component", buf.String())
	}
}

func TestToGoValue(t *testing.T) {
	st := NewState()
	defer st.Close()

	if err := st.DoString(`arr = {"a", "b"}; obj = {level = 2, ratio = 0.5, on = true}; loop = {}; loop.self = loop`); err != nil {
		t.Fatal(err)
	}
	arr, ok := ToGoValue(st.GetGlobal("arr")).([]any)
	if !ok || len(arr) != 2 || arr[0] != "a" {
		t.Errorf("arr = %#v", arr)
	}
	obj, ok := ToGoValue(st.GetGlobal("obj")).(map[string]any)
	if !ok {
		t.Fatalf("obj = %#v", obj)
	}
	if obj["level"] != 2 || obj["ratio"] != 0.5 || obj["on"] != true {
		t.Errorf("obj = %#v", obj)
	}
	loop, ok := ToGoValue(st.GetGlobal("loop")).(map[string]any)
	if !ok || loop["self"] != nil {
		t.Errorf("loop = %#v", loop)
	}
}

func loadRules(t *testing.T, script string) []inputrules.Rule {
	t.Helper()
	st := NewState()
	t.Cleanup(func() { st.Close() })
	rs := NewRuleSet(st)
	if err := rs.LoadString(script); err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	return rs.Rules()
}

func typeWith(t *testing.T, rules []inputrules.Rule, doc *model.Node, pos int, text string) (*plugintest.Host, bool) {
	t.Helper()
	st, err := state.New(state.Config{
		Doc:       doc,
		Selection: state.Cursor(pos),
		Plugins:   []state.Plugin{inputrules.New(rules...)},
	})
	if err != nil {
		t.Fatal(err)
	}
	h := plugintest.NewHost(st)
	handled := plugin.NewPipeline().TextInput(h, pos, pos, text)
	if h.Err != nil {
		t.Fatal(h.Err)
	}
	return h, handled
}

func TestScriptedRules(t *testing.T) {
	rules := loadRules(t, `
inkwell.rule("arrow", "->$", "→")
inkwell.rule("shout", "!(\\w+)!$", function(m) return string.upper(m[2]) end)
inkwell.rule("never", "\\?$", function(m) return nil end)
inkwell.block("h3", "^===\\s$", "heading", {level = 3})
inkwell.wrap("quote", "^\"\\s$", "blockquote")
inkwell.mark("bold", "\\*\\*([^*]+)\\*\\*$", "bold")
`)
	if len(rules) != 6 {
		t.Fatalf("got %d rules, want 6", len(rules))
	}

	tests := []struct {
		name string
		doc  *model.Node
		pos  int
		text string
		want *model.Node
	}{
		{"text", Doc(P("a-")), 3, ">", Doc(P("a→"))},
		{"function", Doc(P("!hey")), 5, "!", Doc(P("HEY"))},
		{"block", Doc(P("===")), 4, " ", Doc(H(3))},
		{"wrap", Doc(P(`"`)), 2, " ", Doc(Quote(P()))},
		{"mark", Doc(P("**b*")), 5, "*", Doc(P(Marked("b", model.Bold)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, handled := typeWith(t, rules, tt.doc, tt.pos, tt.text)
			if !handled {
				t.Fatal("rule did not fire")
			}
			if !h.St.Doc().Eq(tt.want) {
				t.Errorf("doc = %s, want %s", h.St.Doc(), tt.want)
			}
		})
	}

	t.Run("function declines", func(t *testing.T) {
		_, handled := typeWith(t, rules, Doc(P("a")), 2, "?")
		if handled {
			t.Error("nil replacement should decline")
		}
	})
}

func TestRuleNamesReplace(t *testing.T) {
	rules := loadRules(t, `
inkwell.rule("arrow", "->$", "→")
inkwell.rule("other", "<-$", "←")
inkwell.rule("arrow", "=>$", "⇒")
`)
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].Name != "arrow" || rules[0].Pattern.String() != "=>$" {
		t.Errorf("rules[0] = %s %s", rules[0].Name, rules[0].Pattern)
	}
}

func TestInvalidRules(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"bad pattern", `inkwell.rule("x", "(", "y")`, `rule "x"`},
		{"empty name", `inkwell.rule("", "a$", "b")`, "name is empty"},
		{"bad replacement", `inkwell.rule("x", "a$", 3)`, "string or function expected"},
		{"unknown node", `inkwell.block("x", "a$", "marquee")`, "unknown node type"},
		{"not a textblock", `inkwell.block("x", "a$", "blockquote")`, "not a textblock"},
		{"cannot wrap", `inkwell.wrap("x", "a$", "paragraph")`, "cannot wrap"},
		{"bad attrs", `inkwell.block("x", "a$", "heading", {level = 9})`, `rule "x"`},
		{"unknown mark", `inkwell.mark("x", "(a)$", "blink")`, "unknown mark"},
		{"mark without submatch", `inkwell.mark("x", "a$", "bold")`, "need a submatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState()
			defer st.Close()
			rs := NewRuleSet(st)
			err := rs.LoadString(tt.script)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
			if rs.Len() != 0 {
				t.Errorf("registered %d rules", rs.Len())
			}
		})
	}
}

func TestFailingRuleFunctionIsSkipped(t *testing.T) {
	rules := loadRules(t, `inkwell.rule("bad", "x$", function(m) error("nope") end)`)
	h, handled := typeWith(t, rules, Doc(P("a")), 2, "x")
	if handled {
		t.Error("failing rule should not handle input")
	}
	if len(h.Dispatched) != 0 {
		t.Errorf("dispatched %d transactions", len(h.Dispatched))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.lua")
	if err := os.WriteFile(path, []byte(`inkwell.rule("c", "\\(c\\)$", "©")`), 0o644); err != nil {
		t.Fatal(err)
	}
	st := NewState()
	defer st.Close()
	rs := NewRuleSet(st)
	if err := rs.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	h, handled := typeWith(t, rs.Rules(), Doc(P("(c")), 3, ")")
	if !handled || !h.St.Doc().Eq(Doc(P("©"))) {
		t.Errorf("doc = %s", h.St.Doc())
	}
}
