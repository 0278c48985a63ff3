// Package lua runs Lua scripts that define input rules.
//
// Scripts run in a sandboxed gopher-lua state: only the base, string,
// table and math libraries are opened, and functions that load code from
// files or strings are removed. print writes to the editor log.
//
// # State
//
//	st := lua.NewState(lua.WithExecutionTimeout(time.Second))
//	defer st.Close()
//
// # Rules
//
// A RuleSet installs the inkwell module and collects the rules a script
// registers:
//
//	inkwell.rule("arrow", "->$", "→")
//	inkwell.rule("upper", "\\^(\\w+)\\^$", function(m) return string.upper(m[2]) end)
//	inkwell.block("h2", "^==\\s$", "heading", {level = 2})
//	inkwell.wrap("quote", "^\"\\s$", "blockquote")
//	inkwell.mark("bold", "\\*\\*([^*]+)\\*\\*$", "bold")
//
// Patterns are Go regular expressions matched against the text before the
// cursor. Function replacements receive the match as an array whose first
// element is the whole match; returning nil declines the match.
//
//	rs := lua.NewRuleSet(st)
//	if err := rs.LoadFile("rules.lua"); err != nil {
//	    return err
//	}
//	plugin := inputrules.New(rs.Rules()...)
package lua
