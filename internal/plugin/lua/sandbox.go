package lua

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/inkwell/internal/logging"
)

// removedGlobals load code from files or strings, or reach outside the
// opened libraries.
var removedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
	"collectgarbage",
}

// installSandbox removes dangerous globals and routes print to log.
func installSandbox(L *lua.LState, log *logging.Logger) {
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		log.Info("%s", strings.Join(parts, "\t"))
		return 0
	}))
}
