// Package commands provides the editing command surface.
//
// A command is a state.Command: it inspects the state, and when it applies
// it builds a transaction and passes it to dispatch. Called with a nil
// dispatch, a command only reports whether it would apply; the menu bridge
// uses this to compute enabled and active states.
//
// Commands never return errors. A command that cannot apply returns false
// and dispatches nothing.
//
// Chain composes commands into one transaction:
//
//	commands.Chain(host).Focus().ToggleMark(model.Bold, nil).Run()
//
// Registry maps command names to commands for hosts that bind commands by
// name, such as the terminal host and scripts.
package commands
