package state

// Plugin is the state-level view of a plugin. A plugin implements Key and
// any of the optional interfaces below; the pipeline in package plugin
// defines the view-level ones.
type Plugin interface {
	// Key uniquely identifies the plugin within a state.
	Key() string
}

// StateField is implemented by plugins that keep state alongside the
// document.
type StateField interface {
	Plugin
	// InitState returns the initial value for st.
	InitState(st *State) any
	// ApplyState returns the value after tr. It must not modify value.
	ApplyState(tr *Transaction, value any, old, next *State) any
}

// TransactionFilter is implemented by plugins that can veto transactions.
type TransactionFilter interface {
	Plugin
	FilterTransaction(tr *Transaction, st *State) bool
}

// TransactionAppender is implemented by plugins that follow transactions
// with their own. AppendTransaction sees the transactions applied since it
// last ran and returns nil when it has nothing to add.
type TransactionAppender interface {
	Plugin
	AppendTransaction(trs []*Transaction, old, next *State) *Transaction
}

// Command inspects a state and, when dispatch is not nil, dispatches the
// transaction it builds. It reports whether it applies. Calling a command
// with a nil dispatch is a dry run.
type Command func(st *State, dispatch func(*Transaction)) bool

// Field returns the typed state field of the plugin with key.
func Field[T any](st *State, key string) (T, bool) {
	v, ok := st.fields[key].(T)
	return v, ok
}
