// Package plugin drives the editor's plugin pipeline.
//
// Plugins are values implementing state.Plugin plus any of the optional
// interfaces in this package and in package state. The pipeline calls them
// in registration order, the order of State.Plugins.
//
// # Interceptors
//
// Event interceptors (TextInputHandler, KeyDownHandler, PasteHandler,
// DropHandler, DOMEventHandler) never touch the view. They inspect the host
// and return a Result. A handled Result stops the event from reaching later
// plugins, and the pipeline runs the Result's commands against the live
// state, dispatching whatever they build:
//
//	func (p *Plugin) HandleTextInput(h plugin.Host, from, to int, text string) plugin.Result {
//	    if h.Composing() {
//	        return plugin.NotHandled
//	    }
//	    return plugin.Handled(replaceCommand(from, to, text))
//	}
//
// # Decorations
//
// Decorations are recomputed from the state on every update. Every
// Decorator is called and the results are unioned; a panicking decorator
// contributes nothing.
//
// # Views
//
// A ViewProvider creates a PluginView when the host mounts the pipeline.
// Views are updated after every state change and destroyed when the host is
// torn down or the plugin set changes.
//
// # Isolation
//
// Every plugin call is wrapped in recover. A panic is logged with the
// plugin key and treated as "not handled".
package plugin
