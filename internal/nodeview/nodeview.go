// Package nodeview holds custom renderers for nodes that need more than
// their HTML rule: interactive chrome, listeners, or attributes the view
// updates in place.
package nodeview

import (
	"golang.org/x/net/html"

	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
)

// NodeView renders one node.
type NodeView interface {
	// DOM returns the view's root element.
	DOM() *html.Node
	// Update is offered a new version of the node. Returning false makes
	// the host destroy the view and create a fresh one.
	Update(n *model.Node) bool
	// Destroy releases the view's resources.
	Destroy()
}

// EventHandler is implemented by views that consume events aimed at them.
type EventHandler interface {
	HandleEvent(ev *dom.Event) bool
}

// PosFunc returns the node's current position, or false when the node is
// no longer in the document.
type PosFunc func() (int, bool)

// Constructor creates a view for n.
type Constructor func(n *model.Node, h plugin.Host, getPos PosFunc) NodeView

// Set maps node kinds to constructors.
type Set map[model.NodeKind]Constructor

// Defaults returns the built-in views. window receives the listeners of
// drag interactions that outlive the originating event.
func Defaults(window *dom.EventTarget) Set {
	return Set{
		model.Image: NewImage(window),
		model.Embed: NewEmbed,
	}
}

// Contains reports whether target is el or inside it.
func Contains(el, target *html.Node) bool {
	for n := target; n != nil; n = n.Parent {
		if n == el {
			return true
		}
	}
	return false
}

func setAttr(el *html.Node, key, val string) {
	for i := range el.Attr {
		if el.Attr[i].Key == key {
			el.Attr[i].Val = val
			return
		}
	}
	el.Attr = append(el.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(el *html.Node, key string) {
	out := el.Attr[:0]
	for _, a := range el.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	el.Attr = out
}

// GetAttr returns an attribute of el.
func GetAttr(el *html.Node, key string) string {
	for _, a := range el.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
