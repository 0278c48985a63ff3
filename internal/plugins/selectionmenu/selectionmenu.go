// Package selectionmenu shows a formatting menu under a non-empty
// selection.
package selectionmenu

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/inkwell/internal/menu"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/state"
)

// PluginKey is the selectionmenu plugin's key.
const PluginKey = "selectionMenu"

// DefaultGap is the vertical distance between the selection and the menu.
const DefaultGap = 8.0

// Plugin provides the menu view.
type Plugin struct {
	bridge *menu.Bridge
	gap    float64
}

// Option configures the plugin.
type Option func(*Plugin)

// WithGap sets the distance below the selection.
func WithGap(gap float64) Option {
	return func(p *Plugin) {
		p.gap = gap
	}
}

// New creates the plugin. A nil bridge selects the default items.
func New(bridge *menu.Bridge, opts ...Option) *Plugin {
	if bridge == nil {
		bridge = menu.NewBridge(menu.DefaultItems()...)
	}
	p := &Plugin{bridge: bridge, gap: DefaultGap}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key implements state.Plugin.
func (p *Plugin) Key() string { return PluginKey }

// Bridge returns the menu bridge.
func (p *Plugin) Bridge() *menu.Bridge { return p.bridge }

// View implements plugin.ViewProvider.
func (p *Plugin) View(h plugin.Host) plugin.PluginView {
	v := &MenuView{plugin: p, el: &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}}
	v.Update(h, nil)
	return v
}

// MenuView is the mounted menu. Its element is rebuilt on every change.
type MenuView struct {
	plugin    *Plugin
	el        *html.Node
	visible   bool
	left, top float64
	items     []menu.ItemState
	destroyed bool
}

// DOM returns the menu element.
func (v *MenuView) DOM() *html.Node { return v.el }

// Visible reports whether the menu is shown.
func (v *MenuView) Visible() bool { return v.visible }

// Position returns the menu's anchor: the horizontal center of the
// selection and the top edge of the menu.
func (v *MenuView) Position() (left, top float64) { return v.left, v.top }

// Items returns the item states from the last update.
func (v *MenuView) Items() []menu.ItemState { return v.items }

// Update implements plugin.PluginView.
func (v *MenuView) Update(h plugin.Host, prev *state.State) {
	if v.destroyed {
		return
	}
	st := h.State()
	if prev != nil && prev.Doc() == st.Doc() && prev.Selection().Eq(st.Selection()) && prev.StoredMarks().Eq(st.StoredMarks()) {
		return
	}
	sel := st.Selection()
	if sel.Empty() || h.Composing() {
		v.hide()
		return
	}
	start, err := h.CoordsAtPos(sel.From())
	if err == nil {
		var end plugin.Rect
		end, err = h.CoordsAtPos(sel.To())
		if err == nil {
			left, right := min(start.Left, end.Left), max(start.Right, end.Right)
			v.left = (left + right) / 2
			v.top = max(start.Bottom, end.Bottom) + v.plugin.gap
		}
	}
	if err != nil {
		h.Logger().WithComponent(PluginKey).Warn("cannot place menu: %v", err)
		v.hide()
		return
	}
	v.visible = true
	v.items = v.plugin.bridge.Refresh(st)
	v.render()
}

func (v *MenuView) hide() {
	v.visible = false
	v.items = nil
	v.render()
}

func (v *MenuView) render() {
	for c := v.el.FirstChild; c != nil; c = v.el.FirstChild {
		v.el.RemoveChild(c)
	}
	v.el.Attr = []html.Attribute{{Key: "class", Val: "selection-menu"}}
	if !v.visible {
		v.el.Attr = append(v.el.Attr, html.Attribute{Key: "hidden", Val: ""})
		return
	}
	v.el.Attr = append(v.el.Attr, html.Attribute{
		Key: "style",
		Val: fmt.Sprintf("position:absolute;left:%gpx;top:%gpx", v.left, v.top),
	})
	for _, it := range v.items {
		btn := &html.Node{
			Type:     html.ElementNode,
			Data:     "button",
			DataAtom: atom.Button,
			Attr:     []html.Attribute{{Key: "type", Val: "button"}, {Key: "data-item", Val: it.Name}},
		}
		if it.Active {
			btn.Attr = append(btn.Attr, html.Attribute{Key: "class", Val: "active"})
		}
		if !it.Enabled {
			btn.Attr = append(btn.Attr, html.Attribute{Key: "disabled", Val: ""})
		}
		btn.AppendChild(&html.Node{Type: html.TextNode, Data: it.Label})
		v.el.AppendChild(btn)
	}
}

// Destroy implements plugin.PluginView. It detaches the element.
func (v *MenuView) Destroy() {
	if v.el.Parent != nil {
		v.el.Parent.RemoveChild(v.el)
	}
	v.destroyed = true
	v.visible = false
}
