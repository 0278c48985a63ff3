package nodeview

import (
	"golang.org/x/net/html"

	"github.com/dshills/inkwell/internal/markup"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
)

// EmbedSandbox is the sandbox attribute given to embedded frames.
const EmbedSandbox = "allow-scripts allow-same-origin allow-popups allow-presentation"

// EmbedView renders an embed as a sandboxed iframe in a wrapper.
type EmbedView struct {
	node    *model.Node
	wrapper *html.Node
}

// NewEmbed creates an embed view.
func NewEmbed(n *model.Node, _ plugin.Host, _ PosFunc) NodeView {
	v := &EmbedView{node: n, wrapper: markup.Element("div", "class", "embed-wrapper")}
	v.render()
	return v
}

func (v *EmbedView) render() {
	for c := v.wrapper.FirstChild; c != nil; c = v.wrapper.FirstChild {
		v.wrapper.RemoveChild(c)
	}
	a := v.node.Attrs()
	v.wrapper.AppendChild(markup.Element("iframe",
		"src", a["src"],
		"width", a["width"],
		"height", a["height"],
		"sandbox", EmbedSandbox,
		"referrerpolicy", "no-referrer",
		"frameborder", "0",
		"allowfullscreen", true,
	))
}

// DOM implements NodeView.
func (v *EmbedView) DOM() *html.Node { return v.wrapper }

// Update implements NodeView.
func (v *EmbedView) Update(n *model.Node) bool {
	if n.Kind() != model.Embed {
		return false
	}
	if !n.Attrs().Eq(v.node.Attrs()) {
		v.node = n
		v.render()
	}
	v.node = n
	return true
}

// Destroy implements NodeView.
func (v *EmbedView) Destroy() {}
