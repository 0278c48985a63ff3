package nodeview

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/markup"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
)

// Class names of the image view's elements.
const (
	ImageContainerClass = "image-container"
	ResizeHandleClass   = "resize-handle"
)

// MinImageWidth is the narrowest an image can be resized to.
const MinImageWidth = 20

// ImageView renders an image with a resize handle. Dragging the handle
// follows the pointer through window listeners held in a scope; releasing
// it writes the width to the node.
type ImageView struct {
	node   *model.Node
	host   plugin.Host
	getPos PosFunc
	window *dom.EventTarget
	log    *logging.Logger

	container *html.Node
	img       *html.Node
	handle    *html.Node

	scope    dom.Scope
	left     float64
	width    int
	resizing bool
}

// NewImage returns a constructor for image views listening on window.
func NewImage(window *dom.EventTarget) Constructor {
	return func(n *model.Node, h plugin.Host, getPos PosFunc) NodeView {
		v := &ImageView{
			node:   n,
			host:   h,
			getPos: getPos,
			window: window,
			log:    logging.OrNop(h.Logger()).WithComponent("nodeview.image"),
		}
		v.container = markup.Element("span", "class", ImageContainerClass)
		v.img = markup.Element("img")
		v.handle = markup.Element("span", "class", ResizeHandleClass)
		v.container.AppendChild(v.img)
		v.container.AppendChild(v.handle)
		v.render()
		return v
	}
}

func (v *ImageView) render() {
	a := v.node.Attrs()
	setAttr(v.img, "src", a.GetString("src"))
	for _, k := range []string{"alt", "title"} {
		if s := a.GetString(k); s != "" {
			setAttr(v.img, k, s)
		} else {
			removeAttr(v.img, k)
		}
	}
	v.width = a.GetInt("width")
	v.setWidth(v.width)
}

func (v *ImageView) setWidth(w int) {
	if w > 0 {
		setAttr(v.container, "style", "width: "+strconv.Itoa(w)+"px")
	} else {
		removeAttr(v.container, "style")
	}
}

// DOM implements NodeView.
func (v *ImageView) DOM() *html.Node { return v.container }

// Handle returns the resize handle element.
func (v *ImageView) Handle() *html.Node { return v.handle }

// Width returns the displayed width; 0 means natural size.
func (v *ImageView) Width() int { return v.width }

// Resizing reports whether a resize drag is in progress.
func (v *ImageView) Resizing() bool { return v.resizing }

// Listeners returns the number of window listeners the view holds.
func (v *ImageView) Listeners() int { return v.scope.Active() }

// Update implements NodeView.
func (v *ImageView) Update(n *model.Node) bool {
	if n.Kind() != model.Image {
		return false
	}
	v.node = n
	if !v.resizing {
		v.render()
	}
	return true
}

// HandleEvent starts a resize on pointer-down on the handle.
func (v *ImageView) HandleEvent(ev *dom.Event) bool {
	if ev.Type != dom.PointerDown || !Contains(v.handle, ev.Target) {
		return false
	}
	ev.PreventDefault()
	v.startResize()
	return true
}

func (v *ImageView) startResize() {
	v.scope.Release()
	v.resizing = false

	pos, ok := v.getPos()
	if !ok {
		return
	}
	box, err := v.host.CoordsAtPos(pos)
	if err != nil {
		v.log.WithError(err).Warn("cannot resize image at %d", pos)
		return
	}
	v.left = box.Left
	v.resizing = true
	v.scope.Listen(v.window, dom.PointerMove, v.onMove)
	v.scope.Listen(v.window, dom.PointerUp, v.onUp)
}

func (v *ImageView) onMove(ev *dom.Event) {
	v.width = max(MinImageWidth, int(ev.X-v.left))
	v.setWidth(v.width)
}

func (v *ImageView) onUp(*dom.Event) {
	defer v.scope.Release()
	v.resizing = false

	if v.width == v.node.Attrs().GetInt("width") {
		return
	}
	pos, ok := v.getPos()
	if !ok {
		return
	}
	tr := v.host.State().Tr()
	if err := tr.SetNodeAttr(pos, "width", v.width); err != nil {
		v.log.WithError(err).Warn("cannot set image width at %d", pos)
		return
	}
	v.host.Dispatch(tr)
}

// Destroy implements NodeView.
func (v *ImageView) Destroy() {
	v.scope.Release()
	v.resizing = false
}
