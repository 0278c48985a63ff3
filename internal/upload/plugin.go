package upload

import (
	"context"
	"time"

	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/view"
)

// PluginKey is the key of the upload plugin.
const PluginKey = "upload"

// DefaultTimeout bounds one upload.
const DefaultTimeout = 30 * time.Second

// Tracker is implemented by hosts that keep positions current across
// transactions.
type Tracker interface {
	Track(pos int) *view.TrackedPos
}

// Plugin uploads image files that are pasted or dropped and inserts them
// as figures where they landed.
type Plugin struct {
	uploader Uploader
	post     func(func())
	timeout  time.Duration
	log      *logging.Logger
}

// PluginOption configures a Plugin.
type PluginOption func(*Plugin)

// WithPost makes uploads run in the background. post must run its
// argument on the goroutine that owns the view.
func WithPost(post func(func())) PluginOption {
	return func(p *Plugin) {
		p.post = post
	}
}

// WithTimeout bounds each upload.
func WithTimeout(d time.Duration) PluginOption {
	return func(p *Plugin) {
		p.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) PluginOption {
	return func(p *Plugin) {
		p.log = l
	}
}

// NewPlugin returns an upload plugin over u. Without WithPost uploads run
// before the interceptor returns.
func NewPlugin(u Uploader, opts ...PluginOption) *Plugin {
	p := &Plugin{uploader: u, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logging.OrNop(p.log).WithComponent("upload")
	return p
}

// Key implements state.Plugin.
func (p *Plugin) Key() string { return PluginKey }

// HandlePaste implements plugin.PasteHandler.
func (p *Plugin) HandlePaste(h plugin.Host, ev *dom.Event, _ model.Slice) plugin.Result {
	return p.handle(h, ev, h.State().Selection().From())
}

// HandleDrop implements plugin.DropHandler. Files land where they were
// dropped, or at the selection when that is outside the document.
func (p *Plugin) HandleDrop(h plugin.Host, ev *dom.Event, _ model.Slice, _ bool) plugin.Result {
	pos, ok := h.PosAtCoords(ev.X, ev.Y)
	if !ok {
		pos = h.State().Selection().From()
	}
	return p.handle(h, ev, pos)
}

func (p *Plugin) handle(h plugin.Host, ev *dom.Event, pos int) plugin.Result {
	files := p.images(ev)
	if len(files) == 0 {
		return plugin.NotHandled
	}
	tracker, ok := h.(Tracker)
	if !ok {
		p.log.Warn("host cannot track positions; ignoring %d files", len(files))
		return plugin.NotHandled
	}
	ev.PreventDefault()
	for _, f := range files {
		at := tracker.Track(pos)
		if p.post == nil {
			p.finish(h, at, f, p.upload(f))
			continue
		}
		go func() {
			out := p.upload(f)
			p.post(func() { p.finish(h, at, f, out) })
		}()
	}
	return plugin.Handled()
}

// images returns the pasted or dropped files that are accepted images.
func (p *Plugin) images(ev *dom.Event) []File {
	if ev.Data == nil {
		return nil
	}
	var out []File
	for _, df := range ev.Data.Files {
		f := FromDOM(df)
		if !IsAllowedImage(f.ContentType) {
			p.log.Info("skipping %s: %v %q", f.Name, ErrUnsupportedType, f.ContentType)
			continue
		}
		out = append(out, f)
	}
	return out
}

type outcome struct {
	res Result
	err error
}

func (p *Plugin) upload(f File) outcome {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	res, err := p.uploader.Upload(ctx, f)
	return outcome{res: res, err: err}
}

// finish inserts a completed upload. It runs on the view's goroutine.
func (p *Plugin) finish(h plugin.Host, at *view.TrackedPos, f File, out outcome) {
	defer at.Release()
	if out.err != nil {
		p.log.WithError(out.err).Error("upload %s failed", f.Name)
		return
	}
	if !InsertCommand(at, out.res)(h.State(), h.Dispatch) {
		p.log.Warn("could not insert %s at %d", out.res.URL, at.Pos())
	}
}
