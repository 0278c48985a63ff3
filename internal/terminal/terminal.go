package terminal

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"

	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugins/charcount"
	"github.com/dshills/inkwell/internal/state"
	"github.com/dshills/inkwell/internal/view"
)

// SaveFunc persists a state.
type SaveFunc func(*state.State) error

// Host drives a view from a tcell screen. Its methods must be called from
// the event loop goroutine, except Post.
type Host struct {
	screen  tcell.Screen
	view    *view.View
	save    SaveFunc
	title   string
	log     *logging.Logger
	top     int
	status  string
	saved   *model.Node
	pasting bool
	paste   strings.Builder
	quit    bool
}

// Option configures a Host.
type Option func(*Host)

// WithSave binds Ctrl-S.
func WithSave(fn SaveFunc) Option {
	return func(h *Host) {
		h.save = fn
	}
}

// WithTitle sets the status line title.
func WithTitle(title string) Option {
	return func(h *Host) {
		h.title = title
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(h *Host) {
		h.log = l
	}
}

// NewScreen returns a screen for the controlling terminal.
func NewScreen() (tcell.Screen, error) {
	return tcell.NewScreen()
}

// New returns a host showing v on screen. The screen must be initialized
// before Draw or HandleEvent; Run does that itself. v should use Layout.
func New(screen tcell.Screen, v *view.View, opts ...Option) *Host {
	h := &Host{
		screen: screen,
		view:   v,
		title:  "inkwell",
		saved:  v.State().Doc(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = logging.OrNop(h.log).WithComponent("terminal")
	return h
}

// Post runs fn on the event loop. It is safe to call from any goroutine.
func (h *Host) Post(fn func()) {
	if err := h.screen.PostEvent(tcell.NewEventInterrupt(fn)); err != nil {
		h.log.WithError(err).Warn("event queue full")
	}
}

// Run initializes the screen and handles events until Ctrl-Q or until ctx
// is done.
func (h *Host) Run(ctx context.Context) error {
	if err := h.screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer h.screen.Fini()
	h.screen.EnableMouse()
	h.screen.EnablePaste()

	stop := context.AfterFunc(ctx, func() { h.Post(func() { h.quit = true }) })
	defer stop()

	h.view.Focus()
	h.Draw()
	for !h.quit {
		ev := h.screen.PollEvent()
		if ev == nil {
			break
		}
		h.HandleEvent(ev)
	}
	return ctx.Err()
}

// Quit reports whether the host has been asked to stop.
func (h *Host) Quit() bool { return h.quit }

// Status returns the status line message.
func (h *Host) Status() string { return h.status }

// HandleEvent handles one screen event and redraws.
func (h *Host) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		h.key(ev)
	case *tcell.EventPaste:
		if ev.Start() {
			h.pasting = true
			h.paste.Reset()
			break
		}
		h.pasting = false
		h.pasteText(h.paste.String())
	case *tcell.EventMouse:
		h.mouse(ev)
	case *tcell.EventResize:
		h.screen.Sync()
	case *tcell.EventInterrupt:
		if fn, ok := ev.Data().(func()); ok {
			fn()
		}
	}
	if !h.quit {
		h.Draw()
	}
}

func (h *Host) key(ev *tcell.EventKey) {
	if h.pasting {
		switch ev.Key() {
		case tcell.KeyRune:
			h.paste.WriteRune(ev.Rune())
		case tcell.KeyEnter:
			h.paste.WriteByte('\n')
		case tcell.KeyTab:
			h.paste.WriteByte('\t')
		}
		return
	}
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		h.quit = true
		return
	case tcell.KeyCtrlS:
		h.doSave()
		return
	}
	h.status = ""
	de := keyEvent(ev)
	if h.view.HandleEvent(de) {
		return
	}
	st := h.view.State()
	sel := st.Selection()
	switch de.Key {
	case "ArrowLeft":
		h.setSelection(state.NearPos(st.Doc(), max(0, sel.Head()-1), -1))
	case "ArrowRight":
		h.setSelection(state.NearPos(st.Doc(), min(st.Doc().Content().Size(), sel.Head()+1), 1))
	case "ArrowUp":
		h.vertical(-1)
	case "ArrowDown":
		h.vertical(1)
	case "Home", "End":
		r := st.Doc().MustResolve(sel.Head())
		if r.Parent().InlineContent() {
			pos := r.Start(r.Depth)
			if de.Key == "End" {
				pos = r.End(r.Depth)
			}
			h.setSelection(state.Cursor(pos))
		}
	case "Backspace":
		h.deleteChar(sel.Head(), -1)
	case "Delete":
		h.deleteChar(sel.Head(), 1)
	case "Tab":
		h.view.TextInput("\t")
	default:
		if ev.Key() == tcell.KeyRune && de.Mods&(dom.ModCtrl|dom.ModAlt|dom.ModMeta) == 0 {
			h.view.TextInput(string(ev.Rune()))
		}
	}
}

// deleteChar deletes one position before (dir < 0) or after the cursor
// within its textblock.
func (h *Host) deleteChar(pos, dir int) {
	st := h.view.State()
	r := st.Doc().MustResolve(pos)
	if !r.Parent().InlineContent() {
		return
	}
	from, to := pos-1, pos
	if dir > 0 {
		from, to = pos, pos+1
	}
	if from < r.Start(r.Depth) || to > r.End(r.Depth) {
		return
	}
	tr := st.Tr()
	if err := tr.Delete(from, to); err != nil {
		h.log.WithError(err).Warn("delete")
		return
	}
	tr.SetMeta(state.MetaInputType, "deleteContent")
	h.view.Dispatch(tr.ScrollIntoView())
}

func (h *Host) vertical(dir int) {
	rect, err := h.view.CoordsAtPos(h.view.State().Selection().Head())
	if err != nil {
		return
	}
	if pos, ok := h.view.PosAtCoords(rect.Left, rect.Top+float64(dir)); ok {
		h.setSelection(state.NearPos(h.view.State().Doc(), pos, dir))
	}
}

func (h *Host) setSelection(sel state.Selection) {
	tr := h.view.State().Tr()
	tr.SetSelection(sel)
	h.view.Dispatch(tr.ScrollIntoView())
}

func (h *Host) mouse(ev *tcell.EventMouse) {
	if ev.Buttons()&tcell.Button1 == 0 {
		return
	}
	x, y := ev.Position()
	pos, ok := h.view.PosAtCoords(float64(x-GutterWidth), float64(y+h.top))
	if !ok {
		return
	}
	h.view.Focus()
	h.setSelection(state.NearPos(h.view.State().Doc(), pos, 1))
}

func (h *Host) pasteText(text string) {
	if text == "" {
		return
	}
	dt := dom.NewDataTransfer()
	dt.SetData(view.MIMEText, text)
	if !h.view.HandleEvent(&dom.Event{Type: dom.Paste, Data: dt}) {
		h.status = "nothing to paste here"
	}
}

func (h *Host) doSave() {
	if h.save == nil {
		h.status = ErrNoSave.Error()
		return
	}
	st := h.view.State()
	if err := h.save(st); err != nil {
		h.log.WithError(err).Error("save failed")
		h.status = "save failed: " + err.Error()
		return
	}
	h.saved = st.Doc()
	h.status = "saved"
}

// Modified reports whether the document changed since it was loaded or
// last saved.
func (h *Host) Modified() bool {
	return !h.saved.Eq(h.view.State().Doc())
}

// Draw renders the document, the cursor and the status line.
func (h *Host) Draw() {
	h.screen.Clear()
	width, height := h.screen.Size()
	textRows := max(1, height-1)
	st := h.view.State()
	doc := st.Doc()

	cursorRow, cursorCol := -1, 0
	if rect, err := h.view.CoordsAtPos(st.Selection().Head()); err == nil {
		cursorRow, cursorCol = int(rect.Top), int(rect.Left)
	}
	if cursorRow >= 0 {
		if cursorRow < h.top {
			h.top = cursorRow
		} else if cursorRow >= h.top+textRows {
			h.top = cursorRow - textRows + 1
		}
	}

	widgets := h.view.Decorations().OfKind(plugin.WidgetDecoration)
	all := rows(doc)
	for y := 0; y < textRows && h.top+y < len(all); y++ {
		r := all[h.top+y]
		drawString(h.screen, 0, y, GutterWidth, r.marker, styleGutter)
		h.drawRow(r, widgets, y, width)
	}

	if cursorRow >= h.top && cursorRow < h.top+textRows && h.view.Focused() {
		h.screen.ShowCursor(GutterWidth+cursorCol, cursorRow-h.top)
	} else {
		h.screen.HideCursor()
	}
	h.drawStatus(st, height-1, width)
	h.screen.Show()
}

func (h *Host) drawRow(r row, widgets []plugin.Decoration, y, width int) {
	x := GutterWidth
	if !r.node.IsTextblock() {
		drawString(h.screen, x, y, width-x, leafLabel(r.node), styleLeaf)
		return
	}
	if r.node.Content().Size() == 0 {
		for _, w := range widgets {
			if w.From == r.start && w.ToDOM != nil {
				drawString(h.screen, x, y, width-x, textOf(w.ToDOM()), stylePlaceholder)
				return
			}
		}
	}
	base := blockStyle(r)
	for _, child := range r.node.Content().Children() {
		if child.IsText() {
			style := markStyle(base, child.Marks())
			for _, c := range child.Text() {
				if x >= width {
					return
				}
				h.screen.SetContent(x, y, c, nil, style)
				x++
			}
			continue
		}
		if x < width {
			h.screen.SetContent(x, y, inlineLeafRune(child), nil, styleLeaf)
		}
		x += child.NodeSize()
	}
}

func (h *Host) drawStatus(st *state.State, y, width int) {
	for x := range width {
		h.screen.SetContent(x, y, ' ', nil, styleStatus)
	}
	title := h.title
	if h.Modified() {
		title += " [+]"
	}
	c := charcount.Get(st)
	right := fmt.Sprintf("%d chars  %d words", c.Chars, c.Words)
	left := title
	if h.status != "" {
		left += "  " + h.status
	}
	drawString(h.screen, 0, y, width, left, styleStatus)
	if w := runewidth.StringWidth(right); w+runewidth.StringWidth(left)+2 <= width {
		drawString(h.screen, width-w, y, w, right, styleStatus)
	}
}

func drawString(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	end := x + width
	for _, c := range text {
		w := runewidth.RuneWidth(c)
		if x+w > end {
			return
		}
		s.SetContent(x, y, c, nil, style)
		x += max(w, 1)
	}
}

func leafLabel(n *model.Node) string {
	switch n.Kind() {
	case model.HorizontalRule:
		return strings.Repeat("─", 24)
	case model.Image:
		return "[image " + n.Attrs().GetString("src") + "]"
	case model.Embed:
		return "[embed " + n.Attrs().GetString("src") + "]"
	}
	return "[" + n.Kind().String() + "]"
}

func inlineLeafRune(n *model.Node) rune {
	switch n.Kind() {
	case model.HardBreak:
		return '↵'
	case model.Image:
		return '▣'
	}
	return '◆'
}

// textOf returns the text content of a rendered widget.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}
