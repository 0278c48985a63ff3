// Package plugintest provides a Host for testing plugins without a view.
package plugintest

import (
	"fmt"

	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/state"
)

// Host is an in-memory plugin.Host. Dispatch applies transactions with the
// full plugin protocol and records them.
type Host struct {
	St          *state.State
	Dispatched  []*state.Transaction
	IsComposing bool
	// Coords maps positions to boxes. Unknown positions get a box derived
	// from the position itself.
	Coords map[int]plugin.Rect
	// Positions maps a y coordinate to a document position.
	Positions map[float64]int
	Err       error
	Log       *logging.Logger
}

// NewHost returns a host over st.
func NewHost(st *state.State) *Host {
	return &Host{St: st, Log: logging.Nop()}
}

// State implements plugin.Host.
func (h *Host) State() *state.State { return h.St }

// Dispatch implements plugin.Host.
func (h *Host) Dispatch(tr *state.Transaction) {
	next, trs, err := h.St.ApplyTransaction(tr)
	if err != nil {
		h.Err = err
		return
	}
	h.St = next
	h.Dispatched = append(h.Dispatched, trs...)
}

// Composing implements plugin.Host.
func (h *Host) Composing() bool { return h.IsComposing }

// CoordsAtPos implements plugin.Host.
func (h *Host) CoordsAtPos(pos int) (plugin.Rect, error) {
	if pos < 0 || pos > h.St.Doc().Content().Size() {
		return plugin.Rect{}, fmt.Errorf("position %d out of range", pos)
	}
	if r, ok := h.Coords[pos]; ok {
		return r, nil
	}
	x := float64(pos) * 10
	return plugin.Rect{Left: x, Top: 0, Right: x, Bottom: 20}, nil
}

// PosAtCoords implements plugin.Host.
func (h *Host) PosAtCoords(_, y float64) (int, bool) {
	pos, ok := h.Positions[y]
	return pos, ok
}

// Logger implements plugin.Host.
func (h *Host) Logger() *logging.Logger { return h.Log }
