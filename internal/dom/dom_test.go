package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchOrderAndRemoval(t *testing.T) {
	target := NewEventTarget()
	var got []string
	removeA := target.AddEventListener(PointerUp, func(*Event) { got = append(got, "a") })
	target.AddEventListener(PointerUp, func(e *Event) {
		got = append(got, "b")
		e.PreventDefault()
	})

	assert.False(t, target.Dispatch(&Event{Type: PointerUp}))
	assert.Equal(t, []string{"a", "b"}, got)

	removeA()
	removeA()
	got = nil
	target.Dispatch(&Event{Type: PointerUp})
	assert.Equal(t, []string{"b"}, got)
	assert.Equal(t, 1, target.ListenerCount(PointerUp))
}

func TestStopPropagation(t *testing.T) {
	target := NewEventTarget()
	calls := 0
	target.AddEventListener(KeyDown, func(e *Event) { calls++; e.StopPropagation() })
	target.AddEventListener(KeyDown, func(*Event) { calls++ })
	target.Dispatch(&Event{Type: KeyDown})
	assert.Equal(t, 1, calls)
}

func TestScopeReleasesEverything(t *testing.T) {
	window := NewEventTarget()
	var scope Scope
	scope.Listen(window, PointerMove, func(*Event) {})
	scope.Listen(window, PointerUp, func(*Event) {})
	assert.Equal(t, 2, scope.Active())

	scope.Release()
	scope.Release()
	assert.Equal(t, 0, scope.Active())
	assert.Equal(t, 0, window.ListenerCount(PointerMove))
	assert.Equal(t, 0, window.ListenerCount(PointerUp))
}

func TestKeyName(t *testing.T) {
	tests := []struct {
		ev   Event
		mac  bool
		want string
	}{
		{Event{Key: "z", Mods: ModCtrl}, false, "Mod-z"},
		{Event{Key: "z", Mods: ModMeta}, true, "Mod-z"},
		{Event{Key: "Z", Mods: ModCtrl | ModShift}, false, "Mod-Shift-z"},
		{Event{Key: "Enter"}, false, "Enter"},
		{Event{Key: "Enter", Mods: ModShift}, false, "Shift-Enter"},
		{Event{Key: "b", Mods: ModCtrl}, true, "Ctrl-b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KeyName(&tt.ev, tt.mac))
	}
}

func TestDataTransfer(t *testing.T) {
	d := NewDataTransfer()
	d.SetData("text/plain", "x")
	d.SetData("text/html", "<p>x</p>")
	d.SetData("text/plain", "y")
	assert.Equal(t, []string{"text/plain", "text/html"}, d.Types())
	assert.Equal(t, "y", d.GetData("text/plain"))

	var nilData *DataTransfer
	assert.Empty(t, nilData.GetData("text/plain"))
}
