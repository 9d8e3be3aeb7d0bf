// Package reconcile keeps the control surface and the remote camera owners
// eventually consistent. Local encoder movement only ever produces a
// set-request on the bus; the ring is redrawn from whatever authoritative
// snapshot the owner publishes next, so a rejected or lost request corrects
// itself without an explicit rollback path.
package reconcile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"camdeck/camera"
	"camdeck/config"
	"camdeck/debug"
	"camdeck/lightring"
	"camdeck/mqtt"
	"camdeck/param"
	"camdeck/xtouch"
)

// Panel is the rendering half of the control surface.
type Panel interface {
	SetRing(encoder, pos int)
	Special(encoder int, mode lightring.Special)
	SetButtonLED(button int, on bool)
}

// Aux-follow buttons live on the bottom row of the surface.
const (
	buttonAuxFollow = 14
	buttonAuxMVW    = 15
)

type busMsg struct {
	camera  string
	kind    string // "current", "allowed", "status", "tally"
	payload []byte
}

// Reconciler owns the single event-drain goroutine. Bus messages and
// surface input both funnel into Run's select loop, so renders always
// reflect one completed snapshot and never an interleaving of two.
type Reconciler struct {
	bus     mqtt.Bus
	panel   Panel
	tracker *xtouch.Tracker

	cameras map[string]*camera.State
	byInput map[string]*camera.State
	tally   map[string]bool

	// selMu guards selected: written on the Run goroutine, read by the
	// monitor through Selected.
	selMu    sync.Mutex
	selected camera.Selection
	autoAux  bool

	msgs    chan busMsg
	updates chan struct{}
}

func New(bus mqtt.Bus, panel Panel, cams []config.CameraConfig) *Reconciler {
	r := &Reconciler{
		bus:     bus,
		panel:   panel,
		tracker: xtouch.NewTracker(),
		cameras: make(map[string]*camera.State),
		byInput: make(map[string]*camera.State),
		tally:   make(map[string]bool),
		msgs:    make(chan busMsg, 64),
		updates: make(chan struct{}, 1),
	}
	for _, c := range cams {
		st := camera.NewState(c.Name, c.SwitcherInput)
		r.cameras[c.Name] = st
		if c.SwitcherInput != "" {
			r.byInput[c.SwitcherInput] = st
		}
		r.tally[c.Name] = c.Tally
	}
	return r
}

// Updates signals the monitor whenever replicated state may have changed.
func (r *Reconciler) Updates() <-chan struct{} { return r.updates }

// Selected returns the active camera's snapshot for read-only display.
func (r *Reconciler) Selected() camera.Snapshot {
	r.selMu.Lock()
	sel := r.selected
	r.selMu.Unlock()
	return sel.Snapshot()
}

// Start subscribes everything and requests a full resync. Call Run after.
func (r *Reconciler) Start() error {
	subs := map[string]string{
		"camera/+/current/#": "current",
		"camera/+/allowed/#": "allowed",
		"camera/+/status":    "status",
	}
	for topic, kind := range subs {
		kind := kind
		if err := r.bus.Subscribe(topic, func(_ paho.Client, m mqtt.Message) {
			parts := strings.SplitN(m.Topic(), "/", 3)
			if len(parts) < 3 {
				return
			}
			r.msgs <- busMsg{camera: parts[1], kind: kind, payload: m.Payload()}
		}); err != nil {
			return err
		}
	}
	if err := r.bus.Subscribe("atem/+/tally-source", func(_ paho.Client, m mqtt.Message) {
		r.msgs <- busMsg{kind: "tally", payload: m.Payload()}
	}); err != nil {
		return err
	}
	return r.Resync()
}

// Resync broadcasts a dump-all request; every owner answers with its full
// current and allowed snapshots. This is the only repair mechanism after a
// missed message, a restart or a reconnect.
func (r *Reconciler) Resync() error {
	return r.bus.Publish("camera/dump-all", []byte("."))
}

// Run drains bus and surface events until events is closed or done fires.
func (r *Reconciler) Run(done <-chan struct{}, events <-chan xtouch.Event) {
	for {
		select {
		case <-done:
			return
		case m := <-r.msgs:
			r.apply(m)
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.onSurface(ev)
		}
	}
}

func (r *Reconciler) apply(m busMsg) {
	switch m.kind {
	case "current":
		st, ok := r.cameras[m.camera]
		if !ok {
			slog.Warn("snapshot for unknown camera", "camera", m.camera)
			return
		}
		var data map[string]string
		if err := json.Unmarshal(m.payload, &data); err != nil {
			slog.Warn("bad current payload", "camera", m.camera, "error", err)
			return
		}
		st.Update(data)
	case "allowed":
		st, ok := r.cameras[m.camera]
		if !ok {
			slog.Warn("allowed lists for unknown camera", "camera", m.camera)
			return
		}
		var lists map[string][]string
		if err := json.Unmarshal(m.payload, &lists); err != nil {
			slog.Warn("bad allowed payload", "camera", m.camera, "error", err)
			return
		}
		st.StoreAllowed(lists)
	case "status":
		st, ok := r.cameras[m.camera]
		if !ok {
			return
		}
		st.SetStatus(string(m.payload))
		slog.Info("camera status", "camera", m.camera, "status", string(m.payload))
	case "tally":
		r.applyTally(m.payload)
		return
	}

	if st, ok := r.selected.Bound(); ok && st.Name() == m.camera {
		r.renderAll()
	}
	r.notify()
}

// applyTally forwards the switcher's program/preview flags to each camera's
// tally topics.
func (r *Reconciler) applyTally(payload []byte) {
	var msg struct {
		Tally map[string][2]bool `json:"tally"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		slog.Warn("bad tally payload", "error", err)
		return
	}
	for name, st := range r.cameras {
		input := st.SwitcherInput()
		if input == "" {
			continue
		}
		flags, ok := msg.Tally[input]
		if !ok {
			slog.Warn("no tally flags for switcher input", "camera", name, "input", input)
			continue
		}
		program, preview := flags[0], flags[1]
		switch {
		case program:
			brightness := "0"
			if r.tally[name] {
				brightness = "80"
			}
			r.bus.Publish("camera/"+name+"/tally", []byte(brightness))
			r.bus.Publish("camera/"+name+"/preview", []byte("50 0 0"))
		case preview:
			r.bus.Publish("camera/"+name+"/tally", []byte("0"))
			r.bus.Publish("camera/"+name+"/preview", []byte("0 20 0"))
		default:
			r.bus.Publish("camera/"+name+"/tally", []byte("0"))
			r.bus.Publish("camera/"+name+"/preview", []byte("0 0 0"))
		}
	}
}

func (r *Reconciler) onSurface(ev xtouch.Event) {
	switch ev.Kind {
	case xtouch.Turn:
		r.onTurn(ev.Encoder, ev.Delta)
	case xtouch.Push:
		r.onPush(ev.Encoder)
	case xtouch.Key:
		if ev.Pressed {
			return // act on release, like the hardware's own LED logic
		}
		r.onKey(ev.Button)
	}
	r.notify()
}

func (r *Reconciler) onTurn(encoder, delta int) {
	fn, bound := param.ForEncoder(encoder)
	if !bound {
		r.panel.Special(encoder, lightring.Off)
		return
	}

	if fn == param.Focus {
		// Continuous drive: the ring stays centered, magnitude selects the
		// speed tier.
		r.tracker.Set(encoder, xtouch.Center)
		r.panel.SetRing(encoder, xtouch.Center)
		r.panel.Special(encoder, lightring.BlinkCenter)
		r.sendSet(param.MovieServoAF, "Off")
		r.sendSet(param.ManualFocusDrive, xtouch.DriveCommand(delta))
		return
	}

	snap := r.selected.Snapshot()
	if !snap.Known() {
		debug.Log("reconcile", "turn enc=%d ignored: no camera", encoder)
		return
	}

	pos := r.tracker.Advance(encoder, delta, param.Scale(fn))
	r.panel.SetRing(encoder, pos)

	value, ok := param.Reverse(fn, pos, snap.AllowedFor(fn))
	if !ok {
		return
	}
	r.sendSet(fn, value)
}

func (r *Reconciler) onPush(encoder int) {
	fn, bound := param.ForEncoder(encoder)
	if !bound {
		return
	}
	switch fn {
	case param.ColorTemperature:
		r.panel.Special(encoder, lightring.AllOn)
		r.sendSet(param.WhiteBalance, "Auto")
	case param.WBShiftA, param.WBShiftB:
		// Reset the shift to its true zero center.
		r.tracker.Set(encoder, xtouch.Center)
		r.panel.SetRing(encoder, xtouch.Center)
		snap := r.selected.Snapshot()
		if mid, ok := param.Midpoint(snap.AllowedFor(fn)); ok {
			r.sendSet(fn, mid)
		}
	case param.Focus:
		r.panel.Special(encoder, lightring.AllOn)
		r.sendSet(param.MovieServoAF, "On")
	}
}

func (r *Reconciler) onKey(button int) {
	switch {
	case button >= 0 && button <= 7:
		r.SelectInput(fmt.Sprintf("%d", button+1))
	case button == buttonAuxFollow:
		r.autoAux = true
		r.panel.SetButtonLED(buttonAuxFollow, true)
		r.panel.SetButtonLED(buttonAuxMVW, false)
		if st, ok := r.selected.Bound(); ok && st.SwitcherInput() != "" {
			r.switchAux(st.SwitcherInput())
		}
	case button == buttonAuxMVW:
		r.autoAux = false
		r.panel.SetButtonLED(buttonAuxFollow, false)
		r.panel.SetButtonLED(buttonAuxMVW, true)
		r.switchAux("MVW")
	}
}

// SelectInput switches which camera the surface controls, by switcher
// input. An unknown input deselects; every encoder is re-rendered either
// way so no stale ring survives the switch.
func (r *Reconciler) SelectInput(input string) {
	sel := camera.Unbound()
	if st, ok := r.byInput[input]; ok {
		sel = camera.Select(st)
	}
	r.selMu.Lock()
	r.selected = sel
	r.selMu.Unlock()
	for b := 0; b <= 7; b++ {
		_, on := r.selected.Bound()
		r.panel.SetButtonLED(b, on && fmt.Sprintf("%d", b+1) == input)
	}
	if st, ok := r.selected.Bound(); ok && r.autoAux {
		r.switchAux(st.SwitcherInput())
	} else if r.autoAux {
		r.switchAux("MVW")
	}
	r.renderAll()
	r.notify()
}

func (r *Reconciler) switchAux(source string) {
	data, _ := json.Marshal(map[string]any{"index": 0, "source": source})
	r.bus.Publish("atem/extreme/set/aux-source", data)
}

// renderAll recomputes every encoder's ring from the selected camera's
// current snapshot. Called for every authoritative change; the snapshot is
// taken once so the eight rings always show one generation of state.
func (r *Reconciler) renderAll() {
	snap := r.selected.Snapshot()

	if !snap.Known() {
		for enc := 0; enc < param.NumEncoders; enc++ {
			r.panel.Special(enc, lightring.Off)
		}
		return
	}

	for enc := 0; enc < param.NumEncoders; enc++ {
		fn, bound := param.ForEncoder(enc)
		if !bound {
			r.panel.Special(enc, lightring.Off)
			continue
		}

		if fn == param.Focus {
			if af, _ := snap.Value(param.MovieServoAF); af == "On" {
				r.panel.Special(enc, lightring.AllOn)
			} else {
				r.panel.Special(enc, lightring.BlinkCenter)
			}
			continue
		}

		value, ok := snap.Value(fn)
		if !ok {
			r.panel.Special(enc, lightring.Off)
			continue
		}
		pos, ok := param.Forward(fn, value, snap.AllowedFor(fn))
		if ok {
			r.tracker.Set(enc, pos)
			r.panel.SetRing(enc, pos)
		} else {
			// Value missing from the list: blink, keep the stored position.
			r.panel.Special(enc, lightring.BlinkAll)
		}

		if fn == param.ColorTemperature {
			// The temperature ring only means something in Color
			// Temperature mode; otherwise show the sibling mode instead.
			switch wb, _ := snap.Value(param.WhiteBalance); wb {
			case "Color Temperature":
			case "Auto":
				r.panel.Special(enc, lightring.AllOn)
			default:
				r.panel.Special(enc, lightring.BlinkAll)
			}
		}
	}
}

func (r *Reconciler) sendSet(fn param.Function, value string) {
	st, ok := r.selected.Bound()
	if !ok {
		slog.Info("no camera selected", "param", fn.String(), "value", value)
		return
	}
	topic := "camera/" + st.Name() + "/set/" + fn.String()
	debug.Log("reconcile", "set %s %s=%s", st.Name(), fn, value)
	if err := r.bus.Publish(topic, []byte(value)); err != nil {
		slog.Error("set request failed", "topic", topic, "error", err)
	}
}

func (r *Reconciler) notify() {
	select {
	case r.updates <- struct{}{}:
	default:
	}
}
