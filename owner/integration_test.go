package owner

import (
	"testing"
	"time"

	"camdeck/config"
	"camdeck/lightring"
	"camdeck/mqtt"
	"camdeck/param"
	"camdeck/reconcile"
	"camdeck/xtouch"
)

type nullPanel struct{}

func (nullPanel) SetRing(encoder, pos int)                    {}
func (nullPanel) Special(encoder int, mode lightring.Special) {}
func (nullPanel) SetButtonLED(button int, on bool)            {}

// The owner and the surface share no state except the bus; after a resync
// and an encoder turn both sides must settle on the same value.
func TestOwnerAndSurfaceConverge(t *testing.T) {
	bus := mqtt.NewFakeBus()
	o := New("cam-1", NewSimDriver(), &fakeLights{})
	if err := o.Attach(bus); err != nil {
		t.Fatalf("attach: %v", err)
	}

	r := reconcile.New(bus, nullPanel{}, []config.CameraConfig{{Name: "cam-1", SwitcherInput: "1"}})
	events := make(chan xtouch.Event)
	done := make(chan struct{})
	defer close(done)
	go r.Run(done, events)
	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	events <- xtouch.Event{Kind: xtouch.Key, Button: 0, Pressed: false}

	wait := func(fn param.Function, want string) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for {
			drain(t, o)
			snap := r.Selected()
			if v, _ := snap.Value(fn); v == want {
				return
			}
			if time.Now().After(deadline) {
				v, _ := r.Selected().Value(fn)
				t.Fatalf("%s never reached %q, stuck at %q", fn, want, v)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
	wait(param.Aperture, "4")

	// One click down from f/4 lands on the adjacent list entry.
	events <- xtouch.Event{Kind: xtouch.Turn, Encoder: int(param.Aperture), Delta: -1}
	wait(param.Aperture, "3.5")

	// A fresh observer repairs itself with a dump-all broadcast.
	r2 := reconcile.New(bus, nullPanel{}, []config.CameraConfig{{Name: "cam-1", SwitcherInput: "1"}})
	events2 := make(chan xtouch.Event)
	go r2.Run(done, events2)
	if err := r2.Start(); err != nil {
		t.Fatalf("start second observer: %v", err)
	}
	events2 <- xtouch.Event{Kind: xtouch.Key, Button: 0, Pressed: false}

	deadline := time.Now().Add(2 * time.Second)
	for {
		drain(t, o)
		if v, _ := r2.Selected().Value(param.Aperture); v == "3.5" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("second observer never converged")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
