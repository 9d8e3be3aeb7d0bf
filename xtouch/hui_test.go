package xtouch

import (
	"errors"
	"testing"
)

func TestHUIWheel(t *testing.T) {
	var h HUI
	ev, err := h.Decode(0, huiWheelCC, 0x41)
	if err != nil || ev == nil || ev.Wheel != 1 {
		t.Fatalf("wheel 0x41 = %+v, %v; want +1", ev, err)
	}
	ev, err = h.Decode(0, huiWheelCC, 0x03)
	if err != nil || ev == nil || ev.Wheel != -3 {
		t.Fatalf("wheel 0x03 = %+v, %v; want -3", ev, err)
	}
}

func TestHUIButtonPair(t *testing.T) {
	var h HUI
	if ev, err := h.Decode(0, huiZoneCC, 0x0e); err != nil || ev != nil {
		t.Fatalf("zone select: %+v, %v; want silent first half", ev, err)
	}
	ev, err := h.Decode(0, huiKeyCC, 0x04+0x40)
	if err != nil || ev == nil || ev.Key != "play" || !ev.Pressed {
		t.Fatalf("key 0x44 = %+v, %v; want play pressed", ev, err)
	}
	// The pair machine is back at the start: a release pair works too.
	if _, err := h.Decode(0, huiZoneCC, 0x0e); err != nil {
		t.Fatalf("second zone select: %v", err)
	}
	ev, err = h.Decode(0, huiKeyCC, 0x04)
	if err != nil || ev == nil || ev.Key != "play" || ev.Pressed {
		t.Fatalf("key 0x04 = %+v, %v; want play released", ev, err)
	}
}

func TestHUIDecodeFaults(t *testing.T) {
	var fault *DecodeFault

	var h HUI
	if _, err := h.Decode(0, huiZoneCC, 0x0d); err != nil {
		t.Fatalf("valid zone: %v", err)
	}
	if _, err := h.Decode(0, huiZoneCC, 0x0e); !errors.As(err, &fault) {
		t.Fatalf("double zone select: got %v, want decode fault", err)
	}

	// Fault resets the machine; a key with no zone is itself a fault.
	if _, err := h.Decode(0, huiKeyCC, 0x04); !errors.As(err, &fault) {
		t.Fatalf("key without zone: got %v, want decode fault", err)
	}

	var h2 HUI
	if _, err := h2.Decode(0, huiZoneCC, 0x42); !errors.As(err, &fault) {
		t.Fatalf("unknown zone: got %v, want decode fault", err)
	}
	if _, err := h2.Decode(1, huiWheelCC, 0x41); !errors.As(err, &fault) {
		t.Fatalf("wrong channel: got %v, want decode fault", err)
	}

	var h3 HUI
	h3.Decode(0, huiZoneCC, 0x0e)
	if _, err := h3.Decode(0, huiKeyCC, 0x3f); !errors.As(err, &fault) {
		t.Fatalf("unknown key: got %v, want decode fault", err)
	}
}

func TestHUILEDMessages(t *testing.T) {
	zone, port, err := LEDMessages("rec", true)
	if err != nil || zone != 0x0e || port != 0x45 {
		t.Fatalf("rec on = %#02x/%#02x, %v; want 0x0e/0x45", zone, port, err)
	}
	_, port, err = LEDMessages("rec", false)
	if err != nil || port != 0x05 {
		t.Fatalf("rec off port = %#02x, want 0x05", port)
	}
	if _, _, err := LEDMessages("nope", true); err == nil {
		t.Fatal("expected error for unknown LED name")
	}
}
