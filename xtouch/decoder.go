// Package xtouch drives a Behringer X-Touch Mini control surface: eight
// push-button rotary encoders with LED rings, two rows of eight buttons.
// The encoders run in relative mode (needs the X-Touch Mini editor profile),
// so the device reports direction and magnitude instead of absolute values
// and the rings are driven explicitly.
package xtouch

import "fmt"

// MIDI layout of the X-Touch Mini in standard (A/B layer) mode.
const (
	encoderChannel = 10 // relative CC input and ring value output
	ledChannel     = 0  // ring mode / special LED control
	mainFaderCC    = 9

	// note 0..7: encoder pushes; 8..15 top button row; 16..23 bottom row.
	maxButtonNote = 23
)

// EventKind discriminates surface input events.
type EventKind int

const (
	// Turn is an encoder rotation with a signed delta.
	Turn EventKind = iota
	// Push is an encoder's integrated push button going down.
	Push
	// Key is a panel button edge; Button is 0..15 across both rows.
	Key
)

// Event is one decoded hardware input.
type Event struct {
	Kind    EventKind
	Encoder int // Turn, Push
	Delta   int // Turn only
	Button  int // Key only
	Pressed bool
}

func (e Event) String() string {
	switch e.Kind {
	case Turn:
		return fmt.Sprintf("turn enc=%d delta=%+d", e.Encoder, e.Delta)
	case Push:
		return fmt.Sprintf("push enc=%d", e.Encoder)
	case Key:
		return fmt.Sprintf("key %d pressed=%v", e.Button, e.Pressed)
	}
	return "event(?)"
}

// DecodeCC interprets a control-change message from the surface. Encoders
// send on channel 10, controls 1..8, with a two's-complement-like relative
// value: 1..7 is a clockwise turn of growing speed, 127..121 counter-
// clockwise. The main fader and anything outside the declared protocol is
// ignored.
func DecodeCC(channel, control, value uint8) (encoder, delta int, ok bool) {
	if control == mainFaderCC {
		return 0, 0, false
	}
	if channel != encoderChannel || control < 1 || control > 8 {
		return 0, 0, false
	}
	delta = int(value)
	if value > 120 {
		delta = int(value) - 128
	}
	return int(control) - 1, delta, true
}

// DecodeNote interprets a note message (on=press, off=release) into a Push
// or Key event. Notes beyond the button matrix are ignored.
func DecodeNote(note uint8, on bool) (Event, bool) {
	switch {
	case note <= 7:
		if !on {
			return Event{}, false // pushes act on press only
		}
		return Event{Kind: Push, Encoder: int(note)}, true
	case note <= maxButtonNote:
		return Event{Kind: Key, Button: int(note) - 8, Pressed: on}, true
	}
	return Event{}, false
}

// DriveCommand maps a focus-encoder delta to one of three speed tiers per
// direction. This is the one place where the delta's magnitude matters; the
// list-backed encoders always step exactly once.
func DriveCommand(delta int) string {
	switch {
	case delta >= 4:
		return "Far 3"
	case delta >= 2:
		return "Far 2"
	case delta > 0:
		return "Far 1"
	case delta <= -4:
		return "Near 3"
	case delta <= -2:
		return "Near 2"
	default:
		return "Near 1"
	}
}
