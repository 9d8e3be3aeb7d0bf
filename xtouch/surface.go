package xtouch

import (
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"camdeck/debug"
	"camdeck/lightring"
)

// Surface is an open X-Touch Mini. Input events are decoded on the MIDI
// driver's callback goroutine and pushed into a buffered channel; all output
// is fire-and-forget control changes.
type Surface struct {
	name   string
	inPort drivers.In
	send   func(msg gomidi.Message) error
	stop   func()

	events chan Event
}

// Open finds the named MIDI port pair and configures the surface: standard
// A/B layer mode, pan-style rings, every encoder centered.
func Open(portName string) (*Surface, error) {
	s := &Surface{
		name:   portName,
		events: make(chan Event, 32),
	}

	inPort, outPort, err := findPorts(portName)
	if err != nil {
		return nil, err
	}
	s.inPort = inPort

	send, err := gomidi.SendTo(outPort)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	s.send = send

	// Standard mode (A/B layers).
	s.send(gomidi.ControlChange(1, 127, 1))
	for enc := 0; enc < 8; enc++ {
		// Ring to pan mode; redundant with the editor profile but harmless.
		s.send(gomidi.ControlChange(ledChannel, uint8(enc+1), 1))
		s.send(gomidi.ControlChange(encoderChannel, uint8(enc+1), Center))
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		var channel, control, value uint8
		var note, velocity uint8

		if msg.GetControlChange(&channel, &control, &value) {
			encoder, delta, ok := DecodeCC(channel, control, value)
			if !ok {
				return
			}
			debug.LogEvery(16, "xtouch", "turn enc=%d delta=%+d", encoder, delta)
			s.push(Event{Kind: Turn, Encoder: encoder, Delta: delta})
			return
		}

		if msg.GetNoteOn(&channel, &note, &velocity) {
			if ev, ok := DecodeNote(note, velocity > 0); ok {
				s.push(ev)
			}
			return
		}
		if msg.GetNoteOff(&channel, &note, &velocity) {
			if ev, ok := DecodeNote(note, false); ok {
				s.push(ev)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	s.stop = stop

	return s, nil
}

func (s *Surface) push(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

// Events returns the decoded hardware input stream.
func (s *Surface) Events() <-chan Event {
	return s.events
}

// SetRing displays a position in [-1, 128] on an encoder's LED ring. The
// sentinels use the single-LED blink control path, everything else the
// normal ring value path.
func (s *Surface) SetRing(encoder, pos int) {
	code := lightring.Render(pos)
	if code.Kind == lightring.Ring {
		s.send(gomidi.ControlChange(encoderChannel, uint8(encoder+1), code.Value))
		return
	}
	s.send(gomidi.ControlChange(ledChannel, uint8(encoder+9), code.Value))
}

// Special drives one of the whole-ring LED modes.
func (s *Surface) Special(encoder int, mode lightring.Special) {
	s.send(gomidi.ControlChange(ledChannel, uint8(encoder+9), uint8(mode)))
}

// SetButtonLED lights or clears a panel button's LED (button 0..15).
func (s *Surface) SetButtonLED(button int, on bool) {
	v := uint8(0)
	if on {
		v = 1
	}
	s.send(gomidi.NoteOn(encoderChannel, uint8(button+8), v))
}

// Close turns every indicator off and releases the ports.
func (s *Surface) Close() error {
	if s.send != nil {
		for enc := 0; enc < 8; enc++ {
			s.Special(enc, lightring.Off)
		}
		for button := 0; button < 16; button++ {
			s.SetButtonLED(button, false)
		}
	}
	if s.stop != nil {
		s.stop()
	}
	close(s.events)
	return nil
}

func findPorts(name string) (drivers.In, drivers.Out, error) {
	want := strings.ToLower(name)

	var in drivers.In
	for _, p := range gomidi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), want) {
			in = p
			break
		}
	}
	var out drivers.Out
	for _, p := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), want) {
			out = p
			break
		}
	}
	if in == nil || out == nil {
		return nil, nil, fmt.Errorf("midi port %q not found", name)
	}
	return in, out, nil
}
