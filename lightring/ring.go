// Package lightring maps abstract ring positions onto the X-Touch Mini's
// encoder LED rings.
//
// Each ring has 13 LEDs: one center, six per side. The hardware can light
// two adjacent LEDs for in-between positions, but its own value-to-LED
// mapping is nonuniform, so positions are quantized through an explicit
// breakpoint table. Positions -1 and 128 have no ring representation at all;
// they switch to the single-LED blink mode at the matching end.
package lightring

import "fmt"

// Position bounds. Values 0..127 light the ring; SentinelLow and
// SentinelHigh blink the end LED instead.
const (
	SentinelLow  = -1
	SentinelHigh = 128
)

// Steps divides the 0..127 scale into 26 segments, one per distinct
// single-LED or adjacent-pair state. A segment spans [Steps[i], Steps[i+1])
// except the last, which includes 127. The -1 and 128 entries are the
// synthetic out-of-range endpoints.
var Steps = [27]int{-1, 0, 6, 11, 16, 22, 27, 32, 38, 43, 48, 54, 59, 64, 65, 70, 76, 82, 87, 93, 99, 105, 110, 116, 122, 127, 128}

// Special render modes. The values are the raw CC payloads the firmware
// understands on the LED control channel.
type Special uint8

const (
	Off         Special = 0
	BlinkLeft   Special = 14
	BlinkCenter Special = 20
	BlinkRight  Special = 26
	AllOn       Special = 27
	BlinkAll    Special = 28
)

func (s Special) String() string {
	switch s {
	case Off:
		return "off"
	case BlinkLeft:
		return "blink-left"
	case BlinkCenter:
		return "blink-center"
	case BlinkRight:
		return "blink-right"
	case AllOn:
		return "all-on"
	case BlinkAll:
		return "blink-all"
	}
	return fmt.Sprintf("special(%d)", uint8(s))
}

// Kind says which hardware control path a Code uses.
type Kind int

const (
	// Ring drives the normal multi-LED ring via the value channel.
	Ring Kind = iota
	// Blink drives a single blinking LED via the LED control channel.
	Blink
)

// Code is a resolved hardware instruction for one encoder's ring.
type Code struct {
	Kind  Kind
	Value uint8 // ring position 0..127, or a Special payload
}

// Render resolves a position in [-1, 128] to a hardware code. The sentinels
// become end blinks; everything else passes through as a ring value. Any
// other integer is a caller bug.
func Render(pos int) Code {
	switch {
	case pos == SentinelLow:
		return Code{Kind: Blink, Value: uint8(BlinkLeft)}
	case pos == SentinelHigh:
		return Code{Kind: Blink, Value: uint8(BlinkRight)}
	case pos >= 0 && pos <= 127:
		return Code{Kind: Ring, Value: uint8(pos)}
	}
	panic(fmt.Sprintf("lightring: position %d out of range", pos))
}

// Segment returns the index of the table segment containing pos, with the
// lower breakpoint inclusive. Segment 0 is the below-range sentinel, 1..25
// are the physical LED states, 26 is the above-range sentinel. pos must be
// in [-1, 128].
func Segment(pos int) int {
	if pos < SentinelLow || pos > SentinelHigh {
		panic(fmt.Sprintf("lightring: position %d has no segment", pos))
	}
	for i := 1; i < len(Steps); i++ {
		if pos < Steps[i] {
			return i - 1
		}
	}
	return len(Steps) - 1 // pos == 128
}

// SegmentName gives the conventional LED name for a segment index, e.g.
// "LED6" for the single sixth LED or "LED6+7" for the adjacent pair.
func SegmentName(seg int) string {
	switch {
	case seg == 0:
		return "below"
	case seg == len(Steps)-1:
		return "above"
	case seg%2 == 1:
		return fmt.Sprintf("LED%d", (seg+1)/2)
	default:
		return fmt.Sprintf("LED%d+%d", seg/2, seg/2+1)
	}
}
