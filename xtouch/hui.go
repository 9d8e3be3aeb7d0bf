package xtouch

import "fmt"

// The full-size X-Touch in XctlHUI mode reports its transport buttons as a
// pair of control changes: a zone-select message (CC 0x0f) immediately
// followed by a key message (CC 0x2f) whose value encodes port and edge.
// The jog wheel arrives as a single CC 0x0d. Anything that breaks the
// pairing is a firmware/profile mismatch and is reported as a decode fault
// rather than silently guessed at.

const (
	huiZoneCC  = 0x0f
	huiWheelCC = 0x0d
	huiKeyCC   = 0x2f
)

// huiKeys maps zone → port → logical button name for the HUI firmware mode.
var huiKeys = map[uint8]map[uint8]string{
	0x0c: {
		5: "hui",
	},
	0x0d: {
		0: "down",
		1: "left",
		2: "zoom",
		3: "right",
		4: "up",
		5: "scrub",
		6: "solo",
	},
	0x0e: {
		1: "previous",
		2: "next",
		3: "stop",
		4: "play",
		5: "rec",
	},
	0x0f: {
		2: "click",
		3: "cycle",
		4: "marker",
	},
	0x10: {
		0: "nudge",
		2: "drop",
		3: "replace",
	},
}

// HUIEvent is a decoded wheel turn or button edge.
type HUIEvent struct {
	Wheel   int // nonzero for wheel turns
	Key     string
	Pressed bool
}

// DecodeFault is a hardware protocol sequence that violates the expected
// zone/key pairing. The decoder resets to its initial state after one.
type DecodeFault struct {
	Reason string
}

func (e *DecodeFault) Error() string {
	return "xtouch hui: " + e.Reason
}

// HUI decodes the paired-message button protocol. Zero value is ready to
// use: awaiting a zone select.
type HUI struct {
	zone    uint8
	hasZone bool
}

// Decode consumes one control change. It returns a non-nil event when a
// wheel turn or button edge completes; nil with nil error when the message
// was the first half of a pair.
func (h *HUI) Decode(channel, control, value uint8) (*HUIEvent, error) {
	if channel != 0 {
		h.reset()
		return nil, &DecodeFault{Reason: fmt.Sprintf("unexpected channel %d", channel)}
	}
	switch control {
	case huiZoneCC:
		if h.hasZone {
			prev := h.zone
			h.reset()
			return nil, &DecodeFault{Reason: fmt.Sprintf("zone %#02x while zone %#02x still pending", value, prev)}
		}
		if _, ok := huiKeys[value]; !ok {
			return nil, &DecodeFault{Reason: fmt.Sprintf("unknown zone %#02x", value)}
		}
		h.zone, h.hasZone = value, true
		return nil, nil

	case huiWheelCC:
		if value > 0x40 {
			return &HUIEvent{Wheel: int(value) - 0x40}, nil
		}
		return &HUIEvent{Wheel: -int(value)}, nil

	case huiKeyCC:
		if !h.hasZone {
			return nil, &DecodeFault{Reason: fmt.Sprintf("key %#02x with no zone pending", value)}
		}
		ports := huiKeys[h.zone]
		h.reset()
		if name, ok := ports[value]; ok {
			return &HUIEvent{Key: name, Pressed: false}, nil
		}
		if name, ok := ports[value-0x40]; ok {
			return &HUIEvent{Key: name, Pressed: true}, nil
		}
		return nil, &DecodeFault{Reason: fmt.Sprintf("unknown key %#02x in zone %#02x", value, h.zone)}
	}
	h.reset()
	return nil, &DecodeFault{Reason: fmt.Sprintf("unhandled control %#02x", control)}
}

func (h *HUI) reset() {
	h.hasZone = false
}

// LEDMessages builds the zone/port CC pair that sets a named button's LED.
func LEDMessages(key string, on bool) (zone, port uint8, err error) {
	for z, ports := range huiKeys {
		for p, name := range ports {
			if name == key {
				if on {
					p += 0x40
				}
				return z, p, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("xtouch hui: no LED for key %q", key)
}
