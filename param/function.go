// Package param defines the camera parameters the surface can control and
// the mapping between a parameter's value index and its encoder's ring
// position.
package param

import "strconv"

// Function identifies a controllable camera parameter. The first eight are
// bound to the surface's rotary encoders in declaration order; the rest only
// exist at the transport boundary.
type Function int

const (
	Focus Function = iota
	ExposureCompensation
	Aperture
	ShutterSpeed
	ISO
	ColorTemperature
	WBShiftA
	WBShiftB

	// Transport-only parameters, never bound to an encoder.
	ManualFocusDrive
	MovieServoAF
	WhiteBalance
)

// NumEncoders is the number of rotary encoders on the surface.
const NumEncoders = 8

var names = map[Function]string{
	Focus:                "focus",
	ExposureCompensation: "exposurecompensation",
	Aperture:             "aperture",
	ShutterSpeed:         "shutterspeed",
	ISO:                  "iso",
	ColorTemperature:     "colortemperature",
	WBShiftA:             "whitebalanceadjusta",
	WBShiftB:             "whitebalanceadjustb",
	ManualFocusDrive:     "manualfocusdrive",
	MovieServoAF:         "movieservoaf",
	WhiteBalance:         "whitebalance",
}

func (f Function) String() string {
	if n, ok := names[f]; ok {
		return n
	}
	return "function(" + strconv.Itoa(int(f)) + ")"
}

// Parse resolves a transport parameter name. String identifiers live only at
// the MQTT boundary; everything internal works with Function values.
func Parse(name string) (Function, bool) {
	for f, n := range names {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// Encoder returns the encoder slot a function is bound to.
func (f Function) Encoder() (int, bool) {
	if f >= Focus && f < NumEncoders {
		return int(f), true
	}
	return -1, false
}

// ForEncoder returns the function bound to an encoder slot. Unbound slots
// report ok=false and must be rendered blank.
func ForEncoder(encoder int) (Function, bool) {
	if encoder >= 0 && encoder < NumEncoders {
		return Function(encoder), true
	}
	return 0, false
}

// DefaultValues is the built-in value list for a function, used until the
// owning device publishes its own allowed list. Values are kept as strings
// throughout; the camera reports them as strings and comparing them as
// floats would drift.
func DefaultValues(f Function) []string {
	switch f {
	case ExposureCompensation:
		return []string{"-3", "-2.6", "-2.3", "-2", "-1.6", "-1.3", "-1", "-0.6", "-0.3", "0", "0.3", "0.6", "1", "1.3", "1.6", "2", "2.3", "2.6", "3"}
	case Aperture:
		return []string{"1", "1.2", "1.4", "1.6", "1.8", "2", "2.2", "2.5", "2.8", "3.2", "3.5", "4", "4.5", "5", "5.6", "6.3", "7.1", "8", "9", "10", "11", "13", "14", "16", "18", "20", "22"}
	case ShutterSpeed:
		// 1/50 sits next to the ring center; faster speeds than 1/1000
		// are not reachable from the encoder.
		return []string{"1/1000", "1/800", "1/640", "1/500", "1/400", "1/320", "1/250", "1/200", "1/160", "1/125", "1/100", "1/80", "1/60", "1/50", "1/40", "1/30", "1/25", "1/20", "1/15", "1/13", "1/10", "1/8", "1/6"}
	case ISO:
		vals := []string{"Auto"}
		for _, x := range []int{100, 125, 160, 200, 250, 320, 400, 500, 640, 800, 1000, 1250, 1600, 2000, 2500, 3200, 4000, 5000, 6400, 8000, 10000, 12800, 16000, 20000, 25600} {
			vals = append(vals, strconv.Itoa(x))
		}
		return vals
	case ColorTemperature:
		vals := make([]string, 0, 76)
		for k := 2500; k <= 10000; k += 100 {
			vals = append(vals, strconv.Itoa(k))
		}
		return vals
	case WBShiftA, WBShiftB:
		vals := make([]string, 0, 19)
		for s := -9; s <= 9; s++ {
			vals = append(vals, strconv.Itoa(s))
		}
		return vals
	}
	return nil
}
