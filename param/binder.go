package param

import (
	"math"

	"camdeck/lightring"
)

// Scale is the ordered subset of the ring scale a function may occupy. The
// ring is shared by very different domains, so each function gets a designed
// table rather than runtime configuration: exposure compensation and the
// white-balance shifts use only the interior breakpoints, shutter speed
// skips the sentinels, color temperature gets 76 evenly spaced points, and
// aperture and ISO keep the full vendor table including its out-of-range
// endpoints (their extreme values render as end blinks).
func Scale(f Function) []int {
	switch f {
	case ExposureCompensation, WBShiftA, WBShiftB:
		return lightring.Steps[4:23]
	case ShutterSpeed:
		return lightring.Steps[1:24]
	case ColorTemperature:
		scale := make([]int, 76)
		for i := range scale {
			scale[i] = i * 127 / 76
		}
		return scale
	case Aperture, ISO:
		return lightring.Steps[:]
	}
	return nil
}

// Forward maps a parameter value to its ring position. The value's index in
// the list is spread over the function's scale with the endpoints anchored:
// index 0 lands on the scale minimum, the last index on the scale maximum.
// When list and scale are the same length this is a plain index lookup.
// ok=false means the value is not in the list; the caller renders blink-all
// and leaves the stored position alone.
func Forward(f Function, value string, list []string) (pos int, ok bool) {
	scale := Scale(f)
	if len(scale) == 0 || len(list) == 0 {
		return 0, false
	}
	idx := -1
	for i, v := range list {
		if v == value {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, false
	}
	if len(list) == 1 {
		return scale[0], true
	}
	k := int(math.Round(float64(idx) * float64(len(scale)-1) / float64(len(list)-1)))
	if k > len(scale)-1 {
		k = len(scale) - 1
	}
	return scale[k], true
}

// Reverse inverts Forward: the scale point nearest to pos selects the value
// index. For any value in the list, Reverse(f, Forward(f, v, list), list)
// returns v as long as the scale has at least as many points as the list
// (true for every shipped scale).
func Reverse(f Function, pos int, list []string) (value string, ok bool) {
	scale := Scale(f)
	if len(scale) == 0 || len(list) == 0 {
		return "", false
	}
	k := nearestIndex(scale, pos)
	if len(scale) == 1 {
		return list[0], true
	}
	idx := int(math.Round(float64(k) * float64(len(list)-1) / float64(len(scale)-1)))
	if idx > len(list)-1 {
		idx = len(list) - 1
	}
	return list[idx], true
}

// Midpoint is the value at the center of a list, used when a shift
// parameter is reset to its true zero.
func Midpoint(list []string) (string, bool) {
	if len(list) == 0 {
		return "", false
	}
	return list[(len(list)-1)/2], true
}

func nearestIndex(scale []int, pos int) int {
	best, bestDist := 0, math.MaxInt
	for i, s := range scale {
		d := s - pos
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
