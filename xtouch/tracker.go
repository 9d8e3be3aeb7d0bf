package xtouch

// Center is the neutral mid-scale ring position fresh encoders start at.
const Center = 64

// Tracker holds the currently displayed ring position for every encoder.
// Positions always come from the encoder's bound scale; the scale itself
// decides whether the vendor table's -1/128 endpoints are reachable.
type Tracker struct {
	pos [8]int
}

func NewTracker() *Tracker {
	t := &Tracker{}
	for i := range t.pos {
		t.pos[i] = Center
	}
	return t
}

// Position returns the stored ring position for an encoder.
func (t *Tracker) Position(encoder int) int {
	return t.pos[encoder]
}

// Set overwrites an encoder's position with an authoritative one.
func (t *Tracker) Set(encoder, pos int) {
	t.pos[encoder] = pos
}

// Advance moves an encoder exactly one step along its scale: the nearest
// scale member strictly above (delta > 0) or below (delta < 0) the current
// position, clamping at the scale ends. The delta's magnitude is ignored
// here; only the focus drive uses it. Returns the new stored position.
func (t *Tracker) Advance(encoder, delta int, scale []int) int {
	if len(scale) == 0 || delta == 0 {
		return t.pos[encoder]
	}
	cur := t.pos[encoder]
	next := cur
	if delta > 0 {
		next = scale[len(scale)-1]
		for _, s := range scale {
			if s > cur {
				next = s
				break
			}
		}
	} else {
		next = scale[0]
		for i := len(scale) - 1; i >= 0; i-- {
			if scale[i] < cur {
				next = scale[i]
				break
			}
		}
	}
	t.pos[encoder] = next
	return next
}
