// Package camera replicates each remote camera's authoritative state: the
// current value of every reported property and the allowed-value lists. The
// remote owner is the source of truth; this copy only ever changes when a
// snapshot arrives over the bus.
package camera

import (
	"sync"
	"time"

	"camdeck/param"
)

// lastChangedTTL clears the transient "what just changed" highlight. Purely
// cosmetic; not a correctness mechanism.
const lastChangedTTL = time.Second

// State is one camera's replicated state. All fields live behind a single
// mutex; readers take a Snapshot rather than reading fields piecemeal so a
// render never mixes two generations of values.
type State struct {
	name          string
	switcherInput string

	mu          sync.Mutex
	values      map[string]string
	allowed     map[string][]string
	status      string
	lastChanged string
	expiry      *time.Timer
}

func NewState(name, switcherInput string) *State {
	return &State{
		name:          name,
		switcherInput: switcherInput,
		values:        make(map[string]string),
		allowed:       make(map[string][]string),
	}
}

func (s *State) Name() string          { return s.name }
func (s *State) SwitcherInput() string { return s.switcherInput }

// Update absorbs a full or partial current-value snapshot. Safe from any
// goroutine. Returns true when anything actually changed.
func (s *State) Update(delta map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for k, v := range delta {
		if s.values[k] == v {
			continue
		}
		s.values[k] = v
		s.touchLocked(k)
		changed = true
	}
	return changed
}

// StoreAllowed replaces allowed-value lists. Any value index previously
// resolved against an old list must be re-derived; callers do that by
// re-rendering from a fresh Snapshot.
func (s *State) StoreAllowed(lists map[string][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range lists {
		s.allowed[k] = v
	}
}

// SetStatus records the owner's liveness/status text. An explicit "offline"
// blanks the camera (Snapshot.Known becomes false); anything else is shown
// as-is.
func (s *State) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	if status == "offline" {
		s.values = make(map[string]string)
	}
}

func (s *State) touchLocked(what string) {
	s.lastChanged = what
	if s.expiry != nil {
		s.expiry.Stop()
	}
	s.expiry = time.AfterFunc(lastChangedTTL, func() {
		s.mu.Lock()
		s.lastChanged = ""
		s.mu.Unlock()
	})
}

// Snapshot is a consistent copy of a camera's state for rendering.
type Snapshot struct {
	Name          string
	SwitcherInput string
	Status        string
	LastChanged   string
	Values        map[string]string
	Allowed       map[string][]string
}

// Snapshot copies the state under the lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Name:          s.name,
		SwitcherInput: s.switcherInput,
		Status:        s.status,
		LastChanged:   s.lastChanged,
		Values:        make(map[string]string, len(s.values)),
		Allowed:       make(map[string][]string, len(s.allowed)),
	}
	for k, v := range s.values {
		snap.Values[k] = v
	}
	for k, v := range s.allowed {
		snap.Allowed[k] = v
	}
	return snap
}

// Known reports whether the camera has announced itself (a camera model in
// its snapshot). Unknown cameras render blank.
func (snap Snapshot) Known() bool {
	return snap.Values["cameramodel"] != ""
}

// Value reads a parameter's authoritative value.
func (snap Snapshot) Value(f param.Function) (string, bool) {
	v, ok := snap.Values[f.String()]
	return v, ok
}

// AllowedFor returns the owner-published value list for a parameter, or the
// built-in fallback while none has arrived.
func (snap Snapshot) AllowedFor(f param.Function) []string {
	if list, ok := snap.Allowed[f.String()]; ok && len(list) > 0 {
		return list
	}
	return param.DefaultValues(f)
}

// Selection is a tagged Bound/Unbound choice of camera. The zero value is
// Unbound; every operation on it is a neutral no-op, so there is no parallel
// placeholder implementation.
type Selection struct {
	state *State
}

func Select(s *State) Selection { return Selection{state: s} }
func Unbound() Selection        { return Selection{} }

// Bound returns the selected camera, if any.
func (sel Selection) Bound() (*State, bool) {
	return sel.state, sel.state != nil
}

// Snapshot returns the selected camera's snapshot, or an empty one that
// renders everything blank.
func (sel Selection) Snapshot() Snapshot {
	if sel.state == nil {
		return Snapshot{Status: "No camera selected"}
	}
	return sel.state.Snapshot()
}
