package camera

import (
	"testing"
	"time"

	"camdeck/param"
)

func TestUpdateAndSnapshot(t *testing.T) {
	s := NewState("cam-1", "1")
	if !s.Update(map[string]string{"iso": "100", "cameramodel": "EOS R6"}) {
		t.Fatal("first update should report a change")
	}
	if s.Update(map[string]string{"iso": "100"}) {
		t.Fatal("no-op update should not report a change")
	}

	snap := s.Snapshot()
	if !snap.Known() {
		t.Fatal("camera with a model should be known")
	}
	if v, ok := snap.Value(param.ISO); !ok || v != "100" {
		t.Fatalf("iso = %q, want 100", v)
	}
}

func TestSnapshotIsConsistentCopy(t *testing.T) {
	s := NewState("cam-1", "1")
	s.Update(map[string]string{"iso": "100"})
	snap := s.Snapshot()
	s.Update(map[string]string{"iso": "200"})
	if snap.Values["iso"] != "100" {
		t.Fatal("snapshot must not see later updates")
	}
}

func TestAllowedForFallsBack(t *testing.T) {
	s := NewState("cam-1", "1")
	snap := s.Snapshot()
	if got := snap.AllowedFor(param.Aperture); len(got) != 27 {
		t.Fatalf("fallback aperture list has %d entries, want 27", len(got))
	}
	s.StoreAllowed(map[string][]string{"aperture": {"2.8", "4", "5.6"}})
	snap = s.Snapshot()
	if got := snap.AllowedFor(param.Aperture); len(got) != 3 || got[0] != "2.8" {
		t.Fatalf("owner list not used: %v", got)
	}
}

func TestOfflineBlanksValues(t *testing.T) {
	s := NewState("cam-1", "1")
	s.Update(map[string]string{"cameramodel": "EOS R6", "iso": "100"})
	s.SetStatus("offline")
	snap := s.Snapshot()
	if snap.Known() {
		t.Fatal("offline camera must render blank")
	}
	if snap.Status != "offline" {
		t.Fatalf("status = %q", snap.Status)
	}
}

func TestLastChangedExpires(t *testing.T) {
	s := NewState("cam-1", "1")
	s.Update(map[string]string{"iso": "100"})
	if snap := s.Snapshot(); snap.LastChanged != "iso" {
		t.Fatalf("last changed = %q, want iso", snap.LastChanged)
	}
	time.Sleep(lastChangedTTL + 200*time.Millisecond)
	if snap := s.Snapshot(); snap.LastChanged != "" {
		t.Fatalf("highlight did not expire: %q", snap.LastChanged)
	}
}

func TestUnboundSelectionIsNeutral(t *testing.T) {
	sel := Unbound()
	if _, ok := sel.Bound(); ok {
		t.Fatal("unbound selection reports a camera")
	}
	snap := sel.Snapshot()
	if snap.Known() {
		t.Fatal("unbound snapshot should be blank")
	}
	if snap.Status == "" {
		t.Fatal("unbound snapshot should say nothing is selected")
	}
}
