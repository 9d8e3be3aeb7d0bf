package lightring

import "testing"

func TestSegmentBreakpoints(t *testing.T) {
	// Within a segment the code is stable; crossing the upper breakpoint
	// moves to the next segment.
	for i := 0; i < len(Steps)-1; i++ {
		lo, hi := Steps[i], Steps[i+1]
		if got := Segment(lo); got != i {
			t.Fatalf("Segment(%d) = %d, want %d", lo, got, i)
		}
		if got := Segment(hi - 1); got != i {
			t.Fatalf("Segment(%d) = %d, want %d (same as lower breakpoint %d)", hi-1, got, i, lo)
		}
		if hi <= SentinelHigh {
			if got := Segment(hi); got != i+1 {
				t.Fatalf("Segment(%d) = %d, want %d", hi, got, i+1)
			}
		}
	}
}

func TestSegmentNames(t *testing.T) {
	cases := []struct {
		pos  int
		name string
	}{
		{-1, "below"},
		{0, "LED1"},
		{5, "LED1"},
		{6, "LED1+2"},
		{54, "LED6"},
		{64, "LED7"},
		{65, "LED7+8"},
		{122, "LED12+13"},
		{127, "LED13"},
		{128, "above"},
	}
	for _, c := range cases {
		if got := SegmentName(Segment(c.pos)); got != c.name {
			t.Fatalf("position %d: got %s, want %s", c.pos, got, c.name)
		}
	}
}

func TestRenderSentinels(t *testing.T) {
	if c := Render(SentinelLow); c.Kind != Blink || c.Value != uint8(BlinkLeft) {
		t.Fatalf("Render(-1) = %+v, want blink-left", c)
	}
	if c := Render(SentinelHigh); c.Kind != Blink || c.Value != uint8(BlinkRight) {
		t.Fatalf("Render(128) = %+v, want blink-right", c)
	}
	for _, pos := range []int{0, 64, 127} {
		if c := Render(pos); c.Kind != Ring || c.Value != uint8(pos) {
			t.Fatalf("Render(%d) = %+v, want ring value %d", pos, c, pos)
		}
	}
}

func TestRenderOutOfRangePanics(t *testing.T) {
	for _, pos := range []int{-2, 129} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("Render(%d) did not panic", pos)
				}
			}()
			Render(pos)
		}()
	}
}
