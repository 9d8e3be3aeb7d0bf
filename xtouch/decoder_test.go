package xtouch

import "testing"

func TestDecodeCCRelative(t *testing.T) {
	cases := []struct {
		channel, control, value uint8
		encoder, delta          int
		ok                      bool
	}{
		{10, 1, 1, 0, 1, true},     // gentle clockwise
		{10, 1, 7, 0, 7, true},     // hard clockwise
		{10, 8, 127, 7, -1, true},  // gentle counter-clockwise
		{10, 8, 121, 7, -7, true},  // hard counter-clockwise
		{10, 9, 64, 0, 0, false},   // main fader
		{0, 1, 1, 0, 0, false},     // wrong channel
		{10, 12, 1, 0, 0, false},   // beyond the encoders
		{10, 0, 1, 0, 0, false},    // no control zero
	}
	for _, c := range cases {
		enc, delta, ok := DecodeCC(c.channel, c.control, c.value)
		if ok != c.ok {
			t.Fatalf("DecodeCC(%d,%d,%d): ok=%v, want %v", c.channel, c.control, c.value, ok, c.ok)
		}
		if ok && (enc != c.encoder || delta != c.delta) {
			t.Fatalf("DecodeCC(%d,%d,%d) = enc %d delta %d, want enc %d delta %d",
				c.channel, c.control, c.value, enc, delta, c.encoder, c.delta)
		}
	}
}

func TestDecodeNote(t *testing.T) {
	if ev, ok := DecodeNote(3, true); !ok || ev.Kind != Push || ev.Encoder != 3 {
		t.Fatalf("note 3 on = %+v, want encoder push", ev)
	}
	if _, ok := DecodeNote(3, false); ok {
		t.Fatal("encoder push release should be dropped")
	}
	if ev, ok := DecodeNote(8, true); !ok || ev.Kind != Key || ev.Button != 0 || !ev.Pressed {
		t.Fatalf("note 8 on = %+v, want button 0 press", ev)
	}
	if ev, ok := DecodeNote(23, false); !ok || ev.Button != 15 || ev.Pressed {
		t.Fatalf("note 23 off = %+v, want button 15 release", ev)
	}
	if _, ok := DecodeNote(24, true); ok {
		t.Fatal("note 24 is outside the button matrix")
	}
}

func TestDriveCommandTiers(t *testing.T) {
	cases := []struct {
		delta int
		want  string
	}{
		{1, "Far 1"}, {2, "Far 2"}, {3, "Far 2"}, {4, "Far 3"}, {7, "Far 3"},
		{-1, "Near 1"}, {-2, "Near 2"}, {-3, "Near 2"}, {-4, "Near 3"}, {-7, "Near 3"},
	}
	for _, c := range cases {
		if got := DriveCommand(c.delta); got != c.want {
			t.Fatalf("DriveCommand(%d) = %q, want %q", c.delta, got, c.want)
		}
	}
}
