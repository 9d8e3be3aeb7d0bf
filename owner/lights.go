package owner

import "log/slog"

// TallyLights drives the on-air and preview LEDs mounted on the camera rig.
type TallyLights interface {
	// Tally sets the front lamp brightness, 0 for dark.
	Tally(brightness int)
	// Preview sets the operator-side RGB lamp.
	Preview(r, g, b int)
	// Off darkens everything; called on shutdown.
	Off()
}

// LogLights stands in when no LED hardware is attached.
type LogLights struct{}

func (LogLights) Tally(brightness int) {
	slog.Debug("tally lamp", "brightness", brightness)
}

func (LogLights) Preview(r, g, b int) {
	slog.Debug("preview lamp", "r", r, "g", g, "b", b)
}

func (LogLights) Off() {
	slog.Debug("lamps off")
}
