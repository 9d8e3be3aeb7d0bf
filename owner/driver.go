package owner

import (
	"fmt"
	"sync"
	"time"

	"camdeck/param"
)

// Driver abstracts the camera backend. The production driver wraps a tethered
// camera; SimDriver stands in when no hardware is attached. A Driver is not
// safe for concurrent use; the owner serializes every call through its run
// loop.
type Driver interface {
	// Poll waits up to timeout for a camera event and reports whether the
	// configuration may have moved since the last Config call.
	Poll(timeout time.Duration) (bool, error)
	// Config returns the current value of every readable property.
	Config() (map[string]string, error)
	// Choices returns the accepted values for a property. A nil list means
	// the property takes free-form values.
	Choices(name string) ([]string, error)
	// Apply writes one property.
	Apply(name, value string) error
}

// SimDriver is an in-memory camera. It accepts any writable property the
// surface knows about and reports a change after every Apply.
type SimDriver struct {
	mu      sync.Mutex
	values  map[string]string
	changed bool
}

func NewSimDriver() *SimDriver {
	return &SimDriver{
		values: map[string]string{
			"cameramodel":          "Camera Sim",
			"lensname":             "SIM 24-70mm",
			"autoexposuremode":     "Manual",
			"aperture":             "4",
			"shutterspeed":         "1/50",
			"exposurecompensation": "0",
			"iso":                  "400",
			"whitebalance":         "Auto",
			"colortemperature":     "5600",
			"whitebalanceadjusta":  "0",
			"whitebalanceadjustb":  "0",
			"movieservoaf":         "On",
		},
	}
}

func (d *SimDriver) Poll(timeout time.Duration) (bool, error) {
	if timeout > 0 {
		time.Sleep(timeout)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	changed := d.changed
	d.changed = false
	return changed, nil
}

func (d *SimDriver) Config() (map[string]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.values))
	for k, v := range d.values {
		out[k] = v
	}
	return out, nil
}

func (d *SimDriver) Choices(name string) ([]string, error) {
	switch name {
	case "whitebalance":
		return []string{"Auto", "Daylight", "Shadow", "Cloudy", "Tungsten", "Fluorescent", "Flash", "Color Temperature"}, nil
	case "movieservoaf":
		return []string{"On", "Off"}, nil
	case "manualfocusdrive":
		return []string{"Near 3", "Near 2", "Near 1", "None", "Far 1", "Far 2", "Far 3"}, nil
	}
	if f, ok := param.Parse(name); ok {
		return param.DefaultValues(f), nil
	}
	return nil, nil
}

func (d *SimDriver) Apply(name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch name {
	case "cameramodel", "lensname", "autoexposuremode":
		return fmt.Errorf("property %s is read-only", name)
	case "manualfocusdrive":
		// Write-only lens movement, nothing to store.
		return nil
	}
	d.values[name] = value
	d.changed = true
	return nil
}
