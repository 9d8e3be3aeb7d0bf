package owner

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"camdeck/mqtt"
)

type published struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *published) add(payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, append([]byte(nil), payload...))
}

func (p *published) last() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.payloads) == 0 {
		return nil
	}
	return p.payloads[len(p.payloads)-1]
}

func (p *published) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

func capture(t *testing.T, bus *mqtt.FakeBus, topic string) *published {
	t.Helper()
	p := &published{}
	if err := bus.Subscribe(topic, func(_ paho.Client, m mqtt.Message) {
		p.add(m.Payload())
	}); err != nil {
		t.Fatalf("subscribe %s: %v", topic, err)
	}
	return p
}

type fakeLights struct {
	brightness int
	r, g, b    int
	off        bool
}

func (l *fakeLights) Tally(brightness int) { l.brightness = brightness }
func (l *fakeLights) Preview(r, g, b int)  { l.r, l.g, l.b = r, g, b }
func (l *fakeLights) Off()                 { l.off = true }

func testOwner(t *testing.T) (*Owner, *SimDriver, *mqtt.FakeBus, *fakeLights) {
	t.Helper()
	bus := mqtt.NewFakeBus()
	drv := NewSimDriver()
	lights := &fakeLights{}
	o := New("sim", drv, lights)
	if err := o.Attach(bus); err != nil {
		t.Fatalf("attach: %v", err)
	}
	return o, drv, bus, lights
}

func drain(t *testing.T, o *Owner) {
	t.Helper()
	for i := 0; i < 8; i++ {
		if err := o.step(0); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
}

func TestAttachAnnouncesAndDumps(t *testing.T) {
	bus := mqtt.NewFakeBus()
	status := capture(t, bus, "camera/sim/status")
	current := capture(t, bus, "camera/sim/current")
	allowed := capture(t, bus, "camera/sim/allowed")

	o := New("sim", NewSimDriver(), &fakeLights{})
	if err := o.Attach(bus); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if got := string(status.last()); got != "online" {
		t.Fatalf("status = %q, want online", got)
	}
	drain(t, o)

	var cfg map[string]string
	if err := json.Unmarshal(current.last(), &cfg); err != nil {
		t.Fatalf("bad current payload: %v", err)
	}
	if cfg["cameramodel"] != "Camera Sim" || cfg["aperture"] != "4" {
		t.Fatalf("dump missing identity: %v", cfg)
	}

	var lists map[string][]string
	if err := json.Unmarshal(allowed.last(), &lists); err != nil {
		t.Fatalf("bad allowed payload: %v", err)
	}
	if len(lists["iso"]) != 26 {
		t.Fatalf("iso list has %d entries, want 26", len(lists["iso"]))
	}
	if len(lists["focus"]) != 0 {
		t.Fatalf("focus should publish no value list, got %v", lists["focus"])
	}
}

func TestSetRequestApplies(t *testing.T) {
	o, drv, bus, _ := testOwner(t)
	drain(t, o)
	current := capture(t, bus, "camera/sim/current")

	bus.Publish("camera/sim/set/iso", []byte("800"))
	drain(t, o)

	var delta map[string]string
	if err := json.Unmarshal(current.last(), &delta); err != nil {
		t.Fatalf("bad current payload: %v", err)
	}
	if delta["iso"] != "800" {
		t.Fatalf("delta = %v, want iso=800", delta)
	}
	if _, ok := delta["aperture"]; ok {
		t.Fatalf("delta should not repeat unchanged parameters: %v", delta)
	}
	cfg, _ := drv.Config()
	if cfg["iso"] != "800" {
		t.Fatalf("driver iso = %q, want 800", cfg["iso"])
	}
}

func TestRejectedValueDroppedSilently(t *testing.T) {
	o, drv, bus, _ := testOwner(t)
	drain(t, o)
	current := capture(t, bus, "camera/sim/current")

	bus.Publish("camera/sim/set/iso", []byte("999"))
	drain(t, o)

	cfg, _ := drv.Config()
	if cfg["iso"] != "400" {
		t.Fatalf("rejected value was applied: iso = %q", cfg["iso"])
	}
	if current.count() != 0 {
		t.Fatalf("rejection published %d snapshots, want none", current.count())
	}
}

func TestUnknownParameterDropped(t *testing.T) {
	o, _, bus, _ := testOwner(t)
	drain(t, o)
	current := capture(t, bus, "camera/sim/current")

	bus.Publish("camera/sim/set/bogus", []byte("1"))
	drain(t, o)

	if current.count() != 0 {
		t.Fatalf("unknown parameter triggered %d publishes", current.count())
	}
}

func TestColorTemperatureCouplesWhiteBalance(t *testing.T) {
	o, drv, bus, _ := testOwner(t)
	drain(t, o)
	current := capture(t, bus, "camera/sim/current")

	bus.Publish("camera/sim/set/colortemperature", []byte("3200"))
	drain(t, o)

	cfg, _ := drv.Config()
	if cfg["colortemperature"] != "3200" || cfg["whitebalance"] != "Color Temperature" {
		t.Fatalf("colortemperature=%q whitebalance=%q", cfg["colortemperature"], cfg["whitebalance"])
	}
	var delta map[string]string
	if err := json.Unmarshal(current.last(), &delta); err != nil {
		t.Fatalf("bad current payload: %v", err)
	}
	if delta["whitebalance"] != "Color Temperature" {
		t.Fatalf("delta missing whitebalance: %v", delta)
	}
}

func TestDumpAllResendsEverything(t *testing.T) {
	o, _, bus, _ := testOwner(t)
	drain(t, o)
	current := capture(t, bus, "camera/sim/current")
	allowed := capture(t, bus, "camera/sim/allowed")

	bus.Publish("camera/dump-all", []byte("."))
	drain(t, o)

	if current.count() != 1 || allowed.count() != 1 {
		t.Fatalf("dump-all published current=%d allowed=%d", current.count(), allowed.count())
	}
	var cfg map[string]string
	if err := json.Unmarshal(current.last(), &cfg); err != nil {
		t.Fatalf("bad current payload: %v", err)
	}
	if len(cfg) < 10 {
		t.Fatalf("dump should carry the full configuration, got %d entries", len(cfg))
	}
}

func TestTallyAndPreviewDriveLights(t *testing.T) {
	_, _, bus, lights := testOwner(t)

	bus.Publish("camera/sim/tally", []byte("80"))
	if lights.brightness != 80 {
		t.Fatalf("brightness = %d, want 80", lights.brightness)
	}
	bus.Publish("camera/sim/preview", []byte("0 20 0"))
	if lights.r != 0 || lights.g != 20 || lights.b != 0 {
		t.Fatalf("preview = %d %d %d, want 0 20 0", lights.r, lights.g, lights.b)
	}
	bus.Publish("camera/sim/tally", []byte("bad"))
	if lights.brightness != 80 {
		t.Fatalf("bad payload changed brightness to %d", lights.brightness)
	}
}

type faultDriver struct {
	*SimDriver
	fail error
}

func (d *faultDriver) Poll(timeout time.Duration) (bool, error) {
	if d.fail != nil {
		return false, d.fail
	}
	return d.SimDriver.Poll(timeout)
}

func TestDriverFaultPublishesErrorAndStops(t *testing.T) {
	bus := mqtt.NewFakeBus()
	drv := &faultDriver{SimDriver: NewSimDriver(), fail: errors.New("usb detached")}
	o := New("sim", drv, &fakeLights{})
	if err := o.Attach(bus); err != nil {
		t.Fatalf("attach: %v", err)
	}
	status := capture(t, bus, "camera/sim/status")

	err := o.Run(make(chan struct{}))
	var fault *DriverFault
	if !errors.As(err, &fault) {
		t.Fatalf("run returned %v, want a driver fault", err)
	}
	if got := string(status.last()); !strings.HasPrefix(got, "error:") {
		t.Fatalf("status = %q, want an error marker", got)
	}
}

func TestShutdownDarkensLightsAndGoesOffline(t *testing.T) {
	o, _, bus, lights := testOwner(t)
	status := capture(t, bus, "camera/sim/status")

	done := make(chan struct{})
	finished := make(chan error, 1)
	go func() { finished <- o.Run(done) }()
	close(done)

	select {
	case err := <-finished:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop")
	}
	if !lights.off {
		t.Fatal("lights left on after shutdown")
	}
	if got := string(status.last()); got != "offline" {
		t.Fatalf("status = %q, want offline", got)
	}
}

func TestWritableKeepsDriveCommands(t *testing.T) {
	o, drv, bus, _ := testOwner(t)
	drain(t, o)

	bus.Publish("camera/sim/set/manualfocusdrive", []byte("Far 3"))
	drain(t, o)

	cfg, _ := drv.Config()
	if _, ok := cfg["manualfocusdrive"]; ok {
		t.Fatalf("write-only drive leaked into configuration: %v", cfg)
	}
}
