// Package owner runs the camera-side half of the protocol: it drives one
// camera through a Driver, publishes that camera's authoritative state,
// applies set-requests from the surface and follows the switcher's tally.
package owner

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"camdeck/mqtt"
	"camdeck/param"
)

type command struct {
	name  string
	value string
	dump  bool
}

// DriverFault wraps an error from the camera itself, as opposed to the bus.
// The process exits on one; bus errors get the session retried instead.
type DriverFault struct{ Err error }

func (e *DriverFault) Error() string { return "camera driver: " + e.Err.Error() }
func (e *DriverFault) Unwrap() error { return e.Err }

// Owner ties one camera, its tally lights and the bus together. Every driver
// call happens on the Run goroutine; bus handlers only enqueue commands.
type Owner struct {
	name   string
	driver Driver
	lights TallyLights

	mu        sync.Mutex
	bus       mqtt.Bus
	published map[string]string

	commands chan command
}

func New(name string, driver Driver, lights TallyLights) *Owner {
	return &Owner{
		name:      name,
		driver:    driver,
		lights:    lights,
		published: map[string]string{},
		commands:  make(chan command, 32),
	}
}

// StatusTopic carries the online/offline marker. Sessions register it as
// their MQTT will so the broker flips it to offline on an unclean death.
func (o *Owner) StatusTopic() string { return "camera/" + o.name + "/status" }

func (o *Owner) topic(sub string) string { return "camera/" + o.name + "/" + sub }

// Attach subscribes the owner on a session and announces it online. Safe to
// call again after a reconnect; it re-subscribes and schedules a full dump.
func (o *Owner) Attach(bus mqtt.Bus) error {
	o.mu.Lock()
	o.bus = bus
	o.mu.Unlock()

	subs := map[string]mqtt.Handler{
		o.topic("set/#"):   o.onSet,
		"camera/dump-all":  o.onDump,
		o.topic("tally"):   o.onTally,
		o.topic("preview"): o.onPreview,
	}
	for topic, cb := range subs {
		if err := bus.Subscribe(topic, cb); err != nil {
			return err
		}
	}
	if err := bus.Publish(o.StatusTopic(), []byte("online")); err != nil {
		return err
	}
	o.enqueue(command{dump: true})
	return nil
}

// Reattach re-announces the owner on the session it is already bound to.
// Hooked to the MQTT client's reconnect callback; a no-op before the first
// Attach.
func (o *Owner) Reattach() {
	o.mu.Lock()
	bus := o.bus
	o.mu.Unlock()
	if bus == nil {
		return
	}
	if err := o.Attach(bus); err != nil {
		slog.Error("reattach failed", "camera", o.name, "error", err)
	}
}

func (o *Owner) enqueue(cmd command) {
	select {
	case o.commands <- cmd:
	default:
		slog.Warn("command queue full, dropping", "camera", o.name)
	}
}

func (o *Owner) onSet(_ paho.Client, m mqtt.Message) {
	name := m.Topic()[strings.LastIndexByte(m.Topic(), '/')+1:]
	if _, ok := param.Parse(name); !ok {
		slog.Warn("set-request for unknown parameter", "camera", o.name, "param", name)
		return
	}
	o.enqueue(command{name: name, value: string(m.Payload())})
}

func (o *Owner) onDump(_ paho.Client, _ mqtt.Message) {
	o.enqueue(command{dump: true})
}

func (o *Owner) onTally(_ paho.Client, m mqtt.Message) {
	brightness, err := strconv.Atoi(string(m.Payload()))
	if err != nil {
		slog.Warn("bad tally payload", "camera", o.name, "payload", string(m.Payload()))
		return
	}
	o.lights.Tally(brightness)
}

func (o *Owner) onPreview(_ paho.Client, m mqtt.Message) {
	var r, g, b int
	if _, err := fmt.Sscanf(string(m.Payload()), "%d %d %d", &r, &g, &b); err != nil {
		slog.Warn("bad preview payload", "camera", o.name, "payload", string(m.Payload()))
		return
	}
	o.lights.Preview(r, g, b)
}

// Run drives the camera until done closes or the driver faults. A fault is
// published to the status topic before returning; the process is expected to
// exit and be restarted by its supervisor.
func (o *Owner) Run(done <-chan struct{}) error {
	for {
		select {
		case <-done:
			o.lights.Off()
			o.publish(o.StatusTopic(), []byte("offline"))
			return nil
		default:
		}
		if err := o.step(10 * time.Millisecond); err != nil {
			o.lights.Off()
			o.publish(o.StatusTopic(), []byte("error: "+err.Error()))
			return err
		}
	}
}

// step is one run-loop iteration: poll the camera, publish any movement,
// then execute at most one queued command.
func (o *Owner) step(pollTimeout time.Duration) error {
	changed, err := o.driver.Poll(pollTimeout)
	if err != nil {
		return &DriverFault{Err: fmt.Errorf("poll: %w", err)}
	}
	if changed {
		if err := o.publishCurrent(false); err != nil {
			return err
		}
	}
	select {
	case cmd := <-o.commands:
		return o.execute(cmd)
	default:
	}
	return nil
}

func (o *Owner) execute(cmd command) error {
	if cmd.dump {
		o.mu.Lock()
		o.published = map[string]string{}
		o.mu.Unlock()
		if err := o.publishAllowed(); err != nil {
			return err
		}
		return o.publishCurrent(true)
	}

	choices, err := o.driver.Choices(cmd.name)
	if err != nil {
		return &DriverFault{Err: fmt.Errorf("choices for %s: %w", cmd.name, err)}
	}
	if len(choices) > 0 && !contains(choices, cmd.value) {
		// No publish: the requester's tentative render is corrected by
		// the next real snapshot.
		slog.Warn("rejected set-request", "camera", o.name, "param", cmd.name, "value", cmd.value)
		return nil
	}

	slog.Info("apply", "camera", o.name, "param", cmd.name, "value", cmd.value)
	if err := o.driver.Apply(cmd.name, cmd.value); err != nil {
		return &DriverFault{Err: fmt.Errorf("apply %s=%s: %w", cmd.name, cmd.value, err)}
	}
	if cmd.name == param.ColorTemperature.String() {
		// Dialing a temperature implies manual white balance.
		if err := o.driver.Apply(param.WhiteBalance.String(), "Color Temperature"); err != nil {
			return &DriverFault{Err: fmt.Errorf("apply whitebalance: %w", err)}
		}
	}
	return o.publishCurrent(false)
}

// publishCurrent diffs the camera's configuration against what was last
// published and sends the delta as one JSON object. force republishes the
// whole configuration.
func (o *Owner) publishCurrent(force bool) error {
	cfg, err := o.driver.Config()
	if err != nil {
		return &DriverFault{Err: fmt.Errorf("config: %w", err)}
	}

	o.mu.Lock()
	delta := make(map[string]string)
	for k, v := range cfg {
		if force || o.published[k] != v {
			delta[k] = v
			o.published[k] = v
		}
	}
	o.mu.Unlock()

	if len(delta) == 0 {
		return nil
	}
	payload, err := json.Marshal(delta)
	if err != nil {
		return err
	}
	return o.publish(o.topic("current"), payload)
}

func (o *Owner) publishAllowed() error {
	lists := make(map[string][]string)
	for f := param.Focus; f <= param.WhiteBalance; f++ {
		choices, err := o.driver.Choices(f.String())
		if err != nil {
			return &DriverFault{Err: fmt.Errorf("choices for %s: %w", f, err)}
		}
		if len(choices) > 0 {
			lists[f.String()] = choices
		}
	}
	payload, err := json.Marshal(lists)
	if err != nil {
		return err
	}
	return o.publish(o.topic("allowed"), payload)
}

func (o *Owner) publish(topic string, payload []byte) error {
	o.mu.Lock()
	bus := o.bus
	o.mu.Unlock()
	if bus == nil {
		return nil
	}
	return bus.Publish(topic, payload)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
