package mqtt

import (
	"strings"
	"sync"
)

// FakeBus is an in-memory Bus for tests: synchronous delivery, standard
// MQTT wildcard matching, no broker required.
type FakeBus struct {
	mu   sync.Mutex
	subs map[string][]Handler
}

func NewFakeBus() *FakeBus {
	return &FakeBus{subs: make(map[string][]Handler)}
}

func (b *FakeBus) Subscribe(filter string, cb Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[filter] = append(b.subs[filter], cb)
	return nil
}

func (b *FakeBus) Unsubscribe(filter string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, filter)
	return nil
}

func (b *FakeBus) Publish(topic string, payload []byte) error {
	b.mu.Lock()
	var cbs []Handler
	for filter, list := range b.subs {
		if TopicMatches(filter, topic) {
			cbs = append(cbs, list...)
		}
	}
	b.mu.Unlock()
	msg := &fakeMessage{topic: topic, payload: payload}
	for _, cb := range cbs {
		cb(nil, msg)
	}
	return nil
}

// TopicMatches implements MQTT filter matching with + and # wildcards.
func TopicMatches(filter, topic string) bool {
	f := strings.Split(filter, "/")
	t := strings.Split(topic, "/")
	for i, part := range f {
		if part == "#" {
			return true
		}
		if i >= len(t) {
			return false
		}
		if part != "+" && part != t[i] {
			return false
		}
	}
	return len(f) == len(t)
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}
