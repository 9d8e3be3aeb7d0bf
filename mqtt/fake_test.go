package mqtt

import (
	"testing"

	paho "github.com/eclipse/paho.mqtt.golang"
)

func TestTopicMatches(t *testing.T) {
	cases := []struct {
		filter, topic string
		want          bool
	}{
		{"camera/cam-1/status", "camera/cam-1/status", true},
		{"camera/+/status", "camera/cam-2/status", true},
		{"camera/+/current/#", "camera/cam-1/current", true},
		{"camera/+/current/#", "camera/cam-1/current/x/y", true},
		{"camera/#", "camera/cam-1/set/iso", true},
		{"camera/+/status", "camera/cam-1/allowed", false},
		{"camera/dump-all", "camera/dump-all/x", false},
	}
	for _, c := range cases {
		if got := TopicMatches(c.filter, c.topic); got != c.want {
			t.Fatalf("TopicMatches(%q, %q) = %v, want %v", c.filter, c.topic, got, c.want)
		}
	}
}

func TestFakeBusDelivery(t *testing.T) {
	b := NewFakeBus()
	var got []string
	err := b.Subscribe("camera/+/status", func(_ paho.Client, m Message) {
		got = append(got, m.Topic()+"="+string(m.Payload()))
	})
	if err != nil {
		t.Fatal(err)
	}
	b.Publish("camera/cam-1/status", []byte("online"))
	b.Publish("camera/cam-1/set/iso", []byte("100")) // no subscriber
	if len(got) != 1 || got[0] != "camera/cam-1/status=online" {
		t.Fatalf("delivery = %v", got)
	}
	b.Unsubscribe("camera/+/status")
	b.Publish("camera/cam-1/status", []byte("offline"))
	if len(got) != 1 {
		t.Fatalf("message delivered after unsubscribe: %v", got)
	}
}
