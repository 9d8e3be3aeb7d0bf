// Package mqtt wraps the paho client with the small surface camdeck needs.
package mqtt

import (
	"log/slog"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Bus is the transport surface the reconciler and owner depend on. It keeps
// both testable against an in-memory fake instead of a live broker.
type Bus interface {
	Subscribe(topic string, cb Handler) error
	Unsubscribe(topic string) error
	Publish(topic string, payload []byte) error
}

// Message and Handler are re-exported paho types.
type Message = mqtt.Message
type Handler = mqtt.MessageHandler

type Client struct {
	cli mqtt.Client
}

// Options tunes the session beyond the broker URL.
type Options struct {
	ClientPrefix string
	// Will, if set, is published by the broker when the session dies
	// uncleanly. The owner uses it for its "offline" status marker.
	WillTopic   string
	WillPayload string
	// Keepalive defaults to paho's if zero.
	Keepalive time.Duration
	// OnConnect runs on every (re)connect, including automatic ones; the
	// owner republishes its online marker and full state from it.
	OnConnect func()
}

// New connects to the broker. brokerURL accepts mqtt://, tcp://, ws://.
func New(brokerURL string, o Options) (*Client, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, err
	}
	server := u.Host
	switch u.Scheme {
	case "mqtt", "tcp", "":
		server = "tcp://" + server
	case "ws", "wss":
		server = u.Scheme + "://" + server + u.Path
	}

	prefix := o.ClientPrefix
	if prefix == "" {
		prefix = "camdeck"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(server)
	opts.SetClientID(prefix + "-" + uuid.NewString()[:8])
	opts.SetAutoReconnect(true)
	if o.Keepalive > 0 {
		opts.SetKeepAlive(o.Keepalive)
	}
	if o.WillTopic != "" {
		opts.SetWill(o.WillTopic, o.WillPayload, 0, false)
	}
	if u.User != nil {
		pw, _ := u.User.Password()
		opts.SetUsername(u.User.Username())
		opts.SetPassword(pw)
	}
	opts.OnConnect = func(c mqtt.Client) {
		slog.Info("mqtt connected", "broker", brokerURL)
		if o.OnConnect != nil {
			o.OnConnect()
		}
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		slog.Error("mqtt connection lost", "error", err)
	}

	cli := mqtt.NewClient(opts)
	if t := cli.Connect(); t.Wait() && t.Error() != nil {
		return nil, t.Error()
	}
	return &Client{cli: cli}, nil
}

func (c *Client) Subscribe(topic string, cb Handler) error {
	t := c.cli.Subscribe(topic, 0, cb)
	if t.Wait() && t.Error() != nil {
		return t.Error()
	}
	slog.Info("mqtt subscribed", "topic", topic)
	return nil
}

func (c *Client) Unsubscribe(topic string) error {
	t := c.cli.Unsubscribe(topic)
	if t.Wait() && t.Error() != nil {
		return t.Error()
	}
	slog.Info("mqtt unsubscribed", "topic", topic)
	return nil
}

func (c *Client) Publish(topic string, payload []byte) error {
	t := c.cli.Publish(topic, 0, false, payload)
	if t.Wait() && t.Error() != nil {
		return t.Error()
	}
	return nil
}

func (c *Client) Disconnect() {
	c.cli.Disconnect(250)
}
