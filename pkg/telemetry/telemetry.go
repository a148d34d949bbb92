// Package telemetry publishes teleoperation session events for remote monitoring.
package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Event describes one processed input step.
type Event struct {
	Time          time.Time `json:"time"`
	Symbol        string    `json:"symbol"`
	Armed         bool      `json:"armed"`
	Speed         float64   `json:"speed"`
	YawRate       float64   `json:"yaw_rate"`
	LastDirection string    `json:"last_direction,omitempty"`
	Frames        []string  `json:"frames,omitempty"` // hex encoded, in send order
	Error         string    `json:"error,omitempty"`
}

// Publisher receives session events. Publish must not block the control loop.
type Publisher interface {
	Publish(Event) error
	Close() error
}

// Nop returns a Publisher that drops every event.
func Nop() Publisher { return nopPublisher{} }

type nopPublisher struct{}

func (nopPublisher) Publish(Event) error { return nil }
func (nopPublisher) Close() error        { return nil }

// client is the subset of mqtt.Client used by MQTTPublisher.
type client interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes events as JSON to a single MQTT topic.
type MQTTPublisher struct {
	mu     sync.Mutex
	client client
	topic  string
	closed bool
}

// MQTTConfig configures the MQTT connection.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Topic          string
	ConnectTimeout time.Duration
}

// NewMQTT connects to the broker and returns a publisher.
func NewMQTT(cfg MQTTConfig) (*MQTTPublisher, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.ConnectTimeout)

	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("connect %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}

	return newMQTTPublisher(c, cfg.Topic), nil
}

func newMQTTPublisher(c client, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: c, topic: topic}
}

// Publish sends ev without waiting for the broker to acknowledge it.
func (p *MQTTPublisher) Publish(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("publish %s: publisher closed", p.topic)
	}
	p.client.Publish(p.topic, 0, false, payload)
	return nil
}

// Close disconnects from the broker, giving in-flight messages 250ms.
func (p *MQTTPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.client.Disconnect(250)
	return nil
}
