package broadcast

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/cjeanneret/OrniPad/internal/debug"
	"github.com/cjeanneret/OrniPad/internal/telemetry"
)

// ErrNotConnected is returned by MQTTSender.Send while the broker link is down.
var ErrNotConnected = errors.New("mqtt: not connected")

// MQTTSender mirrors frames to a broker topic at QoS 0.
type MQTTSender struct {
	client mqtt.Client
	topic  string
}

// BrokerURL adds the tcp:// scheme when broker is a bare host[:port],
// and the default port when none is given.
func BrokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	if !strings.Contains(broker, ":") {
		broker += ":1883"
	}
	return "tcp://" + broker
}

// NewMQTTSender connects to broker and waits at most timeout for the
// handshake. The client reconnects on its own afterwards.
func NewMQTTSender(broker, topic, clientID string, timeout time.Duration) (*MQTTSender, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(BrokerURL(broker))
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(timeout)
	opts.OnConnect = func(mqtt.Client) {
		debug.Info("Connected to MQTT broker %s", broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		debug.Info("MQTT connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect to %s: timed out after %v", broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return newMQTTSender(client, topic), nil
}

func newMQTTSender(client mqtt.Client, topic string) *MQTTSender {
	return &MQTTSender{client: client, topic: topic}
}

// Send publishes the raw frame without waiting for delivery.
func (s *MQTTSender) Send(f telemetry.Frame) error {
	if !s.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	debug.Trace("[MQTT] -> %s % x", s.topic, f[:])
	s.client.Publish(s.topic, 0, false, f[:])
	return nil
}

// Close disconnects, allowing 250 ms for in-flight work.
func (s *MQTTSender) Close() error {
	s.client.Disconnect(250)
	return nil
}
