package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Publisher delivers one message to a broker topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close()
}

// ErrPublishTimeout is returned when the broker does not acknowledge a
// message in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// MQTTConfig holds the broker connection settings.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	QoS            byte
	ConnectTimeout time.Duration
}

// MQTTPublisher publishes over a paho MQTT client.
type MQTTPublisher struct {
	client mqtt.Client
	qos    byte
	logger *zap.Logger
}

var _ Publisher = (*MQTTPublisher)(nil)

// DialMQTT connects to cfg.Broker. The client reconnects on its own after
// the first successful connection.
func DialMQTT(ctx context.Context, cfg MQTTConfig, logger *zap.Logger) (*MQTTPublisher, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetOrderMatters(false).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("mqtt connection lost", zap.Error(err))
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Info("mqtt connected", zap.String("broker", cfg.Broker))
		})

	client := mqtt.NewClient(opts)
	if err := wait(ctx, client.Connect(), cfg.ConnectTimeout); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}
	return &MQTTPublisher{client: client, qos: cfg.QoS, logger: logger}, nil
}

// Publish sends payload and waits for the broker according to the QoS.
func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	return wait(ctx, p.client.Publish(topic, p.qos, false, payload), 5*time.Second)
}

// Close disconnects, allowing a short grace period for in-flight work.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

func wait(ctx context.Context, tok mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrPublishTimeout
	}
}
