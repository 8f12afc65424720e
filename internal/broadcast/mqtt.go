package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/config"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

const (
	publishQoS     = 1
	publishTimeout = 5 * time.Second
	queueSize      = 64
)

// NewMQTTClient connects to the broker with auto-reconnect
func NewMQTTClient(cfg config.MQTTConfig, log *logger.Logger) (mqtt.Client, error) {
	l := log.WithModule("mqtt")

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		l.WithField("broker", cfg.Broker).Info("MQTT connection established")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		l.WithError(err).Warn("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connect to MQTT broker %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", cfg.Broker, err)
	}
	return client, nil
}

// MQTTPublisher queues summaries and publishes them from a single goroutine.
// The topic pattern may contain {user_id} and {session_id}.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	queue  chan *contracts.SessionSummary
	logger *logger.Logger
}

// NewMQTTPublisher creates a publisher; call Start to begin draining the queue
func NewMQTTPublisher(client mqtt.Client, topic string, log *logger.Logger) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		topic:  topic,
		queue:  make(chan *contracts.SessionSummary, queueSize),
		logger: log.WithModule("mqtt-publisher"),
	}
}

// Publish implements contracts.SummaryPublisher; it never blocks the request
func (p *MQTTPublisher) Publish(_ context.Context, s *contracts.SessionSummary) error {
	select {
	case p.queue <- s:
		return nil
	default:
		return fmt.Errorf("mqtt publish queue full, dropping session %s", s.SessionID)
	}
}

// Start publishes queued summaries until ctx is cancelled
func (p *MQTTPublisher) Start(ctx context.Context) {
	p.logger.WithField("topic", p.topic).Info("MQTT publisher started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("MQTT publisher stopped")
			return
		case s := <-p.queue:
			if err := p.publish(s); err != nil {
				p.logger.WithError(err).WithField("session_id", s.SessionID).Error("MQTT publish failed")
			}
		}
	}
}

func (p *MQTTPublisher) publish(s *contracts.SessionSummary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	topic := FormatTopic(p.topic, s)
	token := p.client.Publish(topic, publishQoS, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.logger.WithFields(map[string]interface{}{
		"topic":      topic,
		"session_id": s.SessionID,
		"bytes":      len(payload),
	}).Debug("Summary published")
	return nil
}

// FormatTopic fills {user_id} and {session_id} placeholders
func FormatTopic(pattern string, s *contracts.SessionSummary) string {
	r := strings.NewReplacer("{user_id}", s.UserID, "{session_id}", s.SessionID)
	return r.Replace(pattern)
}
