// Package mqtt carries change notifications over an MQTT broker.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/vbonduro/infratrack/internal/notify"
)

const (
	topicRoot      = "infratrack/changes/"
	defaultQoS     = byte(1)
	connectTimeout = 10 * time.Second
	tokenTimeout   = 5 * time.Second
)

// Connect dials the broker with auto-reconnect enabled.
func Connect(broker, clientID, username, password string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	if username != "" {
		opts.SetUsername(username)
	}
	if password != "" {
		opts.SetPassword(password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// Topic returns the MQTT topic carrying changes for table.
func Topic(prefix, table string) string {
	return topicRoot + notify.Channel(prefix, table)
}

type Feed struct {
	client mqtt.Client
	prefix string
	qos    byte
	logger *slog.Logger
}

func NewFeed(client mqtt.Client, prefix string, logger *slog.Logger) *Feed {
	return &Feed{client: client, prefix: prefix, qos: defaultQoS, logger: logger}
}

func (f *Feed) Publish(_ context.Context, table string) error {
	topic := Topic(f.prefix, table)
	token := f.client.Publish(topic, f.qos, false, []byte(table))
	if err := wait(token); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

func (f *Feed) Subscribe(_ context.Context, table string, fn func()) (notify.Subscription, error) {
	topic := Topic(f.prefix, table)
	token := f.client.Subscribe(topic, f.qos, func(mqtt.Client, mqtt.Message) {
		fn()
	})
	if err := wait(token); err != nil {
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}
	f.logger.Debug("mqtt subscription opened", "topic", topic)

	return notify.SubscriptionFunc(func() error {
		if err := wait(f.client.Unsubscribe(topic)); err != nil {
			return fmt.Errorf("failed to unsubscribe from topic %s: %w", topic, err)
		}
		return nil
	}), nil
}

// Close disconnects from the broker, allowing 250ms for in-flight work.
func (f *Feed) Close() {
	f.client.Disconnect(250)
}

func wait(token mqtt.Token) error {
	if !token.WaitTimeout(tokenTimeout) {
		return fmt.Errorf("timed out after %s", tokenTimeout)
	}
	return token.Error()
}
