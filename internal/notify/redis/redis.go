// Package redis carries change notifications over Redis pub/sub.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/vbonduro/infratrack/internal/notify"
)

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

type Feed struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewFeed(client *redis.Client, prefix string, logger *slog.Logger) *Feed {
	return &Feed{client: client, prefix: prefix, logger: logger}
}

func (f *Feed) Publish(ctx context.Context, table string) error {
	if err := f.client.Publish(ctx, notify.Channel(f.prefix, table), table).Err(); err != nil {
		return fmt.Errorf("failed to publish change for %s: %w", table, err)
	}
	return nil
}

// Subscribe opens a dedicated pub/sub connection for table. The subscription is
// confirmed before Subscribe returns.
func (f *Feed) Subscribe(ctx context.Context, table string, fn func()) (notify.Subscription, error) {
	channel := notify.Channel(f.prefix, table)
	ps := f.client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range ps.Channel() {
			fn()
		}
	}()
	f.logger.Debug("redis subscription opened", "channel", channel)

	return notify.SubscriptionFunc(func() error {
		err := ps.Close()
		<-done
		f.logger.Debug("redis subscription closed", "channel", channel)
		return err
	}), nil
}

func (f *Feed) Close() error {
	return f.client.Close()
}
