// Package pgnotify carries change notifications over PostgreSQL LISTEN/NOTIFY.
package pgnotify

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/vbonduro/infratrack/internal/notify"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
)

type Feed struct {
	db     *sql.DB
	dsn    string
	prefix string
	logger *slog.Logger
}

// NewFeed publishes through db and opens one listener connection per
// subscription using dsn.
func NewFeed(db *sql.DB, dsn, prefix string, logger *slog.Logger) *Feed {
	return &Feed{db: db, dsn: dsn, prefix: prefix, logger: logger}
}

func (f *Feed) Publish(ctx context.Context, table string) error {
	channel := notify.Channel(f.prefix, table)
	if _, err := f.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, channel, table); err != nil {
		return fmt.Errorf("failed to notify %s: %w", channel, err)
	}
	return nil
}

func (f *Feed) Subscribe(_ context.Context, table string, fn func()) (notify.Subscription, error) {
	channel := notify.Channel(f.prefix, table)
	listener := pq.NewListener(f.dsn, minReconnectInterval, maxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				f.logger.Warn("postgres listener event", "channel", channel, "event", ev, "error", err)
			}
		})
	if err := listener.Listen(channel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", channel, err)
	}

	f.logger.Debug("postgres listener opened", "channel", channel)
	return forward(listener.Notify, listener.Close, fn), nil
}

// forward calls fn for every notification received on ch until ch is closed.
// Closing the subscription runs closeFn, which must close ch, and waits for
// the forwarding goroutine to exit.
func forward(ch <-chan *pq.Notification, closeFn func() error, fn func()) notify.Subscription {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := range ch {
			// A nil notification marks a re-established connection, not a change.
			if n == nil {
				continue
			}
			fn()
		}
	}()

	return notify.SubscriptionFunc(func() error {
		err := closeFn()
		<-done
		return err
	})
}
