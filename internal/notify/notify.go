// Package notify carries "something changed" signals for the backing tables.
// Notifications have no payload subscribers rely on: a receiver only learns
// that a table changed and is expected to re-read it.
package notify

import (
	"context"

	"github.com/vbonduro/infratrack/internal/domain"
)

// Publisher announces that a table changed.
type Publisher interface {
	Publish(ctx context.Context, table string) error
}

// Subscriber delivers change signals for a table to fn until the returned
// Subscription is cancelled. fn may be called from any goroutine.
type Subscriber interface {
	Subscribe(ctx context.Context, table string, fn func()) (Subscription, error)
}

type Subscription interface {
	Unsubscribe() error
}

// Feed is a transport that can both publish and subscribe.
type Feed interface {
	Publisher
	Subscriber
}

// Channel returns the channel (or topic) name carrying changes for table.
func Channel(prefix, table string) string {
	var name string
	switch table {
	case domain.TableItems:
		name = "infrastructure_changes"
	case domain.TableLocations:
		name = "location_changes"
	default:
		name = table + "_changes"
	}
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// Nop is a Publisher that drops every notification.
type Nop struct{}

func (Nop) Publish(context.Context, string) error { return nil }

// SubscriptionFunc adapts a plain function to Subscription.
type SubscriptionFunc func() error

func (f SubscriptionFunc) Unsubscribe() error { return f() }
