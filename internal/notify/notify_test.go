package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vbonduro/infratrack/internal/domain"
)

func TestChannel(t *testing.T) {
	tests := []struct {
		prefix, table, want string
	}{
		{"", domain.TableItems, "infrastructure_changes"},
		{"", domain.TableLocations, "location_changes"},
		{"campus", domain.TableItems, "campus_infrastructure_changes"},
		{"", "audits", "audits_changes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Channel(tt.prefix, tt.table))
	}
}

func TestNopAndSubscriptionFunc(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), domain.TableItems))

	called := false
	sub := SubscriptionFunc(func() error { called = true; return nil })
	assert.NoError(t, sub.Unsubscribe())
	assert.True(t, called)
}
