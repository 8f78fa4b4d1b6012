package redis

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vbonduro/infratrack/internal/domain"
	"github.com/vbonduro/infratrack/internal/notify"
)

var _ notify.Feed = (*Feed)(nil)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// unreachable points at a port nothing listens on.
const unreachable = "127.0.0.1:1"

func setupTestFeed(t *testing.T, prefix string) (*miniredis.Miniredis, *Feed) {
	t.Helper()
	mr := miniredis.RunT(t)
	feed := NewFeed(NewClient(mr.Addr(), "", 0), prefix, slog.Default())
	t.Cleanup(func() { _ = feed.Close() })
	return mr, feed
}

func TestFeedPublishSubscribe(t *testing.T) {
	_, feed := setupTestFeed(t, "campus")
	ctx := context.Background()

	fired := make(chan struct{}, 4)
	sub, err := feed.Subscribe(ctx, domain.TableItems, func() { fired <- struct{}{} })
	require.NoError(t, err)

	require.NoError(t, feed.Publish(ctx, domain.TableLocations))
	require.NoError(t, feed.Publish(ctx, domain.TableItems))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("item change was not delivered")
	}

	require.NoError(t, sub.Unsubscribe())
	assert.Empty(t, fired, "location change must not reach the items subscriber")

	// Publishing after unsubscribe reaches nobody.
	require.NoError(t, feed.Publish(ctx, domain.TableItems))
	assert.Empty(t, fired)
}

func TestFeedPublishUsesPrefixedChannel(t *testing.T) {
	mr, feed := setupTestFeed(t, "campus")
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, domain.TableLocations, func() {})
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()

	assert.Equal(t, []string{"campus_location_changes"}, mr.PubSubChannels("*"))
}

func TestFeedUnreachableServer(t *testing.T) {
	client := NewClient(unreachable, "", 0)
	feed := NewFeed(client, "", slog.Default())
	t.Cleanup(func() { _ = feed.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := feed.Publish(ctx, domain.TableItems)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), domain.TableItems)

	sub, err := feed.Subscribe(ctx, domain.TableLocations, func() {})
	assert.Error(t, err)
	assert.Nil(t, sub)
	assert.Contains(t, err.Error(), "location_changes")
}
