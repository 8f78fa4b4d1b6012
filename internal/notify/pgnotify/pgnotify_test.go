package pgnotify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
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

func TestPublish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`SELECT pg_notify\(\$1, \$2\)`).
		WithArgs("campus_infrastructure_changes", domain.TableItems).
		WillReturnResult(sqlmock.NewResult(0, 0))

	feed := NewFeed(db, "", "campus", slog.Default())
	require.NoError(t, feed.Publish(context.Background(), domain.TableItems))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`SELECT pg_notify`).
		WithArgs("location_changes", domain.TableLocations).
		WillReturnError(errors.New("connection reset"))

	feed := NewFeed(db, "", "", slog.Default())
	err = feed.Publish(context.Background(), domain.TableLocations)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForwardSkipsReconnectMarkers(t *testing.T) {
	ch := make(chan *pq.Notification, 4)
	var (
		mu    sync.Mutex
		calls int
	)
	fired := make(chan struct{}, 4)
	closeCalls := 0
	sub := forward(ch, func() error {
		closeCalls++
		close(ch)
		return nil
	}, func() {
		mu.Lock()
		calls++
		mu.Unlock()
		fired <- struct{}{}
	})

	ch <- &pq.Notification{Channel: "item_changes", Extra: domain.TableItems}
	ch <- nil
	ch <- &pq.Notification{Channel: "item_changes", Extra: domain.TableItems}

	for i := 0; i < 2; i++ {
		select {
		case <-fired:
		case <-time.After(5 * time.Second):
			t.Fatal("notification was not forwarded")
		}
	}

	require.NoError(t, sub.Unsubscribe())
	assert.Equal(t, 1, closeCalls)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestForwardUnsubscribeReturnsCloseError(t *testing.T) {
	ch := make(chan *pq.Notification)
	sub := forward(ch, func() error {
		close(ch)
		return errors.New("listener already closed")
	}, func() { t.Error("unexpected notification") })

	err := sub.Unsubscribe()
	assert.EqualError(t, err, "listener already closed")
}
