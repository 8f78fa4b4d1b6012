package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/infratrack/internal/domain"
	"github.com/vbonduro/infratrack/internal/notify"
	"github.com/vbonduro/infratrack/internal/store"
)

// locationRepository is the subset of store.LocationStore that InfrastructureService requires.
type locationRepository interface {
	Create(ctx context.Context, in domain.NewLocation) (*domain.Location, error)
	List(ctx context.Context) ([]*domain.Location, error)
}

// itemRepository is the subset of store.ItemStore that InfrastructureService requires.
type itemRepository interface {
	Create(ctx context.Context, in domain.NewItem, lastUpdated time.Time) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
	Update(ctx context.Context, id string, u domain.ItemUpdate, lastUpdated time.Time) error
}

// State is a snapshot of the synchronized view. Error is empty when unset.
type State struct {
	Pavilions domain.Pavilions `json:"pavilions"`
	Loading   bool             `json:"loading"`
	Error     string           `json:"error,omitempty"`
}

// Option configures an InfrastructureService.
type Option func(*InfrastructureService)

// WithClock replaces time.Now as the source of item timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *InfrastructureService) { s.now = now }
}

// InfrastructureService keeps a per-pavilion view of the locations and items
// tables. Every write and every change notification is followed by a full
// re-read of both tables; there is no incremental merge.
type InfrastructureService struct {
	locations locationRepository
	items     itemRepository
	feed      notify.Subscriber
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	state State

	watchMu  sync.Mutex
	watchers map[uint64]func(State)
	nextID   uint64

	subMu sync.Mutex
	subs  []notify.Subscription
}

// NewInfrastructureService builds a service over the two stores. feed may be
// nil, in which case Start loads once and never receives change signals.
func NewInfrastructureService(
	locations locationRepository,
	items itemRepository,
	feed notify.Subscriber,
	logger *slog.Logger,
	opts ...Option,
) *InfrastructureService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &InfrastructureService{
		locations: locations,
		items:     items,
		feed:      feed,
		logger:    logger,
		now:       time.Now,
		state:     State{Pavilions: domain.NewPavilions(), Loading: true},
		watchers:  make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot. The returned value shares no slices
// that the service will mutate: state is only ever replaced wholesale.
func (s *InfrastructureService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Start performs the initial load and subscribes to both tables. Each change
// signal triggers a full reload. Subscription failures are returned after any
// already-opened subscription has been closed.
func (s *InfrastructureService) Start(ctx context.Context) error {
	if s.feed != nil {
		// Loads triggered by notifications outlive the caller's request.
		bg := context.WithoutCancel(ctx)
		for _, table := range []string{domain.TableItems, domain.TableLocations} {
			sub, err := s.feed.Subscribe(ctx, table, func() {
				s.logger.Debug("change notification received", "table", table)
				_ = s.load(bg)
			})
			if err != nil {
				s.Stop()
				return fmt.Errorf("failed to subscribe to %s: %w", table, err)
			}
			s.subMu.Lock()
			s.subs = append(s.subs, sub)
			s.subMu.Unlock()
		}
	}

	_ = s.load(ctx)
	return nil
}

// Stop tears down both subscriptions. Loads already running are not cancelled.
func (s *InfrastructureService) Stop() {
	s.subMu.Lock()
	subs := s.subs
	s.subs = nil
	s.subMu.Unlock()

	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			s.logger.Error("failed to unsubscribe", "error", err)
		}
	}
}

// Refresh re-reads both tables and returns the load error, if any. The error
// is also recorded in the state.
func (s *InfrastructureService) Refresh(ctx context.Context) error {
	return s.load(ctx)
}

// Watch registers fn to receive every new state. The returned func removes it.
func (s *InfrastructureService) Watch(fn func(State)) (cancel func()) {
	s.watchMu.Lock()
	s.nextID++
	id := s.nextID
	s.watchers[id] = fn
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
	}
}

func (s *InfrastructureService) AddItem(ctx context.Context, in domain.NewItem) (*domain.Item, error) {
	item, err := s.items.Create(ctx, in, s.now())
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.logger.Info("item added", "item_id", item.ID, "name", item.Name)
	_ = s.load(ctx)
	return item, nil
}

func (s *InfrastructureService) UpdateItem(ctx context.Context, id string, u domain.ItemUpdate) error {
	if err := s.items.Update(ctx, id, u, s.now()); err != nil {
		// An unknown id is the caller's mistake and leaves shared state alone.
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Info("update of unknown item ignored", "item_id", id)
			return err
		}
		s.fail(err)
		return err
	}
	s.logger.Info("item updated", "item_id", id)
	_ = s.load(ctx)
	return nil
}

func (s *InfrastructureService) AddLocation(ctx context.Context, in domain.NewLocation) (*domain.Location, error) {
	loc, err := s.locations.Create(ctx, in)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.logger.Info("location added", "location_id", loc.ID, "name", loc.Name, "pavilion", loc.Pavilion)
	_ = s.load(ctx)
	return loc, nil
}

// IsNotProvisioned reports whether err means the backing tables have not
// been created yet.
func IsNotProvisioned(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, store.ErrTableMissing) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, `relation "infrastructure_items" does not exist`) ||
		strings.Contains(msg, `relation "locations" does not exist`)
}

func (s *InfrastructureService) load(ctx context.Context) error {
	var (
		locations []*domain.Location
		items     []*domain.Item
		locErr    error
		itemErr   error
	)

	// Both fetches always run to completion; neither cancels the other. Their
	// errors are kept apart so a provisioning-absent error can win below.
	var g errgroup.Group
	g.Go(func() error {
		locations, locErr = s.locations.List(ctx)
		return nil
	})
	g.Go(func() error {
		items, itemErr = s.items.List(ctx)
		return nil
	})
	_ = g.Wait()

	if IsNotProvisioned(itemErr) || IsNotProvisioned(locErr) {
		s.logger.Info("tables not provisioned, showing empty state")
		s.set(func(State) State {
			return State{Pavilions: domain.NewPavilions()}
		})
		return nil
	}

	err := itemErr
	if err == nil {
		err = locErr
	}
	if err != nil {
		s.logger.Error("failed to load infrastructure", "error", err)
		s.set(func(st State) State {
			return State{Pavilions: st.Pavilions, Error: err.Error()}
		})
		return err
	}

	pavilions := domain.BuildPavilions(locations, items)
	s.logger.Debug("infrastructure loaded", "locations", len(locations), "items", len(items))
	s.set(func(State) State {
		return State{Pavilions: pavilions}
	})
	return nil
}

func (s *InfrastructureService) fail(err error) {
	s.logger.Error("mutation failed", "error", err)
	s.set(func(st State) State {
		return State{Pavilions: st.Pavilions, Loading: st.Loading, Error: err.Error()}
	})
}

// set replaces the state with next(current) and notifies watchers.
func (s *InfrastructureService) set(next func(State) State) {
	s.mu.Lock()
	s.state = next(s.state)
	st := s.state
	s.mu.Unlock()

	s.watchMu.Lock()
	fns := make([]func(State), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
