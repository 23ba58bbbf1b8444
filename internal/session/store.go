// Package session tracks the signed-in identity of one client workspace.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth"
)

var (
	ErrAlreadyStarted = errors.New("session: store already started")
	ErrStopped        = errors.New("session: store stopped")
)

// Snapshot is the observable session state. Loading is true until the
// provider has reported the initial identity.
type Snapshot struct {
	User    *auth.User `json:"user"`
	Loading bool       `json:"loading"`
}

func (s Snapshot) Authenticated() bool {
	return !s.Loading && s.User != nil
}

// Watcher is implemented by Store and consumed by the gate.
type Watcher interface {
	Watch(ctx context.Context) <-chan Snapshot
}

// Store holds the current session. It subscribes to the provider once on
// Start and unsubscribes on Stop; after Stop the snapshot never changes.
type Store struct {
	provider auth.Subscriber
	logger   *zap.Logger

	mu          sync.Mutex
	snap        Snapshot
	started     bool
	stopped     bool
	unsubscribe func()
	ready       chan struct{}
	done        chan struct{}
	isReady     bool
	watchers    map[chan Snapshot]struct{}
}

func New(provider auth.Subscriber, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		provider: provider,
		logger:   logger.With(zap.String("component", "session")),
		snap:     Snapshot{Loading: true},
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
		watchers: make(map[chan Snapshot]struct{}),
	}
}

// Start registers the store's single listener with the provider.
func (s *Store) Start() error {
	s.mu.Lock()
	switch {
	case s.stopped:
		s.mu.Unlock()
		return ErrStopped
	case s.started:
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	unsubscribe := s.provider.Subscribe(s.onUser)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		unsubscribe()
		return ErrStopped
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return nil
}

// Stop freezes the snapshot, releases the provider subscription and closes
// every watch channel. It is safe to call more than once.
func (s *Store) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.done)
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	for ch := range s.watchers {
		delete(s.watchers, ch)
		close(ch)
	}
	s.mu.Unlock()

	// Outside mu: the provider may be waiting to deliver into onUser.
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Store) onUser(u *auth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	s.snap = Snapshot{User: u, Loading: false}
	if !s.isReady {
		s.isReady = true
		close(s.ready)
		s.logger.Debug("session resolved", zap.Bool("authenticated", u != nil))
	}
	for ch := range s.watchers {
		offer(ch, s.snap)
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Store) CurrentUser() *auth.User {
	return s.Snapshot().User
}

func (s *Store) Loading() bool {
	return s.Snapshot().Loading
}

// Ready is closed once the first provider notification has been applied.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Watch returns a channel holding the latest snapshot. The current snapshot
// is available immediately; a newer snapshot replaces an unread one. The
// channel closes when ctx is done or the store stops.
func (s *Store) Watch(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	ch <- s.snap
	if s.stopped {
		close(ch)
		s.mu.Unlock()
		return ch
	}
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}()
	return ch
}

// offer replaces any unread value in ch. Callers hold s.mu, which makes them
// the only sender.
func offer(ch chan Snapshot, snap Snapshot) {
	select {
	case <-ch:
	default:
	}
	ch <- snap
}
