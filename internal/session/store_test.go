package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth"
)

// fakeProvider delivers notifications synchronously when the test emits.
type fakeProvider struct {
	mu         sync.Mutex
	listeners  map[int]auth.Listener
	next       int
	subscribed int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{listeners: make(map[int]auth.Listener)}
}

func (p *fakeProvider) Subscribe(fn auth.Listener) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next
	p.next++
	p.subscribed++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *fakeProvider) emit(u *auth.User) {
	p.mu.Lock()
	ls := make([]auth.Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		ls = append(ls, l)
	}
	p.mu.Unlock()
	for _, l := range ls {
		l(u)
	}
}

func (p *fakeProvider) active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

var ann = &auth.User{UID: "u1", Email: "ann@example.com"}

func TestStore_LoadingFlipsOnceOnFirstNotification(t *testing.T) {
	p := newFakeProvider()
	s := New(p, nil)

	assert.True(t, s.Loading())
	require.NoError(t, s.Start())
	assert.True(t, s.Loading(), "start alone must not resolve the session")
	assert.Equal(t, 1, p.subscribed)

	select {
	case <-s.Ready():
		t.Fatal("ready before first notification")
	default:
	}

	p.emit(nil)
	assert.False(t, s.Loading())
	assert.Nil(t, s.CurrentUser())
	<-s.Ready()

	p.emit(ann)
	assert.Equal(t, Snapshot{User: ann, Loading: false}, s.Snapshot())
	assert.True(t, s.Snapshot().Authenticated())

	p.emit(nil)
	assert.False(t, s.Loading())
	assert.Nil(t, s.CurrentUser())
}

func TestStore_StartTwice(t *testing.T) {
	p := newFakeProvider()
	s := New(p, nil)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrAlreadyStarted)
	assert.Equal(t, 1, p.subscribed)
}

func TestStore_StopUnsubscribesAndFreezes(t *testing.T) {
	p := newFakeProvider()
	s := New(p, nil)
	require.NoError(t, s.Start())
	p.emit(ann)

	s.Stop()
	s.Stop()
	assert.Equal(t, 0, p.active())

	// A delivery already in flight when Stop ran is ignored.
	s.onUser(nil)
	assert.Equal(t, ann, s.CurrentUser())

	assert.ErrorIs(t, s.Start(), ErrStopped)
}

func TestStore_StopBeforeFirstNotification(t *testing.T) {
	p := newFakeProvider()
	s := New(p, nil)
	require.NoError(t, s.Start())
	s.Stop()

	p.emit(ann)
	assert.True(t, s.Loading())
	assert.Nil(t, s.CurrentUser())
}

func receive(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "watch channel closed")
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func TestStore_WatchKeepsLatestOnly(t *testing.T) {
	p := newFakeProvider()
	s := New(p, nil)
	require.NoError(t, s.Start())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := s.Watch(ctx)

	assert.Equal(t, Snapshot{Loading: true}, receive(t, ch))

	p.emit(nil)
	p.emit(ann)
	assert.Equal(t, Snapshot{User: ann}, receive(t, ch))

	select {
	case snap := <-ch:
		t.Fatalf("stale snapshot delivered: %+v", snap)
	default:
	}
}

func TestStore_WatchClosesOnCancelAndStop(t *testing.T) {
	s := New(newFakeProvider(), nil)
	require.NoError(t, s.Start())

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Watch(ctx)
	receive(t, ch)
	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	ch2 := s.Watch(context.Background())
	receive(t, ch2)
	s.Stop()
	_, ok := <-ch2
	assert.False(t, ok)

	// Watching a stopped store yields the frozen snapshot, then closes.
	ch3 := s.Watch(context.Background())
	assert.Equal(t, Snapshot{Loading: true}, receive(t, ch3))
	_, ok = <-ch3
	assert.False(t, ok)
}

func TestStore_WithAuthClient(t *testing.T) {
	backend := auth.NewLocalBackend("key", time.Hour, false)
	require.NoError(t, backend.Seed([]string{"ann@example.com:secret1"}))
	client := auth.NewClient(backend, auth.ClientOptions{Key: "ws"})

	s := New(client, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("session never resolved")
	}
	assert.Nil(t, s.CurrentUser())

	u, err := client.SignIn(context.Background(), "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u, s.CurrentUser())
}
