// Package workspace owns the per-client state of the dashboard: one identity
// client, session store and directory view per browser.
package workspace

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/directory"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/metrics"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/session"
)

type Workspace struct {
	ID        string
	Auth      *auth.Client
	Session   *session.Store
	Directory *directory.View

	mu       sync.Mutex
	lastSeen time.Time
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.lastSeen)
}

func (w *Workspace) close() {
	w.Directory.Deactivate()
	w.Session.Stop()
}

type Options struct {
	IdleTTL     time.Duration
	Backend     auth.Backend
	Tokens      auth.TokenStore
	TokenTTL    time.Duration
	SignInRate  float64
	SignInBurst int
	Employees   directory.Repository
	Metrics     *metrics.WorkspaceMetrics
	Logger      *zap.Logger
	Now         func() time.Time
}

// Registry maps workspace ids to live workspaces.
type Registry struct {
	opts     Options
	logger   *zap.Logger
	throttle *auth.Throttle

	mu     sync.Mutex
	items  map[string]*Workspace
	closed bool
}

func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tokens == nil {
		opts.Tokens = auth.NewMemoryTokenStore()
	}
	r := &Registry{
		opts:   opts,
		logger: opts.Logger.With(zap.String("component", "workspace")),
		items:  make(map[string]*Workspace),
	}
	if opts.SignInRate > 0 {
		r.throttle = auth.NewThrottle(opts.SignInRate, opts.SignInBurst)
	}
	return r
}

// Throttle is the sign-in budget shared by every workspace, or nil when
// SignInRate is unset.
func (r *Registry) Throttle() *auth.Throttle {
	return r.throttle
}

// Open returns the workspace for id, creating it when missing. Ids that are
// not UUIDs are replaced by a fresh one, so callers must use the returned ID.
func (r *Registry) Open(id string) (*Workspace, error) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	now := r.opts.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if ws, ok := r.items[id]; ok {
		ws.touch(now)
		return ws, nil
	}

	ws := r.build(id)
	if err := ws.Session.Start(); err != nil {
		return nil, err
	}
	ws.touch(now)
	r.items[id] = ws
	r.report()
	r.logger.Debug("workspace opened", zap.String("workspace_id", id))
	return ws, nil
}

// Get returns an existing workspace without creating one.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.items[id]
	if ok {
		ws.touch(r.opts.Now())
	}
	return ws, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Sweep stops and forgets workspaces idle for longer than IdleTTL and
// drops sign-in buckets unused for as long.
func (r *Registry) Sweep() int {
	r.throttle.Prune(r.opts.IdleTTL)

	now := r.opts.Now()

	r.mu.Lock()
	var idle []*Workspace
	for id, ws := range r.items {
		if ws.idleSince(now) > r.opts.IdleTTL {
			idle = append(idle, ws)
			delete(r.items, id)
		}
	}
	r.report()
	r.mu.Unlock()

	for _, ws := range idle {
		ws.close()
		if r.opts.Metrics != nil {
			r.opts.Metrics.Evicted.Inc()
		}
		r.logger.Debug("workspace evicted", zap.String("workspace_id", ws.ID))
	}
	return len(idle)
}

// Close stops every workspace. Open fails afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Workspace)
	r.closed = true
	r.report()
	r.mu.Unlock()

	for _, ws := range items {
		ws.close()
	}
}

func (r *Registry) build(id string) *Workspace {
	logger := r.opts.Logger.With(zap.String("workspace_id", id))

	client := auth.NewClient(r.opts.Backend, auth.ClientOptions{
		Key:      id,
		Tokens:   r.opts.Tokens,
		TokenTTL: r.opts.TokenTTL,
		Throttle: r.throttle,
		Logger:   logger,
	})
	return &Workspace{
		ID:        id,
		Auth:      client,
		Session:   session.New(client, logger),
		Directory: directory.NewView(r.opts.Employees, logger),
	}
}

// report must be called with r.mu held.
func (r *Registry) report() {
	if r.opts.Metrics != nil {
		r.opts.Metrics.Active.Set(float64(len(r.items)))
	}
}
