// Package directory holds the list/filter view-model behind the employee
// table. It keeps a private copy of the roster fetched on activation and
// narrows it locally; deletes splice the copy instead of re-fetching, so the
// cache does not see changes made elsewhere until the next activation.
package directory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
)

// AllDepartments disables the department filter.
const AllDepartments = "all"

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Repository is the subset of the employee service the view needs.
type Repository interface {
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Employee, error)
	Delete(ctx context.Context, id string) error
}

type Query struct {
	Search     string `json:"search"`
	Department string `json:"department"`
}

// Matches reports whether e passes both filters of q.
func Matches(e *domain.Employee, q Query) bool {
	if q.Department != "" && q.Department != AllDepartments && e.Department != q.Department {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.FullName()), term)
}

type View struct {
	repo   Repository
	logger *zap.Logger

	mu      sync.Mutex
	state   State
	err     error
	items   []*domain.Employee
	query   Query
	gen     uint64
	cancel  context.CancelFunc
	settled chan struct{}
	// removed holds ids deleted while active, so a fetch that was already
	// in flight cannot bring them back.
	removed map[string]struct{}
}

// Listing is a consistent view of every observable field at one instant.
type Listing struct {
	State       State
	Err         error
	Query       Query
	Employees   []*domain.Employee
	Departments []string
}

func NewView(repo Repository, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{
		repo:   repo,
		logger: logger.With(zap.String("component", "directory")),
		state:  StateIdle,
		query:  Query{Department: AllDepartments},
	}
}

// Activate starts the initial fetch on first use and returns a channel that
// closes when it settles. While active, further calls return the same
// channel without fetching again. The fetch is not bound to ctx's
// cancellation; Deactivate cancels it.
func (v *View) Activate(ctx context.Context) <-chan struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.settled != nil {
		return v.settled
	}

	v.gen++
	gen := v.gen
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	settled := make(chan struct{})

	v.cancel = cancel
	v.settled = settled
	v.state = StateLoading
	v.err = nil
	v.items = nil
	v.removed = make(map[string]struct{})

	go func() {
		defer close(settled)
		items, err := v.repo.List(fetchCtx, domain.ListFilter{})
		v.apply(gen, items, err)
	}()

	return settled
}

// Deactivate cancels an in-flight fetch and forgets the cache and filters.
// A fetch that resolves afterwards is discarded.
func (v *View) Deactivate() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.gen++
	if v.cancel != nil {
		v.cancel()
	}
	v.cancel = nil
	v.settled = nil
	v.state = StateIdle
	v.err = nil
	v.items = nil
	v.removed = nil
	v.query = Query{Department: AllDepartments}
}

func (v *View) apply(gen uint64, items []*domain.Employee, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		v.logger.Debug("dropping stale fetch result", zap.Uint64("generation", gen))
		return
	}
	if err != nil {
		v.logger.Warn("employee fetch failed", zap.Error(err))
		v.state = StateFailed
		v.err = err
		v.items = nil
		return
	}
	v.state = StateReady
	kept := make([]*domain.Employee, 0, len(items))
	for _, e := range items {
		if _, gone := v.removed[e.ID]; !gone {
			kept = append(kept, e)
		}
	}
	v.items = kept
}

func (v *View) SetSearchTerm(term string) {
	v.mu.Lock()
	v.query.Search = term
	v.mu.Unlock()
}

// SetDepartmentFilter accepts AllDepartments or an exact department name.
func (v *View) SetDepartmentFilter(dept string) {
	if dept == "" {
		dept = AllDepartments
	}
	v.mu.Lock()
	v.query.Department = dept
	v.mu.Unlock()
}

func (v *View) Query() Query {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Err returns the failure of the last fetch when State is StateFailed.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Visible returns copies of the cached employees that match the query.
func (v *View) Visible() []*domain.Employee {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible()
}

// Departments lists the distinct departments in the cache, sorted.
func (v *View) Departments() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.departments()
}

// Snapshot reads state, query and rows under a single lock.
func (v *View) Snapshot() Listing {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Listing{
		State:       v.state,
		Err:         v.err,
		Query:       v.query,
		Employees:   v.visible(),
		Departments: v.departments(),
	}
}

func (v *View) visible() []*domain.Employee {
	out := make([]*domain.Employee, 0, len(v.items))
	for _, e := range v.items {
		if Matches(e, v.query) {
			out = append(out, e.Clone())
		}
	}
	return out
}

func (v *View) departments() []string {
	seen := make(map[string]struct{}, len(v.items))
	out := []string{}
	for _, e := range v.items {
		if _, ok := seen[e.Department]; ok || e.Department == "" {
			continue
		}
		seen[e.Department] = struct{}{}
		out = append(out, e.Department)
	}
	sort.Strings(out)
	return out
}

// Delete removes the employee through the repository and, only on success,
// from the cache. A fetch still in flight will not restore it.
func (v *View) Delete(ctx context.Context, id string) error {
	if err := v.repo.Delete(ctx, id); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.removed != nil {
		v.removed[id] = struct{}{}
	}
	for i, e := range v.items {
		if e.ID == id {
			v.items = append(v.items[:i:i], v.items[i+1:]...)
			break
		}
	}
	return nil
}
