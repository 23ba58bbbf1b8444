package repository

import (
	"context"
	"errors"
	"time"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/metrics"
)

// InstrumentedStore records per-operation outcome counters and latencies.
type InstrumentedStore struct {
	next    Store
	backend string
	m       *metrics.StoreMetrics
}

func NewInstrumentedStore(next Store, backend string, m *metrics.StoreMetrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend, m: m}
}

func (s *InstrumentedStore) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Employee, error) {
	start := time.Now()
	out, err := s.next.List(ctx, filter)
	s.observe(domain.OpList, start, err)
	return out, err
}

func (s *InstrumentedStore) Get(ctx context.Context, id string) (*domain.Employee, error) {
	start := time.Now()
	e, err := s.next.Get(ctx, id)
	s.observe(domain.OpGet, start, err)
	return e, err
}

func (s *InstrumentedStore) Insert(ctx context.Context, e *domain.Employee) (string, error) {
	start := time.Now()
	id, err := s.next.Insert(ctx, e)
	s.observe(domain.OpCreate, start, err)
	return id, err
}

func (s *InstrumentedStore) Patch(ctx context.Context, id string, req domain.UpdateEmployeeRequest, now time.Time) error {
	start := time.Now()
	err := s.next.Patch(ctx, id, req, now)
	s.observe(domain.OpUpdate, start, err)
	return err
}

func (s *InstrumentedStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.observe(domain.OpDelete, start, err)
	return err
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	result := metrics.ResultOK
	switch {
	case errors.Is(err, domain.ErrNotFound):
		result = metrics.ResultNotFound
	case err != nil:
		result = metrics.ResultError
	}
	s.m.Observe(s.backend, op, result, time.Since(start))
}
