package service

import (
	"context"
	"errors"
	"net/mail"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/repository"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// EmployeeService is the only writer of employee records. Every mutation goes
// through it so timestamps and defaults are always applied.
type EmployeeService struct {
	store  repository.Store
	clock  Clock
	logger *zap.Logger
}

// NewEmployeeService creates a new EmployeeService. A nil clock uses UTC wall time.
func NewEmployeeService(store repository.Store, clock Clock, logger *zap.Logger) *EmployeeService {
	if clock == nil {
		clock = realClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{store: store, clock: clock, logger: logger}
}

// List returns employees newest first, narrowed by the equality filters in filter.
func (s *EmployeeService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Employee, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Reason: "unknown status " + string(filter.Status)}
	}

	out, err := s.store.List(ctx, filter)
	if err != nil {
		s.logger.Warn("employee list failed", zap.Error(err))
		return nil, &domain.FetchError{Op: domain.OpList, Err: err}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Get retrieves a single employee.
func (s *EmployeeService) Get(ctx context.Context, id string) (*domain.Employee, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{ID: id}
		}
		s.logger.Warn("employee get failed", zap.String("id", id), zap.Error(err))
		return nil, &domain.FetchError{Op: domain.OpGet, Err: err}
	}
	return e, nil
}

// Create stores a new employee and returns the id assigned by the store.
func (s *EmployeeService) Create(ctx context.Context, req domain.CreateEmployeeRequest) (string, error) {
	e, err := newEmployee(req)
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	id, err := s.store.Insert(ctx, e)
	if err != nil {
		s.logger.Error("employee create failed", zap.Error(err))
		return "", &domain.WriteError{Op: domain.OpCreate, Err: err}
	}

	s.logger.Info("employee created", zap.String("id", id), zap.String("department", e.Department))
	return id, nil
}

// Update merges the non-nil fields of req into the record and refreshes UpdatedAt.
// Concurrent updates of the same record are last-write-wins.
func (s *EmployeeService) Update(ctx context.Context, id string, req domain.UpdateEmployeeRequest) error {
	req, err := normalizeUpdate(req)
	if err != nil {
		return err
	}

	if err := s.store.Patch(ctx, id, req, s.clock.Now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.NotFoundError{ID: id}
		}
		s.logger.Error("employee update failed", zap.String("id", id), zap.Error(err))
		return &domain.WriteError{Op: domain.OpUpdate, Err: err}
	}

	s.logger.Info("employee updated", zap.String("id", id))
	return nil
}

// Delete removes the record permanently. Deleting an unknown id returns a
// *domain.NotFoundError and changes nothing.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.NotFoundError{ID: id}
		}
		s.logger.Error("employee delete failed", zap.String("id", id), zap.Error(err))
		return &domain.WriteError{Op: domain.OpDelete, Err: err}
	}

	s.logger.Info("employee deleted", zap.String("id", id))
	return nil
}

func newEmployee(req domain.CreateEmployeeRequest) (*domain.Employee, error) {
	e := &domain.Employee{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.TrimSpace(req.Email),
		Department:   strings.TrimSpace(req.Department),
		Position:     strings.TrimSpace(req.Position),
		Status:       domain.StatusActive,
		ProfileImage: strings.TrimSpace(req.ProfileImage),
	}
	if req.Status != nil {
		e.Status = *req.Status
	}

	switch {
	case e.FirstName == "":
		return nil, &domain.ValidationError{Field: "first_name", Reason: "required"}
	case e.LastName == "":
		return nil, &domain.ValidationError{Field: "last_name", Reason: "required"}
	case e.Department == "":
		return nil, &domain.ValidationError{Field: "department", Reason: "required"}
	}
	if err := validateEmail(e.Email); err != nil {
		return nil, err
	}
	if !e.Status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Reason: "unknown status " + string(e.Status)}
	}
	return e, nil
}

// normalizeUpdate trims the given fields the way newEmployee does and
// validates them. The caller's strings are not modified.
func normalizeUpdate(req domain.UpdateEmployeeRequest) (domain.UpdateEmployeeRequest, error) {
	if req.IsEmpty() {
		return req, &domain.ValidationError{Field: "body", Reason: "no fields to update"}
	}

	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	req.FirstName = trim(req.FirstName)
	req.LastName = trim(req.LastName)
	req.Email = trim(req.Email)
	req.Department = trim(req.Department)
	req.Position = trim(req.Position)
	req.ProfileImage = trim(req.ProfileImage)

	blank := func(v *string) bool { return v != nil && *v == "" }
	switch {
	case blank(req.FirstName):
		return req, &domain.ValidationError{Field: "first_name", Reason: "must not be empty"}
	case blank(req.LastName):
		return req, &domain.ValidationError{Field: "last_name", Reason: "must not be empty"}
	case blank(req.Department):
		return req, &domain.ValidationError{Field: "department", Reason: "must not be empty"}
	}
	if req.Email != nil {
		if err := validateEmail(*req.Email); err != nil {
			return req, err
		}
	}
	if req.Status != nil && !req.Status.Valid() {
		return req, &domain.ValidationError{Field: "status", Reason: "unknown status " + string(*req.Status)}
	}
	return req, nil
}

func validateEmail(email string) error {
	if email == "" {
		return &domain.ValidationError{Field: "email", Reason: "required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &domain.ValidationError{Field: "email", Reason: "not a valid address"}
	}
	return nil
}
