package domain

import (
	"strings"
	"time"
)

// Status is the employment status of a directory entry.
type Status string

const (
	StatusActive     Status = "Active"
	StatusOnLeave    Status = "On Leave"
	StatusTerminated Status = "Terminated"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOnLeave, StatusTerminated:
		return true
	}
	return false
}

// Employee is a single record of the employee collection.
// ID, CreatedAt and UpdatedAt are assigned by the repository.
type Employee struct {
	ID           string    `json:"id" firestore:"-"`
	FirstName    string    `json:"first_name" firestore:"firstName"`
	LastName     string    `json:"last_name" firestore:"lastName"`
	Email        string    `json:"email" firestore:"email"`
	Department   string    `json:"department" firestore:"department"`
	Position     string    `json:"position" firestore:"position"`
	Status       Status    `json:"status" firestore:"status"`
	ProfileImage string    `json:"profile_image,omitempty" firestore:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt"`
}

// FullName joins first and last name with a single space.
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Clone returns a copy that shares nothing with e.
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// ListFilter holds server-side equality filters. Zero values mean "no filter".
type ListFilter struct {
	Department string
	Status     Status
}

// IsZero reports whether no filter is set.
func (f ListFilter) IsZero() bool {
	return f.Department == "" && f.Status == ""
}

// CreateEmployeeRequest represents data needed to create a new employee.
// Status is optional and defaults to StatusActive.
type CreateEmployeeRequest struct {
	FirstName    string
	LastName     string
	Email        string
	Department   string
	Position     string
	Status       *Status
	ProfileImage string
}

// UpdateEmployeeRequest represents a partial update. Nil fields are left untouched.
type UpdateEmployeeRequest struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Department   *string
	Position     *string
	Status       *Status
	ProfileImage *string
}

// IsEmpty reports whether the request changes no field.
func (r UpdateEmployeeRequest) IsEmpty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Email == nil &&
		r.Department == nil && r.Position == nil && r.Status == nil && r.ProfileImage == nil
}

// ApplyTo merges the non-nil fields of r into e and stamps UpdatedAt.
// UpdatedAt never goes below CreatedAt.
func (r UpdateEmployeeRequest) ApplyTo(e *Employee, now time.Time) {
	if r.FirstName != nil {
		e.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		e.LastName = *r.LastName
	}
	if r.Email != nil {
		e.Email = *r.Email
	}
	if r.Department != nil {
		e.Department = *r.Department
	}
	if r.Position != nil {
		e.Position = *r.Position
	}
	if r.Status != nil {
		e.Status = *r.Status
	}
	if r.ProfileImage != nil {
		e.ProfileImage = *r.ProfileImage
	}
	if now.Before(e.CreatedAt) {
		now = e.CreatedAt
	}
	e.UpdatedAt = now
}
