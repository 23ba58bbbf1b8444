package http

import (
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/service"
)

// Handler bundles the dependencies for employee HTTP endpoints.
type Handler struct {
	employees *service.EmployeeService
	logger    *zap.Logger
}

func New(employees *service.EmployeeService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{employees: employees, logger: logger}
}

type createReq struct {
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Email        string         `json:"email"`
	Department   string         `json:"department"`
	Position     string         `json:"position"`
	Status       *domain.Status `json:"status,omitempty"`
	ProfileImage string         `json:"profile_image,omitempty"`
}

func (r createReq) toDomain() domain.CreateEmployeeRequest {
	return domain.CreateEmployeeRequest{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Department:   r.Department,
		Position:     r.Position,
		Status:       r.Status,
		ProfileImage: r.ProfileImage,
	}
}

type updateReq struct {
	FirstName    *string        `json:"first_name,omitempty"`
	LastName     *string        `json:"last_name,omitempty"`
	Email        *string        `json:"email,omitempty"`
	Department   *string        `json:"department,omitempty"`
	Position     *string        `json:"position,omitempty"`
	Status       *domain.Status `json:"status,omitempty"`
	ProfileImage *string        `json:"profile_image,omitempty"`
}

func (r updateReq) toDomain() domain.UpdateEmployeeRequest {
	return domain.UpdateEmployeeRequest{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Department:   r.Department,
		Position:     r.Position,
		Status:       r.Status,
		ProfileImage: r.ProfileImage,
	}
}
