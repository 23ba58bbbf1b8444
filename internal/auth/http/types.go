package http

import (
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth"
)

// Handler serves the identity endpoints of the caller's workspace.
type Handler struct {
	logger *zap.Logger
	// throttle limits sign-in and sign-up attempts per remote address.
	throttle *auth.Throttle
}

func New(logger *zap.Logger, throttle *auth.Throttle) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger, throttle: throttle}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
