package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/GoSim-25-26J-441/go-staff-dashboard/internal/api/http"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth"
	authhttp "github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth/http"
	authmw "github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth/middleware"
	directoryhttp "github.com/GoSim-25-26J-441/go-staff-dashboard/internal/directory/http"
	employeeshttp "github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/http"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/service"
	gatehttp "github.com/GoSim-25-26J-441/go-staff-dashboard/internal/gate/http"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/workspace"
)

const defaultSessionWait = 3 * time.Second

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	// TrustedProxies may set the client address used for sign-in
	// throttling. Empty trusts none.
	TrustedProxies []string
	SecureCookie   bool
	Registry       *workspace.Registry
	Employees      *service.EmployeeService
	Verifier       auth.TokenVerifier
	Probes         map[string]httpapi.Probe
	Gatherer       prometheus.Gatherer
	Logger         *zap.Logger
	// SessionWait bounds how long data endpoints wait for a new workspace
	// session to resolve.
	SessionWait time.Duration
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	logger := dep.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	wait := dep.SessionWait
	if wait == 0 {
		wait = defaultSessionWait
	}

	r := gin.New()
	if err := r.SetTrustedProxies(dep.TrustedProxies); err != nil {
		logger.Warn("ignoring invalid trusted proxies", zap.Strings("proxies", dep.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(logger))

	if len(dep.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     dep.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.WorkspaceHeader, "X-Request-Id"},
			ExposeHeaders:    []string{middleware.WorkspaceHeader, "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Probes)
	healthHandler.RegisterRoutes(r)

	if dep.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(dep.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.WorkspaceMiddleware(dep.Registry, dep.SecureCookie))

	authhttp.New(logger, dep.Registry.Throttle()).Register(api.Group("/auth"))
	gatehttp.New().Register(api.Group("/navigate"))

	employees := api.Group("/employees")
	employees.Use(middleware.AwaitSession(wait), authmw.RequireUser(dep.Verifier))
	employeeshttp.New(dep.Employees, logger).Register(employees)

	directory := api.Group("/directory")
	directory.Use(middleware.AwaitSession(wait))
	directoryhttp.New(logger).Register(directory)

	return r
}
