package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/GoSim-25-26J-441/go-staff-dashboard/internal/api/http"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/repository"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/service"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/metrics"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/workspace"
)

type testApp struct {
	router   *gin.Engine
	backend  *auth.LocalBackend
	registry *workspace.Registry
}

func setupApp(t *testing.T, tweaks ...func(*workspace.Options)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backend := auth.NewLocalBackend("test-key", time.Hour, true)
	require.NoError(t, backend.Seed([]string{"ann@example.com:secret1"}))

	reg := prometheus.NewRegistry()
	store := repository.NewInstrumentedStore(repository.NewRedisRepository(client), "redis", metrics.NewStoreMetrics(reg))
	employees := service.NewEmployeeService(store, nil, nil)

	opts := workspace.Options{
		IdleTTL:   time.Minute,
		Backend:   backend,
		Tokens:    NewTokenStore(client),
		TokenTTL:  time.Hour,
		Employees: employees,
		Metrics:   metrics.NewWorkspaceMetrics(reg),
	}
	for _, tweak := range tweaks {
		tweak(&opts)
	}
	registry := workspace.NewRegistry(opts)
	t.Cleanup(registry.Close)

	r := BuildRouter(RouterDeps{
		ServiceName:    "staff-dashboard",
		Version:        "test",
		AllowedOrigins: []string{"http://localhost:5173"},
		Registry:       registry,
		Employees:      employees,
		Verifier:       backend,
		Probes: map[string]httpapi.Probe{
			"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
		},
		Gatherer: reg,
	})
	return &testApp{router: r, backend: backend, registry: registry}
}

type response struct {
	code      int
	workspace string
	body      map[string]any
}

func (a *testApp) call(t *testing.T, method, path, workspaceID string, body any, header ...string) response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if workspaceID != "" {
		req.Header.Set(middleware.WorkspaceHeader, workspaceID)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	resp := response{code: w.Code, workspace: w.Header().Get(middleware.WorkspaceHeader)}
	if ct := w.Header().Get("Content-Type"); len(ct) >= 16 && ct[:16] == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp.body))
	}
	return resp
}

func decision(t *testing.T, r response) map[string]any {
	t.Helper()
	require.Equal(t, http.StatusOK, r.code)
	d, ok := r.body["decision"].(map[string]any)
	require.True(t, ok, "missing decision in %v", r.body)
	return d
}

func TestRouter_SignInFlow(t *testing.T) {
	app := setupApp(t)

	// The first protected call creates the workspace and waits for its session.
	first := app.call(t, http.MethodGet, "/api/v1/directory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, first.code)
	ws := first.workspace
	require.NotEmpty(t, ws)

	d := decision(t, app.call(t, http.MethodGet, "/api/v1/navigate?path=/employees/add", ws, nil))
	assert.Equal(t, "redirect", d["action"])
	assert.Equal(t, "/login", d["redirect"])

	bad := app.call(t, http.MethodPost, "/api/v1/auth/signin", ws, map[string]string{"email": "ann@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, bad.code)
	assert.Equal(t, "Invalid email or password.", bad.body["error"])

	signIn := app.call(t, http.MethodPost, "/api/v1/auth/signin", ws, map[string]string{"email": "ann@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, signIn.code)

	d = decision(t, app.call(t, http.MethodGet, "/api/v1/navigate?path=/employees/add", ws, nil))
	assert.Equal(t, "render", d["action"])
	assert.Equal(t, "employee-add", d["route"])
	assert.Equal(t, true, d["shell"])

	d = decision(t, app.call(t, http.MethodGet, "/api/v1/navigate?path=/login", ws, nil))
	assert.Equal(t, "/", d["redirect"])

	sess := app.call(t, http.MethodGet, "/api/v1/auth/session", ws, nil)
	require.Equal(t, http.StatusOK, sess.code)
	assert.Equal(t, false, sess.body["session"].(map[string]any)["loading"])

	out := app.call(t, http.MethodPost, "/api/v1/auth/signout", ws, nil)
	require.Equal(t, http.StatusOK, out.code)

	d = decision(t, app.call(t, http.MethodGet, "/api/v1/navigate?path=/employees", ws, nil))
	assert.Equal(t, "/login", d["redirect"])
}

func TestRouter_DirectoryFlow(t *testing.T) {
	app := setupApp(t)

	ws := app.call(t, http.MethodGet, "/api/v1/directory", "", nil).workspace
	require.Equal(t, http.StatusOK, app.call(t, http.MethodPost, "/api/v1/auth/signin", ws,
		map[string]string{"email": "ann@example.com", "password": "secret1"}).code)

	for _, e := range []map[string]string{
		{"first_name": "Ann", "last_name": "Lee", "email": "ann.lee@example.com", "department": "HR"},
		{"first_name": "Bob", "last_name": "Stone", "email": "bob@example.com", "department": "Eng"},
	} {
		created := app.call(t, http.MethodPost, "/api/v1/employees", ws, e)
		require.Equal(t, http.StatusCreated, created.code, created.body)
	}

	activated := app.call(t, http.MethodPost, "/api/v1/directory?wait=true", ws, nil)
	require.Equal(t, http.StatusAccepted, activated.code)
	assert.Equal(t, "ready", activated.body["state"])
	assert.Len(t, activated.body["employees"], 2)
	assert.Equal(t, []any{"Eng", "HR"}, activated.body["departments"])

	listing := app.call(t, http.MethodGet, "/api/v1/directory?search=an&department=HR", ws, nil)
	require.Equal(t, http.StatusOK, listing.code)
	visible := listing.body["employees"].([]any)
	require.Len(t, visible, 1)
	annID := visible[0].(map[string]any)["id"].(string)

	listing = app.call(t, http.MethodGet, "/api/v1/directory?department=Eng", ws, nil)
	assert.Empty(t, listing.body["employees"])

	deleted := app.call(t, http.MethodDelete, "/api/v1/directory/"+annID, ws, nil)
	require.Equal(t, http.StatusOK, deleted.code)
	listing = app.call(t, http.MethodGet, "/api/v1/directory?search=&department=all", ws, nil)
	assert.Len(t, listing.body["employees"], 1)

	missing := app.call(t, http.MethodDelete, "/api/v1/directory/"+annID, ws, nil)
	assert.Equal(t, http.StatusNotFound, missing.code)

	require.Equal(t, http.StatusOK, app.call(t, http.MethodDelete, "/api/v1/directory", ws, nil).code)
	listing = app.call(t, http.MethodGet, "/api/v1/directory", ws, nil)
	assert.Equal(t, "idle", listing.body["state"])
}

func TestRouter_SignOutResetsDirectory(t *testing.T) {
	app := setupApp(t)
	creds := map[string]string{"email": "ann@example.com", "password": "secret1"}

	ws := app.call(t, http.MethodGet, "/api/v1/directory", "", nil).workspace
	require.Equal(t, http.StatusOK, app.call(t, http.MethodPost, "/api/v1/auth/signin", ws, creds).code)
	require.Equal(t, http.StatusCreated, app.call(t, http.MethodPost, "/api/v1/employees", ws, map[string]string{
		"first_name": "Ann", "last_name": "Lee", "email": "ann.lee@example.com", "department": "HR",
	}).code)

	activated := app.call(t, http.MethodPost, "/api/v1/directory?wait=true", ws, nil)
	require.Equal(t, "ready", activated.body["state"])
	app.call(t, http.MethodGet, "/api/v1/directory?department=HR&search=ann", ws, nil)

	require.Equal(t, http.StatusOK, app.call(t, http.MethodPost, "/api/v1/auth/signout", ws, nil).code)
	require.Equal(t, http.StatusOK, app.call(t, http.MethodPost, "/api/v1/auth/signin", ws, creds).code)

	listing := app.call(t, http.MethodGet, "/api/v1/directory", ws, nil)
	require.Equal(t, http.StatusOK, listing.code)
	assert.Equal(t, "idle", listing.body["state"])
	assert.Empty(t, listing.body["employees"])
	assert.Equal(t, map[string]any{"search": "", "department": "all"}, listing.body["query"])
}

func TestRouter_SignInThrottledAcrossWorkspaces(t *testing.T) {
	app := setupApp(t, func(o *workspace.Options) {
		o.SignInRate = 0.001
		o.SignInBurst = 2
	})

	codes := make([]int, 0, 3)
	workspaces := map[string]struct{}{}
	for i := 0; i < 3; i++ {
		// No workspace header or cookie, so every attempt lands in a new
		// workspace under a different account.
		r := app.call(t, http.MethodPost, "/api/v1/auth/signin", "",
			map[string]string{"email": fmt.Sprintf("user%d@example.com", i), "password": "wrong"})
		codes = append(codes, r.code)
		workspaces[r.workspace] = struct{}{}
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
	assert.Len(t, workspaces, 3)

	// Forwarded addresses from untrusted peers are ignored.
	spoofed := app.call(t, http.MethodPost, "/api/v1/auth/signin", "",
		map[string]string{"email": "ann@example.com", "password": "secret1"},
		"X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, http.StatusTooManyRequests, spoofed.code)
	assert.Equal(t, "too-many-requests", spoofed.body["code"])
}

func TestRouter_BearerAccess(t *testing.T) {
	app := setupApp(t)

	denied := app.call(t, http.MethodGet, "/api/v1/employees", "", nil)
	assert.Equal(t, http.StatusUnauthorized, denied.code)

	cred, err := app.backend.SignIn(context.Background(), "ann@example.com", "secret1")
	require.NoError(t, err)

	ok := app.call(t, http.MethodGet, "/api/v1/employees", "", nil, "Authorization", "Bearer "+cred.IDToken)
	assert.Equal(t, http.StatusOK, ok.code)

	forged := app.call(t, http.MethodGet, "/api/v1/employees", "", nil, "Authorization", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, forged.code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	app := setupApp(t)

	health := app.call(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, health.code)
	assert.Equal(t, map[string]any{"redis": "up"}, health.body["checks"])

	cred, err := app.backend.SignIn(context.Background(), "ann@example.com", "secret1")
	require.NoError(t, err)
	app.call(t, http.MethodGet, "/api/v1/employees", "", nil, "Authorization", "Bearer "+cred.IDToken)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `staff_dashboard_employee_store_operations_total{backend="redis",op="list",result="ok"} 1`)
	assert.Contains(t, w.Body.String(), "staff_dashboard_workspace_active")
}
