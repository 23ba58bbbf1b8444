package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/repository"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/service"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type brokenStore struct{ repository.Store }

func (brokenStore) List(context.Context, domain.ListFilter) ([]*domain.Employee, error) {
	return nil, errors.New("connection reset by peer")
}

func setupRouter(t *testing.T, store repository.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewEmployeeService(store, fixedClock{now: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}, nil)
	r := gin.New()
	New(svc, nil).Register(r.Group("/api/v1/employees"))
	return r
}

func setupRedisStore(t *testing.T) repository.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewRedisRepository(client)
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestEmployeesCRUD(t *testing.T) {
	r := setupRouter(t, setupRedisStore(t))

	w, out := do(t, r, http.MethodPost, "/api/v1/employees", map[string]any{
		"first_name": "Ann",
		"last_name":  "Lee",
		"email":      "ann@example.com",
		"department": "HR",
		"position":   "Recruiter",
	})
	require.Equal(t, http.StatusCreated, w.Code, out)
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)

	w, out = do(t, r, http.MethodGet, "/api/v1/employees/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	emp := out["employee"].(map[string]any)
	assert.Equal(t, "Active", emp["status"])
	assert.Equal(t, emp["created_at"], emp["updated_at"])

	w, out = do(t, r, http.MethodPatch, "/api/v1/employees/"+id, map[string]any{"department": "Eng"})
	require.Equal(t, http.StatusOK, w.Code)
	emp = out["employee"].(map[string]any)
	assert.Equal(t, "Eng", emp["department"])
	assert.Equal(t, "Recruiter", emp["position"])

	w, out = do(t, r, http.MethodGet, "/api/v1/employees?department=Eng", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["employees"], 1)

	w, _ = do(t, r, http.MethodDelete, "/api/v1/employees/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, out = do(t, r, http.MethodDelete, "/api/v1/employees/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Employee not found.", out["error"])
}

func TestEmployeesValidation(t *testing.T) {
	r := setupRouter(t, setupRedisStore(t))

	w, out := do(t, r, http.MethodPost, "/api/v1/employees", map[string]any{
		"first_name": "Ann",
		"last_name":  "Lee",
		"email":      "not-an-email",
		"department": "HR",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, out["ok"])
	assert.Contains(t, out["error"], "email")

	w, _ = do(t, r, http.MethodGet, "/api/v1/employees?status=Retired", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/employees", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmployeesStoreFailureIsMasked(t *testing.T) {
	r := setupRouter(t, brokenStore{})

	w, out := do(t, r, http.MethodGet, "/api/v1/employees", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Failed to fetch employees.", out["error"])
	assert.NotContains(t, w.Body.String(), "connection reset")
}
