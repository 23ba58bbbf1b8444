package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
)

func TestPatchUpdates(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	dept := "Eng"
	st := domain.StatusTerminated

	updates := patchUpdates(domain.UpdateEmployeeRequest{Department: &dept, Status: &st}, now)

	paths := make([]string, len(updates))
	for i, u := range updates {
		paths[i] = u.Path
	}
	assert.Equal(t, []string{"department", "status", "updatedAt"}, paths)
	assert.Equal(t, "Terminated", updates[1].Value)
	assert.Equal(t, now, updates[2].Value)
}

func TestPatchUpdates_EmptyRequestStillStamps(t *testing.T) {
	now := time.Now()
	updates := patchUpdates(domain.UpdateEmployeeRequest{}, now)
	assert.Len(t, updates, 1)
	assert.Equal(t, "updatedAt", updates[0].Path)
}

func TestTranslateFirestoreError(t *testing.T) {
	assert.ErrorIs(t, translateFirestoreError(status.Error(codes.NotFound, "no document")), domain.ErrNotFound)

	other := status.Error(codes.Unavailable, "backend down")
	assert.Equal(t, other, translateFirestoreError(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, translateFirestoreError(plain))
}
