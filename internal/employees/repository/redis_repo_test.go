package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func seedEmployee(first, last, dept string, status domain.Status, created time.Time) *domain.Employee {
	return &domain.Employee{
		FirstName:  first,
		LastName:   last,
		Email:      first + "@example.com",
		Department: dept,
		Position:   "Engineer",
		Status:     status,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestRedisRepository_InsertAndGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewRedisRepository(client)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	id, err := repo.Insert(ctx, seedEmployee("Ann", "Lee", "HR", domain.StatusActive, created))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Ann", got.FirstName)
	assert.True(t, got.CreatedAt.Equal(created))

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisRepository_List(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewRedisRepository(client)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	oldest, err := repo.Insert(ctx, seedEmployee("Ann", "Lee", "HR", domain.StatusActive, base))
	require.NoError(t, err)
	middle, err := repo.Insert(ctx, seedEmployee("Bob", "Kim", "Eng", domain.StatusOnLeave, base.Add(time.Hour)))
	require.NoError(t, err)
	newest, err := repo.Insert(ctx, seedEmployee("Cid", "Moe", "HR", domain.StatusOnLeave, base.Add(2*time.Hour)))
	require.NoError(t, err)

	t.Run("no filter returns newest first", func(t *testing.T) {
		out, err := repo.List(ctx, domain.ListFilter{})
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, []string{newest, middle, oldest}, ids(out))
	})

	t.Run("department filter", func(t *testing.T) {
		out, err := repo.List(ctx, domain.ListFilter{Department: "HR"})
		require.NoError(t, err)
		assert.Equal(t, []string{newest, oldest}, ids(out))
	})

	t.Run("department and status filter", func(t *testing.T) {
		out, err := repo.List(ctx, domain.ListFilter{Department: "HR", Status: domain.StatusOnLeave})
		require.NoError(t, err)
		assert.Equal(t, []string{newest}, ids(out))
	})

	t.Run("no match", func(t *testing.T) {
		out, err := repo.List(ctx, domain.ListFilter{Department: "Sales"})
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestRedisRepository_Patch(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewRedisRepository(client)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	id, err := repo.Insert(ctx, seedEmployee("Ann", "Lee", "HR", domain.StatusActive, created))
	require.NoError(t, err)

	t.Run("moves indexes with the record", func(t *testing.T) {
		dept := "Eng"
		now := created.Add(time.Hour)
		require.NoError(t, repo.Patch(ctx, id, domain.UpdateEmployeeRequest{Department: &dept}, now))

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Eng", got.Department)
		assert.Equal(t, "Ann", got.FirstName)
		assert.True(t, got.UpdatedAt.Equal(now))
		assert.True(t, got.CreatedAt.Equal(created))

		hr, err := repo.List(ctx, domain.ListFilter{Department: "HR"})
		require.NoError(t, err)
		assert.Empty(t, hr)
		eng, err := repo.List(ctx, domain.ListFilter{Department: "Eng"})
		require.NoError(t, err)
		assert.Equal(t, []string{id}, ids(eng))
	})

	t.Run("never moves updated_at below created_at", func(t *testing.T) {
		require.NoError(t, repo.Patch(ctx, id, domain.UpdateEmployeeRequest{}, created.Add(-time.Hour)))
		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.UpdatedAt.Equal(created))
	})

	t.Run("missing id", func(t *testing.T) {
		err := repo.Patch(ctx, "missing", domain.UpdateEmployeeRequest{}, created)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRedisRepository_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewRedisRepository(client)
	ctx := context.Background()

	id, err := repo.Insert(ctx, seedEmployee("Ann", "Lee", "HR", domain.StatusActive, time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))

	out, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, mr.Exists(employeeKeyPrefix+id))

	assert.ErrorIs(t, repo.Delete(ctx, id), domain.ErrNotFound)
}

func TestRedisRepository_TransportFailure(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewRedisRepository(client)
	mr.Close()

	_, err := repo.List(context.Background(), domain.ListFilter{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func ids(list []*domain.Employee) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}
