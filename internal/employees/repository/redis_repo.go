package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	employeeKeyPrefix    = "emp:rec:"    // Record data: emp:rec:{id}
	employeeIndexKey     = "emp:index"   // Sorted set of ids scored by created_at
	departmentIndexKey   = "emp:dept:"   // Set of ids per department: emp:dept:{department}
	statusIndexKey       = "emp:status:" // Set of ids per status: emp:status:{status}
	maxOptimisticRetries = 5
)

// RedisRepository stores employees as JSON documents in Redis.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new RedisRepository
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// Insert writes the record and all of its index entries in one MULTI/EXEC block.
func (r *RedisRepository) Insert(ctx context.Context, e *domain.Employee) (string, error) {
	rec := e.Clone()
	rec.ID = uuid.New().String()

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal employee: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.employeeKey(rec.ID), data, 0)
		pipe.ZAdd(ctx, employeeIndexKey, redis.Z{Score: score(rec.CreatedAt), Member: rec.ID})
		pipe.SAdd(ctx, r.departmentKey(rec.Department), rec.ID)
		pipe.SAdd(ctx, r.statusKey(rec.Status), rec.ID)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create employee: %w", err)
	}

	return rec.ID, nil
}

// Get retrieves an employee by id
func (r *RedisRepository) Get(ctx context.Context, id string) (*domain.Employee, error) {
	return r.get(ctx, r.client, id)
}

// List walks the creation index newest first and narrows it with the set indexes.
func (r *RedisRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Employee, error) {
	ids, err := r.client.ZRevRange(ctx, employeeIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read employee index: %w", err)
	}

	if !filter.IsZero() {
		var keys []string
		if filter.Department != "" {
			keys = append(keys, r.departmentKey(filter.Department))
		}
		if filter.Status != "" {
			keys = append(keys, r.statusKey(filter.Status))
		}
		members, err := r.client.SInter(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to apply employee filters: %w", err)
		}
		allowed := make(map[string]struct{}, len(members))
		for _, m := range members {
			allowed[m] = struct{}{}
		}
		kept := ids[:0]
		for _, id := range ids {
			if _, ok := allowed[id]; ok {
				kept = append(kept, id)
			}
		}
		ids = kept
	}

	out := make([]*domain.Employee, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.employeeKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// deleted between the index read and MGET
			continue
		}
		var e domain.Employee
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal employee %s: %w", ids[i], err)
		}
		out = append(out, &e)
	}

	// equal scores come back in lexical order; keep the contract explicit
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Patch applies req under WATCH so a concurrent writer forces a retry instead of a torn record.
func (r *RedisRepository) Patch(ctx context.Context, id string, req domain.UpdateEmployeeRequest, now time.Time) error {
	key := r.employeeKey(id)

	txf := func(tx *redis.Tx) error {
		existing, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		updated := existing.Clone()
		req.ApplyTo(updated, now)

		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to marshal employee: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if updated.Department != existing.Department {
				pipe.SRem(ctx, r.departmentKey(existing.Department), id)
				pipe.SAdd(ctx, r.departmentKey(updated.Department), id)
			}
			if updated.Status != existing.Status {
				pipe.SRem(ctx, r.statusKey(existing.Status), id)
				pipe.SAdd(ctx, r.statusKey(updated.Status), id)
			}
			return nil
		})
		return err
	}

	return r.watch(ctx, key, txf, "update")
}

// Delete removes the record and its index entries atomically.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	key := r.employeeKey(id)

	txf := func(tx *redis.Tx) error {
		existing, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, employeeIndexKey, id)
			pipe.SRem(ctx, r.departmentKey(existing.Department), id)
			pipe.SRem(ctx, r.statusKey(existing.Status), id)
			return nil
		})
		return err
	}

	return r.watch(ctx, key, txf, "delete")
}

func (r *RedisRepository) watch(ctx context.Context, key string, txf func(*redis.Tx) error, op string) error {
	for i := 0; i < maxOptimisticRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to %s employee: %w", op, err)
	}
	return fmt.Errorf("failed to %s employee: too much contention on %s", op, key)
}

func (r *RedisRepository) get(ctx context.Context, c stringGetter, id string) (*domain.Employee, error) {
	data, err := c.Get(ctx, r.employeeKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	var e domain.Employee
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal employee: %w", err)
	}
	return &e, nil
}

// Helper methods for key generation
func (r *RedisRepository) employeeKey(id string) string {
	return employeeKeyPrefix + id
}

func (r *RedisRepository) departmentKey(department string) string {
	return departmentIndexKey + department
}

func (r *RedisRepository) statusKey(status domain.Status) string {
	return statusIndexKey + string(status)
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func score(t time.Time) float64 {
	return float64(t.UnixMicro())
}
