package bootstrap

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/config"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/repository"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/metrics"
)

type StoreDeps struct {
	Firestore *firestore.Client
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Metrics   *metrics.StoreMetrics
}

// NewEmployeeStore selects the configured adapter and wraps it with metrics.
func NewEmployeeStore(cfg *config.StoreConfig, deps StoreDeps) (repository.Store, error) {
	var store repository.Store
	switch cfg.Backend {
	case config.StoreBackendFirestore:
		if deps.Firestore == nil {
			return nil, fmt.Errorf("firestore store selected but no Firestore client")
		}
		store = repository.NewFirestoreRepository(deps.Firestore, cfg.Collection)
	case config.StoreBackendPostgres:
		if deps.DB == nil {
			return nil, fmt.Errorf("postgres store selected but no database pool")
		}
		store = repository.NewPostgresRepository(deps.DB)
	case config.StoreBackendRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("redis store selected but no Redis client")
		}
		store = repository.NewRedisRepository(deps.Redis)
	default:
		return nil, fmt.Errorf("unsupported employee store %q", cfg.Backend)
	}

	if deps.Metrics != nil {
		store = repository.NewInstrumentedStore(store, cfg.Backend, deps.Metrics)
	}
	return store, nil
}

// NewAuthBackend builds the identity backend. app may be nil for the local backend.
func NewAuthBackend(ctx context.Context, cfg *config.Config, app *firebase.App) (auth.Backend, error) {
	switch cfg.Auth.Backend {
	case config.AuthBackendFirebase:
		if app == nil {
			return nil, fmt.Errorf("firebase auth selected but Firebase is not initialized")
		}
		return auth.NewFirebaseBackend(ctx, app, cfg.Firebase.APIKey)
	case config.AuthBackendLocal:
		b := auth.NewLocalBackend(cfg.Auth.SigningKey, cfg.Auth.TokenTTL, cfg.Auth.AllowSignUp)
		if err := b.Seed(cfg.Auth.LocalUsers); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported auth backend %q", cfg.Auth.Backend)
	}
}

// NewTokenStore persists workspace credentials in Redis when available.
func NewTokenStore(client *redis.Client) auth.TokenStore {
	if client == nil {
		return auth.NewMemoryTokenStore()
	}
	return auth.NewRedisTokenStore(client)
}
