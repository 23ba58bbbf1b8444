package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	Firebase  FirebaseConfig
	Auth      AuthConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Workspace WorkspaceConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty trusts none.
	TrustedProxies []string
}

type AppConfig struct {
	ServiceName string
	Environment string
	LogLevel    string
	Version     string
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
	// APIKey is the web API key used for password sign-in against Identity Toolkit.
	APIKey string
}

type AuthConfig struct {
	Backend     string // firebase | local
	LocalUsers  []string
	SigningKey  string
	TokenTTL    time.Duration
	SignInRate  float64
	SignInBurst int
	AllowSignUp bool
}

type StoreConfig struct {
	Backend    string // firestore | postgres | redis
	Collection string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type WorkspaceConfig struct {
	IdleTTL   time.Duration
	SweepSpec string
}

const (
	AuthBackendFirebase = "firebase"
	AuthBackendLocal    = "local"

	StoreBackendFirestore = "firestore"
	StoreBackendPostgres  = "postgres"
	StoreBackendRedis     = "redis"
)

func loadDotEnv() {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES", nil),
		},
		App: AppConfig{
			ServiceName: getEnv("SERVICE_NAME", "staff-dashboard"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			APIKey:          getEnv("FIREBASE_API_KEY", ""),
		},
		Auth: AuthConfig{
			Backend:     strings.ToLower(getEnv("AUTH_BACKEND", AuthBackendFirebase)),
			LocalUsers:  getEnvAsList("LOCAL_AUTH_USERS", nil),
			SigningKey:  getEnv("LOCAL_AUTH_SIGNING_KEY", ""),
			TokenTTL:    getEnvAsDuration("AUTH_TOKEN_TTL", time.Hour),
			SignInRate:  getEnvAsFloat("AUTH_SIGNIN_RATE", 0.2),
			SignInBurst: getEnvAsInt("AUTH_SIGNIN_BURST", 5),
			AllowSignUp: getEnvAsBool("AUTH_ALLOW_SIGNUP", true),
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(getEnv("EMPLOYEE_STORE", StoreBackendFirestore)),
			Collection: getEnv("EMPLOYEE_COLLECTION", "employees"),
		},
		Database: databaseFromEnv(),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Workspace: WorkspaceConfig{
			IdleTTL:   getEnvAsDuration("WORKSPACE_IDLE_TTL", 30*time.Minute),
			SweepSpec: getEnv("WORKSPACE_SWEEP_SPEC", "@every 1m"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database section, for tools that need no other backend.
func LoadDatabase() DatabaseConfig {
	loadDotEnv()
	return databaseFromEnv()
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "staff_dashboard"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Auth.Backend {
	case AuthBackendFirebase:
		if c.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for the firebase auth backend")
		}
		if c.Firebase.APIKey == "" {
			return fmt.Errorf("FIREBASE_API_KEY is required for the firebase auth backend")
		}
	case AuthBackendLocal:
		if c.Auth.SigningKey == "" {
			return fmt.Errorf("LOCAL_AUTH_SIGNING_KEY is required for the local auth backend")
		}
	default:
		return fmt.Errorf("unsupported AUTH_BACKEND %q", c.Auth.Backend)
	}

	switch c.Store.Backend {
	case StoreBackendFirestore:
		if c.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for the firestore store")
		}
	case StoreBackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required for the postgres store")
		}
	case StoreBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("unsupported EMPLOYEE_STORE %q", c.Store.Backend)
	}

	if c.Workspace.IdleTTL <= 0 {
		return fmt.Errorf("WORKSPACE_IDLE_TTL must be positive")
	}

	return nil
}

// NeedsFirebase reports whether any configured backend talks to Firebase.
func (c *Config) NeedsFirebase() bool {
	return c.Auth.Backend == AuthBackendFirebase || c.Store.Backend == StoreBackendFirestore
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
