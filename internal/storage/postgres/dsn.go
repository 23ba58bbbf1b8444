package postgres

import (
	"fmt"
	"net/url"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/config"
)

// DSN returns a keyword/value connection string for pgx.
func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslMode(cfg),
	)
}

// URL returns the same settings as a postgres:// URL, the form golang-migrate expects.
func URL(cfg *config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": {sslMode(cfg)}}.Encode(),
	}
	return u.String()
}

func sslMode(cfg *config.DatabaseConfig) string {
	if cfg.SSLMode == "" {
		return "disable"
	}
	return cfg.SSLMode
}
