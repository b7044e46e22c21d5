package storage

import (
	"strings"
	"testing"
)

func TestPostgresConfigConnString(t *testing.T) {
	t.Run("builds full connection string", func(t *testing.T) {
		cfg := PostgresConfig{
			Host:     "db.internal",
			Port:     5433,
			User:     "semscore",
			Password: "secret",
			DBName:   "assessments",
			SSLMode:  "require",
		}
		got := cfg.ConnString()
		want := "host=db.internal port=5433 user=semscore password=secret dbname=assessments sslmode=require"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("defaults sslmode to disable", func(t *testing.T) {
		cfg := PostgresConfig{
			Host:   "localhost",
			Port:   5432,
			User:   "postgres",
			DBName: "semscore",
		}
		if !strings.Contains(cfg.ConnString(), "sslmode=disable") {
			t.Errorf("expected sslmode=disable in %q", cfg.ConnString())
		}
	})
}
