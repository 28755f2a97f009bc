package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "jwt")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("ServerPort: want=%q got=%q", "8080", cfg.ServerPort)
	}
	if cfg.DBPort != 5432 {
		t.Fatalf("DBPort: want=%d got=%d", 5432, cfg.DBPort)
	}
	if cfg.LockTTL != 10*time.Second {
		t.Fatalf("LockTTL: want=%s got=%s", 10*time.Second, cfg.LockTTL)
	}
	if cfg.RedisChannel != "attendance" {
		t.Fatalf("RedisChannel: want=%q got=%q", "attendance", cfg.RedisChannel)
	}
	want := "host=db port=5432 user=postgres password=secret dbname=postgres sslmode=disable"
	if got := cfg.PostgresURL(); got != want {
		t.Fatalf("PostgresURL: want=%q got=%q", want, got)
	}
}

func TestFromEnvMissingPassword(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET", "jwt")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("FromEnv: expected error, got nil")
	}
}

func TestFromEnvSQLiteNeedsNoPassword(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("SQLITE_PATH", "/tmp/attendance.db")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("LOCK_TTL", "3s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("DBDriver: want=%q got=%q", "sqlite", cfg.DBDriver)
	}
	if cfg.LockTTL != 3*time.Second {
		t.Fatalf("LockTTL: want=%s got=%s", 3*time.Second, cfg.LockTTL)
	}
}

func TestFromEnvRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("JWT_SECRET", "jwt")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("FromEnv: expected error, got nil")
	}
}

func TestFromEnvMissingJWTSecret(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("FromEnv: expected error, got nil")
	}
}
