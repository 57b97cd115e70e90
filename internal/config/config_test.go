package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
record_store:
  backend: supabase
  supabase:
    url: https://example.supabase.co
    service_key: service-key
store:
  purchase_lock_ttl: 20s
cleanup:
  purchase_retention: 720h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.RecordStore.Backend != "supabase" {
		t.Fatalf("unexpected backend: %s", cfg.RecordStore.Backend)
	}
	if cfg.RecordStore.Supabase.URL != "https://example.supabase.co" {
		t.Fatalf("unexpected supabase url: %s", cfg.RecordStore.Supabase.URL)
	}
	if cfg.Store.PurchaseLockTTL != 20*time.Second {
		t.Fatalf("unexpected purchase lock ttl: %s", cfg.Store.PurchaseLockTTL)
	}
	if cfg.Cleanup.PurchaseRetention != 720*time.Hour {
		t.Fatalf("unexpected purchase retention: %s", cfg.Cleanup.PurchaseRetention)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http.addr default should stay :8080, got %s", cfg.HTTP.Addr)
	}
	if cfg.Store.CatalogCacheTTL != 30*time.Second {
		t.Fatalf("catalog cache ttl default should stay 30s, got %s", cfg.Store.CatalogCacheTTL)
	}
	if cfg.RecordStore.Supabase.Timeout != 30*time.Second {
		t.Fatalf("supabase timeout default should stay 30s, got %s", cfg.RecordStore.Supabase.Timeout)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.RecordStore.Backend != "memory" {
		t.Fatalf("unexpected default backend: %s", cfg.RecordStore.Backend)
	}
	if cfg.Store.PurchaseLockTTL != 10*time.Second {
		t.Fatalf("unexpected default lock ttl: %s", cfg.Store.PurchaseLockTTL)
	}
	if cfg.Cleanup.Interval != 6*time.Hour {
		t.Fatalf("unexpected default cleanup interval: %s", cfg.Cleanup.Interval)
	}
	if cfg.Auth.JWTAccessTTL != time.Hour {
		t.Fatalf("unexpected default access ttl: %s", cfg.Auth.JWTAccessTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("RECORD_STORE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://env:env@db:5432/env")
	t.Setenv("PURCHASE_LOCK_TTL", "45s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.RecordStore.Backend != "postgres" {
		t.Fatalf("unexpected backend: %s", cfg.RecordStore.Backend)
	}
	if cfg.RecordStore.Postgres.DSN != "postgres://env:env@db:5432/env" {
		t.Fatalf("unexpected dsn: %s", cfg.RecordStore.Postgres.DSN)
	}
	if cfg.Store.PurchaseLockTTL != 45*time.Second {
		t.Fatalf("unexpected lock ttl: %s", cfg.Store.PurchaseLockTTL)
	}
}

func TestLoadRejectsSupabaseBackendWithoutCredentials(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("RECORD_STORE_BACKEND", "supabase")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error when supabase backend has no url/key")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("RECORD_STORE_BACKEND", "sqlite")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"RECORD_STORE_BACKEND",
		"SUPABASE_URL",
		"SUPABASE_SERVICE_KEY",
		"SUPABASE_TIMEOUT",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"PURCHASE_LOCK_TTL",
		"CATALOG_CACHE_TTL",
		"CLEANUP_INTERVAL",
		"PURCHASE_RETENTION",
	} {
		t.Setenv(key, "")
	}
}
