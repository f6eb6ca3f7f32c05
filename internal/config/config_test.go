package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CATALOG_DRIVER", "")
	t.Setenv("UPLOAD_MAX_BYTES", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.CatalogDriver)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("CATALOG_DRIVER", "Mongo")
	t.Setenv("CATALOG_LOOKUP_CONCURRENCY", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "mongo", cfg.CatalogDriver)
	assert.Equal(t, 2, cfg.CatalogLookupConcurrency)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestFromEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CATALOG_LOOKUP_CONCURRENCY", "many")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "soon")

	cfg := FromEnv()

	assert.Equal(t, 8, cfg.CatalogLookupConcurrency)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}
