package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LOCK_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Lock.Backend)
	assert.Equal(t, "dev-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "order.events", cfg.AMQP.Queue)
	assert.False(t, cfg.AMQP.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOCK_BACKEND", "Redis")
	t.Setenv("LOCK_TTL", "750ms")
	t.Setenv("RABBITMQ_ENABLED", "yes")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Lock.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.Lock.TTL)
	assert.True(t, cfg.AMQP.Enabled)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoadRejectsMissingSecretInProd(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownLockBackend(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("LOCK_BACKEND", "etcd")

	_, err := Load()
	assert.Error(t, err)
}
