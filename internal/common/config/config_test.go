package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "payments:events", cfg.Payments.Stream)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadTrustedProxies(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.Server.TrustedProxies)
}

func TestLoadPriceLevels(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("PRICE_LEVELS", "price_basic:1,price_plus:2,price_pro:3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"price_basic": 1, "price_plus": 2, "price_pro": 3}, cfg.Payments.PriceLevels)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}
