package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	cfg, err := GetConfig(NewViper())
	require.NoError(t, err)

	require.Equal(t, "JCB", cfg.Service.OrderPrefix)
	require.Equal(t, 5*time.Second, cfg.Payment.PollInterval)
	require.Equal(t, 120*time.Second, cfg.Payment.Timeout)
	require.Empty(t, cfg.Cache.RedisAddr)
	require.ErrorIs(t, cfg.Validate(), ErrNoSecret)
}

func TestGetConfigEnvAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bakery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  url: http://backend.test/api
payment:
  poll_interval: 2s
auth:
  secret: from-file
`), 0o600))

	t.Setenv("BAKERY_AUTH_SECRET", "from-env")
	t.Setenv("BAKERY_PAYMENT_TIMEOUT", "90s")

	v := NewViper()
	v.Set(KeyConfigFile, path)
	cfg, err := GetConfig(v)
	require.NoError(t, err)

	require.Equal(t, "http://backend.test/api", cfg.Backend.BaseURL)
	require.Equal(t, 2*time.Second, cfg.Payment.PollInterval)
	require.Equal(t, 90*time.Second, cfg.Payment.Timeout)
	// окружение важнее файла
	require.Equal(t, "from-env", cfg.Auth.Secret)
	require.NoError(t, cfg.Validate())
}

func TestGetConfigRejectsZeroInterval(t *testing.T) {
	v := NewViper()
	v.Set(KeyPaymentPollInterval, "0s")
	_, err := GetConfig(v)
	require.Error(t, err)
}

func TestGetConfigMissingFile(t *testing.T) {
	v := NewViper()
	v.Set(KeyConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := GetConfig(v)
	require.Error(t, err)
}
