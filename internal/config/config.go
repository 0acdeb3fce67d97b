package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	authConfig "github.com/iurnickita/bakery/internal/auth/config"
	backendConfig "github.com/iurnickita/bakery/internal/backend/config"
	cacheConfig "github.com/iurnickita/bakery/internal/cache/config"
	handlerConfig "github.com/iurnickita/bakery/internal/handler/config"
	loggerConfig "github.com/iurnickita/bakery/internal/logger/config"
	paymentConfig "github.com/iurnickita/bakery/internal/payment/config"
	serviceConfig "github.com/iurnickita/bakery/internal/service/config"
	storeConfig "github.com/iurnickita/bakery/internal/store/config"
)

type Config struct {
	Handler handlerConfig.Config
	Service serviceConfig.Config
	Store   storeConfig.Config
	Logger  loggerConfig.Config
	Backend backendConfig.Config
	Payment paymentConfig.Config
	Cache   cacheConfig.Config
	Auth    authConfig.Config
}

// Ключи настроек. В окружении: BAKERY_ и ключ в верхнем регистре с _ вместо точки,
// например BAKERY_BACKEND_URL.
const (
	KeyConfigFile = "config"

	KeyServerAddr            = "server.addr"
	KeyServerShutdownTimeout = "server.shutdown_timeout"
	KeyLogLevel              = "log.level"
	KeyOrderPrefix           = "order.prefix"
	KeyDBDsn                 = "db.dsn"
	KeyBackendURL            = "backend.url"
	KeyBackendTimeout        = "backend.timeout"
	KeyBackendRetries        = "backend.retries"
	KeyPaymentPollInterval   = "payment.poll_interval"
	KeyPaymentTimeout        = "payment.timeout"
	KeyPaymentRetention      = "payment.retention"
	KeyCacheRedisAddr        = "cache.redis_addr"
	KeyCacheTTL              = "cache.ttl"
	KeyAuthSecret            = "auth.secret"
	KeyAuthTokenTTL          = "auth.token_ttl"
	KeyAuthCookieSecure      = "auth.cookie_secure"
)

var ErrNoSecret = errors.New("auth.secret is required")

// NewViper возвращает viper со значениями по умолчанию и чтением переменных окружения.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("bakery")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	payment := paymentConfig.Default()
	v.SetDefault(KeyServerAddr, "localhost:8080")
	v.SetDefault(KeyServerShutdownTimeout, 10*time.Second)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyOrderPrefix, "JCB")
	v.SetDefault(KeyDBDsn, "bakery.db")
	v.SetDefault(KeyBackendURL, "http://localhost:5000/api")
	v.SetDefault(KeyBackendTimeout, 15*time.Second)
	v.SetDefault(KeyBackendRetries, 2)
	v.SetDefault(KeyPaymentPollInterval, payment.PollInterval)
	v.SetDefault(KeyPaymentTimeout, payment.Timeout)
	v.SetDefault(KeyPaymentRetention, payment.Retention)
	v.SetDefault(KeyCacheRedisAddr, "")
	v.SetDefault(KeyCacheTTL, 5*time.Minute)
	v.SetDefault(KeyAuthSecret, "")
	v.SetDefault(KeyAuthTokenTTL, 24*time.Hour)
	v.SetDefault(KeyAuthCookieSecure, false)
	return v
}

// GetConfig собирает настройки: значения по умолчанию, YAML-файл (если задан KeyConfigFile),
// переменные окружения и флаги, привязанные к v.
func GetConfig(v *viper.Viper) (Config, error) {
	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Handler: handlerConfig.Config{
			ServerAddr:      v.GetString(KeyServerAddr),
			ShutdownTimeout: v.GetDuration(KeyServerShutdownTimeout),
		},
		Service: serviceConfig.Config{OrderPrefix: v.GetString(KeyOrderPrefix)},
		Store:   storeConfig.Config{DBDsn: v.GetString(KeyDBDsn)},
		Logger:  loggerConfig.Config{LogLevel: v.GetString(KeyLogLevel)},
		Backend: backendConfig.Config{
			BaseURL:    v.GetString(KeyBackendURL),
			Timeout:    v.GetDuration(KeyBackendTimeout),
			RetryCount: v.GetInt(KeyBackendRetries),
		},
		Payment: paymentConfig.Config{
			PollInterval: v.GetDuration(KeyPaymentPollInterval),
			Timeout:      v.GetDuration(KeyPaymentTimeout),
			Retention:    v.GetDuration(KeyPaymentRetention),
		},
		Cache: cacheConfig.Config{
			RedisAddr: v.GetString(KeyCacheRedisAddr),
			TTL:       v.GetDuration(KeyCacheTTL),
		},
		Auth: authConfig.Config{
			Secret:       v.GetString(KeyAuthSecret),
			TokenTTL:     v.GetDuration(KeyAuthTokenTTL),
			CookieSecure: v.GetBool(KeyAuthCookieSecure),
		},
	}

	if cfg.Payment.PollInterval <= 0 || cfg.Payment.Timeout <= 0 {
		return Config{}, errors.New("payment poll interval and timeout must be positive")
	}
	return cfg, nil
}

// Validate проверяет настройки, без которых не стартует HTTP-сервер.
func (cfg Config) Validate() error {
	if cfg.Auth.Secret == "" {
		return ErrNoSecret
	}
	return nil
}
