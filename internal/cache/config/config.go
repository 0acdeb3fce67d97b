package config

import "time"

type Config struct {
	// Адрес Redis; пустой: кэш выключен
	RedisAddr string
	TTL       time.Duration
}
