package config

import "time"

type Config struct {
	BaseURL string
	Timeout time.Duration
	// Повторы запроса на уровне транспорта (resty); 0: без повторов
	RetryCount int
}
