package config

import "time"

type Config struct {
	// Интервал между проверками статуса платежа
	PollInterval time.Duration
	// Общий бюджет ожидания подтверждения, считается по реальному времени от начала опроса
	Timeout time.Duration
	// Сколько держать завершённую попытку в памяти, чтобы клиент успел прочитать итог
	Retention time.Duration
}

func Default() Config {
	return Config{
		PollInterval: 5 * time.Second,
		Timeout:      120 * time.Second,
		Retention:    10 * time.Minute,
	}
}
