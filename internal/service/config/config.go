package config

type Config struct {
	// Префикс номера заказа, например JCB
	OrderPrefix string
}
