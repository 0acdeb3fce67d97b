package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Заказы

type Order struct {
	ID     string
	Number string
	Data   OrderData
}
type OrderData struct {
	Customer      string
	Contact       Contact
	Items         []OrderItem
	Delivery      Delivery
	Total         decimal.Decimal
	PaymentStatus string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Delivery struct {
	Method  string `json:"method"`
	Address string `json:"address,omitempty"`
	Date    string `json:"date,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

const (
	DeliveryMethodPickup   = "pickup"
	DeliveryMethodDelivery = "delivery"
)

// Статус заказа в бэкенде, которым управляет администратор
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Каталог

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"categoryId,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Available   bool            `json:"available"`
	Featured    bool            `json:"featured,omitempty"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// Пользователи

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Настройки магазина

type Settings struct {
	StoreName    string          `json:"storeName"`
	Phone        string          `json:"phone,omitempty"`
	Email        string          `json:"email,omitempty"`
	Address      string          `json:"address,omitempty"`
	OpeningHours string          `json:"openingHours,omitempty"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
}
