package backend

import (
	"context"
	"net/http"

	"github.com/iurnickita/bakery/internal/model"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session: ответ бэкенда на вход или регистрацию
type Session struct {
	Token string         `json:"token"`
	User  model.Customer `json:"user"`
}

func (c *client) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	var session Session
	if err := c.do(c.request(ctx).SetBody(req), http.MethodPost, "/auth/register", &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

func (c *client) Login(ctx context.Context, req LoginRequest) (Session, error) {
	var session Session
	if err := c.do(c.request(ctx).SetBody(req), http.MethodPost, "/auth/login", &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

func (c *client) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := c.do(c.request(ctx), http.MethodGet, "/users", &customers); err != nil {
		return nil, err
	}
	return customers, nil
}
