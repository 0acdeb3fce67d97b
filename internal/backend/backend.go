// Package backend: клиент REST API пекарни: заказы, платежи, каталог, пользователи, настройки.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/iurnickita/bakery/internal/backend/config"
	"github.com/iurnickita/bakery/internal/model"
)

type Client interface {
	CreateOrder(ctx context.Context, req OrderRequest) (OrderCreated, error)
	GetOrder(ctx context.Context, orderID string) (model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status string) error

	InitiatePayment(ctx context.Context, req PaymentRequest) error
	PaymentStatus(ctx context.Context, orderID string) (PaymentStatus, error)

	ListProducts(ctx context.Context, category string) ([]model.Product, error)
	GetProduct(ctx context.Context, productID string) (model.Product, error)
	SaveProduct(ctx context.Context, product model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	SaveCategory(ctx context.Context, category model.Category) (model.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error

	Register(ctx context.Context, req RegisterRequest) (Session, error)
	Login(ctx context.Context, req LoginRequest) (Session, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)

	GetSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) (model.Settings, error)
}

var ErrNotFound = errors.New("not found")

// APIError: ответ бэкенда с кодом не из 2xx.
// Message берётся из тела ответа как есть, если бэкенд его прислал.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend status %d", e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// MessageOf возвращает текст ошибки бэкенда, если он есть.
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

type tokenKey struct{}

// WithToken кладёт в контекст токен пользователя для запросов к бэкенду.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type client struct {
	http *resty.Client
}

func NewClient(cfg config.Config, zaplog *zap.Logger) Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetLogger(zaplog.Named("backend").Sugar())
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	if cfg.RetryCount > 0 {
		httpClient.
			SetRetryCount(cfg.RetryCount).
			AddRetryCondition(retryIdempotent)
	}
	return &client{http: httpClient}
}

// retryIdempotent: повторяются только GET, POST /payments/initiate уходит ровно один раз.
// Условие заменяет повтор resty по любой ошибке.
func retryIdempotent(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

func (c *client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token := tokenFrom(ctx); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// do выполняет запрос и разбирает JSON ответа в result (если он не nil).
func (c *client) do(req *resty.Request, method, path string, result any) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	if result == nil || len(resp.Body()) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Body(), result)
}

func apiError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}

	var body map[string]any
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if msg, ok := body[key].(string); ok && msg != "" {
				apiErr.Message = msg
				break
			}
		}
	}
	return apiErr
}
