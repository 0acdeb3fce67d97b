package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/iurnickita/bakery/internal/auth"
	"github.com/iurnickita/bakery/internal/backend"
	"github.com/iurnickita/bakery/internal/handler/config"
	"github.com/iurnickita/bakery/internal/logger"
	"github.com/iurnickita/bakery/internal/payment"
	"github.com/iurnickita/bakery/internal/service"
)

// Serve запускает HTTP-сервер и останавливает его, когда отменяется ctx.
func Serve(ctx context.Context, cfg config.Config, auth auth.Auth, service service.Service, zaplog *zap.Logger) error {
	h := newHandler(auth, service, zaplog)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h.newRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		zaplog.Info("server started", zap.String("addr", cfg.ServerAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	zaplog.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

type handler struct {
	auth    auth.Auth
	service service.Service
	zaplog  *zap.Logger
}

func newHandler(auth auth.Auth, service service.Service, zaplog *zap.Logger) *handler {
	return &handler{
		auth:    auth,
		service: service,
		zaplog:  zaplog,
	}
}

func (h *handler) newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogMdlw(h.zaplog))
	r.Use(middleware.Compress(5, "application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/register", h.auth.Register)
		r.Post("/user/login", h.auth.Login)
		r.Post("/user/logout", h.auth.Logout)

		r.Get("/catalog/products", h.GetProducts)
		r.Get("/catalog/products/{id}", h.GetProduct)
		r.Get("/catalog/categories", h.GetCategories)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Middleware)
			r.Post("/orders", h.PostOrder)
			r.Get("/orders", h.GetOrders)
			r.Post("/orders/{id}/payment", h.PostPayment)
			r.Get("/orders/{id}/payment", h.GetPayment)
			r.Delete("/orders/{id}/payment", h.DeletePayment)
			r.Post("/orders/{id}/payment/reset", h.ResetPayment)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.auth.AdminMiddleware)
			r.Get("/orders", h.AdminGetOrders)
			r.Patch("/orders/{id}/status", h.AdminPatchOrderStatus)
			r.Post("/products", h.AdminSaveProduct)
			r.Put("/products/{id}", h.AdminSaveProduct)
			r.Delete("/products/{id}", h.AdminDeleteProduct)
			r.Post("/categories", h.AdminSaveCategory)
			r.Put("/categories/{id}", h.AdminSaveCategory)
			r.Delete("/categories/{id}", h.AdminDeleteCategory)
			r.Get("/customers", h.AdminGetCustomers)
			r.Get("/settings", h.AdminGetSettings)
			r.Put("/settings", h.AdminPutSettings)
		})
	})

	return r
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(responseJSON)
}

// writeError переводит ошибку сервиса в HTTP-статус.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	var validationErr *payment.ValidationError
	var initiationErr *payment.InitiationError
	var apiErr *backend.APIError

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.As(err, &initiationErr):
		// текст шлюза отдаётся пользователю как есть
		http.Error(w, initiationErr.Message, http.StatusBadGateway)
	case errors.Is(err, service.ErrInsufficientData):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUnprocessableEntity):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrNotFound), errors.Is(err, payment.ErrNoAttempt), errors.Is(err, backend.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, payment.ErrInProgress), errors.Is(err, payment.ErrCancelled):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = "bakery backend request failed"
		}
		status := http.StatusBadGateway
		if apiErr.StatusCode < http.StatusInternalServerError {
			status = apiErr.StatusCode
		}
		http.Error(w, msg, status)
	default:
		h.zaplog.Error("request failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func customerOf(r *http.Request) string {
	session, _ := auth.SessionFrom(r.Context())
	return session.UserCode
}
