package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iurnickita/bakery/internal/auth/config"
	"github.com/iurnickita/bakery/internal/backend"
	"github.com/iurnickita/bakery/internal/model"
	"github.com/iurnickita/bakery/internal/token"
)

type fakeUsers struct {
	loginFn func(req backend.LoginRequest) (backend.Session, error)
}

func (f *fakeUsers) Register(_ context.Context, req backend.RegisterRequest) (backend.Session, error) {
	return backend.Session{Token: "bt", User: model.Customer{ID: "u1", Name: req.Name, Email: req.Email}}, nil
}

func (f *fakeUsers) Login(_ context.Context, req backend.LoginRequest) (backend.Session, error) {
	return f.loginFn(req)
}

func testAuth(users Users) Auth {
	return NewAuth(config.Config{Secret: "secret", TokenTTL: time.Hour}, users, zap.NewNop())
}

func TestLoginSetsCookieAndMiddlewareAccepts(t *testing.T) {
	a := testAuth(&fakeUsers{loginFn: func(req backend.LoginRequest) (backend.Session, error) {
		return backend.Session{Token: "backend-token", User: model.Customer{ID: "u1", Email: req.Email}}, nil
	}})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"email":"a@b.c","password":"x"}`))
	a.Login(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, cookieUserToken, cookies[0].Name)

	var got token.Session
	protected := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.AddCookie(cookies[0])
	protected.ServeHTTP(w, r)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "u1", got.UserCode)
	require.Equal(t, model.RoleCustomer, got.Role)
	require.Equal(t, "backend-token", got.BackendToken)
}

func TestLoginBackendRejects(t *testing.T) {
	a := testAuth(&fakeUsers{loginFn: func(backend.LoginRequest) (backend.Session, error) {
		return backend.Session{}, &backend.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"email":"a@b.c","password":"x"}`))
	a.Login(w, r)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestMiddlewareRejectsMissingSession(t *testing.T) {
	a := testAuth(&fakeUsers{})
	protected := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	}))

	w := httptest.NewRecorder()
	protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddleware(t *testing.T) {
	a := testAuth(&fakeUsers{})
	admin := a.AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[string]int{
		model.RoleCustomer: http.StatusForbidden,
		model.RoleAdmin:    http.StatusNoContent,
	} {
		tokenString, err := token.BuildJWTString([]byte("secret"), time.Hour, token.Session{UserCode: "u1", Role: role})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		r.Header.Set("Authorization", "Bearer "+tokenString)
		admin.ServeHTTP(w, r)
		require.Equal(t, want, w.Code, role)
	}
}
