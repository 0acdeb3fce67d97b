package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/iurnickita/bakery/internal/auth/config"
	"github.com/iurnickita/bakery/internal/backend"
	"github.com/iurnickita/bakery/internal/model"
	"github.com/iurnickita/bakery/internal/token"
)

type Auth interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Middleware(h http.Handler) http.Handler
	AdminMiddleware(h http.Handler) http.Handler
}

// Users: часть клиента бэкенда для входа и регистрации.
type Users interface {
	Register(ctx context.Context, req backend.RegisterRequest) (backend.Session, error)
	Login(ctx context.Context, req backend.LoginRequest) (backend.Session, error)
}

const cookieUserToken = "bakeryUserToken"

type sessionKey struct{}

type auth struct {
	cfg    config.Config
	users  Users
	zaplog *zap.Logger
}

func NewAuth(cfg config.Config, users Users, zaplog *zap.Logger) Auth {
	return &auth{cfg: cfg, users: users, zaplog: zaplog}
}

// SessionFrom возвращает сессию, которую положил в контекст Middleware.
func SessionFrom(ctx context.Context) (token.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(token.Session)
	return session, ok
}

// WithSession кладёт сессию в контекст запроса вместе с токеном бэкенда.
func WithSession(ctx context.Context, session token.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey{}, session)
	return backend.WithToken(ctx, session.BackendToken)
}

type userJSONResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (a *auth) Register(w http.ResponseWriter, r *http.Request) {
	var req backend.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		http.Error(w, "name, email and password are required", http.StatusBadRequest)
		return
	}

	session, err := a.users.Register(r.Context(), req)
	if err != nil {
		a.backendError(w, err)
		return
	}
	a.startSession(w, session)
}

func (a *auth) Login(w http.ResponseWriter, r *http.Request) {
	var req backend.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	session, err := a.users.Login(r.Context(), req)
	if err != nil {
		a.backendError(w, err)
		return
	}
	a.startSession(w, session)
}

func (a *auth) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieUserToken,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.CookieSecure,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *auth) Middleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// получение сессии пользователя
		session, err := a.getSession(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		// передаём управление хендлеру
		h.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

func (a *auth) AdminMiddleware(h http.Handler) http.Handler {
	return a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := SessionFrom(r.Context())
		if session.Role != model.RoleAdmin {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		h.ServeHTTP(w, r)
	}))
}

func (a *auth) startSession(w http.ResponseWriter, session backend.Session) {
	role := session.User.Role
	if role == "" {
		role = model.RoleCustomer
	}
	tokenString, err := token.BuildJWTString([]byte(a.cfg.Secret), a.cfg.TokenTTL, token.Session{
		UserCode:     session.User.ID,
		Role:         role,
		BackendToken: session.Token,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieUserToken,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(a.cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	responseJSON, err := json.Marshal(userJSONResponse{
		ID:    session.User.ID,
		Name:  session.User.Name,
		Email: session.User.Email,
		Role:  role,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseJSON)
}

func (a *auth) getSession(r *http.Request) (token.Session, error) {
	// куки пользователя, либо заголовок Authorization
	var tokenString string
	if tokenCookie, err := r.Cookie(cookieUserToken); err == nil {
		tokenString = tokenCookie.Value
	} else if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		tokenString = bearer
	}
	if tokenString == "" {
		return token.Session{}, errors.New("no session")
	}
	return token.Parse([]byte(a.cfg.Secret), tokenString)
}

func (a *auth) backendError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		http.Error(w, msg, apiErr.StatusCode)
		return
	}
	a.zaplog.Error("auth backend request failed", zap.Error(err))
	http.Error(w, "authentication service unavailable", http.StatusBadGateway)
}
