package plannerapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Morgan5/digital-planner/internal/app/guides"
	"github.com/Morgan5/digital-planner/internal/app/identity"
	"github.com/Morgan5/digital-planner/internal/app/store"
	platformauth "github.com/Morgan5/digital-planner/internal/platform/auth"
	"github.com/Morgan5/digital-planner/internal/platform/metrics"
	"github.com/Morgan5/digital-planner/services/frontend"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const SessionCookie = "planner_session"

var errLoginThrottled = errors.New("too many login attempts")

type Handler struct {
	Identity      *identity.Service
	Guides        *guides.Catalog
	Metrics       *metrics.Registry
	Logger        *zap.Logger
	AllowedOrigin string
	LoginLimiter  *rate.Limiter
}

func NewHandler(identitySvc *identity.Service, catalog *guides.Catalog, reg *metrics.Registry, logger *zap.Logger, allowedOrigin string, limiter *rate.Limiter) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Identity:      identitySvc,
		Guides:        catalog,
		Metrics:       reg,
		Logger:        logger,
		AllowedOrigin: allowedOrigin,
		LoginLimiter:  limiter,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.observeMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", writeOK)
	r.Get("/readyz", writeOK)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}
	r.Handle("/static/*", frontend.Static("/static/"))

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(h.apiCORS)
		api.Options("/*", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		api.Post("/auth/login", h.handleLogin)
		api.Group(func(authR chi.Router) {
			authR.Use(h.authMiddleware)
			authR.Post("/auth/logout", h.handleLogout)
			authR.Get("/session", h.handleSession)
			authR.Get("/section", h.handleGetSection)
			authR.Put("/section", h.handleSetSection)
			authR.Get("/dashboard", h.handleDashboard)

			authR.Get("/events", h.handleListEvents)
			authR.Post("/events", h.handleAddEvent)
			authR.Delete("/events/{eventID}", h.handleDeleteEvent)

			authR.Get("/tasks", h.handleListTasks)
			authR.Post("/tasks", h.handleAddTask)
			authR.Post("/tasks/{taskID}/toggle", h.handleToggleTask)
			authR.Delete("/tasks/{taskID}", h.handleDeleteTask)

			authR.Get("/notes", h.handleListNotes)
			authR.Post("/notes", h.handleAddNote)
			authR.Put("/notes/{noteID}", h.handleUpdateNote)
			authR.Delete("/notes/{noteID}", h.handleDeleteNote)

			authR.Get("/guides", h.handleListGuides)
			authR.Get("/guides/{guideID}", h.handleGetGuide)
		})
	})

	h.mountUI(r)
	return r
}

func writeOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// observeMiddleware logs and counts every request once routing is done.
func (h *Handler) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		took := time.Since(started)
		h.Metrics.ObserveRequest(r.Method, route, status, took)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("took", took),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}
		if status >= http.StatusInternalServerError {
			h.Logger.Error("request failed", fields...)
			return
		}
		h.Logger.Debug("request", fields...)
	})
}

// apiCORS lets the configured UI origin call the JSON API. The HTML pages are
// served from the same origin and do not go through it.
func (h *Handler) apiCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		origin := r.Header.Get("Origin")
		switch {
		case h.AllowedOrigin == "*":
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && origin == h.AllowedOrigin:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		default:
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		next.ServeHTTP(w, r)
	})
}

type sessionContextKey struct{}

// sessionToken prefers the Authorization header and falls back to the
// session cookie set by the HTML login form.
func sessionToken(r *http.Request) string {
	if token := platformauth.BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			h.writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		session, err := h.Identity.Authenticate(token)
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithSession(r.Context(), session)))
	})
}

// allowLogin reports whether the login bucket still has a token.
func (h *Handler) allowLogin() error {
	if h.LoginLimiter != nil && !h.LoginLimiter.Allow() {
		return errLoginThrottled
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps entity store failures to responses.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error, notFound string) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, guides.ErrNotFound):
		h.writeError(w, http.StatusNotFound, notFound)
	default:
		h.Logger.Error("store operation failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

func contextWithSession(ctx context.Context, session *identity.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func sessionFromContext(ctx context.Context) *identity.Session {
	session, _ := ctx.Value(sessionContextKey{}).(*identity.Session)
	return session
}
