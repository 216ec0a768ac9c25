package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/BearBump/CargoGate/internal/auth"
	"github.com/BearBump/CargoGate/internal/models"
	"github.com/BearBump/CargoGate/internal/services/resolver"
	"github.com/BearBump/CargoGate/internal/services/shipments"
	"github.com/go-chi/chi/v5"
)

// RateLimiter — контракт лимитера логинов (redis либо фейк в тестах).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// Server — HTTP-слой фасада: авторизация до диспатча, раскладка запросов
// по резолверу и локальному стору, единая форма ошибок.
type Server struct {
	tokens     *auth.TokenManager
	principals *auth.Registry
	resolver   *resolver.Resolver
	shipments  *shipments.Service

	loginRL     RateLimiter
	loginLimit  int64
	loginWindow time.Duration
}

func New(tokens *auth.TokenManager, principals *auth.Registry, res *resolver.Resolver, svc *shipments.Service) *Server {
	return &Server{
		tokens:     tokens,
		principals: principals,
		resolver:   res,
		shipments:  svc,
	}
}

// WithLoginRateLimit включает лимит попыток логина (окно на пользователя).
func (s *Server) WithLoginRateLimit(rl RateLimiter, perWindow int64, window time.Duration) *Server {
	if rl != nil && perWindow > 0 {
		s.loginRL = rl
		s.loginLimit = perWindow
		if window <= 0 {
			window = time.Minute
		}
		s.loginWindow = window
	}
	return s
}

// Routes собирает роутер. Публичные: login, validate, auth info, systems
// info и health. Всё остальное — только с валидным токеном и подходящей
// ролью; неавторизованный запрос до резолвера и стора не доходит.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/validate", s.handleValidate)
	r.Get("/auth/info", s.handleAuthInfo)

	r.Get("/systems/info", s.handleSystemsInfo)
	r.Get("/systems/{system}/info", s.handleSystemInfo)

	r.Group(func(pr chi.Router) {
		pr.Use(s.authenticate)

		pr.Get("/auth/me", s.handleMe)

		read := s.requireRoles(models.RoleAdmin, models.RoleOperator, models.RoleAuditor, models.RoleClient)
		list := s.requireRoles(models.RoleAdmin, models.RoleOperator, models.RoleAuditor)
		write := s.requireRoles(models.RoleAdmin, models.RoleOperator)
		admin := s.requireRoles(models.RoleAdmin)

		pr.With(list).Get("/shipments", s.handleListShipments)
		pr.With(list).Get("/shipments/stats", s.handleStats)
		pr.With(list).Get("/shipments/merged", s.handleListMerged)
		pr.With(read).Get("/shipments/{id}", s.handleGetShipment)

		pr.With(write).Post("/shipments", s.handleCreateShipment)
		pr.With(write).Put("/shipments/{id}", s.handleUpdateShipment)
		pr.With(write).Put("/shipments/{id}/status", s.handleUpdateStatus)
		pr.With(admin).Delete("/shipments/{id}", s.handleDeleteShipment)
	})

	return r
}
