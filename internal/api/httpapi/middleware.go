package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/BearBump/CargoGate/internal/apperr"
	"github.com/BearBump/CargoGate/internal/models"
)

type ctxKey int

const principalKey ctxKey = iota

func principalFrom(r *http.Request) (*models.Principal, bool) {
	p, ok := r.Context().Value(principalKey).(*models.Principal)
	return p, ok
}

// authenticate проверяет Bearer-токен и кладёт принципала в контекст.
// Любой дефект токена или пользователя — единый 401 без деталей.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, apperr.Unauthenticated("missing bearer token"))
			return
		}
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			writeError(w, apperr.Unauthenticated("malformed authorization header"))
			return
		}
		raw := strings.TrimSpace(header[len(prefix):])
		if raw == "" {
			writeError(w, apperr.Unauthenticated("missing bearer token"))
			return
		}

		info, err := s.tokens.Verify(raw)
		if err != nil {
			writeError(w, apperr.Unauthenticated("invalid or expired token"))
			return
		}

		p, err := s.principals.GetByID(info.Subject)
		if err != nil || !p.Enabled {
			writeError(w, apperr.Unauthenticated("invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRoles пропускает только принципалов хотя бы с одной из ролей.
func (s *Server) requireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principalFrom(r)
			if !ok {
				writeError(w, apperr.Unauthenticated("missing bearer token"))
				return
			}
			if !p.HasAnyRole(roles...) {
				writeError(w, apperr.Forbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
