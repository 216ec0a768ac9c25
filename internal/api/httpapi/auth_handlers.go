package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/BearBump/CargoGate/internal/apperr"
	"github.com/BearBump/CargoGate/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expiresAt"`
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName,omitempty"`
	Email     string    `json:"email,omitempty"`
	Roles     []string  `json:"roles"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body", nil))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		fields := map[string]string{}
		if req.Username == "" {
			fields["username"] = "required"
		}
		if req.Password == "" {
			fields["password"] = "required"
		}
		writeError(w, apperr.Validation("username and password are required", fields))
		return
	}

	if s.loginRL != nil {
		key := "rl:login:" + strings.ToLower(req.Username)
		allowed, _, err := s.loginRL.Allow(r.Context(), key, s.loginLimit, s.loginWindow)
		// При отказе редиса лимитер не блокирует вход.
		if err == nil && !allowed {
			writeError(w, apperr.New(apperr.CodeRateLimited, "too many login attempts, try again later"))
			return
		}
	}

	p, err := s.principals.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, expiresAt, err := s.tokens.Issue(p)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		Type:      "Bearer",
		ExpiresAt: expiresAt,
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		Email:     p.Email,
		Roles:     p.Roles,
	})
}

type validateRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		writeError(w, apperr.Validation("token is required", map[string]string{"token": "required"}))
		return
	}

	info, err := s.tokens.Verify(req.Token)
	if err != nil {
		// Невалидный или истёкший токен — 401, но с телом, чтобы
		// вызывающий видел причину в поле expired.
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"valid":   false,
			"expired": s.tokens.IsExpired(req.Token),
		})
		return
	}

	resp := map[string]any{
		"valid":     true,
		"subject":   info.Subject,
		"roles":     info.Roles,
		"expiresAt": info.ExpiresAt,
	}
	if p, err := s.principals.GetByID(info.Subject); err == nil {
		resp["username"] = p.Username
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		writeError(w, apperr.Unauthenticated("missing bearer token"))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAuthInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "CargoGate Authentication",
		"tokenType": "JWT (HS256)",
		"roles": []string{
			models.RoleAdmin, models.RoleOperator, models.RoleAuditor, models.RoleClient,
		},
		"endpoints": map[string]string{
			"login":    "POST /auth/login",
			"validate": "POST /auth/validate",
			"me":       "GET /auth/me",
		},
	})
}
