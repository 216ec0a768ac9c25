package models

import "time"

// Роли пользователей фасада.
const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
	RoleAuditor  = "AUDITOR"
	RoleClient   = "CLIENT"
)

type Principal struct {
	ID           uint64     `json:"id"`
	Username     string     `json:"username"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Roles        []string   `json:"roles"`
	Enabled      bool       `json:"enabled"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAccessAt *time.Time `json:"lastAccessAt,omitempty"`
}

// HasAnyRole проверяет пересечение ролей принципала с требуемым набором.
func (p *Principal) HasAnyRole(required ...string) bool {
	for _, r := range p.Roles {
		for _, want := range required {
			if r == want {
				return true
			}
		}
	}
	return false
}
