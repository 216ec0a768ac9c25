package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/CargoGate/internal/apperr"
	"github.com/BearBump/CargoGate/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Registry — in-memory реестр принципалов. Персистентного стора для
// пользователей в этом ядре нет, набор сеидится на старте.
type Registry struct {
	mu         sync.RWMutex
	byID       map[uint64]*models.Principal
	byUsername map[string]uint64
	nextID     uint64
}

func NewRegistry() *Registry {
	return &Registry{
		byID:       make(map[uint64]*models.Principal),
		byUsername: make(map[string]uint64),
		nextID:     1,
	}
}

type PrincipalInput struct {
	Username string
	FullName string
	Email    string
	Password string
	Roles    []string
}

func (r *Registry) Create(in PrincipalInput) (*models.Principal, error) {
	if in.Username == "" {
		return nil, apperr.Validation("username is required", map[string]string{"username": "required"})
	}
	if in.Password == "" {
		return nil, apperr.Validation("password is required", map[string]string{"password": "required"})
	}
	if len(in.Roles) == 0 {
		return nil, apperr.Validation("at least one role is required", map[string]string{"roles": "required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(in.Username)
	if _, exists := r.byUsername[key]; exists {
		return nil, apperr.Validation("username already taken", map[string]string{"username": "duplicate"})
	}

	p := &models.Principal{
		ID:           r.nextID,
		Username:     in.Username,
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Roles:        append([]string(nil), in.Roles...),
		Enabled:      true,
		CreatedAt:    time.Now().UTC(),
	}
	r.nextID++
	r.byID[p.ID] = p
	r.byUsername[key] = p.ID
	return clonePrincipal(p), nil
}

// Authenticate сверяет пароль, отсекает выключенных пользователей и
// обновляет отметку последнего входа.
func (r *Registry) Authenticate(ctx context.Context, username, password string) (*models.Principal, error) {
	// Клонируем под read-lock: поля принципала (Enabled в том числе)
	// могут конкурентно меняться через Disable.
	r.mu.RLock()
	var p *models.Principal
	if id, ok := r.byUsername[strings.ToLower(username)]; ok {
		if stored := r.byID[id]; stored != nil {
			p = clonePrincipal(stored)
		}
	}
	r.mu.RUnlock()

	if p == nil || !p.Enabled {
		// bcrypt по фиктивному хэшу, чтобы не палить существование юзера по таймингу.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B1qB1p1sO8qYyXW8W3q0e8o5mGeC"), []byte(password))
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthenticated("invalid credentials")
	}

	now := time.Now().UTC()
	r.mu.Lock()
	if stored := r.byID[p.ID]; stored != nil {
		stored.LastAccessAt = &now
	}
	r.mu.Unlock()

	p.LastAccessAt = &now
	return p, nil
}

func (r *Registry) GetByID(id uint64) (*models.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, apperr.NotFound("principal %d not found", id)
	}
	return clonePrincipal(p), nil
}

func (r *Registry) GetByUsername(username string) (*models.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, apperr.NotFound("principal %q not found", username)
	}
	return clonePrincipal(r.byID[id]), nil
}

// Disable выключает принципала. Жёсткого удаления нет.
func (r *Registry) Disable(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byUsername[strings.ToLower(username)]
	if !ok {
		return apperr.NotFound("principal %q not found", username)
	}
	r.byID[id].Enabled = false
	return nil
}

// SeedDefaults создаёт демо-пользователей: по одному на каждую роль.
func (r *Registry) SeedDefaults() error {
	seed := []PrincipalInput{
		{Username: "admin", FullName: "Default Administrator", Email: "admin@cargogate.local", Password: "admin123", Roles: []string{models.RoleAdmin}},
		{Username: "operator", FullName: "Default Operator", Email: "operator@cargogate.local", Password: "operator123", Roles: []string{models.RoleOperator}},
		{Username: "auditor", FullName: "Default Auditor", Email: "auditor@cargogate.local", Password: "auditor123", Roles: []string{models.RoleAuditor}},
		{Username: "client", FullName: "Default Client", Email: "client@cargogate.local", Password: "client123", Roles: []string{models.RoleClient}},
	}
	for _, in := range seed {
		if _, err := r.Create(in); err != nil {
			return err
		}
	}
	return nil
}

func clonePrincipal(p *models.Principal) *models.Principal {
	cp := *p
	cp.Roles = append([]string(nil), p.Roles...)
	if p.LastAccessAt != nil {
		t := *p.LastAccessAt
		cp.LastAccessAt = &t
	}
	return &cp
}
