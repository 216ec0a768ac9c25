package memshipment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BearBump/CargoGate/internal/apperr"
	"github.com/BearBump/CargoGate/internal/models"
)

// Storage — in-memory стор записей. Генерация id (max+1) и вставка идут
// под одним мьютексом, поэтому конкурентные create не выдают дублей.
type Storage struct {
	mu    sync.RWMutex
	m     map[uint64]*models.ShipmentRecord
	maxID uint64
}

func New() *Storage {
	return &Storage{m: make(map[uint64]*models.ShipmentRecord)}
}

// Seed загружает стартовые записи с их исходными id. Повторный seed
// существующих id молча пропускает.
func (s *Storage) Seed(records []*models.ShipmentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, rec := range records {
		if _, exists := s.m[rec.ID]; exists {
			continue
		}
		cp := *rec
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = now
		}
		if cp.UpdatedAt.IsZero() {
			cp.UpdatedAt = now
		}
		s.m[cp.ID] = &cp
		if cp.ID > s.maxID {
			s.maxID = cp.ID
		}
	}
}

func (s *Storage) Insert(ctx context.Context, rec *models.ShipmentRecord) (*models.ShipmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	cp := *rec
	cp.ID = s.maxID + 1
	cp.CreatedAt = now
	cp.UpdatedAt = now

	s.m[cp.ID] = &cp
	s.maxID = cp.ID

	out := cp
	return &out, nil
}

func (s *Storage) GetByID(ctx context.Context, id uint64) (*models.ShipmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.m[id]
	if !ok {
		return nil, apperr.NotFound("shipment %d not found", id)
	}
	cp := *rec
	return &cp, nil
}

func (s *Storage) Replace(ctx context.Context, id uint64, rec *models.ShipmentRecord) (*models.ShipmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.m[id]
	if !ok {
		return nil, apperr.NotFound("shipment %d not found", id)
	}

	cp := *rec
	cp.ID = id
	cp.CreatedAt = old.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	s.m[id] = &cp

	out := cp
	return &out, nil
}

func (s *Storage) Delete(ctx context.Context, id uint64) (*models.ShipmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.m[id]
	if !ok {
		return nil, apperr.NotFound("shipment %d not found", id)
	}
	delete(s.m, id)

	cp := *rec
	return &cp, nil
}

func (s *Storage) ListAll(ctx context.Context) ([]*models.ShipmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ShipmentRecord, 0, len(s.m))
	for _, rec := range s.m {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
