package shipments

import (
	"context"
	"strings"

	"github.com/BearBump/CargoGate/internal/apperr"
	"github.com/BearBump/CargoGate/internal/models"
)

// Repository — контракт локального стора записей. Реализации: in-memory
// (по умолчанию) и postgres. Генерация id и вставка сериализуются внутри
// реализации, сервис об этом не знает.
type Repository interface {
	Insert(ctx context.Context, rec *models.ShipmentRecord) (*models.ShipmentRecord, error)
	GetByID(ctx context.Context, id uint64) (*models.ShipmentRecord, error)
	Replace(ctx context.Context, id uint64, rec *models.ShipmentRecord) (*models.ShipmentRecord, error)
	Delete(ctx context.Context, id uint64) (*models.ShipmentRecord, error)
	ListAll(ctx context.Context) ([]*models.ShipmentRecord, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create валидирует вход, нормализует тег системы к верхнему регистру и
// отдаёт запись с присвоенным id. Валидация отрабатывает до любого
// обращения к стору.
func (s *Service) Create(ctx context.Context, in models.ShipmentInput) (*models.ShipmentRecord, error) {
	rec, err := validate(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Insert(ctx, rec)
}

func (s *Service) GetByID(ctx context.Context, id uint64) (*models.ShipmentRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// Update полностью заменяет изменяемые поля, id неизменен.
func (s *Service) Update(ctx context.Context, id uint64, in models.ShipmentInput) (*models.ShipmentRecord, error) {
	rec, err := validate(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Replace(ctx, id, rec)
}

// Delete возвращает удалённую запись; повторное удаление — not found,
// а не тихий успех.
func (s *Service) Delete(ctx context.Context, id uint64) (*models.ShipmentRecord, error) {
	return s.repo.Delete(ctx, id)
}

// Filter — фильтр списка; пустые поля не ограничивают выборку.
// Матчинг по системе и статусу регистронезависимый.
type Filter struct {
	System string
	Status string
}

func (s *Service) List(ctx context.Context, f Filter) ([]*models.ShipmentRecord, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if f.System == "" && f.Status == "" {
		return all, nil
	}

	out := make([]*models.ShipmentRecord, 0, len(all))
	for _, rec := range all {
		if f.System != "" && !strings.EqualFold(rec.System, f.System) {
			continue
		}
		if f.Status != "" && !strings.EqualFold(rec.Status, f.Status) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

type Stats struct {
	Total    int            `json:"totalShipments"`
	BySystem map[string]int `json:"bySystem"`
	ByStatus map[string]int `json:"byStatus"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Total:    len(all),
		BySystem: make(map[string]int),
		ByStatus: make(map[string]int),
	}
	for _, rec := range all {
		st.BySystem[rec.System]++
		st.ByStatus[strings.ToLower(rec.Status)]++
	}
	return st, nil
}

func validate(in models.ShipmentInput) (*models.ShipmentRecord, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Origin) == "" {
		fields["origin"] = "required"
	}
	if strings.TrimSpace(in.Destination) == "" {
		fields["destination"] = "required"
	}
	if strings.TrimSpace(in.Status) == "" {
		fields["status"] = "required"
	}
	if strings.TrimSpace(in.System) == "" {
		fields["system"] = "required"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("missing required fields", fields)
	}

	system, ok := models.NormalizeSystem(in.System)
	if !ok {
		return nil, apperr.Validation(
			"system must be one of GROUND, AIR, SEA",
			map[string]string{"system": "unknown value"},
		)
	}

	return &models.ShipmentRecord{
		Origin:      strings.TrimSpace(in.Origin),
		Destination: strings.TrimSpace(in.Destination),
		Status:      strings.TrimSpace(in.Status),
		System:      system,
	}, nil
}

// SeedRecords — демо-записи локального стора: по три на систему.
func SeedRecords() []*models.ShipmentRecord {
	return []*models.ShipmentRecord{
		{ID: 123, Origin: "Bogotá", Destination: "Medellín", Status: models.StatusInTransit, System: models.SystemGround},
		{ID: 124, Origin: "Cali", Destination: "Pereira", Status: models.StatusInTransit, System: models.SystemGround},
		{ID: 125, Origin: "Bucaramanga", Destination: "Cartagena", Status: models.StatusPending, System: models.SystemGround},
		{ID: 456, Origin: "Cali", Destination: "Cartagena", Status: models.StatusDelivered, System: models.SystemAir},
		{ID: 457, Origin: "Bogotá", Destination: "Miami", Status: models.StatusInTransit, System: models.SystemAir},
		{ID: 458, Origin: "Medellín", Destination: "Panamá", Status: models.StatusDelivered, System: models.SystemAir},
		{ID: 789, Origin: "Barranquilla", Destination: "Buenaventura", Status: models.StatusPending, System: models.SystemSea},
		{ID: 790, Origin: "Cartagena", Destination: "Valencia", Status: models.StatusInTransit, System: models.SystemSea},
		{ID: 791, Origin: "Buenaventura", Destination: "Shanghai", Status: models.StatusDelivered, System: models.SystemSea},
	}
}
