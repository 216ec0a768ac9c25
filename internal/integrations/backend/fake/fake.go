package fake

import (
	"context"
	"sort"
	"sync"

	"github.com/BearBump/CargoGate/internal/integrations/backend"
	"github.com/BearBump/CargoGate/internal/models"
	"github.com/pkg/errors"
)

// FakeClient — детерминированный коннектор для тестов и локальной разработки.
// Записи задаются при создании, режим Down эмулирует недоступный бэкенд.
type FakeClient struct {
	system string

	mu      sync.Mutex
	records map[uint64]*models.ShipmentRecord
	down    bool

	// Счётчики вызовов: тестам важно проверять, что агрегатор
	// не ходит дальше первого найденного.
	QueryCalls  int
	ListCalls   int
	UpdateCalls int
}

func New(system string, records ...*models.ShipmentRecord) *FakeClient {
	m := make(map[uint64]*models.ShipmentRecord, len(records))
	for _, r := range records {
		cp := *r
		cp.System = system
		m[r.ID] = &cp
	}
	return &FakeClient{system: system, records: m}
}

// SetDown переключает эмуляцию недоступности.
func (f *FakeClient) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *FakeClient) System() string { return f.system }

func (f *FakeClient) QueryByID(ctx context.Context, id uint64) backend.QueryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.QueryCalls++

	if f.down {
		return backend.Unavailable(errors.Errorf("%s backend is down", f.system))
	}
	rec, ok := f.records[id]
	if !ok {
		return backend.NotFound()
	}
	cp := *rec
	return backend.Found(&cp)
}

func (f *FakeClient) ListAll(ctx context.Context) ([]*models.ShipmentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++

	if f.down {
		return nil, errors.Errorf("%s backend is down", f.system)
	}
	out := make([]*models.ShipmentRecord, 0, len(f.records))
	for _, rec := range f.records {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeClient) UpdateStatus(ctx context.Context, id uint64, status string) backend.QueryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++

	if f.down {
		return backend.Unavailable(errors.Errorf("%s backend is down", f.system))
	}
	rec, ok := f.records[id]
	if !ok {
		return backend.NotFound()
	}
	rec.Status = status
	cp := *rec
	return backend.Found(&cp)
}

func (f *FakeClient) Describe(ctx context.Context) (backend.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.down {
		return backend.Info{}, errors.Errorf("%s backend is down", f.system)
	}
	return backend.Info{
		Name:        f.system + " fake backend",
		Version:     "dev",
		Description: "in-memory backend emulator",
	}, nil
}
