package backend

import (
	"context"

	"github.com/BearBump/CargoGate/internal/models"
)

// Outcome — трёхзначный результат обращения к бэкенду.
// NotFound и Unavailable различаются внутри (диагностика), хотя агрегатор
// в обоих случаях просто идёт к следующему бэкенду.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeUnavailable:
		return "unavailable"
	}
	return "unknown"
}

type QueryResult struct {
	Outcome Outcome
	Record  *models.ShipmentRecord
	// Err — причина Unavailable. Наружу не уходит.
	Err error
}

func Found(rec *models.ShipmentRecord) QueryResult {
	return QueryResult{Outcome: OutcomeFound, Record: rec}
}

func NotFound() QueryResult {
	return QueryResult{Outcome: OutcomeNotFound}
}

func Unavailable(err error) QueryResult {
	return QueryResult{Outcome: OutcomeUnavailable, Err: err}
}

// Info — метаданные бэкенда из его /info. Только для диагностики.
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// Client — единый контракт коннектора к одной из систем (GROUND/AIR/SEA).
// Коннекторы stateless и не ретраят сами: retry/backoff — забота транспорта.
type Client interface {
	// System возвращает тег системы, которую обслуживает коннектор.
	System() string
	QueryByID(ctx context.Context, id uint64) QueryResult
	// ListAll отдаёт полный список одним куском: пагинации в контракте нет.
	ListAll(ctx context.Context) ([]*models.ShipmentRecord, error)
	UpdateStatus(ctx context.Context, id uint64, status string) QueryResult
	Describe(ctx context.Context) (Info, error)
}
