package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/BearBump/CargoGate/internal/apperr"
	"github.com/BearBump/CargoGate/internal/cache"
	"github.com/BearBump/CargoGate/internal/integrations/backend"
	"github.com/BearBump/CargoGate/internal/models"
)

// Resolver выполняет упорядоченный fallback по коннекторам бэкендов.
// Один проход на вызов, без ретраев. Сбои отдельных бэкендов гасятся:
// наружу уходит только итоговое "не найден нигде".
type Resolver struct {
	clients []backend.Client

	cache    cache.BytesCache
	cacheTTL time.Duration

	// callTimeout ограничивает каждый вызов коннектора, чтобы один
	// зависший бэкенд не удерживал всю цепочку.
	callTimeout time.Duration
}

const defaultCallTimeout = 5 * time.Second

// New собирает резолвер над списком коннекторов в порядке приоритета
// (по умолчанию GROUND, AIR, SEA — порядок задаёт вызывающий).
func New(clients []backend.Client) *Resolver {
	return &Resolver{
		clients:     clients,
		callTimeout: defaultCallTimeout,
	}
}

// WithCache включает best-effort кэш найденных записей.
func (r *Resolver) WithCache(c cache.BytesCache, ttl time.Duration) *Resolver {
	if c != nil && ttl > 0 {
		r.cache = c
		r.cacheTTL = ttl
	}
	return r
}

func (r *Resolver) WithCallTimeout(d time.Duration) *Resolver {
	if d > 0 {
		r.callTimeout = d
	}
	return r
}

// ResolveByID идёт по коннекторам по порядку и останавливается на первом
// found. NotFound и unavailable равнозначны "пробуем следующий".
// Предположение at-most-one-match: коллизии id между бэкендами не
// детектируются, выигрывает первый по приоритету.
func (r *Resolver) ResolveByID(ctx context.Context, id uint64) (*models.ShipmentRecord, bool) {
	if rec, ok := r.cacheGet(ctx, id); ok {
		return rec, true
	}

	for _, c := range r.clients {
		res := r.queryOne(ctx, c, id)
		switch res.Outcome {
		case backend.OutcomeFound:
			r.cachePut(ctx, res.Record)
			return res.Record, true
		case backend.OutcomeUnavailable:
			slog.Warn("backend unavailable, trying next",
				"system", c.System(), "shipment_id", id, "error", errString(res.Err))
		}
	}
	return nil, false
}

// ListAllMerged конкатенирует listAll всех доступных бэкендов в порядке
// приоритета. Недоступные пропускаются. Дедупликации по id нет:
// коллизия между двумя бэкендами даёт две записи — это документированное
// поведение, не баг.
func (r *Resolver) ListAllMerged(ctx context.Context) []*models.ShipmentRecord {
	var out []*models.ShipmentRecord
	for _, c := range r.clients {
		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		recs, err := c.ListAll(callCtx)
		cancel()
		if err != nil {
			slog.Warn("backend list failed, skipping",
				"system", c.System(), "error", err.Error())
			continue
		}
		out = append(out, recs...)
	}
	return out
}

// UpdateStatusAnywhere — тот же упорядоченный fallback, что и ResolveByID,
// но для обновления статуса. false — ни один бэкенд не принял апдейт.
func (r *Resolver) UpdateStatusAnywhere(ctx context.Context, id uint64, status string) (*models.ShipmentRecord, bool) {
	for _, c := range r.clients {
		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		res := c.UpdateStatus(callCtx, id, status)
		cancel()

		switch res.Outcome {
		case backend.OutcomeFound:
			r.cachePut(ctx, res.Record)
			return res.Record, true
		case backend.OutcomeUnavailable:
			slog.Warn("backend unavailable on status update, trying next",
				"system", c.System(), "shipment_id", id, "error", errString(res.Err))
		}
	}
	return nil, false
}

// SystemStatus — элемент ответа DescribeAll: инфо бэкенда либо маркер
// недоступности.
type SystemStatus struct {
	Available bool          `json:"available"`
	Info      *backend.Info `json:"info,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// DescribeAll опрашивает все бэкенды независимо: сбой одного никогда
// не мешает собрать инфо остальных.
func (r *Resolver) DescribeAll(ctx context.Context) map[string]SystemStatus {
	out := make(map[string]SystemStatus, len(r.clients))
	for _, c := range r.clients {
		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		info, err := c.Describe(callCtx)
		cancel()

		if err != nil {
			out[c.System()] = SystemStatus{Available: false, Error: "service unavailable"}
			slog.Warn("backend describe failed", "system", c.System(), "error", err.Error())
			continue
		}
		out[c.System()] = SystemStatus{Available: true, Info: &info}
	}
	return out
}

// DescribeOne опрашивает один конкретный бэкенд. В отличие от DescribeAll
// его недоступность здесь — ошибка, а не маркер в карте.
func (r *Resolver) DescribeOne(ctx context.Context, system string) (backend.Info, error) {
	for _, c := range r.clients {
		if c.System() != system {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		info, err := c.Describe(callCtx)
		cancel()
		if err != nil {
			return backend.Info{}, apperr.New(apperr.CodeBackendUnavailable,
				fmt.Sprintf("backend %s is unavailable", system))
		}
		return info, nil
	}
	return backend.Info{}, apperr.NotFound("unknown system %q", system)
}

func (r *Resolver) queryOne(ctx context.Context, c backend.Client, id uint64) backend.QueryResult {
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	return c.QueryByID(callCtx, id)
}

func (r *Resolver) cacheGet(ctx context.Context, id uint64) (*models.ShipmentRecord, bool) {
	if r.cache == nil {
		return nil, false
	}
	b, ok, err := r.cache.Get(ctx, resolvedKey(id))
	if err != nil || !ok {
		return nil, false
	}
	var rec models.ShipmentRecord
	if json.Unmarshal(b, &rec) != nil {
		return nil, false
	}
	return &rec, true
}

func (r *Resolver) cachePut(ctx context.Context, rec *models.ShipmentRecord) {
	if r.cache == nil || rec == nil {
		return
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_ = r.cache.Set(ctx, resolvedKey(rec.ID), b, r.cacheTTL)
}

func resolvedKey(id uint64) string {
	return fmt.Sprintf("shipment:%d:resolved", id)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
