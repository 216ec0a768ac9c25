package pgshipment

import (
	"context"
	"time"

	"github.com/BearBump/CargoGate/internal/apperr"
	"github.com/BearBump/CargoGate/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// Insert присваивает id = max(id)+1 внутри транзакции: конкурентные create
// сериализуются на уровне БД и дублей не дают.
func (s *Storage) Insert(ctx context.Context, rec *models.ShipmentRecord) (*models.ShipmentRecord, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id uint64
	err = tx.QueryRow(ctx, `
INSERT INTO shipments (id, origin, destination, status, system, created_at, updated_at)
SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $5
FROM shipments
RETURNING id
`, rec.Origin, rec.Destination, rec.Status, rec.System, now).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "insert shipment")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}

	cp := *rec
	cp.ID = id
	cp.CreatedAt = now
	cp.UpdatedAt = now
	return &cp, nil
}

func (s *Storage) GetByID(ctx context.Context, id uint64) (*models.ShipmentRecord, error) {
	row := s.db.QueryRow(ctx, `
SELECT id, origin, destination, status, system, created_at, updated_at
FROM shipments
WHERE id = $1
`, id)

	rec, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("shipment %d not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select shipment")
	}
	return rec, nil
}

func (s *Storage) Replace(ctx context.Context, id uint64, rec *models.ShipmentRecord) (*models.ShipmentRecord, error) {
	row := s.db.QueryRow(ctx, `
UPDATE shipments
SET origin = $2, destination = $3, status = $4, system = $5, updated_at = $6
WHERE id = $1
RETURNING id, origin, destination, status, system, created_at, updated_at
`, id, rec.Origin, rec.Destination, rec.Status, rec.System, time.Now().UTC())

	out, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("shipment %d not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "update shipment")
	}
	return out, nil
}

func (s *Storage) Delete(ctx context.Context, id uint64) (*models.ShipmentRecord, error) {
	row := s.db.QueryRow(ctx, `
DELETE FROM shipments
WHERE id = $1
RETURNING id, origin, destination, status, system, created_at, updated_at
`, id)

	rec, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("shipment %d not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "delete shipment")
	}
	return rec, nil
}

func (s *Storage) ListAll(ctx context.Context) ([]*models.ShipmentRecord, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, origin, destination, status, system, created_at, updated_at
FROM shipments
ORDER BY id
`)
	if err != nil {
		return nil, errors.Wrap(err, "select shipments")
	}
	defer rows.Close()

	// Пустая таблица — пустой список, не nil: форма на проводе должна
	// совпадать с in-memory стором.
	out := make([]*models.ShipmentRecord, 0)
	for rows.Next() {
		rec, err := scanShipment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan shipment")
		}
		out = append(out, rec)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

// Seed идемпотентно загружает стартовые записи с их исходными id.
func (s *Storage) Seed(ctx context.Context, records []*models.ShipmentRecord) error {
	now := time.Now().UTC()
	for _, rec := range records {
		_, err := s.db.Exec(ctx, `
INSERT INTO shipments (id, origin, destination, status, system, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (id) DO NOTHING
`, rec.ID, rec.Origin, rec.Destination, rec.Status, rec.System, now)
		if err != nil {
			return errors.Wrap(err, "seed shipment")
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*models.ShipmentRecord, error) {
	var rec models.ShipmentRecord
	if err := row.Scan(
		&rec.ID, &rec.Origin, &rec.Destination,
		&rec.Status, &rec.System,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
