package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// StockAlertRepo implements StockAlertRepository over PostgreSQL.
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository builds the adapter. Pass a pool or tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

// FindUnresolved returns the open alert for the tuple, or nil.
func (r *StockAlertRepo) FindUnresolved(ctx context.Context, categoryID, typeID string, stationID *string) (*entity.StockAlert, error) {
	query := `
		SELECT id, category_id, type_id, station_id, current_count, threshold, created_at
		FROM stock_alerts
		WHERE category_id = $1 AND type_id = $2 AND station_id IS NOT DISTINCT FROM $3`
	var a entity.StockAlert
	err := r.q.QueryRow(ctx, query, categoryID, typeID, stationID).Scan(
		&a.ID, &a.CategoryID, &a.TypeID, &a.StationID, &a.CurrentCount, &a.Threshold, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find stock alert: %w", err)
	}
	return &a, nil
}

// Create opens an alert for the tuple.
func (r *StockAlertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_alerts (id, category_id, type_id, station_id, current_count, threshold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CategoryID, a.TypeID, a.StationID, a.CurrentCount, a.Threshold, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create stock alert: %w", err)
	}
	return nil
}

// DeleteUnresolved clears any open alert for the tuple.
func (r *StockAlertRepo) DeleteUnresolved(ctx context.Context, categoryID, typeID string, stationID *string) error {
	query := `
		DELETE FROM stock_alerts
		WHERE category_id = $1 AND type_id = $2 AND station_id IS NOT DISTINCT FROM $3`
	_, err := r.q.Exec(ctx, query, categoryID, typeID, stationID)
	if err != nil {
		return fmt.Errorf("delete stock alert: %w", err)
	}
	return nil
}
