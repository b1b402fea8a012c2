package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

var _ repository.StationRepository = (*StationRepo)(nil)

// StationRepo implements StationRepository over PostgreSQL.
type StationRepo struct {
	q Querier
}

// NewStationRepository builds the adapter. Pass a pool or tx (Querier).
func NewStationRepository(q Querier) *StationRepo {
	return &StationRepo{q: q}
}

// GetByID fetches one station, nil when absent.
func (r *StationRepo) GetByID(ctx context.Context, id string) (*entity.Station, error) {
	query := `
		SELECT id, code, route_code, name, created_at, updated_at
		FROM stations WHERE id = $1`
	var s entity.Station
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Code, &s.RouteCode, &s.Name, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get station: %w", err)
	}
	return &s, nil
}

// AdjustInventory applies deltas to the presentational counter row,
// creating it when absent.
func (r *StationRepo) AdjustInventory(ctx context.Context, stationID, productID string, availableDelta, activeDelta int) error {
	query := `
		INSERT INTO station_inventory (station_id, product_id, available_count, active_count, updated_at)
		VALUES ($1, $2, GREATEST($3, 0), GREATEST($4, 0), now())
		ON CONFLICT (station_id, product_id)
		DO UPDATE SET
			available_count = GREATEST(station_inventory.available_count + $3, 0),
			active_count = GREATEST(station_inventory.active_count + $4, 0),
			updated_at = now()`
	_, err := r.q.Exec(ctx, query, stationID, productID, availableDelta, activeDelta)
	if err != nil {
		return fmt.Errorf("adjust station inventory: %w", err)
	}
	return nil
}

// GetInventory fetches the counter row, nil when absent.
func (r *StationRepo) GetInventory(ctx context.Context, stationID, productID string) (*entity.StationInventory, error) {
	query := `
		SELECT station_id, product_id, available_count, active_count, updated_at
		FROM station_inventory WHERE station_id = $1 AND product_id = $2`
	var inv entity.StationInventory
	err := r.q.QueryRow(ctx, query, stationID, productID).Scan(
		&inv.StationID, &inv.ProductID, &inv.AvailableCount, &inv.ActiveCount, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get station inventory: %w", err)
	}
	return &inv, nil
}
