package repository

import (
	"context"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

// StationRepository is the port for station metadata and the presentational
// per-station inventory counters.
type StationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Station, error)

	// AdjustInventory applies deltas to the (station, product) counter row,
	// creating it when absent.
	AdjustInventory(ctx context.Context, stationID, productID string, availableDelta, activeDelta int) error
	GetInventory(ctx context.Context, stationID, productID string) (*entity.StationInventory, error)
}
