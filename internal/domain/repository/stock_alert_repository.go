package repository

import (
	"context"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

// StockAlertRepository is the port for unresolved low-stock alerts, keyed by
// the (category, type, station) tuple. stationID nil means office stock.
type StockAlertRepository interface {
	FindUnresolved(ctx context.Context, categoryID, typeID string, stationID *string) (*entity.StockAlert, error)
	Create(ctx context.Context, a *entity.StockAlert) error
	DeleteUnresolved(ctx context.Context, categoryID, typeID string, stationID *string) error
}
