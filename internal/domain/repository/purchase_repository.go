package repository

import (
	"context"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

// PurchaseRepository is the port for purchase records.
type PurchaseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)

	// Repoint moves the purchase to a different card and station, appending
	// a human-readable note to its free-text notes.
	Repoint(ctx context.Context, purchaseID, cardID, stationID, noteAppend, actor string) (int64, error)
}
