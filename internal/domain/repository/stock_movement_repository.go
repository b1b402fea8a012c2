package repository

import (
	"context"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

// MovementFilter narrows history queries.
type MovementFilter struct {
	Type      string // IN, OUT, or empty for both
	Status    string
	ProductID string
	StationID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockMovementRepository is the persistence port for stock movements.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)

	// Approve flips a PENDING movement to APPROVED, persisting the
	// reconciled serial partitions. Updates only rows still PENDING and
	// returns the affected count (0 means someone got there first).
	Approve(ctx context.Context, id string, received, lost, damaged []string, validatedBy string, validatedAt time.Time) (int64, error)

	Delete(ctx context.Context, id string) (int64, error)

	// CountByBatchPrefix counts movements whose batch id starts with prefix.
	// Only meaningful inside the same transaction as the guarded card flip.
	CountByBatchPrefix(ctx context.Context, prefix string) (int, error)

	List(ctx context.Context, f MovementFilter) ([]*entity.StockMovement, int, error)
}
