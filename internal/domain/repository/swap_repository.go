package repository

import (
	"context"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

// SwapFilter narrows swap-request listings.
type SwapFilter struct {
	Status    string
	StationID string
	Limit     int
	Offset    int
}

// SwapRepository is the persistence port for swap requests and their audit
// history. Status transitions are conditional updates returning affected-row
// counts so drifted state surfaces as a conflict, not a silent overwrite.
type SwapRepository interface {
	Create(ctx context.Context, s *entity.SwapRequest) error
	GetByID(ctx context.Context, id string) (*entity.SwapRequest, error)

	// FindOpenByPurchase returns the PENDING_APPROVAL or APPROVED request
	// for the purchase, or nil when none exists.
	FindOpenByPurchase(ctx context.Context, purchaseID string) (*entity.SwapRequest, error)

	Approve(ctx context.Context, id, actor string, at time.Time) (int64, error)                  // from PENDING_APPROVAL
	Reject(ctx context.Context, id, actor, reason string, at time.Time) (int64, error)           // from PENDING_APPROVAL
	Cancel(ctx context.Context, id string, at time.Time) (int64, error)                          // from PENDING_APPROVAL
	Complete(ctx context.Context, id, replacementCardID, actor string, at time.Time) (int64, error) // from APPROVED

	CreateHistory(ctx context.Context, h *entity.SwapHistory) error
	ListHistoryByPurchase(ctx context.Context, purchaseID string) ([]*entity.SwapHistory, error)
	List(ctx context.Context, f SwapFilter) ([]*entity.SwapRequest, int, error)
}
