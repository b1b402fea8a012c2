package swap

import (
	"context"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

// QueryService serves the read side of swaps over pool-bound repos.
type QueryService struct {
	swaps repository.SwapRepository
}

// NewQueryService builds the service.
func NewQueryService(swaps repository.SwapRepository) *QueryService {
	return &QueryService{swaps: swaps}
}

// Get fetches one swap request.
func (s *QueryService) Get(ctx context.Context, id string) (*entity.SwapRequest, error) {
	req, err := s.swaps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.NotFoundf("swap request %s not found", id)
	}
	return req, nil
}

// List returns a page of swap requests with the unpaged total.
func (s *QueryService) List(ctx context.Context, f repository.SwapFilter) ([]*entity.SwapRequest, int, error) {
	return s.swaps.List(ctx, f)
}

// HistoryByPurchase returns the purchase's swap audit trail.
func (s *QueryService) HistoryByPurchase(ctx context.Context, purchaseID string) ([]*entity.SwapHistory, error) {
	return s.swaps.ListHistoryByPurchase(ctx, purchaseID)
}
