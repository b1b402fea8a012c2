package stock

import (
	"context"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/serial"
)

// QueryService serves the read side: movement history and detail, the
// next-serial suggestion, and available-range lookups. Pool-bound repos,
// no transactions.
type QueryService struct {
	movements repository.StockMovementRepository
	cards     repository.CardRepository
	products  repository.ProductRepository
}

// NewQueryService builds the service.
func NewQueryService(
	movements repository.StockMovementRepository,
	cards repository.CardRepository,
	products repository.ProductRepository,
) *QueryService {
	return &QueryService{movements: movements, cards: cards, products: products}
}

// MovementDetail fetches one movement.
func (s *QueryService) MovementDetail(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFoundf("movement %s not found", id)
	}
	return m, nil
}

// MovementHistory lists movements matching the filter, newest first, with
// the unpaged total.
func (s *QueryService) MovementHistory(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	return s.movements.List(ctx, f)
}

// NextSuffix suggests the start suffix for the product's next range under
// the current year prefix.
func (s *QueryService) NextSuffix(ctx context.Context, productID string, at time.Time) (int, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.NotFoundf("product %s not found", productID)
	}
	if at.IsZero() {
		at = time.Now()
	}
	prefix := serial.Prefix(product.SerialTemplate, serial.YearSuffix(at))
	highest, ok, err := s.cards.MaxSuffix(ctx, productID, prefix)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 1, nil
	}
	return highest + 1, nil
}

// AvailableRange reports the first/last serial and count of the product's
// cards in a status (the office UI uses IN_OFFICE before a stock out).
func (s *QueryService) AvailableRange(ctx context.Context, productID string, status entity.CardStatus) (first, last string, count int, err error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return "", "", 0, err
	}
	if product == nil {
		return "", "", 0, domain.NotFoundf("product %s not found", productID)
	}
	return s.cards.StatusRange(ctx, productID, status)
}
