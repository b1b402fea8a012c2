package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/serial"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/pkg/config"
)

// Shipment policies. Strict requires the whole requested range to be
// IN_OFFICE; lenient ships whatever subset is available and reports the
// skipped count. Which families are lenient is configuration, not code.
const (
	PolicyStrict  = "strict"
	PolicyLenient = "lenient"
)

// StockOutUseCase creates an OUT movement: a serial range leaves the office
// for a station, cards flipping IN_OFFICE -> IN_TRANSIT under the
// double-booking guard.
type StockOutUseCase struct {
	txRunner ports.TxRunner
	products repository.ProductRepository
	stations repository.StationRepository
	cfg      config.StockConfig
	notifier ports.Notifier
	activity ports.ActivityLog
}

// NewStockOutUseCase builds the use case.
func NewStockOutUseCase(
	txRunner ports.TxRunner,
	products repository.ProductRepository,
	stations repository.StationRepository,
	cfg config.StockConfig,
	notifier ports.Notifier,
	activity ports.ActivityLog,
) *StockOutUseCase {
	return &StockOutUseCase{
		txRunner: txRunner,
		products: products,
		stations: stations,
		cfg:      cfg,
		notifier: notifier,
		activity: activity,
	}
}

// StockOutInput input for an OUT movement.
type StockOutInput struct {
	ProductID   string
	StationID   string
	StartSuffix string
	EndSuffix   string
	MovementAt  time.Time
	Notes       string
	Actor       string
}

// StockOutResult reports what was shipped. SkippedCount is only non-zero
// under the lenient policy.
type StockOutResult struct {
	MovementID     string
	BatchID        string
	RequestedCount int
	SentCount      int
	SkippedCount   int
}

// Execute resolves the range, applies the family's policy, then atomically
// flips the sent cards to IN_TRANSIT at the destination, allocates the batch
// id, and writes one PENDING OUT movement. The flip is a conditional bulk
// update; an affected-row mismatch aborts the whole transaction.
func (uc *StockOutUseCase) Execute(ctx context.Context, input StockOutInput) (*StockOutResult, error) {
	product, err := uc.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFoundf("product %s not found", input.ProductID)
	}
	station, err := uc.stations.GetByID(ctx, input.StationID)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, domain.NotFoundf("station %s not found", input.StationID)
	}

	at := input.MovementAt
	if at.IsZero() {
		at = time.Now()
	}
	year := serial.YearSuffix(at)

	start, err := serial.ParseSuffix(input.StartSuffix, product.SerialTemplate, year)
	if err != nil {
		return nil, err
	}
	end, err := serial.ParseSuffix(input.EndSuffix, product.SerialTemplate, year)
	if err != nil {
		return nil, err
	}
	requested, err := serial.Range(product.SerialTemplate, year, start, end, serial.MovementBatchCap)
	if err != nil {
		return nil, err
	}

	policy := PolicyStrict
	if uc.cfg.IsLenient(product.Category.Code) {
		policy = PolicyLenient
	}

	var (
		movement *entity.StockMovement
		result   StockOutResult
	)
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		sent, err := resolveShippable(ctx, r, product.ID, requested, policy)
		if err != nil {
			return err
		}

		stationID := station.ID
		affected, err := r.Cards.TransitionBySerials(ctx, repository.CardStatusTransition{
			ProductID: product.ID,
			Serials:   sent,
			From:      entity.CardStatusInOffice,
			To:        entity.CardStatusInTransit,
			StationID: &stationID,
			Actor:     input.Actor,
		})
		if err != nil {
			return err
		}
		if affected != int64(len(sent)) {
			return domain.ConcurrentModificationf(
				"stock out claimed %d cards but %d were updated", len(sent), affected)
		}

		batchID, err := allocateBatchID(ctx, r.Movements, product.Category.Code, station.RouteCode, station.Code)
		if err != nil {
			return err
		}

		movement = &entity.StockMovement{
			Type:        entity.MovementTypeOut,
			Status:      entity.MovementStatusPending,
			ProductID:   product.ID,
			CategoryID:  product.CategoryID,
			TypeID:      product.TypeID,
			StationID:   &stationID,
			Quantity:    len(sent),
			SentSerials: sent,
			BatchID:     batchID,
			Notes:       input.Notes,
			CreatedAt:   at,
			CreatedBy:   input.Actor,
		}
		if err := r.Movements.Create(ctx, movement); err != nil {
			return err
		}

		result = StockOutResult{
			MovementID:     movement.ID,
			BatchID:        batchID,
			RequestedCount: len(requested),
			SentCount:      len(sent),
			SkippedCount:   len(requested) - len(sent),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, ports.Notification{
		Kind:      "stock_out",
		Audience:  "supervisors",
		StationID: station.ID,
		Title:     "Shipment pending receipt",
		Message: fmt.Sprintf("Batch %s: %d cards in transit to %s, awaiting validation",
			result.BatchID, result.SentCount, station.Name),
	})
	uc.activity.Record(ctx, input.Actor, "stock_out",
		fmt.Sprintf("movement %s batch %s: sent %d of %d to station %s",
			result.MovementID, result.BatchID, result.SentCount, result.RequestedCount, station.ID))

	return &result, nil
}

// resolveShippable loads the requested serials and applies the policy.
// Strict fails on any serial that is missing or not IN_OFFICE; lenient
// returns the IN_OFFICE subset as long as it is non-empty.
func resolveShippable(ctx context.Context, r ports.Repos, productID string, requested []string, policy string) ([]string, error) {
	cards, err := r.Cards.ListBySerials(ctx, productID, requested)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[string]*entity.Card, len(cards))
	for _, c := range cards {
		byNumber[c.SerialNumber] = c
	}

	var available, missing, unavailable []string
	for _, s := range requested {
		c, ok := byNumber[s]
		switch {
		case !ok:
			missing = append(missing, s)
		case c.Status != entity.CardStatusInOffice:
			unavailable = append(unavailable, fmt.Sprintf("%s (%s)", s, c.Status))
		default:
			available = append(available, s)
		}
	}

	if policy == PolicyStrict && (len(missing) > 0 || len(unavailable) > 0) {
		msg := "range not fully available in office stock"
		if len(missing) > 0 {
			msg += fmt.Sprintf("; not found: %s", summarizeSerials(missing))
		}
		if len(unavailable) > 0 {
			msg += fmt.Sprintf("; wrong status: %s", summarizeSerials(unavailable))
		}
		return nil, domain.Validationf(domain.CodeIncompleteShipment, "%s", msg)
	}
	if len(available) == 0 {
		return nil, domain.Validationf(domain.CodeIncompleteShipment,
			"none of the %d requested cards are in office stock", len(requested))
	}
	return available, nil
}

// Cancel deletes a PENDING OUT movement, reverting its cards to IN_OFFICE.
// The only allowed undo, and only while every card is still IN_TRANSIT.
func (uc *StockOutUseCase) Cancel(ctx context.Context, movementID, actor string) error {
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		m, err := r.Movements.GetByID(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NotFoundf("movement %s not found", movementID)
		}
		if m.Type != entity.MovementTypeOut || m.Status != entity.MovementStatusPending {
			return domain.Validationf(domain.CodeValidation,
				"movement %s is %s/%s, only pending outbound movements can be cancelled",
				movementID, m.Type, m.Status)
		}

		affected, err := r.Cards.TransitionBySerials(ctx, repository.CardStatusTransition{
			ProductID:    m.ProductID,
			Serials:      m.SentSerials,
			From:         entity.CardStatusInTransit,
			To:           entity.CardStatusInOffice,
			ClearStation: true,
			Actor:        actor,
		})
		if err != nil {
			return err
		}
		if affected != int64(m.Quantity) {
			return domain.ConcurrentModificationf(
				"cancel expected %d cards in transit but %d were reverted", m.Quantity, affected)
		}

		deleted, err := r.Movements.Delete(ctx, movementID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return domain.ConcurrentModificationf("movement %s was validated concurrently", movementID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.activity.Record(ctx, actor, "stock_out_cancel", fmt.Sprintf("movement %s cancelled", movementID))
	return nil
}
