package swap

import (
	"context"
	"fmt"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

// ExecuteInput the approved request and the physical replacement card the
// operator picked at the target station.
type ExecuteInput struct {
	SwapRequestID     string
	ReplacementCardID string
	Actor             string
}

// Execute performs the correction as one atomic unit: restore the original
// card to station stock, repoint the purchase, activate the replacement,
// adjust both stations' presentational counters, write the audit snapshot,
// and complete the request. Any failure rolls the whole thing back; no
// partial card or purchase mutation is ever observable.
func (uc *UseCase) Execute(ctx context.Context, input ExecuteInput) (*entity.SwapHistory, error) {
	var history *entity.SwapHistory
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		s, err := r.Swaps.GetByID(ctx, input.SwapRequestID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NotFoundf("swap request %s not found", input.SwapRequestID)
		}
		if s.Status != entity.SwapStatusApproved {
			return domain.Validationf(domain.CodeValidation,
				"swap request %s is %s, expected %s", s.ID, s.Status, entity.SwapStatusApproved)
		}

		original, err := r.Cards.GetByID(ctx, s.OriginalCardID)
		if err != nil {
			return err
		}
		if original == nil {
			return domain.NotFoundf("card %s not found", s.OriginalCardID)
		}

		replacement, err := r.Cards.GetByID(ctx, input.ReplacementCardID)
		if err != nil {
			return err
		}
		if replacement == nil {
			return domain.NotFoundf("card %s not found", input.ReplacementCardID)
		}
		if replacement.ProductID != s.ExpectedProductID {
			return domain.Validationf(domain.CodeProductMismatch,
				"replacement card %s is product %s, the swap expects product %s",
				replacement.SerialNumber, replacement.ProductID, s.ExpectedProductID)
		}
		if replacement.Status != entity.CardStatusInStation {
			return domain.Validationf(domain.CodeInvalidCardState,
				"replacement card %s is %s, expected %s",
				replacement.SerialNumber, replacement.Status, entity.CardStatusInStation)
		}
		if replacement.StationID == nil || *replacement.StationID != s.TargetStationID {
			return domain.Validationf(domain.CodeValidation,
				"replacement card %s is not at target station %s", replacement.SerialNumber, s.TargetStationID)
		}

		purchase, err := r.Purchases.GetByID(ctx, s.PurchaseID)
		if err != nil {
			return err
		}
		if purchase == nil {
			return domain.NotFoundf("purchase %s not found", s.PurchaseID)
		}

		product, err := r.Products.GetByID(ctx, s.ExpectedProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFoundf("product %s not found", s.ExpectedProductID)
		}

		// Snapshot the original's pre-state before anything mutates.
		snapshot := entity.SwapHistory{
			SwapRequestID:        s.ID,
			PurchaseID:           purchase.ID,
			OriginalCardID:       original.ID,
			OriginalSerial:       original.SerialNumber,
			OriginalStatusBefore: original.Status,
			OriginalStationID:    original.StationID,
			ReplacementCardID:    replacement.ID,
			ReplacementSerial:    replacement.SerialNumber,
			ReplacementStationID: *replacement.StationID,
			SourceStationID:      s.SourceStationID,
			TargetStationID:      s.TargetStationID,
			SourceAvailableDelta: +1,
			SourceActiveDelta:    -1,
			TargetAvailableDelta: -1,
			TargetActiveDelta:    +1,
		}

		rows, err := r.Cards.Restore(ctx, original.ID, input.Actor)
		if err != nil {
			return err
		}
		if rows != 1 {
			return domain.ConcurrentModificationf(
				"card %s changed state concurrently", original.SerialNumber)
		}

		now := time.Now()
		note := fmt.Sprintf("[swap %s] card %s replaced by %s on %s",
			s.ID, original.SerialNumber, replacement.SerialNumber, now.Format("2006-01-02"))
		rows, err = r.Purchases.Repoint(ctx, purchase.ID, replacement.ID, s.TargetStationID, note, input.Actor)
		if err != nil {
			return err
		}
		if rows != 1 {
			return domain.ConcurrentModificationf("purchase %s changed concurrently", purchase.ID)
		}

		expiry := now.AddDate(0, 0, product.ValidityDays)
		rows, err = r.Cards.Activate(ctx, replacement.ID, purchase.MemberID, now, expiry, product.TotalQuota, input.Actor)
		if err != nil {
			return err
		}
		if rows != 1 {
			return domain.ConcurrentModificationf(
				"card %s changed state concurrently", replacement.SerialNumber)
		}

		// Presentational counters only; the card table stays the source of truth.
		if err := r.Stations.AdjustInventory(ctx, s.SourceStationID, product.ID,
			snapshot.SourceAvailableDelta, snapshot.SourceActiveDelta); err != nil {
			return err
		}
		if err := r.Stations.AdjustInventory(ctx, s.TargetStationID, product.ID,
			snapshot.TargetAvailableDelta, snapshot.TargetActiveDelta); err != nil {
			return err
		}

		snapshot.ExecutedBy = input.Actor
		snapshot.ExecutedAt = now
		if err := r.Swaps.CreateHistory(ctx, &snapshot); err != nil {
			return err
		}

		rows, err = r.Swaps.Complete(ctx, s.ID, replacement.ID, input.Actor, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ConcurrentModificationf("swap request %s changed state concurrently", s.ID)
		}

		history = &snapshot
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, ports.Notification{
		Kind:      "swap",
		Audience:  "supervisors",
		StationID: history.TargetStationID,
		Title:     "Card swap completed",
		Message: fmt.Sprintf("Card %s replaced by %s for purchase %s",
			history.OriginalSerial, history.ReplacementSerial, history.PurchaseID),
	})
	uc.activity.Record(ctx, input.Actor, "swap_execute",
		fmt.Sprintf("swap %s: %s -> %s", input.SwapRequestID, history.OriginalSerial, history.ReplacementSerial))

	return history, nil
}
