package swap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

// Minimum length of a rejection reason.
const minRejectReasonLen = 5

// UseCase drives the swap-request lifecycle: a misdelivered card is
// reported, approved, then corrected by Execute in one atomic unit.
type UseCase struct {
	txRunner ports.TxRunner
	notifier ports.Notifier
	activity ports.ActivityLog
}

// NewUseCase builds the use case.
func NewUseCase(txRunner ports.TxRunner, notifier ports.Notifier, activity ports.ActivityLog) *UseCase {
	return &UseCase{txRunner: txRunner, notifier: notifier, activity: activity}
}

// CreateInput a new swap request for a purchase whose member got the wrong
// card. TargetStationID is where the replacement will be picked up.
type CreateInput struct {
	PurchaseID      string
	TargetStationID string
	Reason          string
	Actor           string
}

// Create validates that the purchase's card is SOLD_ACTIVE, that no other
// open request exists for the purchase, and that at least one card of the
// expected product sits IN_STATION somewhere, then records the request.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*entity.SwapRequest, error) {
	var created *entity.SwapRequest
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		purchase, err := r.Purchases.GetByID(ctx, input.PurchaseID)
		if err != nil {
			return err
		}
		if purchase == nil {
			return domain.NotFoundf("purchase %s not found", input.PurchaseID)
		}

		card, err := r.Cards.GetByID(ctx, purchase.CardID)
		if err != nil {
			return err
		}
		if card == nil {
			return domain.NotFoundf("card %s not found", purchase.CardID)
		}

		if err := checkSwappable(ctx, r, purchase.ID, card, ""); err != nil {
			return err
		}

		target := input.TargetStationID
		if target == "" {
			target = purchase.StationID
		}
		if station, err := r.Stations.GetByID(ctx, target); err != nil {
			return err
		} else if station == nil {
			return domain.NotFoundf("station %s not found", target)
		}

		// SOLD_ACTIVE implies a station of record, but a corrupt row
		// must surface as an error, not a panic.
		if card.StationID == nil {
			return domain.Validationf(domain.CodeInvalidCardState,
				"card %s is %s but has no station of record", card.SerialNumber, card.Status)
		}

		created = &entity.SwapRequest{
			Status:            entity.SwapStatusPendingApproval,
			PurchaseID:        purchase.ID,
			OriginalCardID:    card.ID,
			SourceStationID:   *card.StationID,
			TargetStationID:   target,
			ExpectedProductID: card.ProductID,
			Reason:            strings.TrimSpace(input.Reason),
			RequestedBy:       input.Actor,
			RequestedAt:       time.Now(),
		}
		return r.Swaps.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	uc.activity.Record(ctx, input.Actor, "swap_create",
		fmt.Sprintf("swap %s for purchase %s", created.ID, input.PurchaseID))
	return created, nil
}

// Approve re-validates the create-time conditions (state may have drifted)
// and flips the request to APPROVED.
func (uc *UseCase) Approve(ctx context.Context, id, actor string) error {
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		s, err := r.Swaps.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NotFoundf("swap request %s not found", id)
		}
		if s.Status != entity.SwapStatusPendingApproval {
			return domain.Validationf(domain.CodeValidation,
				"swap request %s is %s, expected %s", id, s.Status, entity.SwapStatusPendingApproval)
		}

		card, err := r.Cards.GetByID(ctx, s.OriginalCardID)
		if err != nil {
			return err
		}
		if card == nil {
			return domain.NotFoundf("card %s not found", s.OriginalCardID)
		}
		if err := checkSwappable(ctx, r, s.PurchaseID, card, s.ID); err != nil {
			return err
		}

		rows, err := r.Swaps.Approve(ctx, id, actor, time.Now())
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ConcurrentModificationf("swap request %s changed state concurrently", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.activity.Record(ctx, actor, "swap_approve", fmt.Sprintf("swap %s approved", id))
	return nil
}

// Reject flips the request to REJECTED. A substantive reason is required.
func (uc *UseCase) Reject(ctx context.Context, id, reason, actor string) error {
	reason = strings.TrimSpace(reason)
	if len(reason) < minRejectReasonLen {
		return domain.Validationf(domain.CodeValidation,
			"rejection reason must be at least %d characters", minRejectReasonLen)
	}

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		s, err := r.Swaps.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NotFoundf("swap request %s not found", id)
		}
		rows, err := r.Swaps.Reject(ctx, id, actor, reason, time.Now())
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.Validationf(domain.CodeValidation,
				"swap request %s is %s, expected %s", id, s.Status, entity.SwapStatusPendingApproval)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.activity.Record(ctx, actor, "swap_reject", fmt.Sprintf("swap %s rejected: %s", id, reason))
	return nil
}

// Cancel withdraws a request. Only the original requester may cancel, and
// only while the request is still PENDING_APPROVAL.
func (uc *UseCase) Cancel(ctx context.Context, id, actor string) error {
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		s, err := r.Swaps.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NotFoundf("swap request %s not found", id)
		}
		if s.RequestedBy != actor {
			return domain.Unauthorizedf(domain.CodeAuthorization,
				"only the requester may cancel swap %s", id)
		}
		rows, err := r.Swaps.Cancel(ctx, id, time.Now())
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.Validationf(domain.CodeValidation,
				"swap request %s is %s, expected %s", id, s.Status, entity.SwapStatusPendingApproval)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.activity.Record(ctx, actor, "swap_cancel", fmt.Sprintf("swap %s cancelled", id))
	return nil
}

// checkSwappable enforces the two create/approve conditions: the purchase's
// card is SOLD_ACTIVE and no other open request exists for the purchase.
// It also requires physical stock of the expected product somewhere.
func checkSwappable(ctx context.Context, r ports.Repos, purchaseID string, card *entity.Card, selfID string) error {
	if card.Status != entity.CardStatusSoldActive {
		return domain.Validationf(domain.CodeInvalidCardState,
			"card %s is %s, expected %s", card.SerialNumber, card.Status, entity.CardStatusSoldActive)
	}
	open, err := r.Swaps.FindOpenByPurchase(ctx, purchaseID)
	if err != nil {
		return err
	}
	if open != nil && open.ID != selfID {
		return domain.Validationf(domain.CodeValidation,
			"purchase %s already has an open swap request (%s)", purchaseID, open.ID)
	}
	inStock, err := r.Cards.AnyInStation(ctx, card.ProductID)
	if err != nil {
		return err
	}
	if !inStock {
		return domain.Validationf(domain.CodeValidation,
			"no card of product %s is available at any station", card.ProductID)
	}
	return nil
}
