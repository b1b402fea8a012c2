package stock

import (
	"context"
	"fmt"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

// Issue resolution decisions.
const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

// IssueResolutionUseCase finalizes the lost/damaged claims a receipt
// validation reported. Loss is a field-staff claim, so it stays reversible
// (cards remain IN_TRANSIT) until an administrator approves it here.
type IssueResolutionUseCase struct {
	txRunner ports.TxRunner
	activity ports.ActivityLog
}

// NewIssueResolutionUseCase builds the use case.
func NewIssueResolutionUseCase(txRunner ports.TxRunner, activity ports.ActivityLog) *IssueResolutionUseCase {
	return &IssueResolutionUseCase{txRunner: txRunner, activity: activity}
}

// ResolveIssueInput decision is APPROVE or REJECT.
type ResolveIssueInput struct {
	MovementID string
	Decision   string
	Actor      string
}

// ResolveIssueResult reports how many claims were finalized.
type ResolveIssueResult struct {
	ResolvedCount int
}

// Execute operates only on the movement's recorded lost/damaged serials
// still IN_TRANSIT. APPROVE flips them to LOST/DAMAGED keeping the transit
// destination as the station of record. REJECT mutates nothing: the claim
// is dismissed and the notice resolved either way. A second call finds no
// qualifying serials and fails with ALREADY_RESOLVED.
func (uc *IssueResolutionUseCase) Execute(ctx context.Context, input ResolveIssueInput) (*ResolveIssueResult, error) {
	if input.Decision != DecisionApprove && input.Decision != DecisionReject {
		return nil, domain.Validationf(domain.CodeValidation,
			"decision must be %s or %s, got %q", DecisionApprove, DecisionReject, input.Decision)
	}

	var result ResolveIssueResult
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		m, err := r.Movements.GetByID(ctx, input.MovementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NotFoundf("movement %s not found", input.MovementID)
		}
		if m.Type != entity.MovementTypeOut || m.Status != entity.MovementStatusApproved {
			return domain.Validationf(domain.CodeValidation,
				"movement %s is %s/%s, expected a validated outbound shipment", m.ID, m.Type, m.Status)
		}
		if !m.HasOpenIssues() {
			return domain.Validationf(domain.CodeAlreadyResolved,
				"movement %s reported no losses or damages", m.ID)
		}

		pendingLost, err := stillInTransit(ctx, r, m.ProductID, m.LostSerials)
		if err != nil {
			return err
		}
		pendingDamaged, err := stillInTransit(ctx, r, m.ProductID, m.DamagedSerials)
		if err != nil {
			return err
		}
		if len(pendingLost)+len(pendingDamaged) == 0 {
			return domain.Validationf(domain.CodeAlreadyResolved,
				"movement %s has no unresolved lost or damaged cards", m.ID)
		}

		if input.Decision == DecisionApprove {
			if err := finalize(ctx, r, m.ProductID, pendingLost, entity.CardStatusLost, input.Actor); err != nil {
				return err
			}
			if err := finalize(ctx, r, m.ProductID, pendingDamaged, entity.CardStatusDamaged, input.Actor); err != nil {
				return err
			}
		}

		result.ResolvedCount = len(pendingLost) + len(pendingDamaged)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.activity.Record(ctx, input.Actor, "issue_resolve",
		fmt.Sprintf("movement %s: %s, %d cards resolved", input.MovementID, input.Decision, result.ResolvedCount))
	return &result, nil
}

// stillInTransit filters the serials down to cards not yet finalized by a
// prior resolution.
func stillInTransit(ctx context.Context, r ports.Repos, productID string, serials []string) ([]string, error) {
	if len(serials) == 0 {
		return nil, nil
	}
	cards, err := r.Cards.ListBySerials(ctx, productID, serials)
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, c := range cards {
		if c.Status == entity.CardStatusInTransit {
			pending = append(pending, c.SerialNumber)
		}
	}
	return pending, nil
}

// finalize flips the pending serials to their terminal status, keeping the
// transit-destination station untouched.
func finalize(ctx context.Context, r ports.Repos, productID string, serials []string, to entity.CardStatus, actor string) error {
	if len(serials) == 0 {
		return nil
	}
	affected, err := r.Cards.TransitionBySerials(ctx, repository.CardStatusTransition{
		ProductID: productID,
		Serials:   serials,
		From:      entity.CardStatusInTransit,
		To:        to,
		Actor:     actor,
	})
	if err != nil {
		return err
	}
	if affected != int64(len(serials)) {
		return domain.ConcurrentModificationf(
			"issue resolution expected %d cards in transit but %d were updated", len(serials), affected)
	}
	return nil
}
