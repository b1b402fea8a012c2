package swap_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/apptest"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/swap"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

const (
	productID  = "prod-1"
	sourceID   = "station-source"
	targetID   = "station-target"
	purchaseID = "purchase-1"
	memberID   = "member-1"
)

type swapEnv struct {
	store    *apptest.Store
	tx       *apptest.TxRunner
	notifier *apptest.Notifier
	uc       *swap.UseCase

	original    *entity.Card
	replacement *entity.Card
}

// newSwapEnv seeds the canonical misdelivery: the member bought at source
// and holds a SOLD_ACTIVE card there, while a pristine card of the same
// product sits IN_STATION at the target.
func newSwapEnv(t *testing.T) *swapEnv {
	t.Helper()
	store := apptest.NewStore()
	store.AddProduct(productID, "FWC", "REG", "TPL", 60, 365)
	store.AddStation(sourceID, "SRC", "JABAN")
	store.AddStation(targetID, "TGT", "JABAN")

	original := store.AddCard(productID, "TPL2500001", entity.CardStatusSoldActive, sourceID)
	member := memberID
	original.MemberID = &member
	now := time.Now()
	original.PurchaseDate = &now
	original.QuotaRemaining = 42

	replacement := store.AddCard(productID, "TPL2500002", entity.CardStatusInStation, targetID)

	store.AddPurchase(purchaseID, original.ID, memberID, sourceID)

	tx := &apptest.TxRunner{Store: store}
	notifier := &apptest.Notifier{}
	uc := swap.NewUseCase(tx, notifier, &apptest.ActivityLog{})
	return &swapEnv{store: store, tx: tx, notifier: notifier, uc: uc, original: original, replacement: replacement}
}

func (env *swapEnv) createApproved(t *testing.T) *entity.SwapRequest {
	t.Helper()
	req, err := env.uc.Create(context.Background(), swap.CreateInput{
		PurchaseID:      purchaseID,
		TargetStationID: targetID,
		Reason:          "member lives near the target station",
		Actor:           "station-staff",
	})
	require.NoError(t, err)
	require.NoError(t, env.uc.Approve(context.Background(), req.ID, "supervisor"))
	return req
}

func TestSwapCreate_RecordsPendingRequest(t *testing.T) {
	env := newSwapEnv(t)

	req, err := env.uc.Create(context.Background(), swap.CreateInput{
		PurchaseID:      purchaseID,
		TargetStationID: targetID,
		Reason:          "wrong station delivery",
		Actor:           "station-staff",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.SwapStatusPendingApproval, req.Status)
	assert.Equal(t, sourceID, req.SourceStationID)
	assert.Equal(t, targetID, req.TargetStationID)
	assert.Equal(t, productID, req.ExpectedProductID)
	assert.Equal(t, env.original.ID, req.OriginalCardID)
}

func TestSwapCreate_DefaultsTargetToPurchaseStation(t *testing.T) {
	env := newSwapEnv(t)

	req, err := env.uc.Create(context.Background(), swap.CreateInput{
		PurchaseID: purchaseID,
		Reason:     "wrong station delivery",
		Actor:      "station-staff",
	})
	require.NoError(t, err)
	assert.Equal(t, sourceID, req.TargetStationID)
}

func TestSwapCreate_RejectsCardNotSoldActive(t *testing.T) {
	env := newSwapEnv(t)
	env.original.Status = entity.CardStatusBlocked

	_, err := env.uc.Create(context.Background(), swap.CreateInput{
		PurchaseID: purchaseID, TargetStationID: targetID,
		Reason: "wrong station delivery", Actor: "station-staff",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidCardState, domain.CodeOf(err))
	// The failure names the card's actual state.
	assert.Contains(t, err.Error(), string(entity.CardStatusBlocked))
}

func TestSwapCreate_RejectsSoldActiveCardWithoutStation(t *testing.T) {
	env := newSwapEnv(t)
	// A corrupt row: SOLD_ACTIVE with no station of record.
	env.original.StationID = nil

	_, err := env.uc.Create(context.Background(), swap.CreateInput{
		PurchaseID: purchaseID, TargetStationID: targetID,
		Reason: "wrong station delivery", Actor: "station-staff",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidCardState, domain.CodeOf(err))
	assert.Empty(t, env.store.Swaps)
}

func TestSwapCreate_RejectsSecondOpenRequest(t *testing.T) {
	env := newSwapEnv(t)

	_, err := env.uc.Create(context.Background(), swap.CreateInput{
		PurchaseID: purchaseID, TargetStationID: targetID,
		Reason: "wrong station delivery", Actor: "station-staff",
	})
	require.NoError(t, err)

	_, err = env.uc.Create(context.Background(), swap.CreateInput{
		PurchaseID: purchaseID, TargetStationID: targetID,
		Reason: "asking again", Actor: "station-staff",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestSwapCreate_RequiresStockSomewhere(t *testing.T) {
	env := newSwapEnv(t)
	env.replacement.Status = entity.CardStatusSoldActive

	_, err := env.uc.Create(context.Background(), swap.CreateInput{
		PurchaseID: purchaseID, TargetStationID: targetID,
		Reason: "wrong station delivery", Actor: "station-staff",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestSwapReject_RequiresSubstantiveReason(t *testing.T) {
	env := newSwapEnv(t)
	req, err := env.uc.Create(context.Background(), swap.CreateInput{
		PurchaseID: purchaseID, TargetStationID: targetID,
		Reason: "wrong station delivery", Actor: "station-staff",
	})
	require.NoError(t, err)

	err = env.uc.Reject(context.Background(), req.ID, "no", "supervisor")
	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	require.NoError(t, env.uc.Reject(context.Background(), req.ID, "stock imbalance at target", "supervisor"))
	assert.Equal(t, entity.SwapStatusRejected, env.store.Swaps[req.ID].Status)
}

func TestSwapCancel_OnlyRequester(t *testing.T) {
	env := newSwapEnv(t)
	req, err := env.uc.Create(context.Background(), swap.CreateInput{
		PurchaseID: purchaseID, TargetStationID: targetID,
		Reason: "wrong station delivery", Actor: "station-staff",
	})
	require.NoError(t, err)

	err = env.uc.Cancel(context.Background(), req.ID, "someone-else")
	require.Error(t, err)
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))

	require.NoError(t, env.uc.Cancel(context.Background(), req.ID, "station-staff"))
	assert.Equal(t, entity.SwapStatusCancelled, env.store.Swaps[req.ID].Status)
}

func TestSwapExecute_AppliesWholeCorrection(t *testing.T) {
	env := newSwapEnv(t)
	req := env.createApproved(t)

	history, err := env.uc.Execute(context.Background(), swap.ExecuteInput{
		SwapRequestID:     req.ID,
		ReplacementCardID: env.replacement.ID,
		Actor:             "target-staff",
	})
	require.NoError(t, err)

	// Original back to sellable stock at the source.
	original := env.store.Cards[env.original.ID]
	assert.Equal(t, entity.CardStatusInStation, original.Status)
	assert.Nil(t, original.MemberID)
	assert.Nil(t, original.PurchaseDate)
	assert.Nil(t, original.ExpiredDate)
	assert.Zero(t, original.QuotaRemaining)

	// Replacement sold to the member with a fresh quota and expiry.
	replacement := env.store.Cards[env.replacement.ID]
	assert.Equal(t, entity.CardStatusSoldActive, replacement.Status)
	require.NotNil(t, replacement.MemberID)
	assert.Equal(t, memberID, *replacement.MemberID)
	assert.Equal(t, 60, replacement.QuotaRemaining)
	require.NotNil(t, replacement.ExpiredDate)

	// Purchase repointed with an audit note.
	purchase := env.store.Purchases[purchaseID]
	assert.Equal(t, env.replacement.ID, purchase.CardID)
	assert.Equal(t, targetID, purchase.StationID)
	assert.Contains(t, purchase.Notes, "TPL2500001")
	assert.Contains(t, purchase.Notes, "TPL2500002")

	// Presentational counters moved on both sides.
	src := env.store.Inventory[sourceID+"|"+productID]
	require.NotNil(t, src)
	assert.Equal(t, 1, src.AvailableCount)
	tgt := env.store.Inventory[targetID+"|"+productID]
	require.NotNil(t, tgt)
	assert.Equal(t, 1, tgt.ActiveCount)

	// Audit snapshot and terminal request state.
	assert.Equal(t, "TPL2500001", history.OriginalSerial)
	assert.Equal(t, "TPL2500002", history.ReplacementSerial)
	require.Len(t, env.store.History, 1)
	assert.Equal(t, entity.SwapStatusCompleted, env.store.Swaps[req.ID].Status)

	require.NotEmpty(t, env.notifier.Sent)
	assert.Equal(t, "swap", env.notifier.Sent[len(env.notifier.Sent)-1].Kind)
}

// failingStationRepo fails the second inventory adjustment, after the
// original was restored and the purchase repointed.
type failingStationRepo struct {
	repository.StationRepository
	calls int
}

func (r *failingStationRepo) AdjustInventory(ctx context.Context, stationID, productID string, availableDelta, activeDelta int) error {
	r.calls++
	if r.calls >= 2 {
		return fmt.Errorf("connection reset")
	}
	return r.StationRepository.AdjustInventory(ctx, stationID, productID, availableDelta, activeDelta)
}

func TestSwapExecute_FailureMidwayRollsEverythingBack(t *testing.T) {
	env := newSwapEnv(t)
	req := env.createApproved(t)

	env.tx.Wrap = func(r ports.Repos) ports.Repos {
		r.Stations = &failingStationRepo{StationRepository: r.Stations}
		return r
	}

	_, err := env.uc.Execute(context.Background(), swap.ExecuteInput{
		SwapRequestID:     req.ID,
		ReplacementCardID: env.replacement.ID,
		Actor:             "target-staff",
	})
	require.Error(t, err)

	// No partial state: everything as before the attempt.
	original := env.store.Cards[env.original.ID]
	assert.Equal(t, entity.CardStatusSoldActive, original.Status)
	require.NotNil(t, original.MemberID)
	assert.Equal(t, 42, original.QuotaRemaining)

	assert.Equal(t, entity.CardStatusInStation, env.store.Cards[env.replacement.ID].Status)
	assert.Equal(t, env.original.ID, env.store.Purchases[purchaseID].CardID)
	assert.Empty(t, env.store.History)
	assert.Empty(t, env.store.Inventory)
	assert.Equal(t, entity.SwapStatusApproved, env.store.Swaps[req.ID].Status)
}

func TestSwapExecute_RejectsWrongProduct(t *testing.T) {
	env := newSwapEnv(t)
	req := env.createApproved(t)

	env.store.AddProduct("prod-2", "VOUCHER", "REG", "VCH", 30, 180)
	wrong := env.store.AddCard("prod-2", "VCH2500001", entity.CardStatusInStation, targetID)

	_, err := env.uc.Execute(context.Background(), swap.ExecuteInput{
		SwapRequestID:     req.ID,
		ReplacementCardID: wrong.ID,
		Actor:             "target-staff",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeProductMismatch, domain.CodeOf(err))
}

func TestSwapExecute_RejectsReplacementAtWrongStation(t *testing.T) {
	env := newSwapEnv(t)
	req := env.createApproved(t)

	elsewhere := env.store.AddCard(productID, "TPL2500003", entity.CardStatusInStation, sourceID)

	_, err := env.uc.Execute(context.Background(), swap.ExecuteInput{
		SwapRequestID:     req.ID,
		ReplacementCardID: elsewhere.ID,
		Actor:             "target-staff",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestSwapExecute_RequiresApprovedRequest(t *testing.T) {
	env := newSwapEnv(t)
	req, err := env.uc.Create(context.Background(), swap.CreateInput{
		PurchaseID: purchaseID, TargetStationID: targetID,
		Reason: "wrong station delivery", Actor: "station-staff",
	})
	require.NoError(t, err)

	_, err = env.uc.Execute(context.Background(), swap.ExecuteInput{
		SwapRequestID:     req.ID,
		ReplacementCardID: env.replacement.ID,
		Actor:             "target-staff",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}
