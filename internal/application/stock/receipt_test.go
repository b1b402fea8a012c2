package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/apptest"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/stock"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

type receiptEnv struct {
	store    *apptest.Store
	notifier *apptest.Notifier
	uc       *stock.ReceiptValidationUseCase
	outUC    *stock.StockOutUseCase
}

func newReceiptEnv(t *testing.T) *receiptEnv {
	t.Helper()
	store := apptest.NewStore()
	store.AddProduct(testProductID, "FWC", "REG", "TPL", 60, 365)
	store.AddStation(testStationID, "STN", "JABAN")
	tx := &apptest.TxRunner{Store: store}
	notifier := &apptest.Notifier{}
	activity := &apptest.ActivityLog{}
	r := apptest.Repos(store)
	monitor := stock.NewLowStockMonitor(tx, testStockConfig(), notifier)
	return &receiptEnv{
		store:    store,
		notifier: notifier,
		uc:       stock.NewReceiptValidationUseCase(tx, monitor, notifier, activity),
		outUC:    stock.NewStockOutUseCase(tx, r.Products, r.Stations, testStockConfig(), notifier, activity),
	}
}

func TestReceipt_FullReceiptDefaultsToAllSent(t *testing.T) {
	env := newReceiptEnv(t)
	env.store.AddCardRange(testProductID, testPrefix, 1, 10, entity.CardStatusInOffice, "")
	out, err := env.outUC.Execute(context.Background(), stock.StockOutInput{
		ProductID: testProductID, StationID: testStationID,
		StartSuffix: "1", EndSuffix: "10", MovementAt: testAt, Actor: "office",
	})
	require.NoError(t, err)

	res, err := env.uc.Execute(context.Background(), stock.ValidateReceiptInput{
		MovementID:         out.MovementID,
		ValidatorStationID: testStationID,
		Actor:              "station-op",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, res.ReceivedCount)
	assert.Zero(t, res.LostCount)
	assert.Zero(t, res.DamagedCount)

	assert.Equal(t, 10, env.store.CountStatus(testProductID, entity.CardStatusInStation))
	// Received cards keep the destination station.
	card := env.store.CardBySerial("TPL2500001")
	require.NotNil(t, card.StationID)
	assert.Equal(t, testStationID, *card.StationID)

	m := env.store.Movements[out.MovementID]
	assert.Equal(t, entity.MovementStatusApproved, m.Status)
	require.NotNil(t, m.ValidatedBy)
	assert.Equal(t, "station-op", *m.ValidatedBy)

	last := env.notifier.Sent[len(env.notifier.Sent)-1]
	assert.Equal(t, "receipt_complete", last.Kind)
}

func TestReceipt_BareSuffixesExpandAgainstMovementPrefix(t *testing.T) {
	env := newReceiptEnv(t)
	env.store.AddCardRange(testProductID, testPrefix, 1, 10, entity.CardStatusInOffice, "")
	out, err := env.outUC.Execute(context.Background(), stock.StockOutInput{
		ProductID: testProductID, StationID: testStationID,
		StartSuffix: "1", EndSuffix: "10", MovementAt: testAt, Actor: "office",
	})
	require.NoError(t, err)

	// Mixed input: a bare suffix, a zero-padded suffix and a full serial.
	res, err := env.uc.Execute(context.Background(), stock.ValidateReceiptInput{
		MovementID:         out.MovementID,
		Lost:               []string{"3"},
		Damaged:            []string{"00005", "TPL2500007"},
		ValidatorStationID: testStationID,
		Actor:              "station-op",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, res.ReceivedCount)
	assert.Equal(t, 1, res.LostCount)
	assert.Equal(t, 2, res.DamagedCount)

	// Conservation: every sent card is accounted for exactly once.
	assert.Equal(t, 10, res.ReceivedCount+res.LostCount+res.DamagedCount)

	// Lost and damaged stay IN_TRANSIT pending resolution, station kept.
	lost := env.store.CardBySerial("TPL2500003")
	assert.Equal(t, entity.CardStatusInTransit, lost.Status)
	require.NotNil(t, lost.StationID)
	assert.Equal(t, testStationID, *lost.StationID)
	assert.Equal(t, entity.CardStatusInTransit, env.store.CardBySerial("TPL2500005").Status)
	assert.Equal(t, entity.CardStatusInStation, env.store.CardBySerial("TPL2500004").Status)

	last := env.notifier.Sent[len(env.notifier.Sent)-1]
	assert.Equal(t, "receipt_issue", last.Kind)
}

func TestReceipt_WrongStationIsRejected(t *testing.T) {
	env := newReceiptEnv(t)
	env.store.AddCardRange(testProductID, testPrefix, 1, 5, entity.CardStatusInOffice, "")
	out, err := env.outUC.Execute(context.Background(), stock.StockOutInput{
		ProductID: testProductID, StationID: testStationID,
		StartSuffix: "1", EndSuffix: "5", MovementAt: testAt, Actor: "office",
	})
	require.NoError(t, err)

	_, err = env.uc.Execute(context.Background(), stock.ValidateReceiptInput{
		MovementID:         out.MovementID,
		ValidatorStationID: "station-other",
		Actor:              "station-op",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeUnauthorizedStation, domain.CodeOf(err))
	assert.Equal(t, 5, env.store.CountStatus(testProductID, entity.CardStatusInTransit))
}

func TestReceipt_OverlapBetweenListsIsRejected(t *testing.T) {
	env := newReceiptEnv(t)
	env.store.AddCardRange(testProductID, testPrefix, 1, 5, entity.CardStatusInOffice, "")
	out, err := env.outUC.Execute(context.Background(), stock.StockOutInput{
		ProductID: testProductID, StationID: testStationID,
		StartSuffix: "1", EndSuffix: "5", MovementAt: testAt, Actor: "office",
	})
	require.NoError(t, err)

	_, err = env.uc.Execute(context.Background(), stock.ValidateReceiptInput{
		MovementID:         out.MovementID,
		Lost:               []string{"2"},
		Damaged:            []string{"TPL2500002"},
		ValidatorStationID: testStationID,
		Actor:              "station-op",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeSerialOverlap, domain.CodeOf(err))
}

func TestReceipt_SerialOutsideShipmentIsRejected(t *testing.T) {
	env := newReceiptEnv(t)
	env.store.AddCardRange(testProductID, testPrefix, 1, 5, entity.CardStatusInOffice, "")
	out, err := env.outUC.Execute(context.Background(), stock.StockOutInput{
		ProductID: testProductID, StationID: testStationID,
		StartSuffix: "1", EndSuffix: "5", MovementAt: testAt, Actor: "office",
	})
	require.NoError(t, err)

	_, err = env.uc.Execute(context.Background(), stock.ValidateReceiptInput{
		MovementID:         out.MovementID,
		Lost:               []string{"99"},
		ValidatorStationID: testStationID,
		Actor:              "station-op",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeUnknownSerial, domain.CodeOf(err))
}

func TestReceipt_ExplicitCountMismatchIsRejected(t *testing.T) {
	env := newReceiptEnv(t)
	env.store.AddCardRange(testProductID, testPrefix, 1, 5, entity.CardStatusInOffice, "")
	out, err := env.outUC.Execute(context.Background(), stock.StockOutInput{
		ProductID: testProductID, StationID: testStationID,
		StartSuffix: "1", EndSuffix: "5", MovementAt: testAt, Actor: "office",
	})
	require.NoError(t, err)

	// Explicit received list covering only 3 of 5 and no exceptions.
	_, err = env.uc.Execute(context.Background(), stock.ValidateReceiptInput{
		MovementID:         out.MovementID,
		Received:           []string{"1", "2", "3"},
		ValidatorStationID: testStationID,
		Actor:              "station-op",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeCountMismatch, domain.CodeOf(err))
	assert.Equal(t, 5, env.store.CountStatus(testProductID, entity.CardStatusInTransit))
}

func TestReceipt_SecondValidationConflicts(t *testing.T) {
	env := newReceiptEnv(t)
	env.store.AddCardRange(testProductID, testPrefix, 1, 5, entity.CardStatusInOffice, "")
	out, err := env.outUC.Execute(context.Background(), stock.StockOutInput{
		ProductID: testProductID, StationID: testStationID,
		StartSuffix: "1", EndSuffix: "5", MovementAt: testAt, Actor: "office",
	})
	require.NoError(t, err)

	_, err = env.uc.Execute(context.Background(), stock.ValidateReceiptInput{
		MovementID: out.MovementID, ValidatorStationID: testStationID, Actor: "op",
	})
	require.NoError(t, err)

	_, err = env.uc.Execute(context.Background(), stock.ValidateReceiptInput{
		MovementID: out.MovementID, ValidatorStationID: testStationID, Actor: "op",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestReceipt_LowStockAlertCreatedBelowThreshold(t *testing.T) {
	env := newReceiptEnv(t)
	env.store.AddCardRange(testProductID, testPrefix, 1, 5, entity.CardStatusInOffice, "")
	out, err := env.outUC.Execute(context.Background(), stock.StockOutInput{
		ProductID: testProductID, StationID: testStationID,
		StartSuffix: "1", EndSuffix: "5", MovementAt: testAt, Actor: "office",
	})
	require.NoError(t, err)

	// 5 received is far below the default threshold of 50.
	_, err = env.uc.Execute(context.Background(), stock.ValidateReceiptInput{
		MovementID: out.MovementID, ValidatorStationID: testStationID, Actor: "op",
	})
	require.NoError(t, err)

	require.Len(t, env.store.Alerts, 1)
	alert := env.store.Alerts[0]
	assert.Equal(t, 5, alert.CurrentCount)
	assert.Equal(t, 50, alert.Threshold)
	require.NotNil(t, alert.StationID)
	assert.Equal(t, testStationID, *alert.StationID)
}
