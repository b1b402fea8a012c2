package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/apptest"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/stock"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

var testAt = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

const (
	testProductID = "prod-1"
	testPrefix    = "TPL25" // template + two-digit year
)

func newStockInEnv(t *testing.T) (*apptest.Store, *stock.StockInUseCase, *apptest.ActivityLog) {
	t.Helper()
	store := apptest.NewStore()
	store.AddProduct(testProductID, "FWC", "REG", "TPL", 60, 365)
	tx := &apptest.TxRunner{Store: store}
	activity := &apptest.ActivityLog{}
	uc := stock.NewStockInUseCase(tx, apptest.Repos(store).Products, activity)
	return store, uc, activity
}

func TestStockIn_FlipsRequestedToInOffice(t *testing.T) {
	store, uc, activity := newStockInEnv(t)
	store.AddCardRange(testProductID, testPrefix, 1, 10, entity.CardStatusRequested, "")

	res, err := uc.Execute(context.Background(), stock.StockInInput{
		ProductID:   testProductID,
		StartSuffix: "1",
		EndSuffix:   "10",
		MovementAt:  testAt,
		Actor:       "user-office",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, res.Quantity)
	assert.Equal(t, "TPL2500001", res.FirstSerial)
	assert.Equal(t, "TPL2500010", res.LastSerial)

	assert.Equal(t, 10, store.CountStatus(testProductID, entity.CardStatusInOffice))
	assert.Equal(t, 0, store.CountStatus(testProductID, entity.CardStatusRequested))

	m := store.Movements[res.MovementID]
	require.NotNil(t, m)
	assert.Equal(t, entity.MovementTypeIn, m.Type)
	assert.Equal(t, entity.MovementStatusApproved, m.Status)
	assert.Len(t, m.SentSerials, 10)
	assert.Len(t, activity.Entries, 1)
}

func TestStockIn_AcceptsFullSerialInputs(t *testing.T) {
	store, uc, _ := newStockInEnv(t)
	store.AddCardRange(testProductID, testPrefix, 1, 5, entity.CardStatusRequested, "")

	res, err := uc.Execute(context.Background(), stock.StockInInput{
		ProductID:   testProductID,
		StartSuffix: "TPL2500001",
		EndSuffix:   "TPL2500005",
		MovementAt:  testAt,
		Actor:       "user-office",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Quantity)
}

func TestStockIn_MissingSerialsRollsBack(t *testing.T) {
	store, uc, _ := newStockInEnv(t)
	store.AddCardRange(testProductID, testPrefix, 1, 5, entity.CardStatusRequested, "")

	_, err := uc.Execute(context.Background(), stock.StockInInput{
		ProductID:   testProductID,
		StartSuffix: "1",
		EndSuffix:   "10",
		MovementAt:  testAt,
		Actor:       "user-office",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeSerialsNotGenerated, domain.CodeOf(err))

	// Nothing moved, nothing recorded.
	assert.Equal(t, 5, store.CountStatus(testProductID, entity.CardStatusRequested))
	assert.Empty(t, store.Movements)
}

func TestStockIn_WrongStatusFails(t *testing.T) {
	store, uc, _ := newStockInEnv(t)
	store.AddCardRange(testProductID, testPrefix, 1, 4, entity.CardStatusRequested, "")
	store.AddCard(testProductID, "TPL2500005", entity.CardStatusInOffice, "")

	_, err := uc.Execute(context.Background(), stock.StockInInput{
		ProductID:   testProductID,
		StartSuffix: "1",
		EndSuffix:   "5",
		MovementAt:  testAt,
		Actor:       "user-office",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidCardState, domain.CodeOf(err))
	assert.Equal(t, 4, store.CountStatus(testProductID, entity.CardStatusRequested))
}

func TestStockIn_UnknownProduct(t *testing.T) {
	_, uc, _ := newStockInEnv(t)

	_, err := uc.Execute(context.Background(), stock.StockInInput{
		ProductID:   "prod-missing",
		StartSuffix: "1",
		EndSuffix:   "5",
		MovementAt:  testAt,
		Actor:       "user-office",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}
