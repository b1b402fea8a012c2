package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/apptest"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/stock"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

func newMonitorEnv(t *testing.T) (*apptest.Store, *stock.LowStockMonitor, *apptest.Notifier) {
	t.Helper()
	store := apptest.NewStore()
	notifier := &apptest.Notifier{}
	monitor := stock.NewLowStockMonitor(&apptest.TxRunner{Store: store}, testStockConfig(), notifier)
	return store, monitor, notifier
}

func TestThreshold_GoldOnJabanIsHigher(t *testing.T) {
	_, monitor, _ := newMonitorEnv(t)

	assert.Equal(t, 100, monitor.Threshold("GOLD", "JABAN"))
	assert.Equal(t, 100, monitor.Threshold("gold", "jaban"))
	assert.Equal(t, 50, monitor.Threshold("GOLD", "OTHER"))
	assert.Equal(t, 50, monitor.Threshold("FWC", "JABAN"))
}

func TestCheck_CreatesAlertBelowThresholdAndDebounces(t *testing.T) {
	store, monitor, notifier := newMonitorEnv(t)
	store.AddProduct(testProductID, "FWC", "REG", "TPL", 60, 365)
	store.AddStation(testStationID, "STN", "JABAN")
	stationID := testStationID

	require.NoError(t, monitor.Check(context.Background(), "cat-FWC", "type-REG", &stationID, 10))
	require.Len(t, store.Alerts, 1)
	assert.Equal(t, 10, store.Alerts[0].CurrentCount)
	assert.Equal(t, 50, store.Alerts[0].Threshold)
	require.Len(t, notifier.Sent, 1)
	assert.Equal(t, "low_stock", notifier.Sent[0].Kind)

	// Still low: no duplicate alert.
	require.NoError(t, monitor.Check(context.Background(), "cat-FWC", "type-REG", &stationID, 8))
	assert.Len(t, store.Alerts, 1)
}

func TestCheck_DeletesAlertOnceRecovered(t *testing.T) {
	store, monitor, _ := newMonitorEnv(t)
	store.AddProduct(testProductID, "FWC", "REG", "TPL", 60, 365)
	store.AddStation(testStationID, "STN", "JABAN")
	stationID := testStationID

	require.NoError(t, monitor.Check(context.Background(), "cat-FWC", "type-REG", &stationID, 10))
	require.Len(t, store.Alerts, 1)

	require.NoError(t, monitor.Check(context.Background(), "cat-FWC", "type-REG", &stationID, 80))
	assert.Empty(t, store.Alerts)
}

func TestCheck_GoldJabanUsesItsOwnThreshold(t *testing.T) {
	store, monitor, _ := newMonitorEnv(t)
	store.AddProduct("prod-gold", "GOLD", "REG", "GLD", 60, 365)
	store.AddStation(testStationID, "STN", "JABAN")
	stationID := testStationID

	// 70 is fine for the default threshold but low for GOLD on JABAN.
	require.NoError(t, monitor.Check(context.Background(), "cat-GOLD", "type-REG", &stationID, 70))
	require.Len(t, store.Alerts, 1)
	assert.Equal(t, 100, store.Alerts[0].Threshold)
}

func TestCheck_ComputesLiveCountForOfficeStock(t *testing.T) {
	store, monitor, _ := newMonitorEnv(t)
	store.AddProduct(testProductID, "FWC", "REG", "TPL", 60, 365)
	store.AddCardRange(testProductID, testPrefix, 1, 7, entity.CardStatusInOffice, "")

	// Negative count means "count it yourself"; nil station means office.
	require.NoError(t, monitor.Check(context.Background(), "cat-FWC", "type-REG", nil, -1))
	require.Len(t, store.Alerts, 1)
	assert.Equal(t, 7, store.Alerts[0].CurrentCount)
	assert.Nil(t, store.Alerts[0].StationID)
}

func TestCheck_AlertsAreScopedPerStation(t *testing.T) {
	store, monitor, _ := newMonitorEnv(t)
	store.AddProduct(testProductID, "FWC", "REG", "TPL", 60, 365)
	store.AddStation("station-a", "STA", "JABAN")
	store.AddStation("station-b", "STB", "JABAN")
	a, b := "station-a", "station-b"

	require.NoError(t, monitor.Check(context.Background(), "cat-FWC", "type-REG", &a, 10))
	require.NoError(t, monitor.Check(context.Background(), "cat-FWC", "type-REG", &b, 10))
	assert.Len(t, store.Alerts, 2)

	// Recovery at one station leaves the other's alert standing.
	require.NoError(t, monitor.Check(context.Background(), "cat-FWC", "type-REG", &a, 90))
	require.Len(t, store.Alerts, 1)
	assert.Equal(t, b, *store.Alerts[0].StationID)
}
