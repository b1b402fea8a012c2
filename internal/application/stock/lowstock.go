package stock

import (
	"context"
	"strings"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/pkg/config"
)

// The GOLD category on the JABAN route turns over faster than everything
// else and carries its own threshold.
const (
	goldCategoryCode = "GOLD"
	jabanRouteCode   = "JABAN"
)

// LowStockMonitor watches per-tuple stock levels and keeps at most one
// unresolved alert per (category, type, station). Debounced and idempotent:
// re-running never duplicates an alert nor leaves a stale one behind.
type LowStockMonitor struct {
	txRunner ports.TxRunner
	cfg      config.StockConfig
	notifier ports.Notifier
}

// NewLowStockMonitor builds the monitor.
func NewLowStockMonitor(txRunner ports.TxRunner, cfg config.StockConfig, notifier ports.Notifier) *LowStockMonitor {
	return &LowStockMonitor{txRunner: txRunner, cfg: cfg, notifier: notifier}
}

// Threshold resolves the alert threshold for a category on a route.
func (m *LowStockMonitor) Threshold(categoryCode, routeCode string) int {
	if strings.EqualFold(categoryCode, goldCategoryCode) && strings.EqualFold(routeCode, jabanRouteCode) {
		return m.cfg.ThresholdGoldJaban
	}
	return m.cfg.ThresholdDefault
}

// CheckInTx evaluates the tuple against its threshold using tx-bound repos,
// so a receipt validation and its alert land in the same transaction.
// Returns whether an alert is (now) open.
func (m *LowStockMonitor) CheckInTx(ctx context.Context, r ports.Repos, categoryID, typeID string, stationID *string, currentCount int) (bool, error) {
	product, err := r.Products.GetByCategoryType(ctx, categoryID, typeID)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, domain.NotFoundf("no product for category %s type %s", categoryID, typeID)
	}

	routeCode := ""
	if stationID != nil {
		station, err := r.Stations.GetByID(ctx, *stationID)
		if err != nil {
			return false, err
		}
		if station == nil {
			return false, domain.NotFoundf("station %s not found", *stationID)
		}
		routeCode = station.RouteCode
	}

	threshold := m.Threshold(product.Category.Code, routeCode)
	existing, err := r.Alerts.FindUnresolved(ctx, categoryID, typeID, stationID)
	if err != nil {
		return false, err
	}

	if currentCount >= threshold {
		if existing != nil {
			if err := r.Alerts.DeleteUnresolved(ctx, categoryID, typeID, stationID); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	if existing != nil {
		return true, nil
	}
	alert := &entity.StockAlert{
		CategoryID:   categoryID,
		TypeID:       typeID,
		StationID:    stationID,
		CurrentCount: currentCount,
		Threshold:    threshold,
		CreatedAt:    time.Now(),
	}
	if err := r.Alerts.Create(ctx, alert); err != nil {
		return false, err
	}
	return true, nil
}

// Check runs a standalone evaluation in its own transaction, computing the
// live count when the caller passes a negative currentCount.
func (m *LowStockMonitor) Check(ctx context.Context, categoryID, typeID string, stationID *string, currentCount int) error {
	var alerted bool
	err := m.txRunner.Run(ctx, func(r ports.Repos) error {
		count := currentCount
		if count < 0 {
			status := entity.CardStatusInOffice
			if stationID != nil {
				status = entity.CardStatusInStation
			}
			n, err := r.Cards.CountByCategoryType(ctx, categoryID, typeID, status, stationID)
			if err != nil {
				return err
			}
			count = n
		}
		open, err := m.CheckInTx(ctx, r, categoryID, typeID, stationID, count)
		if err != nil {
			return err
		}
		alerted = open
		return nil
	})
	if err != nil {
		return err
	}
	if alerted {
		station := ""
		if stationID != nil {
			station = *stationID
		}
		m.notifier.Notify(ctx, ports.Notification{
			Kind:      "low_stock",
			Audience:  "supervisors",
			StationID: station,
			Title:     "Low stock",
			Message:   "stock for the product fell below its threshold",
		})
	}
	return nil
}
