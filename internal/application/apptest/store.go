// Package apptest provides in-memory implementations of the persistence
// ports plus a transaction runner with copy-on-write semantics, so use-case
// tests exercise real commit/rollback behavior without a database.
package apptest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

// Store is the backing state shared by the fake repositories.
type Store struct {
	Cards     map[string]*entity.Card // by card id
	Movements map[string]*entity.StockMovement
	Products  map[string]*entity.Product
	Stations  map[string]*entity.Station
	Inventory map[string]*entity.StationInventory // by stationID+"|"+productID
	Purchases map[string]*entity.Purchase
	Swaps     map[string]*entity.SwapRequest
	History   []*entity.SwapHistory
	Alerts    []*entity.StockAlert
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		Cards:     map[string]*entity.Card{},
		Movements: map[string]*entity.StockMovement{},
		Products:  map[string]*entity.Product{},
		Stations:  map[string]*entity.Station{},
		Inventory: map[string]*entity.StationInventory{},
		Purchases: map[string]*entity.Purchase{},
		Swaps:     map[string]*entity.SwapRequest{},
	}
}

// clone deep-copies the store so a transaction can mutate freely and be
// discarded on rollback.
func (s *Store) clone() *Store {
	c := NewStore()
	for k, v := range s.Cards {
		cp := *v
		c.Cards[k] = &cp
	}
	for k, v := range s.Movements {
		cp := *v
		cp.SentSerials = append([]string(nil), v.SentSerials...)
		cp.ReceivedSerials = append([]string(nil), v.ReceivedSerials...)
		cp.LostSerials = append([]string(nil), v.LostSerials...)
		cp.DamagedSerials = append([]string(nil), v.DamagedSerials...)
		c.Movements[k] = &cp
	}
	for k, v := range s.Products {
		cp := *v
		c.Products[k] = &cp
	}
	for k, v := range s.Stations {
		cp := *v
		c.Stations[k] = &cp
	}
	for k, v := range s.Inventory {
		cp := *v
		c.Inventory[k] = &cp
	}
	for k, v := range s.Purchases {
		cp := *v
		c.Purchases[k] = &cp
	}
	for k, v := range s.Swaps {
		cp := *v
		c.Swaps[k] = &cp
	}
	c.History = make([]*entity.SwapHistory, 0, len(s.History))
	for _, v := range s.History {
		cp := *v
		c.History = append(c.History, &cp)
	}
	c.Alerts = make([]*entity.StockAlert, 0, len(s.Alerts))
	for _, v := range s.Alerts {
		cp := *v
		c.Alerts = append(c.Alerts, &cp)
	}
	return c
}

// replaceWith commits a transaction clone back into the store.
func (s *Store) replaceWith(c *Store) {
	s.Cards = c.Cards
	s.Movements = c.Movements
	s.Products = c.Products
	s.Stations = c.Stations
	s.Inventory = c.Inventory
	s.Purchases = c.Purchases
	s.Swaps = c.Swaps
	s.History = c.History
	s.Alerts = c.Alerts
}

// ── Seed helpers ─────────────────────────────────────────────────────────────

// AddProduct registers a product with joined category/type metadata.
func (s *Store) AddProduct(id, categoryCode, typeCode, serialTemplate string, totalQuota, validityDays int) *entity.Product {
	p := &entity.Product{
		ID:             id,
		CategoryID:     "cat-" + categoryCode,
		TypeID:         "type-" + typeCode,
		SerialTemplate: serialTemplate,
		TotalQuota:     totalQuota,
		ValidityDays:   validityDays,
		Category:       &entity.Category{ID: "cat-" + categoryCode, Code: categoryCode, Name: categoryCode},
		Type:           &entity.CardType{ID: "type-" + typeCode, Code: typeCode, Name: typeCode},
	}
	s.Products[id] = p
	return p
}

// AddStation registers a station.
func (s *Store) AddStation(id, code, routeCode string) *entity.Station {
	st := &entity.Station{ID: id, Code: code, RouteCode: routeCode, Name: code}
	s.Stations[id] = st
	return st
}

// AddCard registers a card; station may be empty for office states.
func (s *Store) AddCard(productID, serial string, status entity.CardStatus, stationID string) *entity.Card {
	c := &entity.Card{
		ID:           uuid.NewString(),
		ProductID:    productID,
		SerialNumber: serial,
		Status:       status,
	}
	if stationID != "" {
		sid := stationID
		c.StationID = &sid
	}
	s.Cards[c.ID] = c
	return c
}

// AddCardRange registers count cards with consecutive suffixes starting at
// start, all in the given status.
func (s *Store) AddCardRange(productID, prefix string, start, count int, status entity.CardStatus, stationID string) []*entity.Card {
	out := make([]*entity.Card, 0, count)
	for i := 0; i < count; i++ {
		serial := fmt.Sprintf("%s%05d", prefix, start+i)
		out = append(out, s.AddCard(productID, serial, status, stationID))
	}
	return out
}

// AddPurchase registers a purchase of the given card by the member.
func (s *Store) AddPurchase(id, cardID, memberID, stationID string) *entity.Purchase {
	p := &entity.Purchase{
		ID:           id,
		CardID:       cardID,
		MemberID:     memberID,
		StationID:    stationID,
		PurchaseDate: time.Now(),
	}
	s.Purchases[id] = p
	return p
}

// CardBySerial finds a card by serial number, or nil.
func (s *Store) CardBySerial(serial string) *entity.Card {
	for _, c := range s.Cards {
		if c.SerialNumber == serial {
			return c
		}
	}
	return nil
}

// CountStatus counts the product's cards in the given status.
func (s *Store) CountStatus(productID string, status entity.CardStatus) int {
	n := 0
	for _, c := range s.Cards {
		if c.ProductID == productID && c.Status == status {
			n++
		}
	}
	return n
}
