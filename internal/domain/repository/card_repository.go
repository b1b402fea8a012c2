package repository

import (
	"context"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

// CardStatusTransition describes one conditional bulk status flip. The
// implementation must update only rows whose current status equals From and
// report how many rows it touched; the caller compares that count against
// the expected batch size.
type CardStatusTransition struct {
	ProductID string
	Serials   []string
	From      entity.CardStatus
	To        entity.CardStatus

	// StationID, when set, becomes the card's station; the prior station is
	// recorded as previous_station_id. ClearStation reverts a card to office
	// stock (station pushed into previous_station_id, then nulled).
	StationID    *string
	ClearStation bool

	Actor string
}

// CardRepository is the persistence port for cards. All status mutations go
// through conditional updates returning affected-row counts.
type CardRepository interface {
	CreateBatch(ctx context.Context, cards []*entity.Card) error
	GetByID(ctx context.Context, id string) (*entity.Card, error)
	ListBySerials(ctx context.Context, productID string, serials []string) ([]*entity.Card, error)

	// MaxSuffix returns the highest numeric suffix among serials under the
	// given prefix, and whether any exist.
	MaxSuffix(ctx context.Context, productID, prefix string) (int, bool, error)

	TransitionBySerials(ctx context.Context, t CardStatusTransition) (int64, error)

	// Restore flips a SOLD_ACTIVE card back to IN_STATION at its current
	// station, clearing member, purchase date, expiry, and zeroing quota.
	Restore(ctx context.Context, cardID, actor string) (int64, error)

	// Activate flips an IN_STATION card to SOLD_ACTIVE for the member with
	// the given purchase/expiry dates and quota.
	Activate(ctx context.Context, cardID, memberID string, purchaseDate, expiredDate time.Time, quota int, actor string) (int64, error)

	CountByStatus(ctx context.Context, productID string, status entity.CardStatus, stationID *string) (int, error)
	CountByCategoryType(ctx context.Context, categoryID, typeID string, status entity.CardStatus, stationID *string) (int, error)

	// AnyInStation reports whether at least one card of the product sits
	// IN_STATION anywhere.
	AnyInStation(ctx context.Context, productID string) (bool, error)

	// StatusRange returns the lowest and highest serial of the product in
	// the given status, with the count. count == 0 means no range.
	StatusRange(ctx context.Context, productID string, status entity.CardStatus) (first, last string, count int, err error)
}
