package entity

import (
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
)

// CardStatus lifecycle states of a physical card.
type CardStatus string

const (
	CardStatusRequested    CardStatus = "REQUESTED"
	CardStatusInOffice     CardStatus = "IN_OFFICE"
	CardStatusInTransit    CardStatus = "IN_TRANSIT"
	CardStatusInStation    CardStatus = "IN_STATION"
	CardStatusSoldActive   CardStatus = "SOLD_ACTIVE"
	CardStatusSoldInactive CardStatus = "SOLD_INACTIVE"
	CardStatusLost         CardStatus = "LOST"
	CardStatusDamaged      CardStatus = "DAMAGED"
	CardStatusBlocked      CardStatus = "BLOCKED"
	CardStatusDeleted      CardStatus = "DELETED"
)

// Valid reports whether s is one of the known lifecycle states.
func (s CardStatus) Valid() bool {
	switch s {
	case CardStatusRequested, CardStatusInOffice, CardStatusInTransit, CardStatusInStation,
		CardStatusSoldActive, CardStatusSoldInactive, CardStatusLost, CardStatusDamaged,
		CardStatusBlocked, CardStatusDeleted:
		return true
	}
	return false
}

// Card is one serialized physical inventory unit.
type Card struct {
	ID                string
	ProductID         string
	SerialNumber      string // unique, template+year+zero-padded suffix
	Status            CardStatus
	StationID         *string
	PreviousStationID *string
	MemberID          *string
	PurchaseDate      *time.Time
	ExpiredDate       *time.Time
	QuotaRemaining    int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	UpdatedBy         string
}

// ValidateState enforces the joint status/station invariant in one place:
// REQUESTED and IN_OFFICE carry no station; IN_TRANSIT, IN_STATION and the
// sold states carry one; LOST and DAMAGED keep the station where the loss
// occurred. Quota never goes negative.
func (c *Card) ValidateState() error {
	if c.QuotaRemaining < 0 {
		return domain.Validationf(domain.CodeInvalidCardState,
			"card %s: negative remaining quota %d", c.SerialNumber, c.QuotaRemaining)
	}
	switch c.Status {
	case CardStatusRequested, CardStatusInOffice:
		if c.StationID != nil {
			return domain.Validationf(domain.CodeInvalidCardState,
				"card %s: status %s must not carry a station", c.SerialNumber, c.Status)
		}
	case CardStatusInTransit, CardStatusInStation, CardStatusSoldActive, CardStatusSoldInactive:
		if c.StationID == nil {
			return domain.Validationf(domain.CodeInvalidCardState,
				"card %s: status %s requires a station", c.SerialNumber, c.Status)
		}
	case CardStatusLost, CardStatusDamaged, CardStatusBlocked, CardStatusDeleted:
		// station optional: lost/damaged keep the transit destination when known
	default:
		return domain.Validationf(domain.CodeInvalidCardState,
			"card %s: unknown status %q", c.SerialNumber, c.Status)
	}
	if c.Status == CardStatusSoldActive && c.MemberID == nil {
		return domain.Validationf(domain.CodeInvalidCardState,
			"card %s: SOLD_ACTIVE requires a member", c.SerialNumber)
	}
	return nil
}
