package entity

import "time"

// Movement types and statuses.
const (
	MovementTypeIn  = "IN"  // office receipt from the manufacturer
	MovementTypeOut = "OUT" // distribution to a station

	MovementStatusPending  = "PENDING"
	MovementStatusApproved = "APPROVED"
)

// StockMovement is one shipment/receipt event over an ordered serial batch.
// Quantity always equals len(SentSerials). For an APPROVED OUT movement the
// received/lost/damaged lists partition SentSerials exactly.
type StockMovement struct {
	ID              string
	Type            string // IN, OUT
	Status          string // PENDING, APPROVED
	ProductID       string
	CategoryID      string
	TypeID          string
	StationID       *string // destination for OUT, nil for office IN
	Quantity        int
	SentSerials     []string
	ReceivedSerials []string
	LostSerials     []string
	DamagedSerials  []string
	BatchID         string
	Notes           string
	CreatedAt       time.Time
	CreatedBy       string
	ValidatedBy     *string
	ValidatedAt     *time.Time
}

// HasOpenIssues reports whether the movement recorded losses or damages.
func (m *StockMovement) HasOpenIssues() bool {
	return len(m.LostSerials)+len(m.DamagedSerials) > 0
}
