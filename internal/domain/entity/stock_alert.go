package entity

import "time"

// StockAlert is an unresolved low-stock flag for a (category, type, station)
// tuple. The monitor creates and deletes these; delivery is external.
type StockAlert struct {
	ID           string
	CategoryID   string
	TypeID       string
	StationID    *string // nil = office stock
	CurrentCount int
	Threshold    int
	CreatedAt    time.Time
}
