package entity

import "time"

// Purchase links a sold card to the member who bought it. The swap engine
// repoints it when a misdelivered card is corrected.
type Purchase struct {
	ID           string
	CardID       string
	MemberID     string
	StationID    string
	PurchaseDate time.Time
	Notes        string
	UpdatedAt    time.Time
	UpdatedBy    string
}
