package entity

import "time"

// Station is a field point of sale receiving card shipments.
type Station struct {
	ID        string
	Code      string // short code used in batch ids
	RouteCode string // line/route the station belongs to (e.g. JABAN)
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StationInventory is a presentational per-station aggregate kept in step
// with card movements. The source of truth remains the live card table.
type StationInventory struct {
	StationID      string
	ProductID      string
	AvailableCount int
	ActiveCount    int
	UpdatedAt      time.Time
}
