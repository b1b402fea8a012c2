package entity

import "time"

// Category is a product family (e.g. FWC, VOUCHER, GOLD).
type Category struct {
	ID   string
	Code string
	Name string
}

// CardType is the card variant within a category.
type CardType struct {
	ID   string
	Code string
	Name string
}

// Product is a category+type combination. Immutable for the purposes of
// the stock engine; SerialTemplate is the fixed prefix of every serial.
type Product struct {
	ID             string
	CategoryID     string
	TypeID         string
	SerialTemplate string
	TotalQuota     int
	ValidityDays   int
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Populated by joined reads.
	Category *Category
	Type     *CardType
}
