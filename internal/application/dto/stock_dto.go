package dto

import "time"

// GenerateCardsRequest batch generation of REQUESTED cards.
type GenerateCardsRequest struct {
	ProductID   string `json:"product_id" validate:"required,uuid4"`
	StartSuffix string `json:"start_suffix" validate:"required"`
	EndSuffix   string `json:"end_suffix" validate:"required"`
}

// GenerateCardsResponse the allocated range.
type GenerateCardsResponse struct {
	FirstSerial string `json:"first_serial"`
	LastSerial  string `json:"last_serial"`
	Count       int    `json:"count"`
}

// StockInRequest office receipt of a generated range.
type StockInRequest struct {
	ProductID   string `json:"product_id" validate:"required,uuid4"`
	StartSuffix string `json:"start_suffix" validate:"required"`
	EndSuffix   string `json:"end_suffix" validate:"required"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
}

// StockInResponse summary of the IN movement.
type StockInResponse struct {
	MovementID  string `json:"movement_id"`
	Quantity    int    `json:"quantity"`
	FirstSerial string `json:"first_serial"`
	LastSerial  string `json:"last_serial"`
}

// StockOutRequest distribution of a range to a station.
type StockOutRequest struct {
	ProductID   string `json:"product_id" validate:"required,uuid4"`
	StationID   string `json:"station_id" validate:"required,uuid4"`
	StartSuffix string `json:"start_suffix" validate:"required"`
	EndSuffix   string `json:"end_suffix" validate:"required"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
}

// StockOutResponse summary of the OUT movement.
type StockOutResponse struct {
	MovementID     string `json:"movement_id"`
	BatchID        string `json:"batch_id"`
	RequestedCount int    `json:"requested_count"`
	SentCount      int    `json:"sent_count"`
	SkippedCount   int    `json:"skipped_count"`
}

// ValidateReceiptRequest reconciliation input from the receiving station.
// Lists may mix bare suffixes and full serials; an empty received list is
// auto-filled as sent minus exceptions.
type ValidateReceiptRequest struct {
	Received []string `json:"received" validate:"omitempty,dive,min=1"`
	Lost     []string `json:"lost" validate:"omitempty,dive,min=1"`
	Damaged  []string `json:"damaged" validate:"omitempty,dive,min=1"`
}

// ValidateReceiptResponse counts of the reconciled partitions.
type ValidateReceiptResponse struct {
	ReceivedCount int `json:"received_count"`
	LostCount     int `json:"lost_count"`
	DamagedCount  int `json:"damaged_count"`
}

// ResolveIssueRequest administrative decision on lost/damaged claims.
type ResolveIssueRequest struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVE REJECT"`
}

// ResolveIssueResponse how many claims were finalized.
type ResolveIssueResponse struct {
	ResolvedCount int `json:"resolved_count"`
}

// MovementHistoryRequest filters for the movement listing.
type MovementHistoryRequest struct {
	PageRequest
	Type      string     `query:"type" validate:"omitempty,oneof=IN OUT"`
	Status    string     `query:"status" validate:"omitempty,oneof=PENDING APPROVED"`
	ProductID string     `query:"product_id" validate:"omitempty,uuid4"`
	StationID string     `query:"station_id" validate:"omitempty,uuid4"`
	From      *time.Time `query:"from"`
	To        *time.Time `query:"to"`
}

// MovementResponse one movement in listings and detail.
type MovementResponse struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	ProductID       string     `json:"product_id"`
	StationID       *string    `json:"station_id,omitempty"`
	Quantity        int        `json:"quantity"`
	BatchID         string     `json:"batch_id,omitempty"`
	SentSerials     []string   `json:"sent_serials,omitempty"`
	ReceivedSerials []string   `json:"received_serials,omitempty"`
	LostSerials     []string   `json:"lost_serials,omitempty"`
	DamagedSerials  []string   `json:"damaged_serials,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedBy       string     `json:"created_by"`
	ValidatedBy     *string    `json:"validated_by,omitempty"`
	ValidatedAt     *time.Time `json:"validated_at,omitempty"`
}

// NextSuffixResponse suggestion for the next generation range.
type NextSuffixResponse struct {
	ProductID  string `json:"product_id"`
	NextSuffix int    `json:"next_suffix"`
}

// AvailableRangeResponse first/last serial of a product in a status.
type AvailableRangeResponse struct {
	ProductID   string `json:"product_id"`
	Status      string `json:"status"`
	FirstSerial string `json:"first_serial,omitempty"`
	LastSerial  string `json:"last_serial,omitempty"`
	Count       int    `json:"count"`
}
