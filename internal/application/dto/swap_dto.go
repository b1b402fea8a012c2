package dto

import "time"

// CreateSwapRequest report of a misdelivered card.
type CreateSwapRequest struct {
	PurchaseID      string `json:"purchase_id" validate:"required,uuid4"`
	TargetStationID string `json:"target_station_id" validate:"omitempty,uuid4"`
	Reason          string `json:"reason" validate:"required,min=5,max=500"`
}

// RejectSwapRequest rejection with a substantive reason.
type RejectSwapRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

// ExecuteSwapRequest the physical replacement card picked at the target.
type ExecuteSwapRequest struct {
	ReplacementCardID string `json:"replacement_card_id" validate:"required,uuid4"`
}

// SwapListRequest filters for the swap listing.
type SwapListRequest struct {
	PageRequest
	Status    string `query:"status" validate:"omitempty,oneof=PENDING_APPROVAL APPROVED REJECTED COMPLETED CANCELLED"`
	StationID string `query:"station_id" validate:"omitempty,uuid4"`
}

// SwapResponse one swap request.
type SwapResponse struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	PurchaseID        string     `json:"purchase_id"`
	OriginalCardID    string     `json:"original_card_id"`
	ReplacementCardID *string    `json:"replacement_card_id,omitempty"`
	SourceStationID   string     `json:"source_station_id"`
	TargetStationID   string     `json:"target_station_id"`
	ExpectedProductID string     `json:"expected_product_id"`
	Reason            string     `json:"reason"`
	RejectReason      *string    `json:"reject_reason,omitempty"`
	RequestedBy       string     `json:"requested_by"`
	RequestedAt       time.Time  `json:"requested_at"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty"`
	ExecutedAt        *time.Time `json:"executed_at,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
}

// SwapHistoryResponse one audit snapshot.
type SwapHistoryResponse struct {
	ID                string    `json:"id"`
	SwapRequestID     string    `json:"swap_request_id"`
	PurchaseID        string    `json:"purchase_id"`
	OriginalSerial    string    `json:"original_serial"`
	ReplacementSerial string    `json:"replacement_serial"`
	SourceStationID   string    `json:"source_station_id"`
	TargetStationID   string    `json:"target_station_id"`
	ExecutedBy        string    `json:"executed_by"`
	ExecutedAt        time.Time `json:"executed_at"`
}
