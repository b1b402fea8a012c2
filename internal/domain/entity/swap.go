package entity

import "time"

// SwapStatus lifecycle states of a swap request. Strict forward machine:
// PENDING_APPROVAL -> {APPROVED -> COMPLETED | REJECTED} | CANCELLED.
type SwapStatus string

const (
	SwapStatusPendingApproval SwapStatus = "PENDING_APPROVAL"
	SwapStatusApproved        SwapStatus = "APPROVED"
	SwapStatusRejected        SwapStatus = "REJECTED"
	SwapStatusCompleted       SwapStatus = "COMPLETED"
	SwapStatusCancelled       SwapStatus = "CANCELLED"
)

// SwapRequest is one card-correction workflow instance. At most one request
// in {PENDING_APPROVAL, APPROVED} may exist per purchase.
type SwapRequest struct {
	ID                string
	Status            SwapStatus
	PurchaseID        string
	OriginalCardID    string
	ReplacementCardID *string // nil until executed
	SourceStationID   string
	TargetStationID   string
	ExpectedProductID string
	Reason            string
	RejectReason      *string

	RequestedBy string
	RequestedAt time.Time
	ApprovedBy  *string
	ApprovedAt  *time.Time
	RejectedBy  *string
	RejectedAt  *time.Time
	ExecutedBy  *string
	ExecutedAt  *time.Time
	CancelledAt *time.Time
}

// Open reports whether the request still blocks new swaps for its purchase.
func (s *SwapRequest) Open() bool {
	return s.Status == SwapStatusPendingApproval || s.Status == SwapStatusApproved
}

// SwapHistory is the append-only audit snapshot written exactly once, at the
// COMPLETED transition.
type SwapHistory struct {
	ID            string
	SwapRequestID string
	PurchaseID    string

	OriginalCardID       string
	OriginalSerial       string
	OriginalStatusBefore CardStatus
	OriginalStationID    *string

	ReplacementCardID    string
	ReplacementSerial    string
	ReplacementStationID string

	SourceStationID string
	TargetStationID string

	// Inventory deltas applied to the presentational station counters.
	SourceAvailableDelta int
	SourceActiveDelta    int
	TargetAvailableDelta int
	TargetActiveDelta    int

	ExecutedBy string
	ExecutedAt time.Time
}
