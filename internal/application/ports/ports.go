package ports

import (
	"context"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

// Repos bundles the repositories a transactional use case works with, all
// bound to the same transaction.
type Repos struct {
	Cards     repository.CardRepository
	Movements repository.StockMovementRepository
	Products  repository.ProductRepository
	Stations  repository.StationRepository
	Purchases repository.PurchaseRepository
	Swaps     repository.SwapRepository
	Alerts    repository.StockAlertRepository
}

// TxRunner executes fn inside one all-or-nothing transaction. An error from
// fn rolls everything back; nil commits.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Notification is a fire-and-forget message for the delivery collaborator.
type Notification struct {
	Title     string
	Message   string
	Audience  string // "supervisors", "admins", "station"
	StationID string
	Kind      string // "stock_out", "receipt_issue", "receipt_complete", "low_stock", "swap"
}

// Notifier delivers notifications out-of-band. Failures are logged, never
// propagated: delivery must not roll back the core transaction.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// ActivityLog records who did what for the audit trail.
type ActivityLog interface {
	Record(ctx context.Context, actor, action, detail string)
}
