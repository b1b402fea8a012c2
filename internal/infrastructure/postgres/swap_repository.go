package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

var _ repository.SwapRepository = (*SwapRepo)(nil)

// SwapRepo implements SwapRepository over PostgreSQL. Status transitions
// are conditional updates returning affected-row counts.
type SwapRepo struct {
	q Querier
}

// NewSwapRepository builds the adapter. Pass a pool or tx (Querier).
func NewSwapRepository(q Querier) *SwapRepo {
	return &SwapRepo{q: q}
}

const swapColumns = `id, status, purchase_id, original_card_id, replacement_card_id,
	source_station_id, target_station_id, expected_product_id, reason, reject_reason,
	requested_by, requested_at, approved_by, approved_at, rejected_by, rejected_at,
	executed_by, executed_at, cancelled_at`

// Create persists a new swap request.
func (r *SwapRepo) Create(ctx context.Context, s *entity.SwapRequest) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	query := `
		INSERT INTO swap_requests (id, status, purchase_id, original_card_id, replacement_card_id,
			source_station_id, target_station_id, expected_product_id, reason, reject_reason,
			requested_by, requested_at, approved_by, approved_at, rejected_by, rejected_at,
			executed_by, executed_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Status, s.PurchaseID, s.OriginalCardID, s.ReplacementCardID,
		s.SourceStationID, s.TargetStationID, s.ExpectedProductID, s.Reason, s.RejectReason,
		s.RequestedBy, s.RequestedAt, s.ApprovedBy, s.ApprovedAt, s.RejectedBy, s.RejectedAt,
		s.ExecutedBy, s.ExecutedAt, s.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("create swap request: %w", err)
	}
	return nil
}

// GetByID fetches one swap request, nil when absent.
func (r *SwapRepo) GetByID(ctx context.Context, id string) (*entity.SwapRequest, error) {
	query := `SELECT ` + swapColumns + ` FROM swap_requests WHERE id = $1`
	s, err := scanSwap(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get swap request: %w", err)
	}
	return s, nil
}

// FindOpenByPurchase returns the PENDING_APPROVAL or APPROVED request for
// the purchase, or nil. The invariant allows at most one.
func (r *SwapRepo) FindOpenByPurchase(ctx context.Context, purchaseID string) (*entity.SwapRequest, error) {
	query := `SELECT ` + swapColumns + ` FROM swap_requests
		WHERE purchase_id = $1 AND status = ANY($2) LIMIT 1`
	open := []string{string(entity.SwapStatusPendingApproval), string(entity.SwapStatusApproved)}
	s, err := scanSwap(r.q.QueryRow(ctx, query, purchaseID, open))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open swap: %w", err)
	}
	return s, nil
}

// Approve flips PENDING_APPROVAL -> APPROVED.
func (r *SwapRepo) Approve(ctx context.Context, id, actor string, at time.Time) (int64, error) {
	return r.transition(ctx, id,
		`UPDATE swap_requests SET status = $1, approved_by = $2, approved_at = $3
		 WHERE id = $4 AND status = $5`,
		entity.SwapStatusApproved, actor, at, id, entity.SwapStatusPendingApproval)
}

// Reject flips PENDING_APPROVAL -> REJECTED with the reason.
func (r *SwapRepo) Reject(ctx context.Context, id, actor, reason string, at time.Time) (int64, error) {
	return r.transition(ctx, id,
		`UPDATE swap_requests SET status = $1, rejected_by = $2, reject_reason = $3, rejected_at = $4
		 WHERE id = $5 AND status = $6`,
		entity.SwapStatusRejected, actor, reason, at, id, entity.SwapStatusPendingApproval)
}

// Cancel flips PENDING_APPROVAL -> CANCELLED.
func (r *SwapRepo) Cancel(ctx context.Context, id string, at time.Time) (int64, error) {
	return r.transition(ctx, id,
		`UPDATE swap_requests SET status = $1, cancelled_at = $2
		 WHERE id = $3 AND status = $4`,
		entity.SwapStatusCancelled, at, id, entity.SwapStatusPendingApproval)
}

// Complete flips APPROVED -> COMPLETED recording the replacement card.
func (r *SwapRepo) Complete(ctx context.Context, id, replacementCardID, actor string, at time.Time) (int64, error) {
	return r.transition(ctx, id,
		`UPDATE swap_requests SET status = $1, replacement_card_id = $2, executed_by = $3, executed_at = $4
		 WHERE id = $5 AND status = $6`,
		entity.SwapStatusCompleted, replacementCardID, actor, at, id, entity.SwapStatusApproved)
}

func (r *SwapRepo) transition(ctx context.Context, id, query string, args ...any) (int64, error) {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("transition swap %s: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

// CreateHistory appends the audit snapshot written at completion.
func (r *SwapRepo) CreateHistory(ctx context.Context, h *entity.SwapHistory) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	query := `
		INSERT INTO swap_history (id, swap_request_id, purchase_id,
			original_card_id, original_serial, original_status_before, original_station_id,
			replacement_card_id, replacement_serial, replacement_station_id,
			source_station_id, target_station_id,
			source_available_delta, source_active_delta, target_available_delta, target_active_delta,
			executed_by, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		h.ID, h.SwapRequestID, h.PurchaseID,
		h.OriginalCardID, h.OriginalSerial, h.OriginalStatusBefore, h.OriginalStationID,
		h.ReplacementCardID, h.ReplacementSerial, h.ReplacementStationID,
		h.SourceStationID, h.TargetStationID,
		h.SourceAvailableDelta, h.SourceActiveDelta, h.TargetAvailableDelta, h.TargetActiveDelta,
		h.ExecutedBy, h.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("create swap history: %w", err)
	}
	return nil
}

// ListHistoryByPurchase returns the purchase's swap audit trail, newest first.
func (r *SwapRepo) ListHistoryByPurchase(ctx context.Context, purchaseID string) ([]*entity.SwapHistory, error) {
	query := `
		SELECT id, swap_request_id, purchase_id,
			original_card_id, original_serial, original_status_before, original_station_id,
			replacement_card_id, replacement_serial, replacement_station_id,
			source_station_id, target_station_id,
			source_available_delta, source_active_delta, target_available_delta, target_active_delta,
			executed_by, executed_at
		FROM swap_history WHERE purchase_id = $1 ORDER BY executed_at DESC`
	rows, err := r.q.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list swap history: %w", err)
	}
	defer rows.Close()
	var list []*entity.SwapHistory
	for rows.Next() {
		var h entity.SwapHistory
		if err := rows.Scan(
			&h.ID, &h.SwapRequestID, &h.PurchaseID,
			&h.OriginalCardID, &h.OriginalSerial, &h.OriginalStatusBefore, &h.OriginalStationID,
			&h.ReplacementCardID, &h.ReplacementSerial, &h.ReplacementStationID,
			&h.SourceStationID, &h.TargetStationID,
			&h.SourceAvailableDelta, &h.SourceActiveDelta, &h.TargetAvailableDelta, &h.TargetActiveDelta,
			&h.ExecutedBy, &h.ExecutedAt,
		); err != nil {
			return nil, fmt.Errorf("scan swap history: %w", err)
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}

// List returns a page of swap requests plus the unpaged total.
func (r *SwapRepo) List(ctx context.Context, f repository.SwapFilter) ([]*entity.SwapRequest, int, error) {
	where := ` WHERE 1=1`
	var args []any
	pos := 1
	if f.Status != "" {
		where += fmt.Sprintf(` AND status = $%d`, pos)
		args = append(args, f.Status)
		pos++
	}
	if f.StationID != "" {
		where += fmt.Sprintf(` AND (source_station_id = $%d OR target_station_id = $%d)`, pos, pos)
		args = append(args, f.StationID)
		pos++
	}

	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM swap_requests`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count swap requests: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + swapColumns + ` FROM swap_requests` + where +
		fmt.Sprintf(` ORDER BY requested_at DESC LIMIT $%d OFFSET $%d`, pos, pos+1)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list swap requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.SwapRequest
	for rows.Next() {
		s, err := scanSwap(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan swap request: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

func scanSwap(row pgx.Row) (*entity.SwapRequest, error) {
	var s entity.SwapRequest
	err := row.Scan(
		&s.ID, &s.Status, &s.PurchaseID, &s.OriginalCardID, &s.ReplacementCardID,
		&s.SourceStationID, &s.TargetStationID, &s.ExpectedProductID, &s.Reason, &s.RejectReason,
		&s.RequestedBy, &s.RequestedAt, &s.ApprovedBy, &s.ApprovedAt, &s.RejectedBy, &s.RejectedAt,
		&s.ExecutedBy, &s.ExecutedAt, &s.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
