package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implements PurchaseRepository over PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository builds the adapter. Pass a pool or tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// GetByID fetches one purchase, nil when absent.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	query := `
		SELECT id, card_id, member_id, station_id, purchase_date, COALESCE(notes, ''),
			updated_at, COALESCE(updated_by, '')
		FROM purchases WHERE id = $1`
	var p entity.Purchase
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CardID, &p.MemberID, &p.StationID, &p.PurchaseDate, &p.Notes,
		&p.UpdatedAt, &p.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return &p, nil
}

// Repoint moves the purchase to a different card and station, appending the
// swap note to its free-text notes.
func (r *PurchaseRepo) Repoint(ctx context.Context, purchaseID, cardID, stationID, noteAppend, actor string) (int64, error) {
	query := `
		UPDATE purchases
		SET card_id = $1, station_id = $2,
			notes = CASE WHEN COALESCE(notes, '') = '' THEN $3
				ELSE notes || E'\n' || $3 END,
			updated_at = now(), updated_by = $4
		WHERE id = $5`
	tag, err := r.q.Exec(ctx, query, cardID, stationID, noteAppend, actor, purchaseID)
	if err != nil {
		return 0, fmt.Errorf("repoint purchase %s: %w", purchaseID, err)
	}
	return tag.RowsAffected(), nil
}
