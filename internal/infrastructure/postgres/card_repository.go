package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

var _ repository.CardRepository = (*CardRepo)(nil)

// CardRepo implements CardRepository over PostgreSQL (usable with pool or tx).
type CardRepo struct {
	q Querier
}

// NewCardRepository builds the adapter. Pass a pool or tx (Querier).
func NewCardRepository(q Querier) *CardRepo {
	return &CardRepo{q: q}
}

const cardColumns = `id, product_id, serial_number, status, station_id, previous_station_id,
	member_id, purchase_date, expired_date, quota_remaining, created_at, updated_at, updated_by`

// CreateBatch inserts a batch of freshly generated cards. A duplicate serial
// means a concurrent generation won the race for the same range.
func (r *CardRepo) CreateBatch(ctx context.Context, cards []*entity.Card) error {
	query := `
		INSERT INTO cards (id, product_id, serial_number, status, station_id, previous_station_id,
			member_id, purchase_date, expired_date, quota_remaining, created_at, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, c := range cards {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, query,
			c.ID, c.ProductID, c.SerialNumber, c.Status, c.StationID, c.PreviousStationID,
			c.MemberID, c.PurchaseDate, c.ExpiredDate, c.QuotaRemaining,
			c.CreatedAt, c.UpdatedAt, c.UpdatedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ConcurrentModificationf(
					"card %s was generated concurrently", c.SerialNumber)
			}
			return fmt.Errorf("create card %s: %w", c.SerialNumber, err)
		}
	}
	return nil
}

// GetByID fetches one card, nil when absent.
func (r *CardRepo) GetByID(ctx context.Context, id string) (*entity.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// ListBySerials fetches the cards of a product matching the given serials.
func (r *CardRepo) ListBySerials(ctx context.Context, productID string, serials []string) ([]*entity.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE product_id = $1 AND serial_number = ANY($2)
		ORDER BY serial_number`
	rows, err := r.q.Query(ctx, query, productID, serials)
	if err != nil {
		return nil, fmt.Errorf("list cards by serials: %w", err)
	}
	defer rows.Close()
	var list []*entity.Card
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// MaxSuffix finds the highest numeric suffix among the product's serials
// under the given prefix. The suffix is the fixed-width numeric tail.
func (r *CardRepo) MaxSuffix(ctx context.Context, productID, prefix string) (int, bool, error) {
	query := `
		SELECT MAX(RIGHT(serial_number, 5)::int)
		FROM cards
		WHERE product_id = $1 AND serial_number LIKE $2 || '%'`
	var highest *int
	err := r.q.QueryRow(ctx, query, productID, prefix).Scan(&highest)
	if err != nil {
		return 0, false, fmt.Errorf("max suffix: %w", err)
	}
	if highest == nil {
		return 0, false, nil
	}
	return *highest, true, nil
}

// TransitionBySerials performs the conditional bulk status flip. Only rows
// whose current status matches t.From are touched; the affected-row count
// is returned for the caller's optimistic check.
func (r *CardRepo) TransitionBySerials(ctx context.Context, t repository.CardStatusTransition) (int64, error) {
	query := `
		UPDATE cards
		SET status = $1, updated_at = now(), updated_by = $2`
	args := []any{t.To, t.Actor}
	pos := 3
	switch {
	case t.ClearStation:
		query += `, previous_station_id = station_id, station_id = NULL`
	case t.StationID != nil:
		query += fmt.Sprintf(`, previous_station_id = station_id, station_id = $%d`, pos)
		args = append(args, *t.StationID)
		pos++
	}
	query += fmt.Sprintf(`
		WHERE product_id = $%d AND serial_number = ANY($%d) AND status = $%d`, pos, pos+1, pos+2)
	args = append(args, t.ProductID, t.Serials, t.From)

	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("transition cards %s -> %s: %w", t.From, t.To, err)
	}
	return tag.RowsAffected(), nil
}

// Restore flips a SOLD_ACTIVE card back to available station stock.
func (r *CardRepo) Restore(ctx context.Context, cardID, actor string) (int64, error) {
	query := `
		UPDATE cards
		SET status = $1, member_id = NULL, purchase_date = NULL, expired_date = NULL,
			quota_remaining = 0, updated_at = now(), updated_by = $2
		WHERE id = $3 AND status = $4`
	tag, err := r.q.Exec(ctx, query,
		entity.CardStatusInStation, actor, cardID, entity.CardStatusSoldActive)
	if err != nil {
		return 0, fmt.Errorf("restore card %s: %w", cardID, err)
	}
	return tag.RowsAffected(), nil
}

// Activate flips an IN_STATION card to SOLD_ACTIVE for the member.
func (r *CardRepo) Activate(ctx context.Context, cardID, memberID string, purchaseDate, expiredDate time.Time, quota int, actor string) (int64, error) {
	query := `
		UPDATE cards
		SET status = $1, member_id = $2, purchase_date = $3, expired_date = $4,
			quota_remaining = $5, updated_at = now(), updated_by = $6
		WHERE id = $7 AND status = $8`
	tag, err := r.q.Exec(ctx, query,
		entity.CardStatusSoldActive, memberID, purchaseDate, expiredDate, quota,
		actor, cardID, entity.CardStatusInStation)
	if err != nil {
		return 0, fmt.Errorf("activate card %s: %w", cardID, err)
	}
	return tag.RowsAffected(), nil
}

// CountByStatus counts the product's cards in a status, optionally at one station.
func (r *CardRepo) CountByStatus(ctx context.Context, productID string, status entity.CardStatus, stationID *string) (int, error) {
	query := `SELECT COUNT(*) FROM cards WHERE product_id = $1 AND status = $2`
	args := []any{productID, status}
	if stationID != nil {
		query += ` AND station_id = $3`
		args = append(args, *stationID)
	}
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

// CountByCategoryType counts cards across the category+type combination.
func (r *CardRepo) CountByCategoryType(ctx context.Context, categoryID, typeID string, status entity.CardStatus, stationID *string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM cards c
		JOIN products p ON p.id = c.product_id
		WHERE p.category_id = $1 AND p.type_id = $2 AND c.status = $3`
	args := []any{categoryID, typeID, status}
	if stationID != nil {
		query += ` AND c.station_id = $4`
		args = append(args, *stationID)
	}
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards by category/type: %w", err)
	}
	return n, nil
}

// AnyInStation reports whether at least one card of the product is IN_STATION.
func (r *CardRepo) AnyInStation(ctx context.Context, productID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM cards WHERE product_id = $1 AND status = $2)`
	var ok bool
	err := r.q.QueryRow(ctx, query, productID, entity.CardStatusInStation).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("any in station: %w", err)
	}
	return ok, nil
}

// StatusRange returns the first/last serial of the product in a status.
func (r *CardRepo) StatusRange(ctx context.Context, productID string, status entity.CardStatus) (string, string, int, error) {
	query := `
		SELECT COALESCE(MIN(serial_number), ''), COALESCE(MAX(serial_number), ''), COUNT(*)
		FROM cards WHERE product_id = $1 AND status = $2`
	var first, last string
	var count int
	err := r.q.QueryRow(ctx, query, productID, status).Scan(&first, &last, &count)
	if err != nil {
		return "", "", 0, fmt.Errorf("status range: %w", err)
	}
	return first, last, count, nil
}

func (r *CardRepo) scanOne(row pgx.Row) (*entity.Card, error) {
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

func (r *CardRepo) scanRow(rows pgx.Rows) (*entity.Card, error) {
	c, err := scanCard(rows)
	if err != nil {
		return nil, fmt.Errorf("scan card: %w", err)
	}
	return c, nil
}

func scanCard(row pgx.Row) (*entity.Card, error) {
	var c entity.Card
	var updatedBy *string
	err := row.Scan(
		&c.ID, &c.ProductID, &c.SerialNumber, &c.Status, &c.StationID, &c.PreviousStationID,
		&c.MemberID, &c.PurchaseDate, &c.ExpiredDate, &c.QuotaRemaining,
		&c.CreatedAt, &c.UpdatedAt, &updatedBy,
	)
	if err != nil {
		return nil, err
	}
	if updatedBy != nil {
		c.UpdatedBy = *updatedBy
	}
	return &c, nil
}
