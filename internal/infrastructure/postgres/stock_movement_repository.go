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

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implements StockMovementRepository over PostgreSQL.
// Serial lists are stored as text[] columns.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository builds the adapter. Pass a pool or tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, type, status, product_id, category_id, type_id, station_id, quantity,
	sent_serials, received_serials, lost_serials, damaged_serials, batch_id, notes,
	created_at, created_by, validated_by, validated_at`

// Create persists a movement. A taken batch id means another transaction
// allocated the same count-based sequence; the caller retries.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, type, status, product_id, category_id, type_id, station_id,
			quantity, sent_serials, received_serials, lost_serials, damaged_serials, batch_id, notes,
			created_at, created_by, validated_by, validated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Type, m.Status, m.ProductID, m.CategoryID, m.TypeID, m.StationID,
		m.Quantity, m.SentSerials, m.ReceivedSerials, m.LostSerials, m.DamagedSerials,
		m.BatchID, m.Notes, m.CreatedAt, m.CreatedBy, m.ValidatedBy, m.ValidatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ConcurrentModificationf(
				"batch id %s was allocated concurrently", m.BatchID)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID fetches one movement, nil when absent.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// Approve flips a PENDING movement to APPROVED with the reconciled lists.
// Returns the affected count; 0 means the movement was no longer PENDING.
func (r *StockMovementRepo) Approve(ctx context.Context, id string, received, lost, damaged []string, validatedBy string, validatedAt time.Time) (int64, error) {
	query := `
		UPDATE stock_movements
		SET status = $1, received_serials = $2, lost_serials = $3, damaged_serials = $4,
			validated_by = $5, validated_at = $6
		WHERE id = $7 AND status = $8`
	tag, err := r.q.Exec(ctx, query,
		entity.MovementStatusApproved, received, lost, damaged, validatedBy, validatedAt,
		id, entity.MovementStatusPending)
	if err != nil {
		return 0, fmt.Errorf("approve movement %s: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes a movement row (used only when cancelling a PENDING OUT).
func (r *StockMovementRepo) Delete(ctx context.Context, id string) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM stock_movements WHERE id = $1 AND status = $2`,
		id, entity.MovementStatusPending)
	if err != nil {
		return 0, fmt.Errorf("delete movement %s: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

// CountByBatchPrefix counts movements whose batch id starts with prefix.
func (r *StockMovementRepo) CountByBatchPrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM stock_movements WHERE batch_id LIKE $1 || '%'`, prefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by batch prefix: %w", err)
	}
	return n, nil
}

// List returns a page of movements plus the unpaged total.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	where := ` WHERE 1=1`
	var args []any
	pos := 1
	add := func(cond string, v any) {
		where += fmt.Sprintf(cond, pos)
		args = append(args, v)
		pos++
	}
	if f.Type != "" {
		add(` AND type = $%d`, f.Type)
	}
	if f.Status != "" {
		add(` AND status = $%d`, f.Status)
	}
	if f.ProductID != "" {
		add(` AND product_id = $%d`, f.ProductID)
	}
	if f.StationID != "" {
		add(` AND station_id = $%d`, f.StationID)
	}
	if f.From != nil {
		add(` AND created_at >= $%d`, *f.From)
	}
	if f.To != nil {
		add(` AND created_at <= $%d`, *f.To)
	}

	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM stock_movements`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, pos, pos+1)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.Type, &m.Status, &m.ProductID, &m.CategoryID, &m.TypeID, &m.StationID,
		&m.Quantity, &m.SentSerials, &m.ReceivedSerials, &m.LostSerials, &m.DamagedSerials,
		&m.BatchID, &m.Notes, &m.CreatedAt, &m.CreatedBy, &m.ValidatedBy, &m.ValidatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
