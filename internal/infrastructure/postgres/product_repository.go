package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implements ProductRepository over PostgreSQL, joining
// category and type metadata into the product.
type ProductRepo struct {
	q Querier
}

// NewProductRepository builds the adapter. Pass a pool or tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productQuery = `
	SELECT p.id, p.category_id, p.type_id, p.serial_template, p.total_quota, p.validity_days,
		p.created_at, p.updated_at,
		c.code, c.name, t.code, t.name
	FROM products p
	JOIN categories c ON c.id = p.category_id
	JOIN card_types t ON t.id = p.type_id`

// GetByID fetches one product with Category and Type populated, nil when absent.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.one(ctx, productQuery+` WHERE p.id = $1`, id)
}

// GetByCategoryType fetches the product for a category+type combination.
func (r *ProductRepo) GetByCategoryType(ctx context.Context, categoryID, typeID string) (*entity.Product, error) {
	return r.one(ctx, productQuery+` WHERE p.category_id = $1 AND p.type_id = $2`, categoryID, typeID)
}

func (r *ProductRepo) one(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	var p entity.Product
	var cat entity.Category
	var typ entity.CardType
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.CategoryID, &p.TypeID, &p.SerialTemplate, &p.TotalQuota, &p.ValidityDays,
		&p.CreatedAt, &p.UpdatedAt,
		&cat.Code, &cat.Name, &typ.Code, &typ.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	cat.ID = p.CategoryID
	typ.ID = p.TypeID
	p.Category = &cat
	p.Type = &typ
	return &p, nil
}
