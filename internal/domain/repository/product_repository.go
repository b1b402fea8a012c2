package repository

import (
	"context"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
)

// ProductRepository is the read-only port for product/category/type metadata.
type ProductRepository interface {
	// GetByID returns the product with Category and Type populated.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCategoryType(ctx context.Context, categoryID, typeID string) (*entity.Product, error)
}
