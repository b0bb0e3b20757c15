package repositories

import (
	"context"

	"inventory/internal/models"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// FindByID returns ErrProductNotFound when no row has the id. Voided rows are returned.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// ExistsActiveByName reports whether a non-voided product has the name, ignoring case.
	ExistsActiveByName(ctx context.Context, name string) (bool, error)
	// Search returns one page of products whose name contains name, ignoring case,
	// together with the size of the whole matching set. A blank name matches every row.
	Search(ctx context.Context, name string, page, size int) ([]models.Product, int64, error)
	// Save inserts the product when its ID is uuid.Nil and updates it otherwise.
	Save(ctx context.Context, product *models.Product) (*models.Product, error)
}
