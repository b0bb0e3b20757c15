package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"inventory/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// offsetInRange reports whether page*size is a usable non-negative offset.
func offsetInRange(page, size int) bool {
	return page >= 0 && size > 0 && page <= math.MaxInt/size
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// FindByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// ExistsActiveByName checks for a non-voided product with the same name, ignoring case.
func (r *GORMProductRepository) ExistsActiveByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("LOWER(name) = ? AND voided = ?", strings.ToLower(name), false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check product name %q: %w", name, err)
	}
	return count > 0, nil
}

// Search retrieves one page of products, optionally filtered by a name substring.
func (r *GORMProductRepository) Search(ctx context.Context, name string, page, size int) ([]models.Product, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Product{})
		if strings.TrimSpace(name) != "" {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(name)) + "%"
			q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	products := []models.Product{}
	if total == 0 || !offsetInRange(page, size) {
		return products, total, nil
	}
	err := filtered().
		Order("created_at ASC").
		Order("id ASC").
		Offset(page * size).
		Limit(size).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	return products, total, nil
}

// Save inserts a new product or updates every column of an existing one.
// CreatedAt is stamped once on insert; UpdatedAt is refreshed on every save.
func (r *GORMProductRepository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	db := r.db.WithContext(ctx)
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
		if err := db.Create(product).Error; err != nil {
			return nil, fmt.Errorf("failed to create product: %w", err)
		}
		return product, nil
	}
	if err := db.Save(product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}
	return product, nil
}
