package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// It backs the "memory" database driver and keeps nothing across restarts.
type MemoryProductRepository struct {
	products map[uuid.UUID]models.Product
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uuid.UUID]models.Product),
		now:      time.Now,
	}
}

// FindByID returns a copy of the product with the given ID.
func (r *MemoryProductRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// ExistsActiveByName checks for a non-voided product with the same name, ignoring case.
func (r *MemoryProductRepository) ExistsActiveByName(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if !p.Voided && strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// Search returns one page of products ordered by creation time.
func (r *MemoryProductRepository) Search(_ context.Context, name string, page, size int) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filter := ""
	if strings.TrimSpace(name) != "" {
		filter = strings.ToLower(name)
	}

	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter == "" || strings.Contains(strings.ToLower(p.Name), filter) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := int64(len(matched))
	if !offsetInRange(page, size) {
		return []models.Product{}, total, nil
	}
	start := page * size
	if start >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// Save inserts or replaces the product.
func (r *MemoryProductRepository) Save(_ context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if existing, ok := r.products[product.ID]; ok {
		product.CreatedAt = existing.CreatedAt
	} else if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return product, nil
}
