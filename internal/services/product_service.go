package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"inventory/internal/mapper"
	"inventory/internal/models"
	"inventory/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductService handles business rules for products: active-name uniqueness,
// stock bounds and soft deletion.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher // nil disables event publication
	logger    zerolog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, logger zerolog.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("component", "product_service").Logger(),
	}
}

// Create stores a new product unless an active product already uses the name.
func (s *ProductService) Create(ctx context.Context, req models.ProductRequest) (*models.ProductResponse, error) {
	exists, err := s.repo.ExistsActiveByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		s.logger.Warn().Str("name", req.Name).Msg("product name already in use")
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, req.Name)
	}

	product, err := s.repo.Save(ctx, mapper.ToEntity(req))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.publish(ctx, models.EventProductCreated, product, 0)

	resp := mapper.ToResponse(product)
	return &resp, nil
}

// Get returns the product with the given ID, voided or not.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := mapper.ToResponse(product)
	return &resp, nil
}

// Update overwrites name, quantity and price. Renaming to a name held by a
// different active product is rejected; changing only the casing is allowed.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req models.ProductRequest) (*models.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(product.Name, req.Name) {
		exists, err := s.repo.ExistsActiveByName(ctx, req.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			s.logger.Warn().Str("name", req.Name).Stringer("product_id", id).Msg("product name already in use")
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, req.Name)
		}
	}

	mapper.ApplyUpdate(req, product)
	product, err = s.repo.Save(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	s.publish(ctx, models.EventProductUpdated, product, 0)

	resp := mapper.ToResponse(product)
	return &resp, nil
}

// List returns one page of products. A blank name lists everything.
func (s *ProductService) List(ctx context.Context, name string, page, size int) (*models.ProductPage, error) {
	if strings.TrimSpace(name) == "" {
		name = ""
	}
	products, total, err := s.repo.Search(ctx, name, page, size)
	if err != nil {
		return nil, err
	}
	result := models.NewProductPage(mapper.ToResponses(products), page, size, total)
	return &result, nil
}

// Delete voids the product. Deleting an already voided product succeeds.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	product.Voided = true
	if _, err := s.repo.Save(ctx, product); err != nil {
		return fmt.Errorf("failed to void product %s: %w", id, err)
	}
	s.publish(ctx, models.EventProductVoided, product, 0)
	return nil
}

// Dispense removes quantity units from stock. The product is left untouched
// when fewer units are available.
func (s *ProductService) Dispense(ctx context.Context, id uuid.UUID, quantity int) (*models.ProductResponse, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Quantity < quantity {
		s.logger.Warn().
			Stringer("product_id", id).
			Int("available", product.Quantity).
			Int("requested", quantity).
			Msg("insufficient inventory")
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientInventory, quantity, product.Quantity)
	}

	product.Quantity -= quantity
	product, err = s.repo.Save(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to dispense product %s: %w", id, err)
	}
	s.publish(ctx, models.EventProductDispensed, product, -quantity)

	resp := mapper.ToResponse(product)
	return &resp, nil
}

// Restock adds quantity units to stock. There is no business upper bound,
// only the range of int.
func (s *ProductService) Restock(ctx context.Context, id uuid.UUID, quantity int) (*models.ProductResponse, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quantity > math.MaxInt-product.Quantity {
		return nil, fmt.Errorf("%w: adding %d to %d", ErrQuantityOverflow, quantity, product.Quantity)
	}

	product.Quantity += quantity
	product, err = s.repo.Save(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to restock product %s: %w", id, err)
	}
	s.publish(ctx, models.EventProductRestocked, product, quantity)

	resp := mapper.ToResponse(product)
	return &resp, nil
}

// publish is best effort: a broker failure is logged and never fails the write.
func (s *ProductService) publish(ctx context.Context, eventType string, product *models.Product, delta int) {
	if s.publisher == nil {
		return
	}
	event := models.ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		Name:       product.Name,
		Quantity:   product.Quantity,
		Delta:      delta,
		Voided:     product.Voided,
		OccurredAt: time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to marshal product event")
		return
	}
	if err := s.publisher.Publish(ctx, event.RoutingKey(), body); err != nil {
		s.logger.Warn().Err(err).
			Str("event", eventType).
			Stringer("product_id", product.ID).
			Msg("failed to publish product event")
	}
}
