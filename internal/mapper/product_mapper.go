// Package mapper converts between product wire shapes and the persisted entity.
package mapper

import "inventory/internal/models"

// ToEntity builds a new, unsaved product from a create request.
func ToEntity(req models.ProductRequest) *models.Product {
	product := &models.Product{
		Name:  req.Name,
		Price: req.Price,
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	return product
}

// ToResponse projects every entity field into the response shape.
func ToResponse(p *models.Product) models.ProductResponse {
	return models.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     p.Price,
		Voided:    p.Voided,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToResponses maps a slice of entities, preserving order.
func ToResponses(products []models.Product) []models.ProductResponse {
	responses := make([]models.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToResponse(&products[i]))
	}
	return responses
}

// ApplyUpdate overwrites the editable fields of p with the request values.
// A missing price clears the stored one. ID, Voided and timestamps are left alone.
func ApplyUpdate(req models.ProductRequest, p *models.Product) {
	p.Name = req.Name
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	p.Price = req.Price
}
