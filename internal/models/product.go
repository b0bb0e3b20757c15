package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a stocked product. Rows are never physically removed;
// Voided marks a soft-deleted product.
type Product struct {
	ID        uuid.UUID           `gorm:"primaryKey;type:varchar(36)"`
	Name      string              `gorm:"type:varchar(255);not null;index"`
	Quantity  int                 `gorm:"not null"`
	Price     decimal.NullDecimal `gorm:"type:decimal(19,2)"`
	Voided    bool                `gorm:"not null;index"`
	CreatedAt time.Time           `gorm:"autoCreateTime"`
	UpdatedAt time.Time           `gorm:"autoUpdateTime"`
}

// ProductRequest is the body accepted by create and update.
type ProductRequest struct {
	Name     string              `json:"name" validate:"required,notblank,max=255"`
	Quantity *int                `json:"quantity" validate:"required,gte=0"`
	Price    decimal.NullDecimal `json:"price"`
}

// QuantityRequest is the body accepted by dispense and restock.
type QuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// ProductResponse is the wire representation of a product.
type ProductResponse struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Quantity  int                 `json:"quantity"`
	Price     decimal.NullDecimal `json:"price"`
	Voided    bool                `json:"voided"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Content       []ProductResponse `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}

// NewProductPage builds a page envelope. TotalPages is derived from total and size.
func NewProductPage(content []ProductResponse, page, size int, total int64) ProductPage {
	if content == nil {
		content = []ProductResponse{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return ProductPage{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
