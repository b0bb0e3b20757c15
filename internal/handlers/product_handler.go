package handlers

import (
	"errors"
	"fmt"
	"math"

	"inventory/internal/middleware"
	"inventory/internal/models"
	"inventory/internal/services"
	"inventory/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pagination bounds for the product listing.
type Pagination struct {
	DefaultSize int
	MaxSize     int
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service    *services.ProductService
	pagination Pagination
	logger     zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, pagination Pagination, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:    service,
		pagination: pagination,
		logger:     logger.With().Str("component", "product_handler").Logger(),
	}
}

// RegisterRoutes registers the product routes. Any middleware given runs before every route.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, middleware ...fiber.Handler) {
	productRoutes := router.Group("/products", middleware...)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Post("/:id/dispense", h.HandleDispense)
	productRoutes.Post("/:id/restock", h.HandleRestock)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.ProductRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	product, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(product)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}

	product, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(product)
}

// HandleUpdateProduct replaces the editable fields of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	var req models.ProductRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	product, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(product)
}

type listQuery struct {
	Name string `query:"name"`
	Page int    `query:"page" json:"page" validate:"gte=0"`
	Size int    `query:"size" json:"size" validate:"gte=1"`
}

// HandleListProducts lists products, optionally filtered by a name substring.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	q := listQuery{Size: h.pagination.DefaultSize}
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query parameters",
			"error":   err.Error(),
		})
	}
	if err := validation.Struct(q); err != nil {
		return validationFailed(c, err)
	}
	if h.pagination.MaxSize > 0 && q.Size > h.pagination.MaxSize {
		q.Size = h.pagination.MaxSize
	}
	if q.Page > math.MaxInt/q.Size {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query parameters",
			"error":   fmt.Sprintf("page must be at most %d for size %d", math.MaxInt/q.Size, q.Size),
		})
	}

	page, err := h.service.List(c.UserContext(), q.Name, q.Page, q.Size)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(page)
}

// HandleDeleteProduct voids a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.respondError(c, err)
	}
	h.logger.Info().Stringer("product_id", id).Str("operator", middleware.Operator(c)).Msg("product voided")
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDispense takes stock out of a product.
func (h *ProductHandler) HandleDispense(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	var req models.QuantityRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	product, err := h.service.Dispense(c.UserContext(), id, *req.Quantity)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(product)
}

// HandleRestock puts stock back into a product.
func (h *ProductHandler) HandleRestock(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	var req models.QuantityRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}

	product, err := h.service.Restock(c.UserContext(), id, *req.Quantity)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(product)
}

// parseBody decodes and validates the request body. When ok is false the
// 400 response has been written and err is the result of writing it.
func (h *ProductHandler) parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		h.logger.Debug().Err(err).Str("path", c.Path()).Msg("invalid request body")
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validation.Struct(out); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

// respondError maps service errors to status codes.
func (h *ProductHandler) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrDuplicateName):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Product name already in use",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInsufficientInventory):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Not enough inventory",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrQuantityOverflow):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Quantity out of range",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid quantity",
			"error":   err.Error(),
		})
	}
	h.logger.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("operator", middleware.Operator(c)).
		Msg("product request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not process product request",
		"error":   err.Error(),
	})
}

func parseID(c *fiber.Ctx) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid product ID",
			"error":   err.Error(),
		})
	}
	return id, true, nil
}

func validationFailed(c *fiber.Ctx, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verrs,
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"error":   err.Error(),
	})
}
