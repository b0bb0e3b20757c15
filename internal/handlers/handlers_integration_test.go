package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inventory/internal/database"
	"inventory/internal/handlers"
	"inventory/internal/middleware"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupApp builds a Fiber app over a private in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err, "failed to connect to in-memory database")
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	productService := services.NewProductService(repositories.NewGORMProductRepository(db), nil, zerolog.Nop())
	productHandler := handlers.NewProductHandler(productService, handlers.Pagination{DefaultSize: 20, MaxSize: 100}, zerolog.Nop())

	app := fiber.New()
	productHandler.RegisterRoutes(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			jsonBody, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(jsonBody)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createProduct(t *testing.T, app *fiber.App, name string, quantity int) models.ProductResponse {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/products", map[string]any{
		"name":     name,
		"quantity": quantity,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[models.ProductResponse](t, resp)
}

func TestInventoryScenario(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodPost, "/products", map[string]any{
		"name":     "Samsung Galaxy",
		"quantity": 10,
		"price":    10000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decode[models.ProductResponse](t, resp)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Samsung Galaxy", created.Name)
	assert.Equal(t, 10, created.Quantity)
	assert.True(t, created.Price.Valid)
	assert.True(t, created.Price.Decimal.Equal(decimal.NewFromInt(10000)))
	assert.False(t, created.Voided)
	assert.False(t, created.CreatedAt.IsZero())

	path := "/products/" + created.ID.String()

	resp = doRequest(t, app, http.MethodPost, path+"/dispense", map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, decode[models.ProductResponse](t, resp).Quantity)

	resp = doRequest(t, app, http.MethodPost, path+"/dispense", map[string]int{"quantity": 20})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := decode[map[string]any](t, resp)
	assert.Equal(t, "Not enough inventory", errBody["message"])

	resp = doRequest(t, app, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, decode[models.ProductResponse](t, resp).Quantity, "failed dispense must not change stock")

	resp = doRequest(t, app, http.MethodPost, path+"/restock", map[string]int{"quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 8, decode[models.ProductResponse](t, resp).Quantity)

	resp = doRequest(t, app, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, body)

	resp = doRequest(t, app, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	voided := decode[models.ProductResponse](t, resp)
	assert.True(t, voided.Voided)
	assert.Equal(t, 8, voided.Quantity)
}

func TestCreateProduct_DuplicateName(t *testing.T) {
	app := setupApp(t)
	first := createProduct(t, app, "Samsung Galaxy", 1)

	resp := doRequest(t, app, http.MethodPost, "/products", map[string]any{"name": "samsung GALAXY", "quantity": 2})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// A voided product frees its name.
	resp = doRequest(t, app, http.MethodDelete, "/products/"+first.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	recreated := createProduct(t, app, "samsung GALAXY", 2)
	assert.NotEqual(t, first.ID, recreated.ID)
}

func TestCreateProduct_Validation(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name      string
		body      any
		wantField string
	}{
		{name: "missing name", body: map[string]any{"quantity": 1}, wantField: "name"},
		{name: "blank name", body: map[string]any{"name": "   ", "quantity": 1}, wantField: "name"},
		{name: "name too long", body: map[string]any{"name": strings.Repeat("x", 256), "quantity": 1}, wantField: "name"},
		{name: "missing quantity", body: map[string]any{"name": "Pixel"}, wantField: "quantity"},
		{name: "negative quantity", body: map[string]any{"name": "Pixel", "quantity": -1}, wantField: "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodPost, "/products", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body struct {
				Message string `json:"message"`
				Errors  []struct {
					Field string `json:"field"`
				} `json:"errors"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "Validation failed", body.Message)
			require.Len(t, body.Errors, 1)
			assert.Equal(t, tt.wantField, body.Errors[0].Field)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/products", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid request body", decode[map[string]any](t, resp)["message"])
	})

	resp := doRequest(t, app, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, decode[models.ProductPage](t, resp).TotalElements, "rejected requests must not create products")
}

func TestGetProduct_NotFoundAndMalformedID(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodGet, "/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", decode[map[string]any](t, resp)["message"])

	resp = doRequest(t, app, http.MethodGet, "/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid product ID", decode[map[string]any](t, resp)["message"])
}

func TestUpdateProduct(t *testing.T) {
	app := setupApp(t)
	phone := createProduct(t, app, "Pixel", 4)
	createProduct(t, app, "Galaxy", 2)
	path := "/products/" + phone.ID.String()

	resp := doRequest(t, app, http.MethodPut, path, map[string]any{"name": "PIXEL", "quantity": 7, "price": 499.99})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.ProductResponse](t, resp)
	assert.Equal(t, phone.ID, updated.ID)
	assert.Equal(t, "PIXEL", updated.Name)
	assert.Equal(t, 7, updated.Quantity)
	assert.True(t, updated.Price.Decimal.Equal(decimal.RequireFromString("499.99")))
	assert.True(t, phone.CreatedAt.Equal(updated.CreatedAt))

	t.Run("omitted price clears it", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPut, path, map[string]any{"name": "Pixel", "quantity": 7})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, decode[models.ProductResponse](t, resp).Price.Valid)
	})

	t.Run("name of another active product", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPut, path, map[string]any{"name": "galaxy", "quantity": 7})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown product", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPut, "/products/"+uuid.NewString(), map[string]any{"name": "Nokia", "quantity": 1})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid body", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPut, path, map[string]any{"name": "", "quantity": 1})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestListProducts(t *testing.T) {
	app := setupApp(t)
	createProduct(t, app, "Galaxy S1", 1)
	createProduct(t, app, "Galaxy S2", 1)
	createProduct(t, app, "Pixel", 1)

	resp := doRequest(t, app, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[models.ProductPage](t, resp)
	assert.EqualValues(t, 3, all.TotalElements)
	assert.Equal(t, 0, all.Page)
	assert.Equal(t, 20, all.Size)
	assert.Equal(t, 1, all.TotalPages)

	resp = doRequest(t, app, http.MethodGet, "/products?name=galaxy", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	galaxies := decode[models.ProductPage](t, resp)
	assert.EqualValues(t, 2, galaxies.TotalElements)
	require.Len(t, galaxies.Content, 2)
	assert.Equal(t, "Galaxy S1", galaxies.Content[0].Name)
	assert.Equal(t, "Galaxy S2", galaxies.Content[1].Name)

	resp = doRequest(t, app, http.MethodGet, "/products?name=galaxy&page=1&size=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decode[models.ProductPage](t, resp)
	assert.EqualValues(t, 2, second.TotalElements)
	assert.Equal(t, 2, second.TotalPages)
	require.Len(t, second.Content, 1)
	assert.Equal(t, "Galaxy S2", second.Content[0].Name)

	resp = doRequest(t, app, http.MethodGet, "/products?name=nokia", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	none := decode[models.ProductPage](t, resp)
	assert.NotNil(t, none.Content)
	assert.Empty(t, none.Content)

	resp = doRequest(t, app, http.MethodGet, "/products?size=1000", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100, decode[models.ProductPage](t, resp).Size)

	lastPage := math.MaxInt / 100
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/products?page=%d&size=100", lastPage), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	farPage := decode[models.ProductPage](t, resp)
	assert.Equal(t, lastPage, farPage.Page)
	assert.EqualValues(t, 3, farPage.TotalElements)
	assert.Empty(t, farPage.Content)

	for _, query := range []string{"page=-1", "size=0", "size=abc", fmt.Sprintf("page=%d&size=100", lastPage+1)} {
		resp = doRequest(t, app, http.MethodGet, "/products?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
	}
}

func TestStockAdjustment_Validation(t *testing.T) {
	app := setupApp(t)
	product := createProduct(t, app, "Pixel", 3)

	for _, action := range []string{"dispense", "restock"} {
		path := "/products/" + product.ID.String() + "/" + action

		resp := doRequest(t, app, http.MethodPost, path, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, action)

		resp = doRequest(t, app, http.MethodPost, path, map[string]int{"quantity": -1})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, action)

		resp = doRequest(t, app, http.MethodPost, "/products/"+uuid.NewString()+"/"+action, map[string]int{"quantity": 1})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, action)
	}

	resp := doRequest(t, app, http.MethodPost, "/products/"+product.ID.String()+"/restock", map[string]int{"quantity": math.MaxInt})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Quantity out of range", decode[map[string]any](t, resp)["message"])

	resp = doRequest(t, app, http.MethodGet, "/products/"+product.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decode[models.ProductResponse](t, resp).Quantity, "a rejected restock leaves stock unchanged")

	resp = doRequest(t, app, http.MethodPost, "/products/"+product.ID.String()+"/dispense", map[string]int{"quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decode[models.ProductResponse](t, resp).Quantity, "dispensing the exact stock is allowed")
}

func TestDeleteProduct(t *testing.T) {
	app := setupApp(t)
	product := createProduct(t, app, "Pixel", 3)
	path := "/products/" + product.ID.String()

	resp := doRequest(t, app, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "deleting a voided product succeeds")

	resp = doRequest(t, app, http.MethodDelete, "/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Voided products still show up in listings.
	resp = doRequest(t, app, http.MethodGet, "/products?name=pixel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[models.ProductPage](t, resp)
	require.Len(t, page.Content, 1)
	assert.True(t, page.Content[0].Voided)
}

func TestDeleteProduct_LogsOperator(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	productService := services.NewProductService(repositories.NewGORMProductRepository(db), nil, logger)
	productHandler := handlers.NewProductHandler(productService, handlers.Pagination{DefaultSize: 20, MaxSize: 100}, logger)

	app := fiber.New()
	productHandler.RegisterRoutes(app, func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUsername, "clerk")
		return c.Next()
	})

	product := createProduct(t, app, "Pixel", 1)
	resp := doRequest(t, app, http.MethodDelete, "/products/"+product.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Contains(t, logs.String(), `"operator":"clerk"`)
	assert.Contains(t, logs.String(), product.ID.String())
}
