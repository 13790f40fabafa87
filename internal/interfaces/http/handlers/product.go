// internal/interfaces/http/handlers/product.go
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/product"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
)

// Catalog is the public product and category surface
type Catalog interface {
	ListProducts(ctx context.Context, req *product.ListRequest) (*product.ListResponse, error)
	GetProduct(ctx context.Context, id uint) (*product.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*product.Product, error)
	ListCategories(ctx context.Context) ([]product.Category, error)
}

// ProductHandler handles product endpoints
type ProductHandler struct {
	catalog Catalog
	log     logrus.FieldLogger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog Catalog, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		log:     log,
	}
}

// GetProducts handles GET /products?category=&q=&page=&limit=
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	req.Query = strings.TrimSpace(req.Query)

	result, err := h.catalog.ListProducts(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Page(c, result.Products, result.Meta)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "product ID")
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, p, "")
}

// GetProductBySlug handles GET /products/slug/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	p, err := h.catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, p, "")
}

// GetCategories handles GET /categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, categories, "")
}
