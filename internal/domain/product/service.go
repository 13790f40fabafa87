// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/pkg/pagination"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service handles catalog reads
type Service struct {
	repo  Repository
	cache CategoryCache
	log   logrus.FieldLogger
}

// NewService creates a new product service. cache may be nil.
func NewService(repo Repository, cache CategoryCache, log logrus.FieldLogger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Category uint   `form:"category"`
	Query    string `form:"q"`
}

// ListResponse is a page of products
type ListResponse struct {
	Products []Product       `json:"products"`
	Meta     pagination.Meta `json:"meta"`
}

// ListProducts retrieves active products with filtering and pagination
func (s *Service) ListProducts(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	params := pagination.Params{Page: req.Page, Limit: req.Limit}.Normalize(defaultPageSize, maxPageSize)

	products, total, err := s.repo.ListActive(ctx, ListFilter{
		CategoryID: req.Category,
		Query:      strings.TrimSpace(req.Query),
		Params:     params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	if products == nil {
		products = []Product{}
	}

	return &ListResponse{
		Products: products,
		Meta:     pagination.NewMeta(params, total),
	}, nil
}

// GetProduct retrieves an active product by ID
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	return s.repo.FindActiveByID(ctx, id)
}

// GetProductBySlug retrieves an active product by slug
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	return s.repo.FindActiveBySlug(ctx, slug)
}

// ListCategories returns active categories ordered by sort then name
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	if s.cache != nil {
		if categories, ok := s.cache.GetCategories(ctx); ok {
			return categories, nil
		}
	}

	categories, err := s.repo.ListActiveCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	if categories == nil {
		categories = []Category{}
	}

	if s.cache != nil {
		s.cache.SetCategories(ctx, categories)
	}

	s.log.WithField("count", len(categories)).Debug("categories loaded from database")
	return categories, nil
}

// FindActiveByID satisfies the cart's catalog lookup
func (s *Service) FindActiveByID(ctx context.Context, id uint) (*Product, error) {
	return s.repo.FindActiveByID(ctx, id)
}
