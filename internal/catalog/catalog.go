// Package catalog provides read-only product and category browsing over
// the storefront API.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/iliyamo/storefront-client/internal/api"
	"github.com/iliyamo/storefront-client/internal/session"
)

// Category is a product grouping.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ListParams filters and pages a product listing. Zero values mean "no
// filter" and the backend's default page size.
type ListParams struct {
	Search   string
	Category string
	Page     int
	PageSize int
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []session.Product `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	Total    int               `json:"total"`
}

// Service browses the catalog. It shares the session's API client so
// requests carry the same cookies and bearer token.
type Service struct {
	client *api.Client
}

// NewService wraps an API client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// ListProducts returns one page of products matching params.
func (s *Service) ListProducts(ctx context.Context, params ListParams) (*ProductPage, error) {
	q := url.Values{}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	path := "/api/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page ProductPage
	if err := s.client.GetJSON(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &page, nil
}

// GetProduct returns one product by id.
func (s *Service) GetProduct(ctx context.Context, productID string) (*session.Product, error) {
	if !session.ValidProductID(productID) {
		return nil, fmt.Errorf("get product: invalid product id %q", productID)
	}
	var p session.Product
	if err := s.client.GetJSON(ctx, "/api/products/"+productID, &p); err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var out struct {
		Categories []Category `json:"categories"`
	}
	if err := s.client.GetJSON(ctx, "/api/categories", &out); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out.Categories, nil
}
