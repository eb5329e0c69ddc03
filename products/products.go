// Package products calls the drop API's catalogue endpoints. Reads are
// public; the write endpoints require an admin session, which the API
// enforces. Build the Service on client.Client.HTTPClient() so requests
// carry the session's bearer token.
package products

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/09ahmad/drop-go/api"
)

// Fallback copy shown when a catalogue request fails without a server
// message.
const (
	loadProductsFailedMsg  = "Failed to load products"
	loadProductFailedMsg   = "Failed to load product"
	addProductFailedMsg    = "Failed to add product"
	updateProductFailedMsg = "Failed to update product"
	deleteProductFailedMsg = "Failed to delete product"
)

// Service issues catalogue requests against the drop API.
type Service struct {
	http    *http.Client
	baseURL string
}

// New creates a Service for the API at baseURL using hc for requests.
func New(hc *http.Client, baseURL string) (*Service, error) {
	if hc == nil {
		return nil, errors.New("[products.New] http client is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[products.New] baseURL is required")
	}

	return &Service{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// List returns the full catalogue.
func (s *Service) List(ctx context.Context) ([]api.Product, error) {
	var out api.ProductsResponse
	if err := api.Do(ctx, s.http, http.MethodGet, s.baseURL+api.RouteProducts, nil, &out, loadProductsFailedMsg); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// Get returns a single product by ID.
func (s *Service) Get(ctx context.Context, id string) (*api.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("[Service.Get] id is required")
	}

	var out api.ProductResponse
	if err := api.Do(ctx, s.http, http.MethodGet, s.baseURL+api.RouteProduct(id), nil, &out, loadProductFailedMsg); err != nil {
		return nil, err
	}
	return out.Product, nil
}

// Create adds a product to the catalogue and returns it with its assigned ID.
func (s *Service) Create(ctx context.Context, in api.NewProduct) (*api.Product, error) {
	var out api.ProductResponse
	if err := api.Do(ctx, s.http, http.MethodPost, s.baseURL+api.RouteProductAdd, in, &out, addProductFailedMsg); err != nil {
		return nil, err
	}
	return out.Product, nil
}

// Update applies a partial update. Only the fields set on in are sent; the
// API leaves the rest untouched.
func (s *Service) Update(ctx context.Context, id string, in api.ProductUpdate) (*api.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("[Service.Update] id is required")
	}

	var out api.ProductResponse
	if err := api.Do(ctx, s.http, http.MethodPut, s.baseURL+api.RouteProductUpdate(id), in, &out, updateProductFailedMsg); err != nil {
		return nil, err
	}
	return out.Product, nil
}

// Delete removes a product from the catalogue.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("[Service.Delete] id is required")
	}
	return api.Do(ctx, s.http, http.MethodDelete, s.baseURL+api.RouteProductDelete(id), nil, nil, deleteProductFailedMsg)
}
