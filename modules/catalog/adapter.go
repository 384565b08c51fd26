package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// CatalogPort is the calling surface other modules use to reach the
// catalog services.
type CatalogPort interface {
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductDTO, error)
	GetProduct(ctx context.Context, id string) (*ProductDTO, error)
	ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error)
	UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id string) error
}

// catalogAdapter wraps the catalog module's ServiceContainer for
// type-safe cross-module calls.
type catalogAdapter struct {
	container mono.ServiceContainer
}

// NewCatalogAdapter creates an adapter over the container received via
// SetDependencyServiceContainer.
func NewCatalogAdapter(container mono.ServiceContainer) CatalogPort {
	if container == nil {
		panic("catalog adapter requires non-nil ServiceContainer")
	}
	return &catalogAdapter{container: container}
}

func (a *catalogAdapter) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductDTO, error) {
	var resp ProductDTO
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("catalog create service call failed: %w", err)
	}
	return &resp, nil
}

func (a *catalogAdapter) GetProduct(ctx context.Context, id string) (*ProductDTO, error) {
	req := GetProductRequest{ID: id}
	var resp ProductDTO
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("catalog get service call failed: %w", err)
	}
	return &resp, nil
}

func (a *catalogAdapter) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	var resp ListProductsResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("catalog list service call failed: %w", err)
	}
	return &resp, nil
}

func (a *catalogAdapter) UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*ProductDTO, error) {
	var resp ProductDTO
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("catalog update service call failed: %w", err)
	}
	return &resp, nil
}

func (a *catalogAdapter) DeleteProduct(ctx context.Context, id string) error {
	req := DeleteProductRequest{ID: id}
	var resp DeleteProductResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("catalog delete service call failed: %w", err)
	}
	return nil
}
