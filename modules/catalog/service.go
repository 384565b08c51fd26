package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

// Field limits enforced at the service boundary. They mirror the column
// sizes declared on the Product entity.
const (
	maxNameLen        = 100
	maxDescriptionLen = 500
	maxCategoryLen    = 50
)

// errValidation builds a field-level validation error. The "validation
// failed" prefix is what the API boundary keys on after the error has
// crossed the request-reply transport as plain text.
func errValidation(field, message string) error {
	return fmt.Errorf("validation failed: %s: %s", field, message)
}

// cacheKeyByID returns the cache key for a product by ID.
func cacheKeyByID(id string) string {
	return "id:" + id
}

// cacheKeyList returns the cache key for one listing page. Every filter
// dimension participates so distinct queries never collide.
func cacheKeyList(req ListProductsRequest) string {
	min, max := "-", "-"
	if req.PriceMin != nil {
		min = fmt.Sprintf("%g", *req.PriceMin)
	}
	if req.PriceMax != nil {
		max = fmt.Sprintf("%g", *req.PriceMax)
	}
	return fmt.Sprintf("list:%s:%s:%s:%s:%d:%d",
		strings.ToLower(req.Keyword), req.Category, min, max, req.Page, req.PageSize)
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errValidation("name", "must not be empty")
	}
	if len(name) > maxNameLen {
		return errValidation("name", fmt.Sprintf("must be at most %d characters", maxNameLen))
	}
	return nil
}

// createProduct handles the catalog.create service request.
func (m *CatalogModule) createProduct(ctx context.Context, req CreateProductRequest, _ *mono.Msg) (ProductDTO, error) {
	if err := validateName(req.Name); err != nil {
		return ProductDTO{}, err
	}
	if len(req.Description) > maxDescriptionLen {
		return ProductDTO{}, errValidation("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLen))
	}
	if req.Price < 0 {
		return ProductDTO{}, errValidation("price", "must be non-negative")
	}
	if req.Stock < 0 {
		return ProductDTO{}, errValidation("stock", "must be non-negative")
	}
	if len(req.Category) > maxCategoryLen {
		return ProductDTO{}, errValidation("category", fmt.Sprintf("must be at most %d characters", maxCategoryLen))
	}

	product := &Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	}

	if err := m.repo.Create(product); err != nil {
		return ProductDTO{}, fmt.Errorf("failed to save product: %w", err)
	}

	m.invalidateLists(ctx)
	log.Printf("[catalog] Created product ID=%s, list cache invalidated", product.ID)
	return toProductDTO(product), nil
}

// getProduct handles the catalog.get service request with the cache-aside
// pattern. Concurrent misses for the same ID collapse into one database
// read via singleflight.
func (m *CatalogModule) getProduct(ctx context.Context, req GetProductRequest, _ *mono.Msg) (ProductDTO, error) {
	if req.ID == "" {
		return ProductDTO{}, errValidation("id", "must not be empty")
	}

	cacheKey := cacheKeyByID(req.ID)

	var cached ProductDTO
	found, err := m.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Printf("[catalog] Cache error for ID=%s: %v", req.ID, err)
		// Fall through to the database on cache errors.
	}
	if found {
		return cached, nil
	}

	val, err, _ := m.sfGroup.Do(cacheKey, func() (any, error) {
		return m.repo.FindByID(req.ID)
	})
	if err != nil {
		return ProductDTO{}, err
	}
	product := val.(*Product)

	dto := toProductDTO(product)
	if err := m.cache.Set(ctx, cacheKey, dto); err != nil {
		log.Printf("[catalog] Warning: failed to cache product ID=%s: %v", req.ID, err)
	}

	return dto, nil
}

// listProducts handles the catalog.list service request. Pagination is
// strict: non-positive page or page size is rejected rather than clamped.
func (m *CatalogModule) listProducts(ctx context.Context, req ListProductsRequest, _ *mono.Msg) (ListProductsResponse, error) {
	if req.Page <= 0 {
		return ListProductsResponse{}, errValidation("page", "must be a positive integer")
	}
	if req.PageSize <= 0 {
		return ListProductsResponse{}, errValidation("page_size", "must be a positive integer")
	}
	if req.PriceMin != nil && *req.PriceMin < 0 {
		return ListProductsResponse{}, errValidation("price_min", "must be non-negative")
	}
	if req.PriceMin != nil && req.PriceMax != nil && *req.PriceMax < *req.PriceMin {
		return ListProductsResponse{}, errValidation("price_max", "must not be below price_min")
	}

	cacheKey := cacheKeyList(req)

	var cached ListProductsResponse
	found, err := m.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Printf("[catalog] Cache error for list: %v", err)
	}
	if found {
		return cached, nil
	}

	log.Printf("[catalog] Cache MISS for %s, querying database", cacheKey)
	val, err, _ := m.sfGroup.Do(cacheKey, func() (any, error) {
		products, total, err := m.repo.List(ListFilter{
			Keyword:  req.Keyword,
			Category: req.Category,
			PriceMin: req.PriceMin,
			PriceMax: req.PriceMax,
			Page:     req.Page,
			PageSize: req.PageSize,
		})
		if err != nil {
			return nil, err
		}
		resp := ListProductsResponse{
			Products: make([]ProductDTO, 0, len(products)),
			Total:    total,
		}
		for _, p := range products {
			resp.Products = append(resp.Products, toProductDTO(p))
		}
		return resp, nil
	})
	if err != nil {
		return ListProductsResponse{}, err
	}
	resp := val.(ListProductsResponse)

	if err := m.cache.Set(ctx, cacheKey, resp); err != nil {
		log.Printf("[catalog] Warning: failed to cache list: %v", err)
	}

	return resp, nil
}

// updateProduct handles the catalog.update service request. Nil fields are
// left untouched; provided fields are validated before the merge.
func (m *CatalogModule) updateProduct(ctx context.Context, req UpdateProductRequest, _ *mono.Msg) (ProductDTO, error) {
	if req.ID == "" {
		return ProductDTO{}, errValidation("id", "must not be empty")
	}

	product, err := m.repo.FindByID(req.ID)
	if err != nil {
		return ProductDTO{}, err
	}

	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return ProductDTO{}, err
		}
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		if len(*req.Description) > maxDescriptionLen {
			return ProductDTO{}, errValidation("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLen))
		}
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return ProductDTO{}, errValidation("price", "must be non-negative")
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return ProductDTO{}, errValidation("stock", "must be non-negative")
		}
		product.Stock = *req.Stock
	}
	if req.Category != nil {
		if len(*req.Category) > maxCategoryLen {
			return ProductDTO{}, errValidation("category", fmt.Sprintf("must be at most %d characters", maxCategoryLen))
		}
		product.Category = *req.Category
	}

	if err := m.repo.Update(product); err != nil {
		return ProductDTO{}, fmt.Errorf("failed to update product: %w", err)
	}

	m.invalidateProduct(ctx, req.ID)
	log.Printf("[catalog] Updated product ID=%s, caches invalidated", req.ID)

	// Re-read so the response carries the timestamps GORM assigned.
	updated, err := m.repo.FindByID(req.ID)
	if err != nil {
		return ProductDTO{}, err
	}
	return toProductDTO(updated), nil
}

// deleteProduct handles the catalog.delete service request (soft delete).
func (m *CatalogModule) deleteProduct(ctx context.Context, req DeleteProductRequest, _ *mono.Msg) (DeleteProductResponse, error) {
	if req.ID == "" {
		return DeleteProductResponse{}, errValidation("id", "must not be empty")
	}

	if err := m.repo.Delete(req.ID); err != nil {
		return DeleteProductResponse{ID: req.ID, Deleted: false}, err
	}

	m.invalidateProduct(ctx, req.ID)
	log.Printf("[catalog] Deleted product ID=%s, caches invalidated", req.ID)
	return DeleteProductResponse{ID: req.ID, Deleted: true}, nil
}

// invalidateProduct drops the per-ID entry and every cached listing page.
func (m *CatalogModule) invalidateProduct(ctx context.Context, id string) {
	if err := m.cache.Delete(ctx, cacheKeyByID(id)); err != nil {
		log.Printf("[catalog] Warning: failed to invalidate cache for ID=%s: %v", id, err)
	}
	m.invalidateLists(ctx)
}

// invalidateLists drops every cached listing page.
func (m *CatalogModule) invalidateLists(ctx context.Context) {
	if err := m.cache.DeletePattern(ctx, "list:*"); err != nil {
		log.Printf("[catalog] Warning: failed to invalidate list cache: %v", err)
	}
}

// toProductDTO converts a Product entity to its wire representation.
func toProductDTO(product *Product) ProductDTO {
	return ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Category:    product.Category,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
