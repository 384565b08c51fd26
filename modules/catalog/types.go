package catalog

import "time"

// ProductDTO is the wire representation of a product.
type ProductDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductRequest is the payload for the create service.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

// GetProductRequest is the payload for the get service.
type GetProductRequest struct {
	ID string `json:"id"`
}

// ListProductsRequest is the payload for the list service. Price bounds
// are inclusive when set; page and page_size must both be positive.
type ListProductsRequest struct {
	Keyword  string   `json:"keyword,omitempty"`
	Category string   `json:"category,omitempty"`
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

// ListProductsResponse is one page of products plus the total match count.
type ListProductsResponse struct {
	Products []ProductDTO `json:"products"`
	Total    int64        `json:"total"`
}

// UpdateProductRequest is the payload for the update service. Nil fields
// are left untouched.
type UpdateProductRequest struct {
	ID          string   `json:"id"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// DeleteProductRequest is the payload for the delete service.
type DeleteProductRequest struct {
	ID string `json:"id"`
}

// DeleteProductResponse reports the outcome of a delete.
type DeleteProductResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
