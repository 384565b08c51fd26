package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a product is not found.
var ErrNotFound = errors.New("product not found")

// ListFilter narrows a product listing. Zero values mean "no constraint";
// price bounds are inclusive when set.
type ListFilter struct {
	Keyword  string
	Category string
	PriceMin *float64
	PriceMax *float64
	Page     int
	PageSize int
}

// Repository provides access to product storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new product repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new product to the database.
func (r *Repository) Create(product *Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// FindByID retrieves a product by its ID.
func (r *Repository) FindByID(id string) (*Product, error) {
	var product Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// List retrieves one page of products matching the filter, newest first,
// along with the total match count before pagination.
func (r *Repository) List(filter ListFilter) ([]*Product, int64, error) {
	query := r.db.Model(&Product{})

	if filter.Keyword != "" {
		// SQLite LIKE is case-insensitive for ASCII.
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", *filter.PriceMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []*Product
	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

// Update persists all fields of an existing product. Select("*") keeps
// zero values (price 0, stock 0) from being skipped by the struct update.
func (r *Repository) Update(product *Product) error {
	result := r.db.Model(&Product{}).Where("id = ?", product.ID).Select("*").Updates(product)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product by ID (soft delete).
func (r *Repository) Delete(id string) error {
	result := r.db.Delete(&Product{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of live products.
func (r *Repository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
