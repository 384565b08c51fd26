package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&Product{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// insertProduct inserts a product with a controlled creation time so
// listing order is deterministic.
func insertProduct(t *testing.T, repo *Repository, name, category string, price float64, createdAt time.Time) *Product {
	t.Helper()

	p := &Product{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  category,
		Price:     price,
		Stock:     10,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := repo.Create(p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return p
}

func TestRepository_CreateAndFindByID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	product := &Product{
		ID:          uuid.New().String(),
		Name:        "Test Product",
		Description: "A test product",
		Price:       19.99,
		Stock:       100,
		Category:    "electronics",
	}

	if err := repo.Create(product); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByID(product.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Name != product.Name {
		t.Errorf("expected name %q, got %q", product.Name, found.Name)
	}
	if found.Category != product.Category {
		t.Errorf("expected category %q, got %q", product.Category, found.Category)
	}
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	if _, err := repo.FindByID("nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_List_Filters(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	base := time.Now().Add(-time.Hour)
	insertProduct(t, repo, "Mechanical Keyboard", "electronics", 129.00, base)
	insertProduct(t, repo, "USB-C Dock", "electronics", 89.50, base.Add(time.Minute))
	insertProduct(t, repo, "Laptop Stand", "office", 27.00, base.Add(2*time.Minute))

	tests := []struct {
		name      string
		filter    ListFilter
		wantNames []string
		wantTotal int64
	}{
		{
			name:      "no filter newest first",
			filter:    ListFilter{Page: 1, PageSize: 10},
			wantNames: []string{"Laptop Stand", "USB-C Dock", "Mechanical Keyboard"},
			wantTotal: 3,
		},
		{
			name:      "keyword is case-insensitive",
			filter:    ListFilter{Keyword: "keyboard", Page: 1, PageSize: 10},
			wantNames: []string{"Mechanical Keyboard"},
			wantTotal: 1,
		},
		{
			name:      "category filter",
			filter:    ListFilter{Category: "electronics", Page: 1, PageSize: 10},
			wantNames: []string{"USB-C Dock", "Mechanical Keyboard"},
			wantTotal: 2,
		},
		{
			name:      "inclusive price range",
			filter:    ListFilter{PriceMin: float64Ptr(27.00), PriceMax: float64Ptr(89.50), Page: 1, PageSize: 10},
			wantNames: []string{"Laptop Stand", "USB-C Dock"},
			wantTotal: 2,
		},
		{
			name:      "second page",
			filter:    ListFilter{Page: 2, PageSize: 2},
			wantNames: []string{"Mechanical Keyboard"},
			wantTotal: 3,
		},
		{
			name:      "page past the end is empty but keeps total",
			filter:    ListFilter{Page: 9, PageSize: 10},
			wantNames: []string{},
			wantTotal: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, total, err := repo.List(tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("List() total = %d, want %d", total, tt.wantTotal)
			}
			if len(products) != len(tt.wantNames) {
				t.Fatalf("List() returned %d products, want %d", len(products), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if products[i].Name != want {
					t.Errorf("products[%d].Name = %q, want %q", i, products[i].Name, want)
				}
			}
		})
	}
}

func TestRepository_Update_KeepsZeroValues(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	p := insertProduct(t, repo, "Pour-over Kettle", "kitchen", 45.00, time.Now())

	p.Stock = 0
	p.Price = 0
	if err := repo.Update(p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := repo.FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Stock != 0 {
		t.Errorf("expected stock 0, got %d", found.Stock)
	}
	if found.Price != 0 {
		t.Errorf("expected price 0, got %v", found.Price)
	}
}

func TestRepository_Update_NotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	err := repo.Update(&Product{ID: "nonexistent", Name: "Ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_Delete_SoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	p := insertProduct(t, repo, "Espresso Scale", "kitchen", 52.80, time.Now())

	if err := repo.Delete(p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// Gone from regular queries.
	if _, err := repo.FindByID(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again reports not found.
	if err := repo.Delete(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	// The row survives with the deletion mark set.
	var raw Product
	if err := db.Unscoped().First(&raw, "id = ?", p.ID).Error; err != nil {
		t.Fatalf("failed to load soft-deleted row: %v", err)
	}
	if !raw.DeletedAt.Valid {
		t.Error("expected deleted_at to be set on soft-deleted row")
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}
