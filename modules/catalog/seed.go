package catalog

import (
	"time"

	"github.com/google/uuid"
)

// seedProducts loads a small sample catalog. Rows are inserted oldest
// first with staggered timestamps so the newest-first listing order is
// deterministic.
func seedProducts(repo *Repository) error {
	samples := []Product{
		{
			Name:        "Mechanical Keyboard",
			Description: "87-key hot-swappable board with PBT keycaps",
			Price:       129.00,
			Stock:       42,
			Category:    "electronics",
		},
		{
			Name:        "USB-C Dock",
			Description: "Dual 4K display output, 100W passthrough charging",
			Price:       89.50,
			Stock:       17,
			Category:    "electronics",
		},
		{
			Name:        "Standing Desk Mat",
			Description: "Anti-fatigue mat, 80x50cm",
			Price:       34.90,
			Stock:       120,
			Category:    "office",
		},
		{
			Name:        "Laptop Stand",
			Description: "Adjustable aluminium stand, folds flat",
			Price:       27.00,
			Stock:       64,
			Category:    "office",
		},
		{
			Name:        "Pour-over Kettle",
			Description: "Gooseneck kettle with thermometer, 1L",
			Price:       45.00,
			Stock:       0,
			Category:    "kitchen",
		},
		{
			Name:        "Espresso Scale",
			Description: "0.1g resolution with shot timer",
			Price:       52.80,
			Stock:       9,
			Category:    "kitchen",
		},
	}

	base := time.Now().Add(-time.Duration(len(samples)) * time.Hour)
	for i := range samples {
		samples[i].ID = uuid.New().String()
		samples[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		samples[i].UpdatedAt = samples[i].CreatedAt
		if err := repo.Create(&samples[i]); err != nil {
			return err
		}
	}
	return nil
}
