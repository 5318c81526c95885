package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryGravy    Category = "gravy"
	CategoryMarinade Category = "marinade"
	CategoryPowder   Category = "powder"
)

// Valid reports whether c is one of the known product categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGravy, CategoryMarinade, CategoryPowder:
		return true
	}
	return false
}

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	LongDescription string          `json:"longDescription,omitempty"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        string          `json:"imageUrl"`
	Category        Category        `json:"category"`
	Weight          string          `json:"weight"`
	StockQuantity   int             `json:"stockQuantity"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}
