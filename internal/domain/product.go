package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Mobile clients read prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	MinStockCount = 0
	MaxStockCount = 250

	// PriceScale is the number of decimal places a price is stored with.
	PriceScale = 2
)

// MaxPrice is the largest value the DECIMAL(10,2) price column holds.
var MaxPrice = decimal.RequireFromString("99999999.99")

// Product represents a product in the catalog
type Product struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Description     string          `json:"description" db:"description"`
	MainDescription string          `json:"mainDescription" db:"main_description"`
	Image           string          `json:"image" db:"image"`
	Images          []string        `json:"images" db:"images"`
	Brand           string          `json:"brand" db:"brand"`
	Price           decimal.Decimal `json:"price" db:"price"`
	CategoryID      uuid.UUID       `json:"categoryId" db:"category_id"`
	StockCount      int             `json:"stockCount" db:"stock_count"`
	Rating          float64         `json:"rating" db:"rating"`
	NumReviews      int             `json:"numReviews" db:"num_reviews"`
	IsFeatured      bool            `json:"isFeatured" db:"is_featured"`
	DateCreated     time.Time       `json:"dateCreated" db:"date_created"`

	// Category is populated on reads; nil when the referenced category no
	// longer exists.
	Category *Category `json:"category,omitempty" db:"-"`
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Icon      string    `json:"icon" db:"icon"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ProductFilter narrows product listings. Empty fields do not filter.
type ProductFilter struct {
	CategoryIDs []uuid.UUID
	Search      string
}
