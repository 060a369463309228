package domain

import "github.com/shopspring/decimal"

// FallbackPrice is the unit price used when the catalog omits one.
var FallbackPrice = decimal.RequireFromString("12.00")

// Book is a catalog entry as served by the bookshop API.
type Book struct {
	ID              int64               `json:"id"`
	Title           string              `json:"title"`
	Author          string              `json:"author"`
	ISBN            string              `json:"isbn"`
	Publisher       string              `json:"publisher,omitempty"`
	PublicationDate string              `json:"publicationDate,omitempty"`
	Price           decimal.NullDecimal `json:"price"`
	Language        string              `json:"language,omitempty"`
	Genre           string              `json:"genre,omitempty"`
	StockQuantity   *int                `json:"stockQuantity,omitempty"`
	Description     string              `json:"description,omitempty"`
	AverageRating   *float64            `json:"averageRating,omitempty"`
	PageCount       *int                `json:"pageCount,omitempty"`
	Format          string              `json:"format,omitempty"`
	ImageURL        string              `json:"imageUrl,omitempty"`
	IsAvailable     bool                `json:"isAvailable"`
}

// UnitPrice returns the catalog price or FallbackPrice when none is set.
func (b Book) UnitPrice() decimal.Decimal {
	if b.Price.Valid {
		return b.Price.Decimal
	}
	return FallbackPrice
}

// BookPage is one page of search results.
type BookPage struct {
	Content       []Book `json:"content"`
	TotalPages    int    `json:"totalPages"`
	TotalElements int64  `json:"totalElements"`
	Number        int    `json:"number"`
	Size          int    `json:"size"`
}
