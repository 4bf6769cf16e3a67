package domain

import "time"

type ProductStatus string

const (
	ProductStatusActive  ProductStatus = "active"
	ProductStatusDeleted ProductStatus = "deleted"
)

type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryBooks       Category = "books"
	CategoryHostel      Category = "hostel"
	CategoryClothing    Category = "clothing"
	CategoryMisc        Category = "misc"
)

// Categories is the closed set of listing categories, in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryBooks,
	CategoryHostel,
	CategoryClothing,
	CategoryMisc,
}

var categoryNames = map[Category]string{
	CategoryElectronics: "Electronics",
	CategoryBooks:       "Books",
	CategoryHostel:      "Hostel Essentials",
	CategoryClothing:    "Clothing",
	CategoryMisc:        "Miscellaneous",
}

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c Category) bool {
	_, ok := categoryNames[c]
	return ok
}

// DisplayName returns the human readable name for a category, or the raw
// value for unknown ones.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// Product represents a listing posted by a user. SellerName is a snapshot of
// the seller's name at post time. Deleted products stay in storage with
// status flipped to deleted; the transition is one-directional.
type Product struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Category    Category
	Image       string
	SellerID    string
	SellerName  string
	Status      ProductStatus
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}

// ProductPatch enumerates the fields a listing update may change.
// Nil fields are left untouched; seller and status are never patchable.
type ProductPatch struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *Category
	Image       *string
}
