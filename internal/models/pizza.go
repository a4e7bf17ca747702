package models

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Size is the size code of a pizza variant
type Size string

const (
	SizeSmall      Size = "S"
	SizeMedium     Size = "M"
	SizeLarge      Size = "L"
	SizeExtraLarge Size = "XL"
	SizeXXL        Size = "XXL"
)

var sizeLabels = map[Size]string{
	SizeSmall:      "Small",
	SizeMedium:     "Medium",
	SizeLarge:      "Large",
	SizeExtraLarge: "XL",
	SizeXXL:        "XXL",
}

var sizeRanks = map[Size]int{
	SizeSmall:      1,
	SizeMedium:     2,
	SizeLarge:      3,
	SizeExtraLarge: 4,
	SizeXXL:        5,
}

// Valid reports whether s is one of the known size codes
func (s Size) Valid() bool {
	_, ok := sizeLabels[s]
	return ok
}

// Display returns the human readable size name, e.g. "Medium" for "M"
func (s Size) Display() string {
	if label, ok := sizeLabels[s]; ok {
		return label
	}
	return string(s)
}

// Rank orders sizes from small to large. Unknown sizes sort last.
func (s Size) Rank() int {
	if r, ok := sizeRanks[s]; ok {
		return r
	}
	return len(sizeRanks) + 1
}

// Pizza represents a pizza on the menu. A pizza is sold in one or more variants.
type Pizza struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null;uniqueIndex:idx_pizza_name_category" json:"name"`
	Category    string         `gorm:"size:50;not null;uniqueIndex:idx_pizza_name_category;index" json:"category"`
	Ingredients string         `gorm:"type:text" json:"ingredients"`
	Variants    []PizzaVariant `gorm:"constraint:OnDelete:CASCADE" json:"variants,omitempty"`
}

func (p Pizza) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Category)
}

// PizzaVariant is a pizza in a given size with its own price.
// Slug is the pizza_name_id column of the sales CSV (e.g. hawaiian_m).
type PizzaVariant struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	PizzaID   uint            `gorm:"not null;uniqueIndex:idx_variant_pizza_size" json:"pizza_id"`
	Pizza     *Pizza          `json:"pizza,omitempty"`
	Size      Size            `gorm:"size:3;not null;uniqueIndex:idx_variant_pizza_size;index" json:"size"`
	Slug      string          `gorm:"size:100;uniqueIndex" json:"slug"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"unit_price"`
}

// String renders the variant as "Name [M]". The pizza must be loaded.
func (v PizzaVariant) String() string {
	name := ""
	if v.Pizza != nil {
		name = v.Pizza.Name
	}
	return fmt.Sprintf("%s [%s]", name, v.Size)
}

// Slugify turns "The Hawaiian Pizza" into "hawaiian" the way the sales CSV names variants
func Slugify(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	kept := words[:0]
	for _, w := range words {
		if w != "the" && w != "pizza" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, "_")
}

// VariantSlug builds the pizza_name_id of a variant, e.g. hawaiian_m
func VariantSlug(name string, size Size) string {
	return Slugify(name) + "_" + strings.ToLower(string(size))
}
