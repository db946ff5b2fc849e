package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product statuses. Only active products are visible on the storefront.
const (
	ProductStatusActive = "active"
	ProductStatusDraft  = "draft"
)

// StockMode tells where the stock truth for a product lives.
type StockMode int

const (
	// StockFlat means the product-level StockQty is authoritative.
	StockFlat StockMode = iota
	// StockVariant means stock is tracked per variant and the product-level
	// InStock flag is derived, never set directly.
	StockVariant
)

// Variant is one size/color/pack combination with its own price and stock.
type Variant struct {
	Size     string `bson:"size,omitempty" json:"size,omitempty"`
	Color    string `bson:"color,omitempty" json:"color,omitempty"`
	Pack     string `bson:"pack,omitempty" json:"pack,omitempty"`
	Price    int64  `bson:"price" json:"price"` // paise
	StockQty int    `bson:"stockQty" json:"stockQty"`
	InStock  bool   `bson:"inStock" json:"inStock"`
	SKU      string `bson:"sku,omitempty" json:"sku,omitempty"`
}

type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Price          int64              `bson:"price" json:"price"` // paise
	Category       StringList         `bson:"category" json:"category"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Images         StringList         `bson:"images,omitempty" json:"images,omitempty"`
	SKU            string             `bson:"sku,omitempty" json:"sku,omitempty"`
	StockQty       int                `bson:"stockQty" json:"stockQty"`
	InStock        bool               `bson:"inStock" json:"inStock"`
	VariantPricing []Variant          `bson:"variantPricing,omitempty" json:"variantPricing,omitempty"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StockMode derives where stock truth lives: variant level whenever any
// variants exist, flat otherwise.
func (p *Product) StockMode() StockMode {
	if len(p.VariantPricing) > 0 {
		return StockVariant
	}
	return StockFlat
}

// VariantBySKU returns the variant matching sku, or nil.
func (p *Product) VariantBySKU(sku string) *Variant {
	if sku == "" {
		return nil
	}
	for i := range p.VariantPricing {
		if p.VariantPricing[i].SKU == sku {
			return &p.VariantPricing[i]
		}
	}
	return nil
}

// DeriveInStock computes the product-level availability flag: true when the
// flat counter is positive, or when any variant has stock. It never reads the
// stored InStock field in variant mode.
func (p *Product) DeriveInStock() bool {
	if p.StockMode() == StockVariant {
		for i := range p.VariantPricing {
			v := &p.VariantPricing[i]
			if v.StockQty > 0 || v.InStock {
				return true
			}
		}
		return false
	}
	return p.StockQty > 0
}

// RecomputeInStock refreshes the derived product-level flag after any stock
// mutation. Variant-level InStock is owned by whoever mutated the variant;
// legacy documents that track only the boolean keep it untouched.
func (p *Product) RecomputeInStock() {
	p.InStock = p.DeriveInStock()
}
