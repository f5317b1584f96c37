package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"shop_bots/internal/pricing"
)

// Product is a fixed catalog entry. Key is the emoji used on keyboard
// buttons and in listings; customers pick products by it.
type Product struct {
	Key       string  `yaml:"key"`
	Name      string  `yaml:"name"`
	BasePrice float64 `yaml:"base_price"` // zł per gram
}

// Catalog carries the two shop products and the discount tier list. Tiers
// are applied first-match in the order given here, so keep them sorted
// descending by min_grams.
type Catalog struct {
	Products []Product      `yaml:"products"`
	Tiers    []pricing.Tier `yaml:"discounts"`
}

// DefaultCatalog mirrors the original shop configuration.
func DefaultCatalog() Catalog {
	return Catalog{
		Products: []Product{
			{Key: "💎", Name: "Diament", BasePrice: 60},
			{Key: "🥦", Name: "Brokuł", BasePrice: 50},
		},
		Tiers: []pricing.Tier{
			{MinGrams: 30, Discount: 20},
			{MinGrams: 20, Discount: 15},
			{MinGrams: 10, Discount: 10},
		},
	}
}

// LoadCatalog reads and validates a YAML catalog file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, err
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate enforces the catalog shape: exactly two products with distinct
// keys and positive prices, and well-formed tiers. Tier ordering is the
// caller's responsibility and is deliberately not re-sorted.
func (c Catalog) Validate() error {
	if len(c.Products) != 2 {
		return fmt.Errorf("catalog must contain exactly 2 products, got %d", len(c.Products))
	}
	seen := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		if strings.TrimSpace(p.Key) == "" {
			return fmt.Errorf("product %d: key must not be empty", i)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("product %d: name must not be empty", i)
		}
		if p.BasePrice <= 0 {
			return fmt.Errorf("product %q: base_price must be > 0", p.Name)
		}
		if seen[p.Key] {
			return fmt.Errorf("product key %q is duplicated", p.Key)
		}
		seen[p.Key] = true
	}
	for i, t := range c.Tiers {
		if t.MinGrams <= 0 {
			return fmt.Errorf("discount %d: min_grams must be > 0", i)
		}
		if t.Discount < 0 {
			return fmt.Errorf("discount %d: discount must be >= 0", i)
		}
	}
	return nil
}

// ProductByButton resolves a keyboard button press to a catalog product by
// its emoji key.
func (c Catalog) ProductByButton(text string) (Product, bool) {
	for _, p := range c.Products {
		if strings.Contains(text, p.Key) {
			return p, true
		}
	}
	return Product{}, false
}
