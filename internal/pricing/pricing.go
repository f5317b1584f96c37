// Package pricing computes tiered per-gram discounts for the purchase flow.
package pricing

// Tier grants Discount złoty per gram once the ordered quantity reaches
// MinGrams. Tiers are scanned in the order configured and the first match
// wins, so the list must be sorted descending by MinGrams for the largest
// qualifying discount to apply.
type Tier struct {
	MinGrams float64 `yaml:"min_grams"`
	Discount float64 `yaml:"discount"`
}

// Quote is the result of pricing a quantity against a base price.
type Quote struct {
	UnitPrice  float64
	TotalPrice float64
	Discount   float64
}

// Calculate applies the first matching tier to basePrice and prices quantity
// grams. No tier matching leaves the discount at zero. A discount exceeding
// the base price is not rejected and yields a negative quote.
func Calculate(basePrice, quantity float64, tiers []Tier) Quote {
	var discount float64
	for _, t := range tiers {
		if quantity >= t.MinGrams {
			discount = t.Discount
			break
		}
	}
	unit := basePrice - discount
	return Quote{
		UnitPrice:  unit,
		TotalPrice: unit * quantity,
		Discount:   discount,
	}
}
