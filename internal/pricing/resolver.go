package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mimasafoods/storefront/internal/cart"
	"github.com/mimasafoods/storefront/internal/cartconfig"
)

// Totals is the priced view of a cart. Amounts are rupees with two decimal
// places. MissingProducts lists cart rows whose product could not be resolved
// or is no longer active; those rows contribute nothing to the subtotal.
type Totals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCharge  decimal.Decimal `json:"shippingCharge"`
	Total           decimal.Decimal `json:"total"`
	FreeShippingAt  decimal.Decimal `json:"freeShippingAt"`
	MissingProducts []string        `json:"missingProducts,omitempty"`
}

// Resolver computes cart totals from current product prices and the live
// shipping configuration.
type Resolver struct {
	config *cartconfig.Provider
}

func NewResolver(config *cartconfig.Provider) *Resolver {
	return &Resolver{config: config}
}

func (r *Resolver) ComputeTotals(ctx context.Context, items []cart.Item) Totals {
	cfg := r.config.Values(ctx)

	subtotal := decimal.Zero
	var missing []string
	for _, it := range items {
		if it.Product == nil || !it.Product.IsActive {
			missing = append(missing, it.ProductID)
			continue
		}
		line := it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
	}

	shipping := decimal.Zero
	if subtotal.IsPositive() && subtotal.LessThan(cfg.FreeShippingThreshold) {
		shipping = cfg.ShippingFee
	}

	return Totals{
		Subtotal:        subtotal.Round(2),
		ShippingCharge:  shipping.Round(2),
		Total:           subtotal.Add(shipping).Round(2),
		FreeShippingAt:  cfg.FreeShippingThreshold,
		MissingProducts: missing,
	}
}

// PaiseAmount converts a rupee amount to integer paise, rounding half away
// from zero. Payment gateways take amounts in the minor unit.
func PaiseAmount(rupees decimal.Decimal) int64 {
	return rupees.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
