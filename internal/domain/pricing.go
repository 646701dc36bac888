package domain

import "math"

// FinalPrice computes the unit price of a product under the given
// selections.
//
// The order of operations is deliberate and matches what customers have
// been charged historically; it must not be "fixed":
//
//  1. A sale replaces the base price (fixed: base - amount, percent:
//     base reduced by a fraction of base).
//  2. Every selected option with a price change adds a delta computed
//     against the raw base price, never against the post-sale running
//     price.
//
// Unknown variant or option ids are silent no-ops, and variants missing
// from the selection map contribute nothing. Callers materialise
// variant defaults before pricing when that is the intent.
func FinalPrice(product Product, selections SelectedOptions) int64 {
	price := product.BasePrice
	if product.Sale != nil {
		price = product.BasePrice - saleDiscount(product.BasePrice, *product.Sale)
	}

	for variantID, selection := range selections {
		variant, ok := product.Variant(variantID)
		if !ok {
			continue
		}
		for _, optionID := range selection.OptionIDs() {
			option, ok := variant.Option(optionID)
			if !ok || option.PriceChange == nil {
				continue
			}
			price += optionDelta(product.BasePrice, *option.PriceChange)
		}
	}
	return price
}

func saleDiscount(basePrice int64, sale PriceChange) int64 {
	switch sale.Kind {
	case PriceChangeFixed:
		return sale.Amount
	case PriceChangePercent:
		return percentOf(basePrice, sale.Percent)
	}
	return 0
}

func optionDelta(basePrice int64, change PriceChange) int64 {
	switch change.Kind {
	case PriceChangeFixed:
		return change.Amount
	case PriceChangePercent:
		return percentOf(basePrice, change.Percent)
	}
	return 0
}

// percentOf rounds half away from zero so integer minor-unit amounts
// stay exact for the catalog's usual whole-percent rules.
func percentOf(amount int64, fraction float64) int64 {
	return int64(math.Round(float64(amount) * fraction))
}
