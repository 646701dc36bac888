package domain

import "testing"

func fixedChange(amount int64) *PriceChange {
	return &PriceChange{Kind: PriceChangeFixed, Amount: amount}
}

func percentChange(fraction float64) *PriceChange {
	return &PriceChange{Kind: PriceChangePercent, Percent: fraction}
}

func sizeVariant() Variant {
	return Variant{
		ID:   "size",
		Kind: VariantSingle,
		Options: []Option{
			{ID: "M"},
			{ID: "L", PriceChange: fixedChange(5000)},
		},
		DefaultOption: "M",
	}
}

func TestFinalPriceNoSaleNoOptions(t *testing.T) {
	product := Product{ID: 1, BasePrice: 50000}
	if got := FinalPrice(product, nil); got != 50000 {
		t.Fatalf("FinalPrice = %d, want base price 50000", got)
	}
}

func TestFinalPriceFixedSale(t *testing.T) {
	product := Product{ID: 1, BasePrice: 50000, Sale: fixedChange(8000)}
	if got := FinalPrice(product, nil); got != 42000 {
		t.Fatalf("FinalPrice = %d, want 42000", got)
	}
}

func TestFinalPricePercentSale(t *testing.T) {
	product := Product{ID: 1, BasePrice: 50000, Sale: percentChange(0.1)}
	if got := FinalPrice(product, nil); got != 45000 {
		t.Fatalf("FinalPrice = %d, want 45000", got)
	}
}

func TestFinalPriceFixedOptionDelta(t *testing.T) {
	product := Product{ID: 2, BasePrice: 30000, Variants: []Variant{sizeVariant()}}
	selections := SelectedOptions{"size": SingleSelection("L")}
	if got := FinalPrice(product, selections); got != 35000 {
		t.Fatalf("FinalPrice = %d, want 35000", got)
	}
}

func TestFinalPriceFixedOptionDeltaIndependentOfSale(t *testing.T) {
	product := Product{
		ID:        2,
		BasePrice: 30000,
		Sale:      percentChange(0.5),
		Variants:  []Variant{sizeVariant()},
	}
	selections := SelectedOptions{"size": SingleSelection("L")}
	// 30000*0.5 + 5000: the option delta is unchanged by the sale.
	if got := FinalPrice(product, selections); got != 20000 {
		t.Fatalf("FinalPrice = %d, want 20000", got)
	}
}

func TestFinalPricePercentOptionDeltaUsesBasePrice(t *testing.T) {
	product := Product{
		ID:        3,
		BasePrice: 40000,
		Sale:      percentChange(0.25),
		Variants: []Variant{{
			ID:   "fabric",
			Kind: VariantSingle,
			Options: []Option{
				{ID: "silk", PriceChange: percentChange(0.1)},
			},
		}},
	}
	selections := SelectedOptions{"fabric": SingleSelection("silk")}
	// 40000 - 10000 + 40000*0.1: percent delta is of base, not of the
	// post-sale running price (which would give 33000).
	if got := FinalPrice(product, selections); got != 34000 {
		t.Fatalf("FinalPrice = %d, want 34000", got)
	}
}

func TestFinalPriceMultiSelectSumsDeltas(t *testing.T) {
	product := Product{
		ID:        4,
		BasePrice: 100000,
		Variants: []Variant{{
			ID:   "extras",
			Kind: VariantMultiple,
			Options: []Option{
				{ID: "lining", PriceChange: fixedChange(15000)},
				{ID: "monogram", PriceChange: percentChange(0.05)},
				{ID: "free-extra"},
			},
		}},
	}
	selections := SelectedOptions{"extras": MultiSelection("lining", "monogram", "free-extra")}
	if got := FinalPrice(product, selections); got != 120000 {
		t.Fatalf("FinalPrice = %d, want 120000", got)
	}
}

func TestFinalPriceUnknownIDsAreNoOps(t *testing.T) {
	product := Product{ID: 5, BasePrice: 25000, Variants: []Variant{sizeVariant()}}
	selections := SelectedOptions{
		"size":    SingleSelection("XXL"), // unknown option
		"ghost":   SingleSelection("M"),   // unknown variant
		"extras2": MultiSelection("a", "b"),
	}
	if got := FinalPrice(product, selections); got != 25000 {
		t.Fatalf("FinalPrice = %d, want base price 25000", got)
	}
}

func TestFinalPriceMissingVariantContributesNothing(t *testing.T) {
	product := Product{ID: 6, BasePrice: 60000, Variants: []Variant{sizeVariant()}}
	if got := FinalPrice(product, SelectedOptions{}); got != 60000 {
		t.Fatalf("FinalPrice = %d, want 60000", got)
	}
}

func TestDefaultSelections(t *testing.T) {
	product := Product{
		ID:        7,
		BasePrice: 1000,
		Variants: []Variant{
			sizeVariant(),
			{ID: "extras", Kind: VariantMultiple, DefaultOptions: []string{"lining"}},
			{ID: "color", Kind: VariantSingle}, // no default
		},
	}
	defaults := product.DefaultSelections()
	if len(defaults) != 2 {
		t.Fatalf("expected 2 default entries, got %d", len(defaults))
	}
	if sel := defaults["size"]; sel.Kind != VariantSingle || sel.Option != "M" {
		t.Fatalf("size default = %+v", sel)
	}
	if sel := defaults["extras"]; sel.Kind != VariantMultiple || len(sel.Options) != 1 || sel.Options[0] != "lining" {
		t.Fatalf("extras default = %+v", sel)
	}
	if _, ok := defaults["color"]; ok {
		t.Fatal("variant without default should not appear")
	}
}
