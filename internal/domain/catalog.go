package domain

// PriceChangeKind distinguishes fixed-amount and percentage price rules.
type PriceChangeKind string

const (
	// PriceChangeFixed applies a fixed amount in currency minor units.
	PriceChangeFixed PriceChangeKind = "fixed"
	// PriceChangePercent applies a fraction of the product base price.
	PriceChangePercent PriceChangeKind = "percent"
)

// PriceChange describes either a sale rule or an option price delta.
// Exactly one of Amount (fixed) or Percent (percent) is meaningful,
// selected by Kind.
type PriceChange struct {
	Kind    PriceChangeKind
	Amount  int64
	Percent float64
}

// VariantKind distinguishes single-choice and multi-choice variants.
type VariantKind string

const (
	// VariantSingle allows exactly one option to be selected.
	VariantSingle VariantKind = "single"
	// VariantMultiple allows zero or more options to be selected.
	VariantMultiple VariantKind = "multiple"
)

// Option is one selectable value of a variant. Its price change, when
// present, is a delta relative to the product base price.
type Option struct {
	ID          string
	Label       string
	PriceChange *PriceChange
}

// Variant is an axis of product customisation (size, fabric, ...).
type Variant struct {
	ID      string
	Label   string
	Kind    VariantKind
	Options []Option

	// DefaultOption holds the preselected option for single variants;
	// DefaultOptions the preselected set for multiple variants.
	DefaultOption  string
	DefaultOptions []string
}

// Option returns the option with the given id, if the variant carries it.
func (v Variant) Option(optionID string) (Option, bool) {
	for _, opt := range v.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// Product is an immutable catalog snapshot fetched for the session.
type Product struct {
	ID          int64
	Name        string
	Description string
	Image       string
	BasePrice   int64
	Sale        *PriceChange
	Variants    []Variant
	CategoryID  string
}

// Variant returns the variant with the given id, if the product carries it.
func (p Product) Variant(variantID string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v, true
		}
	}
	return Variant{}, false
}

// DefaultSelections builds the selection set implied by each variant's
// declared defaults. Variants without a default contribute no entry.
func (p Product) DefaultSelections() SelectedOptions {
	if len(p.Variants) == 0 {
		return nil
	}
	selections := make(SelectedOptions, len(p.Variants))
	for _, v := range p.Variants {
		switch v.Kind {
		case VariantSingle:
			if v.DefaultOption != "" {
				selections[v.ID] = SingleSelection(v.DefaultOption)
			}
		case VariantMultiple:
			selections[v.ID] = MultiSelection(v.DefaultOptions...)
		}
	}
	if len(selections) == 0 {
		return nil
	}
	return selections
}

// Category groups products for catalog browsing.
type Category struct {
	ID    string
	Name  string
	Image string
}

// Store is a physical location used for delivery context and
// appointment booking. Read-only reference data.
type Store struct {
	ID      string
	Name    string
	Address string
	Lat     float64
	Lng     float64
}
