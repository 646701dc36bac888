package domain

import "time"

// OrderLine is a fully denormalised cart line as persisted on an order:
// enough to render order history without joining the catalog.
type OrderLine struct {
	ProductID    int64
	ProductName  string
	ProductImage string
	BasePrice    int64
	Selections   SelectedOptions
	Quantity     int
	FinalPrice   int64
	LineTotal    int64
}

// Order is the normalised internal representation. Two historical
// persisted shapes exist (an id-list form and a denormalised form);
// both decode into this struct at the storage boundary and never leak
// further. Orders are append-only after creation.
type Order struct {
	ID          string
	PhoneNumber string
	Address     string
	Note        string

	// Lines and TotalAmount are populated for denormalised records.
	Lines       []OrderLine
	TotalAmount int64

	// LegacyProductIDs is populated instead of Lines for records
	// written by the oldest schema, which stored product ids only.
	LegacyProductIDs []int64

	CreatedAt  time.Time
	ReceivedAt time.Time
}

// IsLegacy reports whether this order predates denormalised lines and
// therefore needs catalog lookups to display a total.
func (o Order) IsLegacy() bool {
	return len(o.Lines) == 0 && len(o.LegacyProductIDs) > 0
}

// Customer is the lightweight profile upserted as a side effect of
// placing an order, keyed by phone number. Last write wins.
type Customer struct {
	PhoneNumber string
	UserName    string
	Address     string
}
