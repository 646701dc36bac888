package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/tiemmay/api/internal/domain"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
)

const orderCollection = "orders"

// OrderRepository persists orders. Two persisted shapes coexist in the
// collection: the current denormalised form carrying cart_items, and a
// legacy form carrying only a product_id list. Both decode into
// domain.Order; new writes always use the denormalised form.
type OrderRepository struct {
	base *platformfs.BaseRepository[domain.Order]
}

func NewOrderRepository(provider *platformfs.Provider) *OrderRepository {
	return &OrderRepository{
		base: platformfs.NewBaseRepository(provider, orderCollection, encodeOrder, decodeOrder),
	}
}

func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	return r.base.Set(ctx, order.ID, order)
}

func (r *OrderRepository) Get(ctx context.Context, orderID string) (domain.Order, error) {
	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return doc.Data, nil
}

// ListByPhone returns the customer's orders newest first. The shaped
// query needs a composite index on (phone_number, created_at); when the
// backend rejects it the repository falls back to a full scan filtered
// and sorted in memory.
func (r *OrderRepository) ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Order, error) {
	docs, err := r.base.QueryWithFallback(ctx,
		func(q firestore.Query) firestore.Query {
			return q.Where("phone_number", "==", phoneNumber).
				OrderBy("created_at", firestore.Desc)
		},
		func(doc platformfs.Document[domain.Order]) bool {
			return doc.Data.PhoneNumber == phoneNumber
		},
		orderNewestFirst,
	)
	if err != nil {
		return nil, err
	}
	return ordersFromDocs(docs), nil
}

// ListAll returns every order newest first, for the admin view.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	docs, err := r.base.QueryWithFallback(ctx,
		func(q firestore.Query) firestore.Query {
			return q.OrderBy("created_at", firestore.Desc)
		},
		nil,
		orderNewestFirst,
	)
	if err != nil {
		return nil, err
	}
	return ordersFromDocs(docs), nil
}

// orderNewestFirst sorts by creation time descending; records with no
// timestamp sort last.
func orderNewestFirst(a, b platformfs.Document[domain.Order]) bool {
	if a.Data.CreatedAt.IsZero() {
		return false
	}
	if b.Data.CreatedAt.IsZero() {
		return true
	}
	return a.Data.CreatedAt.After(b.Data.CreatedAt)
}

func ordersFromDocs(docs []platformfs.Document[domain.Order]) []domain.Order {
	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.Data)
	}
	return orders
}

func encodeOrder(order domain.Order) (map[string]any, error) {
	if order.ID == "" {
		return nil, fmt.Errorf("order id is required")
	}
	items := make([]any, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, map[string]any{
			"product_id":    line.ProductID,
			"product_name":  line.ProductName,
			"product_image": line.ProductImage,
			"base_price":    line.BasePrice,
			"options":       encodeSelections(line.Selections),
			"quantity":      int64(line.Quantity),
			"final_price":   line.FinalPrice,
			"total_price":   line.LineTotal,
		})
	}
	return map[string]any{
		"id":           order.ID,
		"phone_number": order.PhoneNumber,
		"address":      order.Address,
		"note":         order.Note,
		"cart_items":   items,
		"total_amount": order.TotalAmount,
		"created_at":   order.CreatedAt,
		"received_at":  order.ReceivedAt,
	}, nil
}

func decodeOrder(id string, data map[string]any) (domain.Order, error) {
	phone, err := requireString(data, "phone_number")
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, err)
	}
	order := domain.Order{
		ID:          id,
		PhoneNumber: phone,
		Address:     asString(data["address"]),
		Note:        asString(data["note"]),
		TotalAmount: asInt64(data["total_amount"]),
		CreatedAt:   asTime(data["created_at"]),
		ReceivedAt:  asTime(data["received_at"]),
	}
	if stored := asString(data["id"]); stored != "" {
		order.ID = stored
	}

	if items := asSlice(data["cart_items"]); len(items) > 0 {
		for _, raw := range items {
			line, err := decodeOrderLine(asMap(raw))
			if err != nil {
				return domain.Order{}, fmt.Errorf("order %s: %w", id, err)
			}
			order.Lines = append(order.Lines, line)
		}
		return order, nil
	}

	// Legacy shape: product_id holds a bare list of product ids.
	for _, raw := range asSlice(data["product_id"]) {
		order.LegacyProductIDs = append(order.LegacyProductIDs, asInt64(raw))
	}
	return order, nil
}

func decodeOrderLine(data map[string]any) (domain.OrderLine, error) {
	if data == nil {
		return domain.OrderLine{}, fmt.Errorf("cart item is not a map")
	}
	options := asMap(data["options"])
	if options == nil {
		// Some records carry the selections under selected_options.
		options = asMap(data["selected_options"])
	}
	total := asInt64(data["total_price"])
	if total == 0 {
		total = asInt64(data["line_total"])
	}
	line := domain.OrderLine{
		ProductID:    asInt64(data["product_id"]),
		ProductName:  asString(data["product_name"]),
		ProductImage: asString(data["product_image"]),
		BasePrice:    asInt64(data["base_price"]),
		Selections:   decodeSelections(options),
		Quantity:     int(asInt64(data["quantity"])),
		FinalPrice:   asInt64(data["final_price"]),
		LineTotal:    total,
	}
	if line.ProductID == 0 {
		return domain.OrderLine{}, fmt.Errorf("cart item missing product_id")
	}
	return line, nil
}

// encodeSelections stores single selections as strings and multi
// selections as string arrays, matching the historical document shape.
func encodeSelections(selections domain.SelectedOptions) map[string]any {
	out := make(map[string]any, len(selections))
	for variantID, sel := range selections {
		if sel.Kind == domain.VariantMultiple {
			ids := sel.OptionIDs()
			values := make([]any, 0, len(ids))
			for _, id := range ids {
				values = append(values, id)
			}
			out[variantID] = values
			continue
		}
		out[variantID] = sel.Option
	}
	return out
}

func decodeSelections(data map[string]any) domain.SelectedOptions {
	if len(data) == 0 {
		return nil
	}
	selections := make(domain.SelectedOptions, len(data))
	for variantID, raw := range data {
		switch v := raw.(type) {
		case string:
			selections[variantID] = domain.SingleSelection(v)
		case []any:
			selections[variantID] = domain.MultiSelection(asStringSlice(v)...)
		}
	}
	return selections
}
