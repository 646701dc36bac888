package firestore

import (
	"testing"
	"time"

	"github.com/tiemmay/api/internal/domain"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
)

func TestOrderNewestFirstTieBreak(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	older := platformfs.Document[domain.Order]{ID: "older", Data: domain.Order{CreatedAt: base.Add(-time.Hour)}}
	newer := platformfs.Document[domain.Order]{ID: "newer", Data: domain.Order{CreatedAt: base}}
	untimed := platformfs.Document[domain.Order]{ID: "untimed"}

	if !orderNewestFirst(newer, older) {
		t.Error("newer order should sort before older")
	}
	if orderNewestFirst(older, newer) {
		t.Error("older order should not sort before newer")
	}
	if orderNewestFirst(untimed, older) {
		t.Error("order with no timestamp should sort last")
	}
	if !orderNewestFirst(older, untimed) {
		t.Error("timed order should sort before one with no timestamp")
	}
	if orderNewestFirst(untimed, untimed) {
		t.Error("two untimed orders should compare equal")
	}
}

func TestDecodeOrderDenormalised(t *testing.T) {
	created := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	order, err := decodeOrder("doc-1", map[string]any{
		"id":           "01HZX",
		"phone_number": "+84901234567",
		"address":      "12 Hang Bong",
		"note":         "giao gio hanh chinh",
		"total_amount": int64(90000),
		"created_at":   created,
		"cart_items": []any{
			map[string]any{
				"product_id":   int64(7),
				"product_name": "Ca Phe Sua",
				"base_price":   int64(40000),
				"quantity":     int64(2),
				"final_price":  int64(45000),
				"line_total":   int64(90000),
				"selected_options": map[string]any{
					"size":    "size-l",
					"topping": []any{"tran-chau", "thach"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.ID != "01HZX" {
		t.Errorf("id = %q, want stored id", order.ID)
	}
	if order.IsLegacy() {
		t.Error("denormalised order reported as legacy")
	}
	if len(order.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(order.Lines))
	}
	line := order.Lines[0]
	if line.Quantity != 2 || line.FinalPrice != 45000 {
		t.Errorf("line = %+v", line)
	}
	if sel := line.Selections["size"]; sel.Kind != domain.VariantSingle || sel.Option != "size-l" {
		t.Errorf("size selection = %+v", sel)
	}
	if sel := line.Selections["topping"]; sel.Kind != domain.VariantMultiple || len(sel.Options) != 2 {
		t.Errorf("topping selection = %+v", sel)
	}
	if !order.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v", order.CreatedAt)
	}
}

func TestDecodeOrderLineCanonicalFieldNames(t *testing.T) {
	order, err := decodeOrder("doc-4", map[string]any{
		"phone_number": "+84901234567",
		"cart_items": []any{
			map[string]any{
				"product_id":  int64(7),
				"base_price":  int64(40000),
				"quantity":    int64(3),
				"final_price": int64(45000),
				"total_price": int64(135000),
				"options": map[string]any{
					"size": "size-l",
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(order.Lines))
	}
	line := order.Lines[0]
	if line.LineTotal != 135000 {
		t.Errorf("line total = %d, want 135000", line.LineTotal)
	}
	if sel := line.Selections["size"]; sel.Option != "size-l" {
		t.Errorf("size selection = %+v", sel)
	}
}

func TestEncodeOrderPersistedShape(t *testing.T) {
	received := time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)
	data, err := encodeOrder(domain.Order{
		ID:          "01HZX",
		PhoneNumber: "+84901234567",
		Address:     "12 Hang Bong",
		CreatedAt:   time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		ReceivedAt:  received,
		Lines: []domain.OrderLine{{
			ProductID:  7,
			BasePrice:  40000,
			Selections: domain.SelectedOptions{"size": domain.SingleSelection("size-l")},
			Quantity:   2,
			FinalPrice: 45000,
			LineTotal:  90000,
		}},
		TotalAmount: 90000,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, ok := data["received_at"].(time.Time)
	if !ok || !got.Equal(received) {
		t.Errorf("received_at = %v, want %v", data["received_at"], received)
	}
	items, _ := data["cart_items"].([]any)
	if len(items) != 1 {
		t.Fatalf("cart_items = %v", data["cart_items"])
	}
	item, _ := items[0].(map[string]any)
	if _, ok := item["options"]; !ok {
		t.Error("cart item missing options field")
	}
	if total, _ := item["total_price"].(int64); total != 90000 {
		t.Errorf("total_price = %v, want 90000", item["total_price"])
	}
}

func TestDecodeOrderLegacyShape(t *testing.T) {
	order, err := decodeOrder("doc-2", map[string]any{
		"phone_number": "+84901234567",
		"product_id":   []any{int64(3), int64(9)},
		"created_at":   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !order.IsLegacy() {
		t.Fatal("expected legacy order")
	}
	if len(order.LegacyProductIDs) != 2 || order.LegacyProductIDs[0] != 3 {
		t.Errorf("legacy ids = %v", order.LegacyProductIDs)
	}
	if order.ID != "doc-2" {
		t.Errorf("id = %q, want document id fallback", order.ID)
	}
}

func TestDecodeOrderMissingPhoneFails(t *testing.T) {
	if _, err := decodeOrder("doc-3", map[string]any{"total_amount": int64(1)}); err == nil {
		t.Fatal("expected error for missing phone_number")
	}
}

func TestSelectionsRoundTrip(t *testing.T) {
	in := domain.SelectedOptions{
		"size":    domain.SingleSelection("size-m"),
		"topping": domain.MultiSelection("thach", "tran-chau"),
	}
	out := decodeSelections(encodeSelections(in))
	if !out.Equal(in) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestEncodeOrderRequiresID(t *testing.T) {
	if _, err := encodeOrder(domain.Order{PhoneNumber: "+84900000001"}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestDecodeProductVariantsAndSale(t *testing.T) {
	product, err := decodeProduct("7", map[string]any{
		"id":    int64(7),
		"name":  "Ca Phe Sua",
		"price": int64(40000),
		"sale":  map[string]any{"type": "percent", "percent": 0.1},
		"variants": []any{
			map[string]any{
				"id":      "size",
				"label":   "Size",
				"type":    "single",
				"default": "size-m",
				"options": []any{
					map[string]any{"id": "size-m", "label": "M"},
					map[string]any{
						"id":          "size-l",
						"label":       "L",
						"priceChange": map[string]any{"type": "fixed", "amount": int64(5000)},
					},
				},
			},
			map[string]any{
				"id":      "topping",
				"label":   "Topping",
				"type":    "multiple",
				"default": []any{"thach"},
			},
		},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if product.Sale == nil || product.Sale.Kind != domain.PriceChangePercent || product.Sale.Percent != 0.1 {
		t.Errorf("sale = %+v", product.Sale)
	}
	size, ok := product.Variant("size")
	if !ok || size.Kind != domain.VariantSingle || size.DefaultOption != "size-m" {
		t.Fatalf("size variant = %+v, ok = %v", size, ok)
	}
	large, ok := size.Option("size-l")
	if !ok || large.PriceChange == nil || large.PriceChange.Amount != 5000 {
		t.Errorf("size-l option = %+v", large)
	}
	topping, ok := product.Variant("topping")
	if !ok || topping.Kind != domain.VariantMultiple || len(topping.DefaultOptions) != 1 {
		t.Errorf("topping variant = %+v", topping)
	}
}
