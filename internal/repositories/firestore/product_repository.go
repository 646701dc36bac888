package firestore

import (
	"context"
	"fmt"
	"sort"

	"github.com/tiemmay/api/internal/domain"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
)

const (
	productCollection  = "products"
	categoryCollection = "categories"
)

// ProductRepository reads the catalog from the products collection.
// Catalog documents are written by the admin tooling and treated as
// read-only here.
type ProductRepository struct {
	base *platformfs.BaseRepository[domain.Product]
}

func NewProductRepository(provider *platformfs.Provider) *ProductRepository {
	return &ProductRepository{
		base: platformfs.NewBaseRepository(provider, productCollection, nil, decodeProduct),
	}
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.Data)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, productID int64) (domain.Product, error) {
	doc, err := r.base.Get(ctx, fmt.Sprintf("%d", productID))
	if err != nil {
		return domain.Product{}, err
	}
	return doc.Data, nil
}

func decodeProduct(id string, data map[string]any) (domain.Product, error) {
	p := domain.Product{
		ID:          asInt64(data["id"]),
		Name:        asString(data["name"]),
		Description: asString(data["description"]),
		Image:       asString(data["image"]),
		BasePrice:   asInt64(data["price"]),
		CategoryID:  asString(data["categoryId"]),
	}
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("product %s: missing name", id)
	}
	if sale := asMap(data["sale"]); sale != nil {
		change := decodePriceChange(sale)
		p.Sale = &change
	}
	for _, raw := range asSlice(data["variants"]) {
		variant, err := decodeVariant(asMap(raw))
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %s: %w", id, err)
		}
		p.Variants = append(p.Variants, variant)
	}
	return p, nil
}

func decodeVariant(data map[string]any) (domain.Variant, error) {
	if data == nil {
		return domain.Variant{}, fmt.Errorf("variant is not a map")
	}
	v := domain.Variant{
		ID:    asString(data["id"]),
		Label: asString(data["label"]),
	}
	switch asString(data["type"]) {
	case "multiple":
		v.Kind = domain.VariantMultiple
		v.DefaultOptions = asStringSlice(data["default"])
	default:
		v.Kind = domain.VariantSingle
		v.DefaultOption = asString(data["default"])
	}
	if v.ID == "" {
		return domain.Variant{}, fmt.Errorf("variant missing id")
	}
	for _, raw := range asSlice(data["options"]) {
		opt := asMap(raw)
		option := domain.Option{
			ID:    asString(opt["id"]),
			Label: asString(opt["label"]),
		}
		if pc := asMap(opt["priceChange"]); pc != nil {
			change := decodePriceChange(pc)
			option.PriceChange = &change
		}
		v.Options = append(v.Options, option)
	}
	return v, nil
}

func decodePriceChange(data map[string]any) domain.PriceChange {
	change := domain.PriceChange{Kind: domain.PriceChangeFixed}
	if asString(data["type"]) == "percent" {
		change.Kind = domain.PriceChangePercent
		change.Percent = asFloat64(data["percent"])
		return change
	}
	change.Amount = asInt64(data["amount"])
	return change
}

// CategoryRepository reads the category list.
type CategoryRepository struct {
	base *platformfs.BaseRepository[domain.Category]
}

func NewCategoryRepository(provider *platformfs.Provider) *CategoryRepository {
	return &CategoryRepository{
		base: platformfs.NewBaseRepository(provider, categoryCollection, nil, decodeCategory),
	}
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	categories := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, doc.Data)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func decodeCategory(id string, data map[string]any) (domain.Category, error) {
	c := domain.Category{
		ID:    id,
		Name:  asString(data["name"]),
		Image: asString(data["image"]),
	}
	if c.Name == "" {
		return domain.Category{}, fmt.Errorf("category %s: missing name", id)
	}
	return c, nil
}
