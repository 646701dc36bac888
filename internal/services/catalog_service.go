package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tiemmay/api/internal/domain"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
	"github.com/tiemmay/api/internal/platform/requestctx"
	"github.com/tiemmay/api/internal/platform/textutil"
	"github.com/tiemmay/api/internal/repositories"
)

var (
	ErrCatalogInvalidInput    = errors.New("catalog: invalid input")
	ErrCatalogProductNotFound = errors.New("catalog: product not found")
	ErrCatalogStoreNotFound   = errors.New("catalog: store not found")
)

// CatalogService serves products, categories and stores. List reads
// degrade to empty results when the backend fails so browsing surfaces
// never hard-fail.
type CatalogService struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	stores     repositories.StoreRepository
}

type CatalogServiceDeps struct {
	Products   repositories.ProductRepository
	Categories repositories.CategoryRepository
	Stores     repositories.StoreRepository
}

func NewCatalogService(deps CatalogServiceDeps) (*CatalogService, error) {
	if deps.Products == nil {
		return nil, fmt.Errorf("catalog service: product repository is required")
	}
	if deps.Categories == nil {
		return nil, fmt.Errorf("catalog service: category repository is required")
	}
	if deps.Stores == nil {
		return nil, fmt.Errorf("catalog service: store repository is required")
	}
	return &CatalogService{
		products:   deps.Products,
		categories: deps.Categories,
		stores:     deps.Stores,
	}, nil
}

// ProductFilter narrows the catalog listing. Search matches the name
// and description case- and diacritic-insensitively.
type ProductFilter struct {
	CategoryID string
	Search     string
}

// ListProducts returns the catalog, optionally filtered.
func (s *CatalogService) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return degradeList[domain.Product](ctx, "list products", err)
	}
	if filter.CategoryID == "" && filter.Search == "" {
		return products, nil
	}
	var matched []domain.Product
	for _, p := range products {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Search != "" &&
			!textutil.ContainsFold(p.Name, filter.Search) &&
			!textutil.ContainsFold(p.Description, filter.Search) {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	if productID <= 0 {
		return domain.Product{}, fmt.Errorf("%w: product id must be positive", ErrCatalogInvalidInput)
	}
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		if platformfs.IsNotFound(err) {
			return domain.Product{}, fmt.Errorf("%w: %d", ErrCatalogProductNotFound, productID)
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return degradeList[domain.Category](ctx, "list categories", err)
	}
	return categories, nil
}

func (s *CatalogService) ListStores(ctx context.Context) ([]domain.Store, error) {
	stores, err := s.stores.List(ctx)
	if err != nil {
		return degradeList[domain.Store](ctx, "list stores", err)
	}
	return stores, nil
}

// NearestStore returns the store closest to the given coordinates by
// great-circle distance.
func (s *CatalogService) NearestStore(ctx context.Context, lat, lng float64) (domain.Store, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domain.Store{}, fmt.Errorf("%w: coordinates out of range", ErrCatalogInvalidInput)
	}
	stores, err := s.stores.List(ctx)
	if err != nil {
		return domain.Store{}, err
	}
	if len(stores) == 0 {
		return domain.Store{}, ErrCatalogStoreNotFound
	}

	best := stores[0]
	bestDist := haversineKm(lat, lng, best.Lat, best.Lng)
	for _, store := range stores[1:] {
		if d := haversineKm(lat, lng, store.Lat, store.Lng); d < bestDist {
			best, bestDist = store, d
		}
	}
	return best, nil
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// degradeList turns a failed backend read into an empty result for
// read-only list endpoints, logging the original failure. Callers see an
// empty list rather than an error for any store failure; only caller
// cancellation propagates.
func degradeList[T any](ctx context.Context, op string, err error) ([]T, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	requestctx.Logger(ctx).Warn("degrading to empty result",
		zap.String("op", op), zap.Error(err))
	return []T{}, nil
}
