package firestore

import (
	"context"
	"fmt"
	"sort"

	"github.com/tiemmay/api/internal/domain"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
)

const storeCollection = "stores"

// StoreRepository reads store locations.
type StoreRepository struct {
	base *platformfs.BaseRepository[domain.Store]
}

func NewStoreRepository(provider *platformfs.Provider) *StoreRepository {
	return &StoreRepository{
		base: platformfs.NewBaseRepository(provider, storeCollection, nil, decodeStore),
	}
}

func (r *StoreRepository) List(ctx context.Context) ([]domain.Store, error) {
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	stores := make([]domain.Store, 0, len(docs))
	for _, doc := range docs {
		stores = append(stores, doc.Data)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].ID < stores[j].ID })
	return stores, nil
}

func decodeStore(id string, data map[string]any) (domain.Store, error) {
	s := domain.Store{
		ID:      id,
		Name:    asString(data["name"]),
		Address: asString(data["address"]),
		Lat:     asFloat64(data["latitude"]),
		Lng:     asFloat64(data["longitude"]),
	}
	if s.Name == "" {
		return domain.Store{}, fmt.Errorf("store %s: missing name", id)
	}
	return s, nil
}
