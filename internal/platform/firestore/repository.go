package firestore

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// Document pairs a decoded value with its document identifier.
type Document[T any] struct {
	ID   string
	Data T
}

// Encoder converts a domain value into the map persisted to Firestore.
// Returning nil data means the value itself is handed to the SDK.
type Encoder[T any] func(value T) (map[string]any, error)

// Decoder converts a raw snapshot payload into a domain value.
type Decoder[T any] func(id string, data map[string]any) (T, error)

// QueryBuilder shapes a collection query before execution.
type QueryBuilder func(q firestore.Query) firestore.Query

// BaseRepository implements the shared persistence plumbing for one
// Firestore collection.
type BaseRepository[T any] struct {
	provider   *Provider
	collection string
	encode     Encoder[T]
	decode     Decoder[T]

	// runQuery executes a shaped query; it defaults to Query and is a
	// seam for tests.
	runQuery func(ctx context.Context, build QueryBuilder) ([]Document[T], error)
}

// NewBaseRepository wires a repository for the given collection. Passing a
// nil encoder stores values directly; a decoder is required.
func NewBaseRepository[T any](provider *Provider, collection string, encode Encoder[T], decode Decoder[T]) *BaseRepository[T] {
	r := &BaseRepository[T]{
		provider:   provider,
		collection: collection,
		encode:     encode,
		decode:     decode,
	}
	r.runQuery = r.Query
	return r
}

// Collection returns the collection name this repository serves.
func (r *BaseRepository[T]) Collection() string { return r.collection }

// Set writes the document with the given id, replacing any existing data.
func (r *BaseRepository[T]) Set(ctx context.Context, id string, value T) error {
	op := fmt.Sprintf("firestore.set %s/%s", r.collection, id)
	client, err := r.provider.Client(ctx)
	if err != nil {
		return WrapError(op, err)
	}

	payload, err := r.encodeValue(value)
	if err != nil {
		return WrapError(op, err)
	}
	if _, err := client.Collection(r.collection).Doc(id).Set(ctx, payload); err != nil {
		return WrapError(op, err)
	}
	return nil
}

// Merge writes the document with the given id, merging fields into any
// existing data instead of replacing it.
func (r *BaseRepository[T]) Merge(ctx context.Context, id string, fields map[string]any) error {
	op := fmt.Sprintf("firestore.merge %s/%s", r.collection, id)
	client, err := r.provider.Client(ctx)
	if err != nil {
		return WrapError(op, err)
	}
	if _, err := client.Collection(r.collection).Doc(id).Set(ctx, fields, firestore.MergeAll); err != nil {
		return WrapError(op, err)
	}
	return nil
}

// Get loads a single document by id.
func (r *BaseRepository[T]) Get(ctx context.Context, id string) (Document[T], error) {
	op := fmt.Sprintf("firestore.get %s/%s", r.collection, id)
	var doc Document[T]

	client, err := r.provider.Client(ctx)
	if err != nil {
		return doc, WrapError(op, err)
	}
	snap, err := client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		return doc, WrapError(op, err)
	}
	return r.decodeSnapshot(op, snap.Ref.ID, snap.Data())
}

// Delete removes the document with the given id.
func (r *BaseRepository[T]) Delete(ctx context.Context, id string) error {
	op := fmt.Sprintf("firestore.delete %s/%s", r.collection, id)
	client, err := r.provider.Client(ctx)
	if err != nil {
		return WrapError(op, err)
	}
	if _, err := client.Collection(r.collection).Doc(id).Delete(ctx); err != nil {
		return WrapError(op, err)
	}
	return nil
}

// Query runs a shaped query and decodes every matching document.
func (r *BaseRepository[T]) Query(ctx context.Context, build QueryBuilder) ([]Document[T], error) {
	op := fmt.Sprintf("firestore.query %s", r.collection)
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, WrapError(op, err)
	}

	query := client.Collection(r.collection).Query
	if build != nil {
		query = build(query)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []Document[T]
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, WrapError(op, err)
		}
		doc, err := r.decodeSnapshot(op, snap.Ref.ID, snap.Data())
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// QueryWithFallback runs the shaped query and, when the backend rejects the
// query shape, degrades to a full collection scan filtered and ordered in
// memory. The filter and less functions must reproduce the semantics the
// shaped query would have had.
func (r *BaseRepository[T]) QueryWithFallback(
	ctx context.Context,
	build QueryBuilder,
	filter func(Document[T]) bool,
	less func(a, b Document[T]) bool,
) ([]Document[T], error) {
	docs, err := r.runQuery(ctx, build)
	if err == nil {
		return docs, nil
	}
	if !IsQueryUnsupported(err) {
		return nil, err
	}

	docs, err = r.runQuery(ctx, nil)
	if err != nil {
		return nil, err
	}

	var out []Document[T]
	for _, doc := range docs {
		if filter == nil || filter(doc) {
			out = append(out, doc)
		}
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out, nil
}

func (r *BaseRepository[T]) encodeValue(value T) (any, error) {
	if r.encode == nil {
		return value, nil
	}
	data, err := r.encode(value)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *BaseRepository[T]) decodeSnapshot(op, id string, data map[string]any) (Document[T], error) {
	var doc Document[T]
	if r.decode == nil {
		return doc, WrapError(op, fmt.Errorf("decoder not configured"))
	}
	value, err := r.decode(id, data)
	if err != nil {
		return doc, WrapError(op, err)
	}
	doc.ID = id
	doc.Data = value
	return doc, nil
}
