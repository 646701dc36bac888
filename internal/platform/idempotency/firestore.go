package idempotency

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	platformfs "github.com/tiemmay/api/internal/platform/firestore"
)

// FirestoreStore persists reservations in a Firestore collection so
// replays work across instances.
type FirestoreStore struct {
	provider   *platformfs.Provider
	collection string
	clock      func() time.Time
}

// NewFirestoreStore returns a store backed by the given collection.
func NewFirestoreStore(provider *platformfs.Provider, collection string) *FirestoreStore {
	return &FirestoreStore{
		provider:   provider,
		collection: collection,
		clock:      time.Now,
	}
}

type reservationDoc struct {
	State      int               `firestore:"state"`
	Status     int               `firestore:"status"`
	Header     map[string]string `firestore:"header"`
	Body       []byte            `firestore:"body"`
	ExpiresAt  time.Time         `firestore:"expires_at"`
	ReservedAt time.Time         `firestore:"reserved_at"`
}

func (s *FirestoreStore) Reserve(ctx context.Context, key string, ttl time.Duration) (Record, error) {
	client, err := s.provider.Client(ctx)
	if err != nil {
		return Record{}, platformfs.WrapError("idempotency.reserve", err)
	}

	now := s.clock().UTC()
	ref := client.Collection(s.collection).Doc(key)
	var out Record

	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if snap != nil && snap.Exists() {
			var doc reservationDoc
			if err := snap.DataTo(&doc); err != nil {
				return err
			}
			if now.Before(doc.ExpiresAt) {
				out = recordFromDoc(key, doc)
				return nil
			}
		}

		out = Record{Key: key, State: StateReserved, ExpiresAt: now.Add(ttl)}
		return tx.Set(ref, reservationDoc{
			State:      int(StateReserved),
			ExpiresAt:  out.ExpiresAt,
			ReservedAt: now,
		})
	})
	if err != nil {
		return Record{}, platformfs.WrapError("idempotency.reserve", err)
	}
	return out, nil
}

func (s *FirestoreStore) SaveResponse(ctx context.Context, key string, resp Response) error {
	client, err := s.provider.Client(ctx)
	if err != nil {
		return platformfs.WrapError("idempotency.save", err)
	}
	_, err = client.Collection(s.collection).Doc(key).Set(ctx, map[string]any{
		"state":  int(StateCompleted),
		"status": resp.Status,
		"header": resp.Header,
		"body":   resp.Body,
	}, firestore.MergeAll)
	return platformfs.WrapError("idempotency.save", err)
}

func (s *FirestoreStore) Release(ctx context.Context, key string) error {
	client, err := s.provider.Client(ctx)
	if err != nil {
		return platformfs.WrapError("idempotency.release", err)
	}
	_, err = client.Collection(s.collection).Doc(key).Delete(ctx)
	return platformfs.WrapError("idempotency.release", err)
}

func recordFromDoc(key string, doc reservationDoc) Record {
	rec := Record{Key: key, State: ReservationState(doc.State), ExpiresAt: doc.ExpiresAt}
	if rec.State == StateCompleted {
		rec.Response = &Response{Status: doc.Status, Header: doc.Header, Body: doc.Body}
	} else {
		rec.State = StateInFlight
	}
	return rec
}
