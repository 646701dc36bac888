package idempotency

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddlewarePassThroughWithoutKey(t *testing.T) {
	store := NewMemoryStore()
	calls := 0
	handler := Middleware(store, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", nil))
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestMiddlewareReplaysCompletedResponse(t *testing.T) {
	store := NewMemoryStore()
	calls := 0
	handler := Middleware(store, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id":"order-%d"}`, calls)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	second := send()

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if second.Code != http.StatusCreated {
		t.Errorf("replay status = %d, want %d", second.Code, http.StatusCreated)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replay body = %q, want %q", second.Body.String(), first.Body.String())
	}
}

func TestMiddlewareReleasesOnServerError(t *testing.T) {
	store := NewMemoryStore()
	fail := true
	handler := Middleware(store, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req.Header.Set("Idempotency-Key", "key-2")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	fail = false
	if rec := send(); rec.Code != http.StatusCreated {
		t.Errorf("retry status = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestMemoryStoreReservationLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec, err := store.Reserve(ctx, "k", time.Minute)
	if err != nil || rec.State != StateReserved {
		t.Fatalf("reserve = %+v, %v", rec, err)
	}

	rec, err = store.Reserve(ctx, "k", time.Minute)
	if err != nil || rec.State != StateInFlight {
		t.Fatalf("second reserve = %+v, %v", rec, err)
	}

	if err := store.SaveResponse(ctx, "k", Response{Status: 201, Body: []byte("ok")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec, err = store.Reserve(ctx, "k", time.Minute)
	if err != nil || rec.State != StateCompleted || rec.Response == nil {
		t.Fatalf("completed reserve = %+v, %v", rec, err)
	}

	if err := store.Release(ctx, "k"); err != nil {
		t.Fatalf("release: %v", err)
	}
	rec, _ = store.Reserve(ctx, "k", time.Minute)
	if rec.State != StateReserved {
		t.Errorf("state after release = %v, want reserved", rec.State)
	}
}
