package idempotency

import (
	"context"
	"errors"
	"time"
)

// ReservationState describes the outcome of reserving a key.
type ReservationState int

const (
	// StateReserved means the caller owns the key and should proceed.
	StateReserved ReservationState = iota
	// StateInFlight means another request holds the key and has not finished.
	StateInFlight
	// StateCompleted means a response was already recorded for the key.
	StateCompleted
)

// Response is the replayable result of a completed request.
type Response struct {
	Status int
	Header map[string]string
	Body   []byte
}

// Record is the stored state for one idempotency key.
type Record struct {
	Key       string
	State     ReservationState
	Response  *Response
	ExpiresAt time.Time
}

// ErrKeyConflict is returned when a reserve races with another owner.
var ErrKeyConflict = errors.New("idempotency: key conflict")

// Store persists idempotency reservations and their recorded responses.
type Store interface {
	// Reserve claims the key for the caller. The returned record carries
	// the prior response when the key was already completed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (Record, error)
	// SaveResponse marks the key completed with the response to replay.
	SaveResponse(ctx context.Context, key string, resp Response) error
	// Release frees a reservation whose request failed before completing.
	Release(ctx context.Context, key string) error
}
