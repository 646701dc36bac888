// Package repositories defines the persistence ports the services depend
// on. Firestore implementations live in the firestore subpackage; tests
// supply in-memory fakes.
package repositories

import (
	"context"

	"github.com/tiemmay/api/internal/domain"
)

// RepositoryError is the classification surface every persistence error
// implements, mirroring the platform firestore error type.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
	IsQueryUnsupported() bool
}

// ProductRepository reads the product catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, productID int64) (domain.Product, error)
}

// CategoryRepository reads product categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// StoreRepository reads store locations.
type StoreRepository interface {
	List(ctx context.Context) ([]domain.Store, error)
}

// OrderRepository persists orders keyed by their client-generated id.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	Get(ctx context.Context, orderID string) (domain.Order, error)
	ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}

// AppointmentRepository persists booking appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appt domain.Appointment) error
	Get(ctx context.Context, apptID string) (domain.Appointment, error)
	ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Appointment, error)
	ListAll(ctx context.Context) ([]domain.Appointment, error)
	UpdateStatus(ctx context.Context, apptID string, status domain.AppointmentStatus) error
}

// CustomerRepository persists customer profiles keyed by phone number.
type CustomerRepository interface {
	Upsert(ctx context.Context, customer domain.Customer) error
	Get(ctx context.Context, phoneNumber string) (domain.Customer, error)
}
