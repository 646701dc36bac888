package handlers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tiemmay/api/internal/domain"
	"github.com/tiemmay/api/internal/platform/auth"
)

// fakeVerifier maps bearer tokens directly to identities.
type fakeVerifier struct {
	identities map[string]auth.Identity
}

func (v *fakeVerifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	identity, ok := v.identities[token]
	if !ok {
		return auth.Identity{}, fmt.Errorf("unknown token %q", token)
	}
	return identity, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]domain.Product
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[int64]domain.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) Get(ctx context.Context, productID int64) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return domain.Product{}, notFoundErr{}
	}
	return p, nil
}

type fakeCategoryRepo struct{ categories []domain.Category }

func (r *fakeCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	return r.categories, nil
}

type fakeStoreRepo struct{ stores []domain.Store }

func (r *fakeStoreRepo) List(ctx context.Context) ([]domain.Store, error) {
	return r.stores, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) Get(ctx context.Context, orderID string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, notFoundErr{}
	}
	return order, nil
}

func (r *fakeOrderRepo) ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, order := range r.orders {
		if order.PhoneNumber == phoneNumber {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, order)
	}
	return out, nil
}

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[string]domain.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[string]domain.Customer)}
}

func (r *fakeCustomerRepo) Upsert(ctx context.Context, customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.customers[customer.PhoneNumber]
	existing.PhoneNumber = customer.PhoneNumber
	if customer.UserName != "" {
		existing.UserName = customer.UserName
	}
	if customer.Address != "" {
		existing.Address = customer.Address
	}
	r.customers[customer.PhoneNumber] = existing
	return nil
}

func (r *fakeCustomerRepo) Get(ctx context.Context, phoneNumber string) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.customers[phoneNumber]
	if !ok {
		return domain.Customer{}, notFoundErr{}
	}
	return customer, nil
}

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	appts map[string]domain.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: make(map[string]domain.Appointment)}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appt domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts[appt.ID] = appt
	return nil
}

func (r *fakeAppointmentRepo) Get(ctx context.Context, apptID string) (domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[apptID]
	if !ok {
		return domain.Appointment{}, notFoundErr{}
	}
	return appt, nil
}

func (r *fakeAppointmentRepo) ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Appointment
	for _, appt := range r.appts {
		if appt.PhoneNumber == phoneNumber {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Appointment, 0, len(r.appts))
	for _, appt := range r.appts {
		out = append(out, appt)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(ctx context.Context, apptID string, status domain.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[apptID]
	if !ok {
		return notFoundErr{}
	}
	appt.Status = status
	r.appts[apptID] = appt
	return nil
}

// notFoundErr satisfies the repository error classification without
// pulling the real backend error type into handler tests.
type notFoundErr struct{}

func (notFoundErr) Error() string            { return "not found" }
func (notFoundErr) IsNotFound() bool         { return true }
func (notFoundErr) IsConflict() bool         { return false }
func (notFoundErr) IsUnavailable() bool      { return false }
func (notFoundErr) IsQueryUnsupported() bool { return false }
