package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tiemmay/api/internal/domain"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
)

// repoErr builds classified repository errors the way the persistence
// layer would surface them.
func repoErr(code codes.Code, msg string) error {
	return platformfs.WrapError("fake", status.Error(code, msg))
}

func errUnavailable() error { return repoErr(codes.Unavailable, "backend down") }
func errNotFound() error    { return repoErr(codes.NotFound, "no such document") }

type memoryProductRepo struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	err      error
}

func newMemoryProductRepo(products ...domain.Product) *memoryProductRepo {
	repo := &memoryProductRepo{products: make(map[int64]domain.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *memoryProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryProductRepo) Get(ctx context.Context, productID int64) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Product{}, r.err
	}
	p, ok := r.products[productID]
	if !ok {
		return domain.Product{}, errNotFound()
	}
	return p, nil
}

type memoryCategoryRepo struct {
	categories []domain.Category
	err        error
}

func (r *memoryCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.categories, nil
}

type memoryStoreRepo struct {
	stores []domain.Store
	err    error
}

func (r *memoryStoreRepo) List(ctx context.Context) ([]domain.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.stores, nil
}

type memoryOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	err    error
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *memoryOrderRepo) Create(ctx context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.orders[order.ID] = order
	return nil
}

func (r *memoryOrderRepo) Get(ctx context.Context, orderID string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Order{}, r.err
	}
	order, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, errNotFound()
	}
	return order, nil
}

func (r *memoryOrderRepo) ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Order
	for _, order := range r.orders {
		if order.PhoneNumber == phoneNumber {
			out = append(out, order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryOrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memoryCustomerRepo struct {
	mu        sync.Mutex
	customers map[string]domain.Customer
	upserts   int
	err       error
}

func newMemoryCustomerRepo() *memoryCustomerRepo {
	return &memoryCustomerRepo{customers: make(map[string]domain.Customer)}
}

func (r *memoryCustomerRepo) Upsert(ctx context.Context, customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.upserts++
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

func (r *memoryCustomerRepo) Get(ctx context.Context, phoneNumber string) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Customer{}, r.err
	}
	customer, ok := r.customers[phoneNumber]
	if !ok {
		return domain.Customer{}, errNotFound()
	}
	return customer, nil
}

type memoryAppointmentRepo struct {
	mu    sync.Mutex
	appts map[string]domain.Appointment
	err   error
}

func newMemoryAppointmentRepo() *memoryAppointmentRepo {
	return &memoryAppointmentRepo{appts: make(map[string]domain.Appointment)}
}

func (r *memoryAppointmentRepo) Create(ctx context.Context, appt domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.appts[appt.ID] = appt
	return nil
}

func (r *memoryAppointmentRepo) Get(ctx context.Context, apptID string) (domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Appointment{}, r.err
	}
	appt, ok := r.appts[apptID]
	if !ok {
		return domain.Appointment{}, errNotFound()
	}
	return appt, nil
}

func (r *memoryAppointmentRepo) ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Appointment
	for _, appt := range r.appts {
		if appt.PhoneNumber == phoneNumber {
			out = append(out, appt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out, nil
}

func (r *memoryAppointmentRepo) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Appointment, 0, len(r.appts))
	for _, appt := range r.appts {
		out = append(out, appt)
	}
	return out, nil
}

func (r *memoryAppointmentRepo) UpdateStatus(ctx context.Context, apptID string, status domain.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	appt, ok := r.appts[apptID]
	if !ok {
		return errNotFound()
	}
	appt.Status = status
	r.appts[apptID] = appt
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(ctx context.Context, name string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, name)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}
