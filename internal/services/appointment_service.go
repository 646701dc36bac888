package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/tiemmay/api/internal/domain"
	"github.com/tiemmay/api/internal/platform/events"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
	"github.com/tiemmay/api/internal/platform/requestctx"
	"github.com/tiemmay/api/internal/repositories"
)

var (
	ErrAppointmentInvalidInput   = errors.New("appointment: invalid input")
	ErrAppointmentNotFound       = errors.New("appointment: not found")
	ErrAppointmentNotCancellable = errors.New("appointment: not cancellable")
	ErrAppointmentBadTransition  = errors.New("appointment: invalid status transition")
)

// AppointmentService books measurement sessions and walks them through
// the status lifecycle. Customers may only cancel their own pending
// future bookings; staff drive every other transition.
type AppointmentService struct {
	appointments repositories.AppointmentRepository
	products     repositories.ProductRepository
	stores       repositories.StoreRepository
	publisher    events.Publisher
	clock        func() time.Time
	newID        func() string
	sanitizer    *bluemonday.Policy
}

type AppointmentServiceDeps struct {
	Appointments repositories.AppointmentRepository
	Products     repositories.ProductRepository
	Stores       repositories.StoreRepository
	Publisher    events.Publisher
	Clock        func() time.Time
	NewID        func() string
}

func NewAppointmentService(deps AppointmentServiceDeps) (*AppointmentService, error) {
	if deps.Appointments == nil {
		return nil, fmt.Errorf("appointment service: appointment repository is required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("appointment service: product repository is required")
	}
	if deps.Stores == nil {
		return nil, fmt.Errorf("appointment service: store repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &AppointmentService{
		appointments: deps.Appointments,
		products:     deps.Products,
		stores:       deps.Stores,
		publisher:    deps.Publisher,
		clock:        clock,
		newID:        newID,
		sanitizer:    bluemonday.StrictPolicy(),
	}, nil
}

// CreateAppointmentInput is the booking payload.
type CreateAppointmentInput struct {
	PhoneNumber string
	UserName    string
	ProductID   int64
	Selections  domain.SelectedOptions
	StoreID     string
	At          time.Time
	Note        string
}

// CreateAppointment validates the booking, denormalises product and
// store details onto it, and writes it once in pending status.
func (s *AppointmentService) CreateAppointment(ctx context.Context, input CreateAppointmentInput) (domain.Appointment, error) {
	phone := strings.TrimSpace(input.PhoneNumber)
	if phone == "" {
		return domain.Appointment{}, fmt.Errorf("%w: phone number is required", ErrAppointmentInvalidInput)
	}
	if input.ProductID <= 0 {
		return domain.Appointment{}, fmt.Errorf("%w: product id is required", ErrAppointmentInvalidInput)
	}
	if input.StoreID == "" {
		return domain.Appointment{}, fmt.Errorf("%w: store id is required", ErrAppointmentInvalidInput)
	}
	now := s.clock().UTC()
	at := input.At.UTC()
	if !at.After(now) {
		return domain.Appointment{}, fmt.Errorf("%w: appointment time must be in the future", ErrAppointmentInvalidInput)
	}

	product, err := s.products.Get(ctx, input.ProductID)
	if err != nil {
		if platformfs.IsNotFound(err) {
			return domain.Appointment{}, fmt.Errorf("%w: product %d", ErrAppointmentInvalidInput, input.ProductID)
		}
		return domain.Appointment{}, err
	}
	store, err := s.findStore(ctx, input.StoreID)
	if err != nil {
		return domain.Appointment{}, err
	}

	appt := domain.Appointment{
		ID:           s.newID(),
		PhoneNumber:  phone,
		UserName:     strings.TrimSpace(input.UserName),
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductImage: product.Image,
		Selections:   product.DefaultSelections().Merge(input.Selections),
		StoreID:      store.ID,
		StoreName:    store.Name,
		StoreAddress: store.Address,
		Date:         at.Truncate(24 * time.Hour),
		Time:         at,
		Status:       domain.AppointmentStatusPending,
		Note:         strings.TrimSpace(s.sanitizer.Sanitize(input.Note)),
		CreatedAt:    now,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return domain.Appointment{}, fmt.Errorf("create appointment: %w", err)
	}
	s.publish(ctx, events.AppointmentCreated, appt)
	return appt, nil
}

// ListByPhone returns the customer's bookings newest first, degrading
// to an empty list when the backend read fails.
func (s *AppointmentService) ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Appointment, error) {
	phone := strings.TrimSpace(phoneNumber)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone number is required", ErrAppointmentInvalidInput)
	}
	appts, err := s.appointments.ListByPhone(ctx, phone)
	if err != nil {
		return degradeList[domain.Appointment](ctx, "list appointments by phone", err)
	}
	return appts, nil
}

// ListAll returns every booking for the admin view.
func (s *AppointmentService) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	appts, err := s.appointments.ListAll(ctx)
	if err != nil {
		return degradeList[domain.Appointment](ctx, "list all appointments", err)
	}
	return appts, nil
}

// Cancel withdraws the caller's own booking. The guard is enforced here
// rather than trusted from the client: the booking must belong to the
// caller, still be pending, and not have started yet.
func (s *AppointmentService) Cancel(ctx context.Context, phoneNumber, apptID string) (domain.Appointment, error) {
	appt, err := s.getAppointment(ctx, apptID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !appt.CancellableBy(strings.TrimSpace(phoneNumber), s.clock().UTC()) {
		return domain.Appointment{}, fmt.Errorf("%w: %s", ErrAppointmentNotCancellable, apptID)
	}
	if err := s.appointments.UpdateStatus(ctx, apptID, domain.AppointmentStatusCancelled); err != nil {
		return domain.Appointment{}, fmt.Errorf("cancel appointment: %w", err)
	}
	appt.Status = domain.AppointmentStatusCancelled
	s.publish(ctx, events.AppointmentCancelled, appt)
	return appt, nil
}

// UpdateStatus moves a booking along the staff lifecycle, enforcing the
// transition table.
func (s *AppointmentService) UpdateStatus(ctx context.Context, apptID string, status domain.AppointmentStatus) (domain.Appointment, error) {
	if !domain.ValidAppointmentStatus(status) {
		return domain.Appointment{}, fmt.Errorf("%w: unknown status %q", ErrAppointmentInvalidInput, status)
	}
	appt, err := s.getAppointment(ctx, apptID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !domain.CanTransition(appt.Status, status) {
		return domain.Appointment{}, fmt.Errorf("%w: %s -> %s", ErrAppointmentBadTransition, appt.Status, status)
	}
	if err := s.appointments.UpdateStatus(ctx, apptID, status); err != nil {
		return domain.Appointment{}, fmt.Errorf("update appointment status: %w", err)
	}
	appt.Status = status
	s.publish(ctx, events.AppointmentStatusChanged, appt)
	return appt, nil
}

func (s *AppointmentService) getAppointment(ctx context.Context, apptID string) (domain.Appointment, error) {
	if apptID == "" {
		return domain.Appointment{}, fmt.Errorf("%w: appointment id is required", ErrAppointmentInvalidInput)
	}
	appt, err := s.appointments.Get(ctx, apptID)
	if err != nil {
		if platformfs.IsNotFound(err) {
			return domain.Appointment{}, fmt.Errorf("%w: %s", ErrAppointmentNotFound, apptID)
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (s *AppointmentService) findStore(ctx context.Context, storeID string) (domain.Store, error) {
	stores, err := s.stores.List(ctx)
	if err != nil {
		return domain.Store{}, err
	}
	for _, store := range stores {
		if store.ID == storeID {
			return store, nil
		}
	}
	return domain.Store{}, fmt.Errorf("%w: store %s", ErrAppointmentInvalidInput, storeID)
}

func (s *AppointmentService) publish(ctx context.Context, name string, appt domain.Appointment) {
	if s.publisher == nil {
		return
	}
	payload := map[string]any{
		"appointment_id": appt.ID,
		"phone_number":   appt.PhoneNumber,
		"status":         string(appt.Status),
		"store_id":       appt.StoreID,
	}
	if err := s.publisher.Publish(ctx, name, payload); err != nil {
		requestctx.Logger(ctx).Warn("appointment event publish failed",
			zap.String("appointment_id", appt.ID), zap.Error(err))
	}
}
