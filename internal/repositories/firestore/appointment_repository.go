package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/tiemmay/api/internal/domain"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
)

const appointmentCollection = "appointments"

// AppointmentRepository persists measurement bookings.
type AppointmentRepository struct {
	base  *platformfs.BaseRepository[domain.Appointment]
	clock func() time.Time
}

func NewAppointmentRepository(provider *platformfs.Provider) *AppointmentRepository {
	return &AppointmentRepository{
		base:  platformfs.NewBaseRepository(provider, appointmentCollection, encodeAppointment, decodeAppointment),
		clock: time.Now,
	}
}

func (r *AppointmentRepository) Create(ctx context.Context, appt domain.Appointment) error {
	return r.base.Set(ctx, appt.ID, appt)
}

func (r *AppointmentRepository) Get(ctx context.Context, apptID string) (domain.Appointment, error) {
	doc, err := r.base.Get(ctx, apptID)
	if err != nil {
		return domain.Appointment{}, err
	}
	return doc.Data, nil
}

// ListByPhone returns the customer's bookings, latest appointment slot
// first; falls back to an in-memory scan when the composite index is
// missing.
func (r *AppointmentRepository) ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Appointment, error) {
	docs, err := r.base.QueryWithFallback(ctx,
		func(q firestore.Query) firestore.Query {
			return q.Where("phone_number", "==", phoneNumber).
				OrderBy("appointment_time", firestore.Desc)
		},
		func(doc platformfs.Document[domain.Appointment]) bool {
			return doc.Data.PhoneNumber == phoneNumber
		},
		appointmentLatestFirst,
	)
	if err != nil {
		return nil, err
	}
	return appointmentsFromDocs(docs), nil
}

func (r *AppointmentRepository) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	docs, err := r.base.QueryWithFallback(ctx,
		func(q firestore.Query) firestore.Query {
			return q.OrderBy("appointment_time", firestore.Desc)
		},
		nil,
		appointmentLatestFirst,
	)
	if err != nil {
		return nil, err
	}
	return appointmentsFromDocs(docs), nil
}

// UpdateStatus merge-writes only the status and update timestamp so
// concurrent readers never observe a partially rewritten document.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, apptID string, status domain.AppointmentStatus) error {
	return r.base.Merge(ctx, apptID, map[string]any{
		"status":     string(status),
		"updated_at": r.clock().UTC(),
	})
}

// appointmentLatestFirst sorts by appointment slot descending; records
// with no slot timestamp sort last.
func appointmentLatestFirst(a, b platformfs.Document[domain.Appointment]) bool {
	if a.Data.Time.IsZero() {
		return false
	}
	if b.Data.Time.IsZero() {
		return true
	}
	return a.Data.Time.After(b.Data.Time)
}

func appointmentsFromDocs(docs []platformfs.Document[domain.Appointment]) []domain.Appointment {
	appts := make([]domain.Appointment, 0, len(docs))
	for _, doc := range docs {
		appts = append(appts, doc.Data)
	}
	return appts
}

func encodeAppointment(appt domain.Appointment) (map[string]any, error) {
	if appt.ID == "" {
		return nil, fmt.Errorf("appointment id is required")
	}
	data := map[string]any{
		"id":               appt.ID,
		"phone_number":     appt.PhoneNumber,
		"user_name":        appt.UserName,
		"product_id":       appt.ProductID,
		"product_name":     appt.ProductName,
		"product_image":    appt.ProductImage,
		"selected_options": encodeSelections(appt.Selections),
		"store_id":         appt.StoreID,
		"store_name":       appt.StoreName,
		"store_address":    appt.StoreAddress,
		"appointment_date": appt.Date,
		"appointment_time": appt.Time,
		"status":           string(appt.Status),
		"note":             appt.Note,
		"created_at":       appt.CreatedAt,
	}
	if !appt.UpdatedAt.IsZero() {
		data["updated_at"] = appt.UpdatedAt
	}
	return data, nil
}

func decodeAppointment(id string, data map[string]any) (domain.Appointment, error) {
	phone, err := requireString(data, "phone_number")
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("appointment %s: %w", id, err)
	}
	appt := domain.Appointment{
		ID:           id,
		PhoneNumber:  phone,
		UserName:     asString(data["user_name"]),
		ProductID:    asInt64(data["product_id"]),
		ProductName:  asString(data["product_name"]),
		ProductImage: asString(data["product_image"]),
		Selections:   decodeSelections(asMap(data["selected_options"])),
		StoreID:      asString(data["store_id"]),
		StoreName:    asString(data["store_name"]),
		StoreAddress: asString(data["store_address"]),
		Date:         asTime(data["appointment_date"]),
		Time:         asTime(data["appointment_time"]),
		Status:       domain.AppointmentStatus(asString(data["status"])),
		Note:         asString(data["note"]),
		CreatedAt:    asTime(data["created_at"]),
		UpdatedAt:    asTime(data["updated_at"]),
	}
	if stored := asString(data["id"]); stored != "" {
		appt.ID = stored
	}
	if !domain.ValidAppointmentStatus(appt.Status) {
		appt.Status = domain.AppointmentStatusPending
	}
	return appt, nil
}
