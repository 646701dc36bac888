package domain

import "time"

// AppointmentStatus is the lifecycle state of a measurement appointment.
type AppointmentStatus string

const (
	// AppointmentStatusPending is the initial state on creation.
	AppointmentStatusPending AppointmentStatus = "pending"
	// AppointmentStatusConfirmed means staff accepted the booking.
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	// AppointmentStatusCompleted means the measurement took place.
	AppointmentStatusCompleted AppointmentStatus = "completed"
	// AppointmentStatusCancelled is terminal for either party.
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled},
}

// ValidAppointmentStatus reports whether the value is a known status.
func ValidAppointmentStatus(status AppointmentStatus) bool {
	switch status {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment books a measurement session at a store for one product.
// Only the status mutates after creation.
type Appointment struct {
	ID          string
	PhoneNumber string
	UserName    string

	ProductID    int64
	ProductName  string
	ProductImage string
	Selections   SelectedOptions

	StoreID      string
	StoreName    string
	StoreAddress string

	Date      time.Time
	Time      time.Time
	Status    AppointmentStatus
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CancellableBy reports whether the owner may still cancel: the booking
// must be pending and its time still in the future.
func (a Appointment) CancellableBy(phoneNumber string, now time.Time) bool {
	if a.PhoneNumber != phoneNumber {
		return false
	}
	if a.Status != AppointmentStatusPending {
		return false
	}
	return a.Time.After(now)
}
