package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tiemmay/api/internal/domain"
	"github.com/tiemmay/api/internal/platform/httpx"
	"github.com/tiemmay/api/internal/services"
)

// AppointmentHandler books measurement sessions and exposes the status
// lifecycle: customers cancel their own bookings, staff do the rest.
type AppointmentHandler struct {
	appointments *services.AppointmentService
}

func NewAppointmentHandler(appointments *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

func (h *AppointmentHandler) Register(r chi.Router) {
	r.Post("/appointments", h.createAppointment)
	r.Get("/me/appointments", h.listMyAppointments)
	r.Post("/appointments/{appointmentID}/cancel", h.cancelAppointment)
}

func (h *AppointmentHandler) RegisterAdmin(r chi.Router) {
	r.Get("/appointments", h.listAllAppointments)
	r.Post("/appointments/{appointmentID}/status", h.updateStatus)
}

type createAppointmentPayload struct {
	ProductID       int64             `json:"product_id"`
	SelectedOptions selectionsPayload `json:"selected_options"`
	StoreID         string            `json:"store_id"`
	At              string            `json:"appointment_time"`
	Note            string            `json:"note"`
	UserName        string            `json:"user_name"`
}

func (h *AppointmentHandler) createAppointment(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityPhone(w, r)
	if !ok {
		return
	}
	var payload createAppointmentPayload
	if err := readJSONBody(w, r, &payload); err != nil {
		writeBodyError(w, r, err)
		return
	}
	at, err := time.Parse(time.RFC3339, payload.At)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", "appointment_time must be RFC 3339")
		return
	}
	selections, err := payload.SelectedOptions.toDomain()
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	userName := payload.UserName
	if userName == "" {
		userName = identity.DisplayName
	}
	appt, err := h.appointments.CreateAppointment(r.Context(), services.CreateAppointmentInput{
		PhoneNumber: identity.PhoneNumber,
		UserName:    userName,
		ProductID:   payload.ProductID,
		Selections:  selections,
		StoreID:     payload.StoreID,
		At:          at,
		Note:        payload.Note,
	})
	if err != nil {
		writeAppointmentError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newAppointmentView(appt))
}

func (h *AppointmentHandler) listMyAppointments(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityPhone(w, r)
	if !ok {
		return
	}
	appts, err := h.appointments.ListByPhone(r.Context(), identity.PhoneNumber)
	if err != nil {
		writeAppointmentError(w, r, err)
		return
	}
	writeAppointmentList(w, r, appts)
}

func (h *AppointmentHandler) listAllAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := h.appointments.ListAll(r.Context())
	if err != nil {
		writeAppointmentError(w, r, err)
		return
	}
	writeAppointmentList(w, r, appts)
}

func (h *AppointmentHandler) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityPhone(w, r)
	if !ok {
		return
	}
	appt, err := h.appointments.Cancel(r.Context(), identity.PhoneNumber, chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeAppointmentError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newAppointmentView(appt))
}

type updateStatusPayload struct {
	Status string `json:"status"`
}

func (h *AppointmentHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var payload updateStatusPayload
	if err := readJSONBody(w, r, &payload); err != nil {
		writeBodyError(w, r, err)
		return
	}
	appt, err := h.appointments.UpdateStatus(r.Context(),
		chi.URLParam(r, "appointmentID"), domain.AppointmentStatus(payload.Status))
	if err != nil {
		writeAppointmentError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newAppointmentView(appt))
}

func writeAppointmentList(w http.ResponseWriter, r *http.Request, appts []domain.Appointment) {
	views := make([]appointmentView, 0, len(appts))
	for _, appt := range appts {
		views = append(views, newAppointmentView(appt))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"appointments": views})
}

func writeAppointmentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrAppointmentInvalidInput):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, services.ErrAppointmentNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrAppointmentNotCancellable):
		httpx.WriteError(w, r, http.StatusConflict, "not_cancellable", "appointment can no longer be cancelled")
	case errors.Is(err, services.ErrAppointmentBadTransition):
		httpx.WriteError(w, r, http.StatusConflict, "invalid_transition", err.Error())
	default:
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal", "internal server error")
	}
}
