package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httpmiddleware "github.com/bellasalon/booking-platform/internal/http/middleware"
	"github.com/bellasalon/booking-platform/internal/observability/metrics"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

// Handler exposes the booking core over HTTP. Public endpoints serve the
// self-booking wizard; staff endpoints the admin screens.
type Handler struct {
	manager *Manager
	store   *Store
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

// NewHandler creates a booking handler. Metrics may be nil.
func NewHandler(manager *Manager, store *Store, logger *logging.Logger, m *metrics.BookingMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{manager: manager, store: store, logger: logger, metrics: m}
}

// ListPublicServices handles GET /api/services: active services only.
func (h *Handler) ListPublicServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.Services(r.Context())
	if err != nil {
		h.fail(w, "list services", err)
		return
	}
	active := make([]Service, 0, len(items))
	for _, svc := range items {
		if svc.Active {
			active = append(active, svc)
		}
	}
	writeJSON(w, http.StatusOK, active)
}

// ListPublicProfessionals handles GET /api/professionals: active only.
func (h *Handler) ListPublicProfessionals(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.Professionals(r.Context())
	if err != nil {
		h.fail(w, "list professionals", err)
		return
	}
	active := make([]Professional, 0, len(items))
	for _, pro := range items {
		if pro.Active {
			active = append(active, pro)
		}
	}
	writeJSON(w, http.StatusOK, active)
}

// AvailabilityResponse is the payload for an availability query.
type AvailabilityResponse struct {
	ProfessionalID string   `json:"professional_id"`
	ServiceID      string   `json:"service_id"`
	Date           string   `json:"date"`
	Slots          []string `json:"slots"`
}

// GetAvailability handles GET /api/availability?professional_id&service_id&date.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	proID := q.Get("professional_id")
	svcID := q.Get("service_id")
	date := q.Get("date")
	if proID == "" || svcID == "" || date == "" {
		http.Error(w, "professional_id, service_id and date are required", http.StatusBadRequest)
		return
	}

	svc, err := h.findService(r, svcID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "unknown service", http.StatusNotFound)
			return
		}
		h.fail(w, "load service", err)
		return
	}
	// Deactivated services are hidden from the public listing; keep them
	// out of availability too.
	if !svc.Active {
		http.Error(w, "unknown service", http.StatusNotFound)
		return
	}

	var pro Professional
	if proID == AnyProfessionalID {
		pro = Professional{ID: AnyProfessionalID}
	} else {
		pro, err = h.findProfessional(r, proID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "unknown professional", http.StatusNotFound)
				return
			}
			h.fail(w, "load professional", err)
			return
		}
		if !pro.Active {
			http.Error(w, "unknown professional", http.StatusNotFound)
			return
		}
	}

	appointments, err := h.store.Appointments(r.Context())
	if err != nil {
		h.fail(w, "load appointments", err)
		return
	}

	slots, err := AvailableSlots(pro, svc, date, appointments)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.metrics.ObserveAvailability(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, AvailabilityResponse{
		ProfessionalID: proID,
		ServiceID:      svcID,
		Date:           date,
		Slots:          slots,
	})
}

// CreateAppointment handles POST /api/appointments. Anonymous callers book
// as the public sentinel; authenticated callers as themselves.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var input CreateAppointmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	actorID := ""
	if profile, ok := httpmiddleware.ActorFromContext(r.Context()); ok {
		actorID = profile.ID
	}

	id, err := h.manager.CreateAppointment(r.Context(), input, actorID)
	if err != nil {
		h.writeMutationError(w, "create appointment", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// ListAppointments handles GET /admin/appointments, scoped to the viewer:
// admins see everything, staff and users only what they created.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	viewer, _ := httpmiddleware.ActorFromContext(r.Context())
	items, err := h.store.Appointments(r.Context())
	if err != nil {
		h.fail(w, "list appointments", err)
		return
	}
	writeJSON(w, http.StatusOK, FilterForViewer(items, viewer))
}

// ListServices handles GET /admin/services: the full catalog.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.Services(r.Context())
	if err != nil {
		h.fail(w, "list services", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListProfessionals handles GET /admin/professionals.
func (h *Handler) ListProfessionals(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.Professionals(r.Context())
	if err != nil {
		h.fail(w, "list professionals", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// SaveService handles POST /admin/services (upsert).
func (h *Handler) SaveService(w http.ResponseWriter, r *http.Request) {
	var svc Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.manager.AddService(r.Context(), svc); err != nil {
		h.writeMutationError(w, "save service", err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// UpdateService handles PUT /admin/services/{id} (full replace).
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var svc Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	svc.ID = chi.URLParam(r, "id")
	if err := h.manager.UpdateService(r.Context(), svc); err != nil {
		h.writeMutationError(w, "update service", err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// DeleteService handles DELETE /admin/services/{id}.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeMutationError(w, "delete service", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveProfessional handles POST /admin/professionals (upsert).
func (h *Handler) SaveProfessional(w http.ResponseWriter, r *http.Request) {
	var pro Professional
	if err := json.NewDecoder(r.Body).Decode(&pro); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.manager.AddProfessional(r.Context(), pro); err != nil {
		h.writeMutationError(w, "save professional", err)
		return
	}
	writeJSON(w, http.StatusOK, pro)
}

// UpdateProfessional handles PATCH /admin/professionals/{id}.
func (h *Handler) UpdateProfessional(w http.ResponseWriter, r *http.Request) {
	var patch ProfessionalPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.manager.UpdateProfessional(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		h.writeMutationError(w, "update professional", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProfessional handles DELETE /admin/professionals/{id}.
func (h *Handler) DeleteProfessional(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteProfessional(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeMutationError(w, "delete professional", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateAppointment handles PATCH /admin/appointments/{id}.
func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var patch AppointmentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.manager.UpdateAppointment(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		h.writeMutationError(w, "update appointment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAppointment handles DELETE /admin/appointments/{id}.
func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeMutationError(w, "delete appointment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) findService(r *http.Request, id string) (Service, error) {
	items, err := h.store.Services(r.Context())
	if err != nil {
		return Service{}, err
	}
	for _, svc := range items {
		if svc.ID == id {
			return svc, nil
		}
	}
	return Service{}, ErrNotFound
}

func (h *Handler) findProfessional(r *http.Request, id string) (Professional, error) {
	items, err := h.store.Professionals(r.Context())
	if err != nil {
		return Professional{}, err
	}
	for _, pro := range items {
		if pro.ID == id {
			return pro, nil
		}
	}
	return Professional{}, ErrNotFound
}

func (h *Handler) writeMutationError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrMissingName),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidSchedule),
		errors.Is(err, ErrInvalidTime),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.fail(w, op, err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
