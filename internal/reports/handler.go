package reports

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bellasalon/booking-platform/internal/booking"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

// Handler serves the admin reporting endpoints.
type Handler struct {
	reporter *Reporter
	store    *booking.Store
	logger   *logging.Logger
}

// NewHandler creates a reports handler.
func NewHandler(reporter *Reporter, store *booking.Store, logger *logging.Logger) *Handler {
	if reporter == nil || store == nil {
		panic("reports: reporter and store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{reporter: reporter, store: store, logger: logger}
}

// GetSummary handles GET /admin/reports/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reporter.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard summary", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetPeriod handles GET /admin/reports/period?start=...&end=...
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	report, err := h.reporter.Period(r.Context(), start, end)
	if err != nil {
		if errors.Is(err, booking.ErrInvalidDate) {
			http.Error(w, "start and end must be YYYY-MM-DD dates", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to build period report", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ExportCSV handles GET /admin/reports/export?start=...&end=... and streams
// the raw appointment rows for the period as CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if _, err := booking.ParseDate(start); err != nil {
		http.Error(w, "start and end must be YYYY-MM-DD dates", http.StatusBadRequest)
		return
	}
	if _, err := booking.ParseDate(end); err != nil {
		http.Error(w, "start and end must be YYYY-MM-DD dates", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	appointments, err := h.store.Appointments(ctx)
	if err != nil {
		h.logger.Error("failed to load appointments for export", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	services, err := h.store.Services(ctx)
	if err != nil {
		h.logger.Error("failed to load services for export", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	professionals, err := h.store.Professionals(ctx)
	if err != nil {
		h.logger.Error("failed to load professionals for export", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	serviceNames := make(map[string]string, len(services))
	for _, svc := range services {
		serviceNames[svc.ID] = svc.Name
	}
	professionalNames := make(map[string]string, len(professionals))
	for _, pro := range professionals {
		professionalNames[pro.ID] = pro.Name
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="relatorio.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Data", "Horário", "Cliente", "Serviço", "Profissional", "Valor", "Status"})
	for _, apt := range appointments {
		if apt.Date < start || apt.Date > end {
			continue
		}
		serviceName := serviceNames[apt.ServiceID]
		if serviceName == "" {
			serviceName = placeholderName
		}
		professionalName := professionalNames[apt.ProfessionalID]
		if professionalName == "" {
			professionalName = placeholderName
		}
		_ = cw.Write([]string{
			apt.Date,
			apt.Time,
			apt.ClientName,
			serviceName,
			professionalName,
			fmt.Sprintf("%.2f", float64(apt.PriceCents)/100),
			string(apt.Status),
		})
	}
	cw.Flush()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
