package salon

import (
	"encoding/json"
	"net/http"

	"github.com/bellasalon/booking-platform/pkg/logging"
)

// Handler serves the salon profile endpoints.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a salon profile handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if store == nil {
		panic("salon: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// GetProfile handles GET /api/salon.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load salon profile", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /admin/salon.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	profile, err := h.store.Update(r.Context(), patch)
	if err != nil {
		h.logger.Error("failed to update salon profile", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
