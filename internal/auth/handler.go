package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bellasalon/booking-platform/pkg/logging"
)

// TokenMinter issues a bearer token for a signed-in profile.
type TokenMinter func(profile *Profile, ttl time.Duration) (string, error)

// Handler serves the sign-in endpoints.
type Handler struct {
	provider Provider
	mint     TokenMinter
	ttl      time.Duration
	logger   *logging.Logger
}

// NewHandler creates an auth handler.
func NewHandler(provider Provider, mint TokenMinter, ttl time.Duration, logger *logging.Logger) *Handler {
	if provider == nil || mint == nil {
		panic("auth: provider and token minter required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{provider: provider, mint: mint, ttl: ttl, logger: logger}
}

// SignInResponse carries the bearer token and the signed-in profile.
type SignInResponse struct {
	Token   string   `json:"token"`
	Profile *Profile `json:"profile"`
}

// SignIn handles POST /api/auth/signin.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	profile, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			http.Error(w, "unknown user", http.StatusUnauthorized)
			return
		}
		h.logger.Error("sign in failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, err := h.mint(profile, h.ttl)
	if err != nil {
		h.logger.Error("failed to mint token", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("user signed in", "email", profile.Email, "role", profile.Role)
	writeJSON(w, http.StatusOK, SignInResponse{Token: token, Profile: profile})
}

// SignOut handles POST /api/auth/signout.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.provider.SignOut(r.Context()); err != nil {
		h.logger.Error("sign out failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.provider.CurrentActor(r.Context())
	if err != nil {
		h.logger.Error("failed to load current actor", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
