package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authpkg "github.com/bellasalon/booking-platform/internal/auth"
	"github.com/bellasalon/booking-platform/internal/booking"
	httpmiddleware "github.com/bellasalon/booking-platform/internal/http/middleware"
	"github.com/bellasalon/booking-platform/internal/realtime"
	"github.com/bellasalon/booking-platform/internal/reports"
	"github.com/bellasalon/booking-platform/internal/salon"
	"github.com/bellasalon/booking-platform/internal/store"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

const testSecret = "router-test-secret"

func newTestRouter(t *testing.T) (http.Handler, *booking.Manager) {
	t.Helper()

	logger := logging.Discard()
	backend := store.NewMemory()
	bookingStore := booking.NewStore(backend)
	notifier := booking.NewNotifier(bookingStore, logger, nil)
	manager := booking.NewManager(bookingStore, notifier, logger, nil)

	provider := authpkg.NewLocal(backend, logger)
	mint := func(profile *authpkg.Profile, ttl time.Duration) (string, error) {
		return httpmiddleware.MintActorToken(testSecret, profile, ttl)
	}

	salonStore := salon.NewStore(backend, logger)
	reporter := reports.NewReporter(bookingStore, logger)

	cfg := &Config{
		Logger:          logger,
		BookingHandler:  booking.NewHandler(manager, bookingStore, logger, nil),
		AuthHandler:     authpkg.NewHandler(provider, mint, time.Hour, logger),
		SalonHandler:    salon.NewHandler(salonStore, logger),
		ReportsHandler:  reports.NewHandler(reporter, bookingStore, logger),
		RealtimeHandler: realtime.NewHandler(notifier, testSecret, logger),
		AdminJWTSecret:  testSecret,
	}
	return New(cfg), manager
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := httpmiddleware.MintActorToken(testSecret, &authpkg.Profile{
		ID: "adm-1", Email: "dona@salao.com", Role: authpkg.RoleAdmin,
	}, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized && rr.Code != http.StatusForbidden {
		t.Fatalf("expected auth failure, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with admin token, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRouterRegularUserCannotReachAdmin(t *testing.T) {
	router, _ := newTestRouter(t)

	token, err := httpmiddleware.MintActorToken(testSecret, &authpkg.Profile{
		ID: "user-1", Email: "u@salao.com", Role: authpkg.RoleUser,
	}, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/services", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for regular user, got %d", rr.Code)
	}
}

func TestRouterPublicBookingFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := booking.CreateAppointmentInput{
		ServiceID:      "svc-1",
		ProfessionalID: "pro-1",
		ClientName:     "Maria",
		ClientPhone:    "5563",
		Date:           "2026-09-07",
		Time:           "10:00",
		Duration:       30,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var appointments []booking.Appointment
	if err := json.NewDecoder(rr.Body).Decode(&appointments); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(appointments) != 1 || appointments[0].CreatorID != booking.PublicCreatorID {
		t.Errorf("unexpected appointments: %+v", appointments)
	}
}

func TestRouterSalonProfilePublicRead(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/salon", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var profile salon.Profile
	if err := json.NewDecoder(rr.Body).Decode(&profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.Name == "" {
		t.Error("expected a default salon name")
	}
}
