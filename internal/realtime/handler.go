// Package realtime streams booking snapshots to connected clients over
// WebSocket. Each connection receives the current state of every
// collection on connect and a fresh snapshot after each change.
package realtime

import (
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/bellasalon/booking-platform/internal/auth"
	"github.com/bellasalon/booking-platform/internal/booking"
	httpmiddleware "github.com/bellasalon/booking-platform/internal/http/middleware"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

// Event is one snapshot pushed to the client.
type Event struct {
	Type          string                 `json:"type"` // "services", "professionals", "appointments"
	Services      []booking.Service      `json:"services,omitempty"`
	Professionals []booking.Professional `json:"professionals,omitempty"`
	Appointments  []booking.Appointment  `json:"appointments,omitempty"`
}

// Handler upgrades connections and fans out collection snapshots.
type Handler struct {
	notifier  *booking.Notifier
	jwtSecret string
	logger    *logging.Logger
}

// NewHandler creates a realtime handler. Connections authenticate with an
// optional token query parameter; without one the client sees only public
// appointments.
func NewHandler(notifier *booking.Notifier, jwtSecret string, logger *logging.Logger) *Handler {
	if notifier == nil {
		panic("realtime: notifier required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{notifier: notifier, jwtSecret: jwtSecret, logger: logger}
}

// HandleWebSocket upgrades to WebSocket and streams snapshots until the
// client disconnects.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	var viewer *auth.Profile
	if token := r.URL.Query().Get("token"); token != "" {
		profile, err := httpmiddleware.ParseActorToken(h.jwtSecret, token)
		if err != nil {
			h.logger.Warn("realtime: rejected connection with invalid token", "error", err)
			_ = websocket.JSON.Send(conn, map[string]string{"type": "error", "error": "invalid token"})
			return
		}
		viewer = profile
	}

	// Snapshot deliveries run inside the notifier lock, so callbacks only
	// enqueue. A single writer goroutine owns the connection.
	events := make(chan Event, 16)
	enqueue := func(ev Event) {
		select {
		case events <- ev:
		default:
			h.logger.Warn("realtime: dropping snapshot, client too slow", "type", ev.Type)
		}
	}

	ctx := r.Context()
	unsubService, err := h.notifier.SubscribeServices(ctx, func(items []booking.Service) {
		enqueue(Event{Type: "services", Services: items})
	})
	if err != nil {
		h.logger.Error("realtime: service subscription failed", "error", err)
		return
	}
	defer unsubService()

	unsubPro, err := h.notifier.SubscribeProfessionals(ctx, func(items []booking.Professional) {
		enqueue(Event{Type: "professionals", Professionals: items})
	})
	if err != nil {
		h.logger.Error("realtime: professional subscription failed", "error", err)
		return
	}
	defer unsubPro()

	unsubApt, err := h.notifier.SubscribeAppointments(ctx, viewer, func(items []booking.Appointment) {
		enqueue(Event{Type: "appointments", Appointments: items})
	})
	if err != nil {
		h.logger.Error("realtime: appointment subscription failed", "error", err)
		return
	}
	defer unsubApt()

	h.logger.Info("realtime: connection opened", "authenticated", viewer != nil)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var discard map[string]any
			if err := websocket.JSON.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-events:
			if err := websocket.JSON.Send(conn, ev); err != nil {
				h.logger.Debug("realtime: connection closed", "error", err)
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
