package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bellasalon/booking-platform/internal/auth"
	"github.com/bellasalon/booking-platform/internal/booking"
	httpmiddleware "github.com/bellasalon/booking-platform/internal/http/middleware"
	"github.com/bellasalon/booking-platform/internal/realtime"
	"github.com/bellasalon/booking-platform/internal/reports"
	"github.com/bellasalon/booking-platform/internal/salon"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	BookingHandler  *booking.Handler
	AuthHandler     *auth.Handler
	SalonHandler    *salon.Handler
	ReportsHandler  *reports.Handler
	RealtimeHandler *realtime.Handler
	MetricsHandler  http.Handler

	AdminJWTSecret     string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: the self-booking page and health checks. The JWT
	// middleware is a pass-through here so signed-in clients see their own
	// appointments while anonymous visitors can still book.
	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.ActorJWT(cfg.AdminJWTSecret))

		public.Get("/health", cfg.BookingHandler.HealthCheck)
		public.Route("/api", func(api chi.Router) {
			api.Get("/services", cfg.BookingHandler.ListPublicServices)
			api.Get("/professionals", cfg.BookingHandler.ListPublicProfessionals)
			api.Get("/availability", cfg.BookingHandler.GetAvailability)
			api.Post("/appointments", cfg.BookingHandler.CreateAppointment)
			if cfg.SalonHandler != nil {
				api.Get("/salon", cfg.SalonHandler.GetProfile)
			}
			if cfg.AuthHandler != nil {
				api.Route("/auth", func(r chi.Router) {
					r.Post("/signin", cfg.AuthHandler.SignIn)
					r.Post("/signout", cfg.AuthHandler.SignOut)
					r.Get("/me", cfg.AuthHandler.Me)
				})
			}
		})

		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.RealtimeHandler != nil {
			public.Get("/ws", cfg.RealtimeHandler.HandleWebSocket)
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminJWTSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.ActorJWT(cfg.AdminJWTSecret))
			admin.Use(httpmiddleware.RequireStaff)

			admin.Get("/appointments", cfg.BookingHandler.ListAppointments)
			admin.Patch("/appointments/{id}", cfg.BookingHandler.UpdateAppointment)
			admin.Delete("/appointments/{id}", cfg.BookingHandler.DeleteAppointment)

			admin.Get("/services", cfg.BookingHandler.ListServices)
			admin.Post("/services", cfg.BookingHandler.SaveService)
			admin.Put("/services/{id}", cfg.BookingHandler.UpdateService)
			admin.Delete("/services/{id}", cfg.BookingHandler.DeleteService)

			admin.Get("/professionals", cfg.BookingHandler.ListProfessionals)
			admin.Post("/professionals", cfg.BookingHandler.SaveProfessional)
			admin.Patch("/professionals/{id}", cfg.BookingHandler.UpdateProfessional)
			admin.Delete("/professionals/{id}", cfg.BookingHandler.DeleteProfessional)

			if cfg.SalonHandler != nil {
				admin.Patch("/salon", cfg.SalonHandler.UpdateProfile)
			}
			if cfg.ReportsHandler != nil {
				admin.Route("/reports", func(r chi.Router) {
					r.Get("/summary", cfg.ReportsHandler.GetSummary)
					r.Get("/period", cfg.ReportsHandler.GetPeriod)
					r.Get("/export", cfg.ReportsHandler.ExportCSV)
				})
			}
		})
	}

	return r
}
