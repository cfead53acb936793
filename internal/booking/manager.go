package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bellasalon/booking-platform/internal/observability/metrics"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

// Manager is the mutation façade: the only path through which callers change
// salon state. Every successful mutation persists through the Store and then
// triggers a Notifier broadcast, so no subscriber ever observes a state
// between persistence and broadcast.
//
// The Manager does not consult the availability engine before creating an
// appointment; callers book slots the engine approved, and two callers can
// still race the same slot. That is accepted for a single-operator salon.
type Manager struct {
	store    *Store
	notifier *Notifier
	logger   *logging.Logger
	metrics  *metrics.BookingMetrics
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() string
}

// NewManager constructs the booking manager. Metrics may be nil.
func NewManager(store *Store, notifier *Notifier, logger *logging.Logger, m *metrics.BookingMetrics) *Manager {
	if store == nil {
		panic("booking: store required")
	}
	if notifier == nil {
		panic("booking: notifier required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		store:    store,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("salon.internal.booking"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithTracer overrides the tracer.
func (m *Manager) WithTracer(tracer trace.Tracer) *Manager {
	if tracer != nil {
		m.tracer = tracer
	}
	return m
}

// WithClock overrides the timestamp source. Tests use this.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.now = now
	}
	return m
}

// WithIDGenerator overrides id generation. Tests use this.
func (m *Manager) WithIDGenerator(newID func() string) *Manager {
	if newID != nil {
		m.newID = newID
	}
	return m
}

// AddService upserts a service. A blank id gets a generated one.
func (m *Manager) AddService(ctx context.Context, svc Service) (err error) {
	defer func() { m.metrics.ObserveMutation("services", "add", err) }()

	if err = svc.Validate(); err != nil {
		return err
	}
	if svc.ID == "" {
		svc.ID = m.newID()
	}
	if err = m.store.PutService(ctx, svc); err != nil {
		return err
	}
	m.logger.Info("service saved", "service_id", svc.ID, "name", svc.Name)
	m.notifier.publishServices(ctx)
	return nil
}

// UpdateService replaces an existing service. Unknown ids fail with
// ErrNotFound rather than silently dropping the update.
func (m *Manager) UpdateService(ctx context.Context, svc Service) (err error) {
	defer func() { m.metrics.ObserveMutation("services", "update", err) }()

	if err = svc.Validate(); err != nil {
		return err
	}
	existing, err := m.store.Services(ctx)
	if err != nil {
		return err
	}
	if !containsID(existing, svc.ID) {
		return ErrNotFound
	}
	if err = m.store.PutService(ctx, svc); err != nil {
		return err
	}
	m.notifier.publishServices(ctx)
	return nil
}

// DeleteService removes a service by id. Appointments referencing it are
// left alone; their captured price/duration stay valid and name lookups
// degrade to a placeholder. Deleting a missing id is a no-op.
func (m *Manager) DeleteService(ctx context.Context, id string) (err error) {
	defer func() { m.metrics.ObserveMutation("services", "delete", err) }()

	if err = m.store.RemoveService(ctx, id); err != nil {
		return err
	}
	m.logger.Info("service deleted", "service_id", id)
	m.notifier.publishServices(ctx)
	return nil
}

// AddProfessional upserts a professional after validating the weekly
// schedule, so the availability engine never meets a malformed one.
func (m *Manager) AddProfessional(ctx context.Context, pro Professional) (err error) {
	defer func() { m.metrics.ObserveMutation("professionals", "add", err) }()

	if err = pro.Validate(); err != nil {
		return err
	}
	if pro.ID == "" {
		pro.ID = m.newID()
	}
	if err = m.store.PutProfessional(ctx, pro); err != nil {
		return err
	}
	m.logger.Info("professional saved", "professional_id", pro.ID, "name", pro.Name)
	m.notifier.publishProfessionals(ctx)
	return nil
}

// UpdateProfessional merges patch into the stored professional. Only
// supplied fields change. A missing id fails with ErrNotFound.
func (m *Manager) UpdateProfessional(ctx context.Context, id string, patch ProfessionalPatch) (err error) {
	defer func() { m.metrics.ObserveMutation("professionals", "update", err) }()

	existing, err := m.store.Professionals(ctx)
	if err != nil {
		return err
	}
	idx := indexOfID(existing, id)
	if idx < 0 {
		return ErrNotFound
	}
	updated := patch.apply(existing[idx])
	if err = updated.Validate(); err != nil {
		return err
	}
	if err = m.store.PutProfessional(ctx, updated); err != nil {
		return err
	}
	m.notifier.publishProfessionals(ctx)
	return nil
}

// DeleteProfessional removes by id without cascading to appointments.
func (m *Manager) DeleteProfessional(ctx context.Context, id string) (err error) {
	defer func() { m.metrics.ObserveMutation("professionals", "delete", err) }()

	if err = m.store.RemoveProfessional(ctx, id); err != nil {
		return err
	}
	m.logger.Info("professional deleted", "professional_id", id)
	m.notifier.publishProfessionals(ctx)
	return nil
}

// CreateAppointmentInput carries the caller-supplied appointment fields.
// Status is optional and defaults to scheduled.
type CreateAppointmentInput struct {
	ServiceID      string `json:"service_id"`
	ProfessionalID string `json:"professional_id"`
	ClientName     string `json:"client_name"`
	ClientPhone    string `json:"client_phone"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Duration       int    `json:"duration_minutes"`
	PriceCents     int64  `json:"price_cents"`
	Status         Status `json:"status,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

func (in CreateAppointmentInput) validate() error {
	if in.ClientName == "" {
		return ErrMissingName
	}
	if _, err := ParseDate(in.Date); err != nil {
		return err
	}
	if _, err := MinutesOfDay(in.Time); err != nil {
		return err
	}
	if in.Duration <= 0 {
		return ErrInvalidDuration
	}
	if in.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if in.Status != "" && !in.Status.valid() {
		return ErrInvalidStatus
	}
	return nil
}

// CreateAppointment books a slot for actorID (PublicCreatorID for
// unauthenticated bookings): fresh id, status defaulted, creation time
// stamped, persisted, broadcast. Returns the new id.
func (m *Manager) CreateAppointment(ctx context.Context, in CreateAppointmentInput, actorID string) (id string, err error) {
	ctx, span := m.tracer.Start(ctx, "booking.create_appointment")
	defer span.End()
	defer func() { m.metrics.ObserveMutation("appointments", "create", err) }()

	if err = in.validate(); err != nil {
		span.RecordError(err)
		return "", err
	}
	if actorID == "" {
		actorID = PublicCreatorID
	}
	status := in.Status
	if status == "" {
		status = StatusScheduled
	}

	apt := Appointment{
		ID:             m.newID(),
		ServiceID:      in.ServiceID,
		ProfessionalID: in.ProfessionalID,
		ClientName:     in.ClientName,
		ClientPhone:    in.ClientPhone,
		Date:           in.Date,
		Time:           in.Time,
		Duration:       in.Duration,
		PriceCents:     in.PriceCents,
		Status:         status,
		CreatorID:      actorID,
		CreatedAt:      m.now().UTC(),
		Notes:          in.Notes,
	}
	span.SetAttributes(
		attribute.String("salon.professional_id", apt.ProfessionalID),
		attribute.String("salon.date", apt.Date),
		attribute.String("salon.time", apt.Time),
	)

	if err = m.store.PutAppointment(ctx, apt); err != nil {
		span.RecordError(err)
		return "", err
	}
	m.logger.Info("appointment created",
		"appointment_id", apt.ID,
		"professional_id", apt.ProfessionalID,
		"date", apt.Date,
		"time", apt.Time,
		"creator_id", apt.CreatorID,
	)
	m.notifier.publishAppointments(ctx)
	return apt.ID, nil
}

// UpdateAppointment merges patch into the stored appointment. Captured
// duration/price only change when the patch says so; status transitions are
// unrestricted, including reopening a cancelled appointment. A missing id
// fails with ErrNotFound.
func (m *Manager) UpdateAppointment(ctx context.Context, id string, patch AppointmentPatch) (err error) {
	ctx, span := m.tracer.Start(ctx, "booking.update_appointment")
	defer span.End()
	defer func() { m.metrics.ObserveMutation("appointments", "update", err) }()

	if err = patch.validate(); err != nil {
		span.RecordError(err)
		return err
	}
	existing, err := m.store.Appointments(ctx)
	if err != nil {
		return err
	}
	idx := indexOfID(existing, id)
	if idx < 0 {
		return ErrNotFound
	}
	updated := patch.apply(existing[idx])
	if err = m.store.PutAppointment(ctx, updated); err != nil {
		span.RecordError(err)
		return err
	}
	m.logger.Info("appointment updated", "appointment_id", id)
	m.notifier.publishAppointments(ctx)
	return nil
}

// DeleteAppointment removes by id; missing ids are a no-op.
func (m *Manager) DeleteAppointment(ctx context.Context, id string) (err error) {
	defer func() { m.metrics.ObserveMutation("appointments", "delete", err) }()

	if err = m.store.RemoveAppointment(ctx, id); err != nil {
		return err
	}
	m.logger.Info("appointment deleted", "appointment_id", id)
	m.notifier.publishAppointments(ctx)
	return nil
}

// ProfessionalPatch updates only its non-nil fields.
type ProfessionalPatch struct {
	Name         *string         `json:"name,omitempty"`
	Email        *string         `json:"email,omitempty"`
	Phone        *string         `json:"phone,omitempty"`
	Specialty    *string         `json:"specialty,omitempty"`
	Active       *bool           `json:"active,omitempty"`
	WorkingHours *WeeklySchedule `json:"working_hours,omitempty"`
}

func (p ProfessionalPatch) apply(pro Professional) Professional {
	if p.Name != nil {
		pro.Name = *p.Name
	}
	if p.Email != nil {
		pro.Email = *p.Email
	}
	if p.Phone != nil {
		pro.Phone = *p.Phone
	}
	if p.Specialty != nil {
		pro.Specialty = *p.Specialty
	}
	if p.Active != nil {
		pro.Active = *p.Active
	}
	if p.WorkingHours != nil {
		pro.WorkingHours = *p.WorkingHours
	}
	return pro
}

// AppointmentPatch updates only its non-nil fields.
type AppointmentPatch struct {
	ServiceID      *string `json:"service_id,omitempty"`
	ProfessionalID *string `json:"professional_id,omitempty"`
	ClientName     *string `json:"client_name,omitempty"`
	ClientPhone    *string `json:"client_phone,omitempty"`
	Date           *string `json:"date,omitempty"`
	Time           *string `json:"time,omitempty"`
	Duration       *int    `json:"duration_minutes,omitempty"`
	PriceCents     *int64  `json:"price_cents,omitempty"`
	Status         *Status `json:"status,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

func (p AppointmentPatch) validate() error {
	if p.Date != nil {
		if _, err := ParseDate(*p.Date); err != nil {
			return err
		}
	}
	if p.Time != nil {
		if _, err := MinutesOfDay(*p.Time); err != nil {
			return err
		}
	}
	if p.Duration != nil && *p.Duration <= 0 {
		return ErrInvalidDuration
	}
	if p.PriceCents != nil && *p.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if p.Status != nil && !p.Status.valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (p AppointmentPatch) apply(apt Appointment) Appointment {
	if p.ServiceID != nil {
		apt.ServiceID = *p.ServiceID
	}
	if p.ProfessionalID != nil {
		apt.ProfessionalID = *p.ProfessionalID
	}
	if p.ClientName != nil {
		apt.ClientName = *p.ClientName
	}
	if p.ClientPhone != nil {
		apt.ClientPhone = *p.ClientPhone
	}
	if p.Date != nil {
		apt.Date = *p.Date
	}
	if p.Time != nil {
		apt.Time = *p.Time
	}
	if p.Duration != nil {
		apt.Duration = *p.Duration
	}
	if p.PriceCents != nil {
		apt.PriceCents = *p.PriceCents
	}
	if p.Status != nil {
		apt.Status = *p.Status
	}
	if p.Notes != nil {
		apt.Notes = *p.Notes
	}
	return apt
}

func containsID[T keyed](items []T, id string) bool {
	return indexOfID(items, id) >= 0
}

func indexOfID[T keyed](items []T, id string) int {
	for i, item := range items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}
