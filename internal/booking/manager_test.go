package booking

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateAppointmentRoundTrip(t *testing.T) {
	m, _, _ := newTestCore(t)
	ctx := context.Background()

	created := time.Date(2026, 9, 1, 15, 4, 5, 0, time.UTC)
	m.WithClock(func() time.Time { return created })

	input := CreateAppointmentInput{
		ServiceID:      "svc-1",
		ProfessionalID: "pro-1",
		ClientName:     "Maria Silva",
		ClientPhone:    "(63) 99999-0001",
		Date:           "2026-09-07",
		Time:           "09:00",
		Duration:       60,
		PriceCents:     8000,
		Notes:          "first visit",
	}
	id, err := m.CreateAppointment(ctx, input, "user-7")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	items, err := m.store.Appointments(ctx)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(items))
	}
	apt := items[0]
	if apt.ID != id {
		t.Errorf("id mismatch: %s vs %s", apt.ID, id)
	}
	if apt.Status != StatusScheduled {
		t.Errorf("expected status defaulted to scheduled, got %s", apt.Status)
	}
	if !apt.CreatedAt.Equal(created) {
		t.Errorf("expected stamped creation time %v, got %v", created, apt.CreatedAt)
	}
	if apt.CreatorID != "user-7" {
		t.Errorf("expected creator user-7, got %s", apt.CreatorID)
	}
	if apt.ClientName != input.ClientName || apt.Date != input.Date || apt.Time != input.Time ||
		apt.Duration != input.Duration || apt.PriceCents != input.PriceCents || apt.Notes != input.Notes {
		t.Errorf("fields not carried through: %+v", apt)
	}
}

func TestCreateAppointmentExplicitStatusWins(t *testing.T) {
	m, _, _ := newTestCore(t)
	ctx := context.Background()

	id, err := m.CreateAppointment(ctx, CreateAppointmentInput{
		ServiceID:      "svc-1",
		ProfessionalID: "pro-1",
		ClientName:     "Maria",
		Date:           "2026-09-07",
		Time:           "09:00",
		Duration:       30,
		Status:         StatusCompleted,
	}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	items, _ := m.store.Appointments(ctx)
	if items[0].ID != id || items[0].Status != StatusCompleted {
		t.Errorf("explicit status dropped: %+v", items[0])
	}
}

func TestCreateAppointmentEmptyActorGetsPublicSentinel(t *testing.T) {
	m, _, _ := newTestCore(t)

	_, err := m.CreateAppointment(context.Background(), CreateAppointmentInput{
		ServiceID:      "svc-1",
		ProfessionalID: "pro-1",
		ClientName:     "Maria",
		Date:           "2026-09-07",
		Time:           "09:00",
		Duration:       30,
	}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	items, _ := m.store.Appointments(context.Background())
	if items[0].CreatorID != PublicCreatorID {
		t.Errorf("expected public sentinel, got %s", items[0].CreatorID)
	}
}

func TestDuplicateSlotBookingsBothSucceed(t *testing.T) {
	// There is no engine-enforced reservation; the second writer wins the
	// race and both rows land. Known limitation for a single-operator salon.
	m, _, _ := newTestCore(t)
	ctx := context.Background()

	input := CreateAppointmentInput{
		ServiceID:      "svc-1",
		ProfessionalID: "pro-1",
		ClientName:     "Maria",
		Date:           "2026-09-07",
		Time:           "09:00",
		Duration:       30,
	}
	if _, err := m.CreateAppointment(ctx, input, "user-1"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	input.ClientName = "Joana"
	if _, err := m.CreateAppointment(ctx, input, "user-2"); err != nil {
		t.Fatalf("second create: %v", err)
	}

	items, _ := m.store.Appointments(ctx)
	if len(items) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(items))
	}
	if items[0].Date != items[1].Date || items[0].Time != items[1].Time ||
		items[0].ProfessionalID != items[1].ProfessionalID {
		t.Errorf("expected identical slot on both: %+v", items)
	}
}

func TestUpdateAppointmentMergesOnlySuppliedFields(t *testing.T) {
	m, _, _ := newTestCore(t)
	ctx := context.Background()

	id, err := m.CreateAppointment(ctx, CreateAppointmentInput{
		ServiceID:      "svc-1",
		ProfessionalID: "pro-1",
		ClientName:     "Maria",
		ClientPhone:    "5563",
		Date:           "2026-09-07",
		Time:           "09:00",
		Duration:       60,
		PriceCents:     8000,
	}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status := StatusCancelled
	if err := m.UpdateAppointment(ctx, id, AppointmentPatch{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}

	items, _ := m.store.Appointments(ctx)
	apt := items[0]
	if apt.Status != StatusCancelled {
		t.Errorf("status not updated: %s", apt.Status)
	}
	if apt.Duration != 60 || apt.PriceCents != 8000 || apt.ClientName != "Maria" {
		t.Errorf("untouched fields changed: %+v", apt)
	}

	// The state machine has no terminal lock: cancelled reopens.
	reopened := StatusScheduled
	if err := m.UpdateAppointment(ctx, id, AppointmentPatch{Status: &reopened}); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	items, _ = m.store.Appointments(ctx)
	if items[0].Status != StatusScheduled {
		t.Errorf("expected cancelled appointment to reopen, got %s", items[0].Status)
	}
}

func TestUpdateMissingIDReturnsNotFound(t *testing.T) {
	m, _, _ := newTestCore(t)
	ctx := context.Background()

	status := StatusCompleted
	if err := m.UpdateAppointment(ctx, "ghost", AppointmentPatch{Status: &status}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for appointment, got %v", err)
	}

	name := "Bia"
	if err := m.UpdateProfessional(ctx, "ghost", ProfessionalPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for professional, got %v", err)
	}

	if err := m.UpdateService(ctx, Service{ID: "ghost", Name: "Corte", Duration: 30}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for service, got %v", err)
	}
}

func TestDeleteServiceLeavesAppointmentsIntact(t *testing.T) {
	m, _, _ := newTestCore(t)
	ctx := context.Background()

	if err := m.AddService(ctx, Service{ID: "svc-1", Name: "Corte", Duration: 60, Active: true}); err != nil {
		t.Fatalf("add service: %v", err)
	}
	id, err := m.CreateAppointment(ctx, CreateAppointmentInput{
		ServiceID:      "svc-1",
		ProfessionalID: "pro-1",
		ClientName:     "Maria",
		Date:           "2026-09-07",
		Time:           "09:00",
		Duration:       60,
		PriceCents:     8000,
	}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := m.DeleteService(ctx, "svc-1"); err != nil {
		t.Fatalf("delete service: %v", err)
	}

	items, _ := m.store.Appointments(ctx)
	if len(items) != 1 || items[0].ID != id {
		t.Fatalf("appointment must survive service deletion: %+v", items)
	}
	if items[0].Duration != 60 || items[0].PriceCents != 8000 {
		t.Errorf("captured duration/price corrupted: %+v", items[0])
	}
}

func TestInvalidScheduleRejectedAtMutation(t *testing.T) {
	m, _, _ := newTestCore(t)
	ctx := context.Background()

	bad := Professional{
		Name:   "Ana",
		Active: true,
		WorkingHours: WeeklySchedule{
			Monday: &DaySchedule{Start: "18:00", End: "08:00"},
		},
	}
	if err := m.AddProfessional(ctx, bad); !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("expected ErrInvalidSchedule for inverted window, got %v", err)
	}

	bad.WorkingHours = WeeklySchedule{
		Monday: &DaySchedule{
			Start:  "08:00",
			End:    "18:00",
			Breaks: []BreakInterval{{Start: "07:00", End: "09:00"}}, // outside window
		},
	}
	if err := m.AddProfessional(ctx, bad); !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("expected ErrInvalidSchedule for break outside window, got %v", err)
	}
}

func TestServiceValidation(t *testing.T) {
	m, _, _ := newTestCore(t)
	ctx := context.Background()

	if err := m.AddService(ctx, Service{Name: "", Duration: 30}); !errors.Is(err, ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
	if err := m.AddService(ctx, Service{Name: "Corte", Duration: 0}); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration for zero duration, got %v", err)
	}
	if err := m.AddService(ctx, Service{Name: "Corte", Duration: 30, PriceCents: -1}); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestAddServiceGeneratesID(t *testing.T) {
	m, _, _ := newTestCore(t)
	ctx := context.Background()

	m.WithIDGenerator(func() string { return "fixed-id" })
	if err := m.AddService(ctx, Service{Name: "Corte", Duration: 30}); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, _ := m.store.Services(ctx)
	if len(items) != 1 || items[0].ID != "fixed-id" {
		t.Errorf("expected generated id, got %+v", items)
	}
}

func TestDeleteProfessionalKeepsAppointments(t *testing.T) {
	m, _, _ := newTestCore(t)
	ctx := context.Background()

	if err := m.AddProfessional(ctx, Professional{ID: "pro-1", Name: "Ana", Active: true}); err != nil {
		t.Fatalf("add professional: %v", err)
	}
	if _, err := m.CreateAppointment(ctx, CreateAppointmentInput{
		ServiceID:      "svc-1",
		ProfessionalID: "pro-1",
		ClientName:     "Maria",
		Date:           "2026-09-07",
		Time:           "09:00",
		Duration:       30,
	}, "user-1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := m.DeleteProfessional(ctx, "pro-1"); err != nil {
		t.Fatalf("delete professional: %v", err)
	}
	items, _ := m.store.Appointments(ctx)
	if len(items) != 1 {
		t.Errorf("appointments must not cascade on professional delete: %d", len(items))
	}
}
