package booking

import (
	"slices"
	"testing"
)

// 2026-09-07 is a Monday.
const mondayDate = "2026-09-07"

func anaSchedule() Professional {
	return Professional{
		ID:     "pro-ana",
		Name:   "Ana",
		Active: true,
		WorkingHours: WeeklySchedule{
			Monday: &DaySchedule{
				Start:  "08:00",
				End:    "18:00",
				Breaks: []BreakInterval{{Start: "12:00", End: "13:00"}},
			},
		},
	}
}

func TestClosedWeekdayYieldsNoSlots(t *testing.T) {
	pro := anaSchedule() // works Mondays only
	svc := Service{ID: "svc-1", Duration: 30}

	slots, err := AvailableSlots(pro, svc, "2026-09-08", nil) // Tuesday
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots on a closed weekday, got %v", slots)
	}
}

func TestScenarioAna(t *testing.T) {
	pro := anaSchedule()
	svc := Service{ID: "svc-1", Duration: 60}
	existing := []Appointment{
		{ID: "apt-1", ProfessionalID: "pro-ana", Date: mondayDate, Time: "09:00", Status: StatusScheduled},
	}

	slots, err := AvailableSlots(pro, svc, mondayDate, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mustInclude := []string{"08:00", "10:00", "13:00", "14:00", "15:00", "16:00", "17:00"}
	for _, want := range mustInclude {
		if !slices.Contains(slots, want) {
			t.Errorf("expected slot %s, got %v", want, slots)
		}
	}
	mustExclude := []string{
		"09:00", // booked
		"11:30", // would run into the 12:00 break
		"12:00", "12:30", // inside the break
		"17:30", // would finish at 18:30, past close
	}
	for _, bad := range mustExclude {
		if slices.Contains(slots, bad) {
			t.Errorf("slot %s must be excluded, got %v", bad, slots)
		}
	}
}

func TestSlotsRespectWorkingWindow(t *testing.T) {
	pro := anaSchedule()
	pro.WorkingHours[Monday].Start = "10:00"
	pro.WorkingHours[Monday].End = "14:00"
	pro.WorkingHours[Monday].Breaks = nil
	svc := Service{ID: "svc-1", Duration: 45}

	slots, err := AvailableSlots(pro, svc, mondayDate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range slots {
		start, _ := MinutesOfDay(s)
		if start < 10*60 {
			t.Errorf("slot %s starts before opening", s)
		}
		if start+svc.Duration > 14*60 {
			t.Errorf("slot %s would run the service past closing", s)
		}
	}
	// 13:30 + 45min = 14:15 > 14:00.
	if slices.Contains(slots, "13:30") {
		t.Errorf("13:30 must not fit a 45-minute service before 14:00 close: %v", slots)
	}
	if !slices.Contains(slots, "13:00") {
		t.Errorf("13:00 fits exactly inside the window: %v", slots)
	}
}

func TestNoSlotOverlapsAnyBreak(t *testing.T) {
	pro := anaSchedule()
	pro.WorkingHours[Monday].Breaks = []BreakInterval{
		{Start: "10:00", End: "10:30"},
		{Start: "10:15", End: "11:00"}, // overlapping breaks union implicitly
	}
	svc := Service{ID: "svc-1", Duration: 30}

	slots, err := AvailableSlots(pro, svc, mondayDate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range slots {
		start, _ := MinutesOfDay(s)
		end := start + svc.Duration
		for _, b := range pro.WorkingHours[Monday].Breaks {
			bs, _ := MinutesOfDay(b.Start)
			be, _ := MinutesOfDay(b.End)
			if max(start, bs) < min(end, be) {
				t.Errorf("slot %s overlaps break %s-%s", s, b.Start, b.End)
			}
		}
	}
	for _, bad := range []string{"10:00", "10:30"} {
		if slices.Contains(slots, bad) {
			t.Errorf("slot %s lies inside the unioned breaks: %v", bad, slots)
		}
	}
}

func TestCancelledAppointmentFreesTheSlot(t *testing.T) {
	pro := anaSchedule()
	svc := Service{ID: "svc-1", Duration: 30}
	existing := []Appointment{
		{ID: "apt-1", ProfessionalID: "pro-ana", Date: mondayDate, Time: "09:00", Status: StatusCancelled},
		{ID: "apt-2", ProfessionalID: "pro-ana", Date: mondayDate, Time: "10:00", Status: StatusCompleted},
	}

	slots, err := AvailableSlots(pro, svc, mondayDate, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Contains(slots, "09:00") {
		t.Errorf("cancelled appointment must free 09:00: %v", slots)
	}
	if slices.Contains(slots, "10:00") {
		t.Errorf("completed appointment still blocks 10:00: %v", slots)
	}
}

func TestAnyProfessionalReturnsFullGrid(t *testing.T) {
	pro := Professional{ID: AnyProfessionalID, Name: "Qualquer profissional"}
	svc := Service{ID: "svc-1", Duration: 60}

	slots, err := AvailableSlots(pro, svc, mondayDate, []Appointment{
		{ID: "apt-1", ProfessionalID: AnyProfessionalID, Date: mondayDate, Time: "09:00", Status: StatusScheduled},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 20 {
		t.Fatalf("expected the full 08:00-17:30 grid (20 slots), got %d", len(slots))
	}
	if slots[0] != "08:00" || slots[len(slots)-1] != "17:30" {
		t.Errorf("grid bounds wrong: %v", slots)
	}
}

func TestZeroLengthDayYieldsNoSlots(t *testing.T) {
	pro := anaSchedule()
	// start == end slips past mutation-time validation only in legacy data;
	// the engine still yields nothing.
	pro.WorkingHours[Monday] = &DaySchedule{Start: "09:00", End: "09:00"}
	svc := Service{ID: "svc-1", Duration: 30}

	slots, err := AvailableSlots(pro, svc, mondayDate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots for a zero-length day, got %v", slots)
	}
}

func TestSlotsAreAscending(t *testing.T) {
	pro := anaSchedule()
	svc := Service{ID: "svc-1", Duration: 30}

	slots, err := AvailableSlots(pro, svc, mondayDate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.IsSorted(slots) {
		t.Errorf("slots not ascending: %v", slots)
	}
}

func TestBadDateIsRejected(t *testing.T) {
	pro := anaSchedule()
	svc := Service{ID: "svc-1", Duration: 30}

	if _, err := AvailableSlots(pro, svc, "07/09/2026", nil); err == nil {
		t.Fatal("expected error for malformed date")
	}
}
