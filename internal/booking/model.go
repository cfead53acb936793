// Package booking holds the authoritative salon state: the catalog of
// services, the professionals who perform them, and booked appointments. All
// mutation goes through the Manager; views observe state through the
// Notifier and compute bookable times with AvailableSlots.
package booking

import (
	"fmt"
	"strings"
	"time"
)

// AnyProfessionalID is the pseudo-professional the public booking flow offers
// when the client has no preference. It carries no working hours and never
// constrains availability.
const AnyProfessionalID = "any"

// PublicCreatorID marks appointments booked without an authenticated actor.
const PublicCreatorID = "public"

// Weekday keys a professional's weekly schedule.
type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

var weekdayByTime = map[time.Weekday]Weekday{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

// WeekdayOf returns the schedule key for t's weekday.
func WeekdayOf(t time.Time) Weekday {
	return weekdayByTime[t.Weekday()]
}

// BreakInterval is a pause inside a working day, "HH:MM" bounds, end
// exclusive. Overlapping breaks are tolerated; the overlap test unions them.
type BreakInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DaySchedule is a professional's working window for one weekday plus its
// breaks. Absence of a weekday in the WeeklySchedule means the professional
// does not work that day.
type DaySchedule struct {
	Start  string          `json:"start"`
	End    string          `json:"end"`
	Breaks []BreakInterval `json:"breaks,omitempty"`
}

// WeeklySchedule maps weekday keys to day schedules.
type WeeklySchedule map[Weekday]*DaySchedule

// Service is a bookable offering. ProfessionalIDs is the capability set: who
// can perform it.
type Service struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Duration        int      `json:"duration_minutes"`
	PriceCents      int64    `json:"price_cents"`
	Description     string   `json:"description,omitempty"`
	Active          bool     `json:"active"`
	ProfessionalIDs []string `json:"professional_ids"`
}

// EntityID implements the store's keyed-entity contract.
func (s Service) EntityID() string { return s.ID }

// Validate checks service invariants at mutation time.
func (s Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrMissingName
	}
	if s.Duration <= 0 {
		return ErrInvalidDuration
	}
	if s.PriceCents < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Professional performs services according to a weekly schedule.
type Professional struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Specialty    string         `json:"specialty,omitempty"`
	Active       bool           `json:"active"`
	WorkingHours WeeklySchedule `json:"working_hours,omitempty"`
}

// EntityID implements the store's keyed-entity contract.
func (p Professional) EntityID() string { return p.ID }

// Validate checks the professional and every present day schedule. Malformed
// schedules are rejected here so the availability engine never sees one.
func (p Professional) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrMissingName
	}
	for day, sched := range p.WorkingHours {
		if sched == nil {
			continue
		}
		if err := sched.validate(); err != nil {
			return fmt.Errorf("%w: %s", err, day)
		}
	}
	return nil
}

func (d *DaySchedule) validate() error {
	start, err := MinutesOfDay(d.Start)
	if err != nil {
		return ErrInvalidSchedule
	}
	end, err := MinutesOfDay(d.End)
	if err != nil {
		return ErrInvalidSchedule
	}
	if start >= end {
		return ErrInvalidSchedule
	}
	for _, b := range d.Breaks {
		bs, err := MinutesOfDay(b.Start)
		if err != nil {
			return ErrInvalidSchedule
		}
		be, err := MinutesOfDay(b.End)
		if err != nil {
			return ErrInvalidSchedule
		}
		if bs >= be || bs < start || be > end {
			return ErrInvalidSchedule
		}
	}
	return nil
}

// Status is an appointment's lifecycle state. Transitions between any two
// states are allowed; a cancelled appointment can be reopened.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a booked slot. Duration and price are captured at booking
// time and stay frozen even if the service changes later; ServiceID and
// ProfessionalID are not enforced referentially, so lookups of deleted
// targets must degrade to a placeholder.
type Appointment struct {
	ID             string    `json:"id"`
	ServiceID      string    `json:"service_id"`
	ProfessionalID string    `json:"professional_id"`
	ClientName     string    `json:"client_name"`
	ClientPhone    string    `json:"client_phone"`
	Date           string    `json:"date"` // YYYY-MM-DD, no time zone
	Time           string    `json:"time"` // HH:MM, slot start
	Duration       int       `json:"duration_minutes"`
	PriceCents     int64     `json:"price_cents"`
	Status         Status    `json:"status"`
	CreatorID      string    `json:"creator_id"`
	CreatedAt      time.Time `json:"created_at"`
	Notes          string    `json:"notes,omitempty"`
}

// EntityID implements the store's keyed-entity contract.
func (a Appointment) EntityID() string { return a.ID }

// MinutesOfDay parses "HH:MM" into minutes since midnight.
func MinutesOfDay(hhmm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	return h*60 + m, nil
}

// FormatMinutes renders minutes since midnight as "HH:MM".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseDate parses a calendar day in the store's YYYY-MM-DD format.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}
