// Package reports aggregates booking data into the dashboard summary and
// the period performance report.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bellasalon/booking-platform/internal/booking"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

// placeholderName is shown when an appointment references a service or
// professional that has since been deleted.
const placeholderName = "N/A"

// Summary is the admin dashboard snapshot.
type Summary struct {
	TodayCount            int                   `json:"today_count"`
	TomorrowCount         int                   `json:"tomorrow_count"`
	CompletedRevenueCents int64                 `json:"completed_revenue_cents"`
	Upcoming              []booking.Appointment `json:"upcoming"`
}

// EntityStat aggregates completed appointments for one service or
// professional over a report period.
type EntityStat struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	AppointmentCount   int     `json:"appointment_count"`
	RevenueCents       int64   `json:"revenue_cents"`
	TotalMinutes       int     `json:"total_minutes"`
	AverageTicketCents int64   `json:"average_ticket_cents"`
	UtilizationPct     float64 `json:"utilization_pct,omitempty"`
}

// PeriodReport covers appointments whose date falls inside [Start, End].
type PeriodReport struct {
	Start              string       `json:"start"`
	End                string       `json:"end"`
	TotalCount         int          `json:"total_count"`
	CompletedCount     int          `json:"completed_count"`
	RevenueCents       int64        `json:"revenue_cents"`
	AverageTicketCents int64        `json:"average_ticket_cents"`
	Services           []EntityStat `json:"services"`
	Professionals      []EntityStat `json:"professionals"`
}

// Reporter computes summaries and reports from the booking store.
type Reporter struct {
	store  *booking.Store
	logger *logging.Logger
	now    func() time.Time
}

// NewReporter creates a reporter.
func NewReporter(store *booking.Store, logger *logging.Logger) *Reporter {
	if store == nil {
		panic("reports: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Reporter{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (r *Reporter) WithClock(now func() time.Time) *Reporter {
	r.now = now
	return r
}

// Summary builds the dashboard snapshot: appointment counts for today and
// tomorrow, all-time completed revenue, and the next five scheduled
// appointments in chronological order.
func (r *Reporter) Summary(ctx context.Context) (*Summary, error) {
	appointments, err := r.store.Appointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("reports: load appointments: %w", err)
	}

	now := r.now()
	today := now.Format("2006-01-02")
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")

	s := &Summary{Upcoming: []booking.Appointment{}}
	for _, apt := range appointments {
		if apt.Status != booking.StatusCancelled {
			switch apt.Date {
			case today:
				s.TodayCount++
			case tomorrow:
				s.TomorrowCount++
			}
		}
		if apt.Status == booking.StatusCompleted {
			s.CompletedRevenueCents += apt.PriceCents
		}
		if apt.Status == booking.StatusScheduled && apt.Date >= today {
			s.Upcoming = append(s.Upcoming, apt)
		}
	}

	sort.Slice(s.Upcoming, func(i, j int) bool {
		if s.Upcoming[i].Date != s.Upcoming[j].Date {
			return s.Upcoming[i].Date < s.Upcoming[j].Date
		}
		return s.Upcoming[i].Time < s.Upcoming[j].Time
	})
	if len(s.Upcoming) > 5 {
		s.Upcoming = s.Upcoming[:5]
	}
	return s, nil
}

// utilizationDenominator approximates eight working hours over twenty-two
// working days, in minutes.
const utilizationDenominator = 8 * 60 * 22

// Period builds the performance report for appointments dated within
// [start, end]. Revenue counts only completed appointments; deleted
// services and professionals appear under a placeholder name with the
// frozen price and duration captured at booking time.
func (r *Reporter) Period(ctx context.Context, start, end string) (*PeriodReport, error) {
	if _, err := booking.ParseDate(start); err != nil {
		return nil, fmt.Errorf("reports: %w", err)
	}
	if _, err := booking.ParseDate(end); err != nil {
		return nil, fmt.Errorf("reports: %w", err)
	}
	if end < start {
		return nil, fmt.Errorf("reports: %w: end before start", booking.ErrInvalidDate)
	}

	appointments, err := r.store.Appointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("reports: load appointments: %w", err)
	}
	services, err := r.store.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("reports: load services: %w", err)
	}
	professionals, err := r.store.Professionals(ctx)
	if err != nil {
		return nil, fmt.Errorf("reports: load professionals: %w", err)
	}

	serviceNames := make(map[string]string, len(services))
	for _, svc := range services {
		serviceNames[svc.ID] = svc.Name
	}
	professionalNames := make(map[string]string, len(professionals))
	for _, pro := range professionals {
		professionalNames[pro.ID] = pro.Name
	}

	report := &PeriodReport{Start: start, End: end}
	byService := make(map[string]*EntityStat)
	byProfessional := make(map[string]*EntityStat)

	for _, apt := range appointments {
		if apt.Date < start || apt.Date > end {
			continue
		}
		report.TotalCount++
		if apt.Status != booking.StatusCompleted {
			continue
		}
		report.CompletedCount++
		report.RevenueCents += apt.PriceCents

		accumulate(byService, apt.ServiceID, serviceNames, apt)
		accumulate(byProfessional, apt.ProfessionalID, professionalNames, apt)
	}

	if report.CompletedCount > 0 {
		report.AverageTicketCents = report.RevenueCents / int64(report.CompletedCount)
	}

	report.Services = finalize(byService, false)
	report.Professionals = finalize(byProfessional, true)
	return report, nil
}

func accumulate(stats map[string]*EntityStat, id string, names map[string]string, apt booking.Appointment) {
	stat, ok := stats[id]
	if !ok {
		name, found := names[id]
		if !found {
			name = placeholderName
		}
		stat = &EntityStat{ID: id, Name: name}
		stats[id] = stat
	}
	stat.AppointmentCount++
	stat.RevenueCents += apt.PriceCents
	stat.TotalMinutes += apt.Duration
}

func finalize(stats map[string]*EntityStat, withUtilization bool) []EntityStat {
	out := make([]EntityStat, 0, len(stats))
	for _, stat := range stats {
		if stat.AppointmentCount > 0 {
			stat.AverageTicketCents = stat.RevenueCents / int64(stat.AppointmentCount)
		}
		if withUtilization && stat.TotalMinutes > 0 {
			pct := float64(stat.TotalMinutes) / utilizationDenominator * 100
			if pct > 100 {
				pct = 100
			}
			stat.UtilizationPct = pct
		}
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppointmentCount != out[j].AppointmentCount {
			return out[i].AppointmentCount > out[j].AppointmentCount
		}
		return out[i].ID < out[j].ID
	})
	return out
}
