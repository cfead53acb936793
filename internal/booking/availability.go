package booking

// The candidate grid is salon-wide: every conceivable slot start between
// opening and closing bounds at a fixed step, independent of any one
// professional.
const (
	gridOpenMinutes  = 8 * 60  // 08:00
	gridCloseMinutes = 18 * 60 // 18:00, exclusive; last candidate 17:30
	gridStepMinutes  = 30
)

// AvailableSlots computes the bookable start times for a professional, a
// service and a calendar day, given the professional's existing appointments.
// Pure: no mutation, no subscription; callers pass a current snapshot.
//
// A candidate survives when the professional works that weekday, the whole
// service fits inside the working window, the service interval overlaps no
// break, and no non-cancelled appointment already starts at that time. The
// conflict test matches start times exactly at the grid granularity; it is a
// deliberate simplification over true interval overlap.
//
// The AnyProfessionalID pseudo-entity has no working hours and returns the
// full grid.
func AvailableSlots(pro Professional, svc Service, date string, appointments []Appointment) ([]string, error) {
	grid := candidateGrid()
	if pro.ID == AnyProfessionalID {
		return grid, nil
	}

	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	sched := pro.WorkingHours[WeekdayOf(day)]
	if sched == nil {
		return []string{}, nil
	}

	// Schedules are validated at mutation time; an unparseable one here is
	// treated as closed rather than failing the query.
	dayStart, err := MinutesOfDay(sched.Start)
	if err != nil {
		return []string{}, nil
	}
	dayEnd, err := MinutesOfDay(sched.End)
	if err != nil {
		return []string{}, nil
	}

	booked := make(map[string]struct{})
	for _, a := range appointments {
		if a.ProfessionalID == pro.ID && a.Date == date && a.Status != StatusCancelled {
			booked[a.Time] = struct{}{}
		}
	}

	slots := make([]string, 0, len(grid))
	for _, t := range grid {
		start, _ := MinutesOfDay(t)
		end := start + svc.Duration
		if start < dayStart || end > dayEnd {
			continue
		}
		if overlapsBreak(start, end, sched.Breaks) {
			continue
		}
		if _, taken := booked[t]; taken {
			continue
		}
		slots = append(slots, t)
	}
	return slots, nil
}

func candidateGrid() []string {
	grid := make([]string, 0, (gridCloseMinutes-gridOpenMinutes)/gridStepMinutes)
	for m := gridOpenMinutes; m < gridCloseMinutes; m += gridStepMinutes {
		grid = append(grid, FormatMinutes(m))
	}
	return grid
}

// overlapsBreak reports whether [start, end) intersects any break. The
// half-open intersection test unions overlapping breaks implicitly.
func overlapsBreak(start, end int, breaks []BreakInterval) bool {
	for _, b := range breaks {
		bs, err := MinutesOfDay(b.Start)
		if err != nil {
			continue
		}
		be, err := MinutesOfDay(b.End)
		if err != nil {
			continue
		}
		if max(start, bs) < min(end, be) {
			return true
		}
	}
	return false
}
