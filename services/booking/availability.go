package booking

import (
	"sort"
	"time"

	"domostay/models"
)

// MaxQueryDays bounds an availability query range.
const MaxQueryDays = 366

// AvailabilityQuery describes one availability lookup over the half-open
// range [Start, End).
type AvailabilityQuery struct {
	Start      time.Time
	End        time.Time
	UnitFilter string // optional unit id
	GuestCount int    // optional minimum guest count, 0 = no filter
}

func (q AvailabilityQuery) normalize() AvailabilityQuery {
	q.Start = models.Day(q.Start)
	q.End = models.Day(q.End)
	return q
}

func (q AvailabilityQuery) validate(catalog *Catalog) error {
	if q.End.Before(q.Start) {
		return NewValidationError("range", "range end precedes range start")
	}
	if models.NightsBetween(q.Start, q.End) > MaxQueryDays {
		return NewValidationError("range", "range exceeds 366 days")
	}
	if q.GuestCount < 0 {
		return NewValidationError("guestCount", "guest count cannot be negative")
	}
	if q.UnitFilter != "" {
		if _, err := catalog.Lookup(q.UnitFilter); err != nil {
			return err
		}
	}
	return nil
}

// filterUnits applies the unit filter and the guest-count capacity filter.
// Units whose ceiling (base occupancy, or the extended surcharge ceiling)
// cannot host the requested guests are excluded.
func filterUnits(units []models.Unit, q AvailabilityQuery) []models.Unit {
	var out []models.Unit
	for _, u := range units {
		if q.UnitFilter != "" && u.ID != q.UnitFilter {
			continue
		}
		if q.GuestCount > 0 && u.GuestCeiling() < q.GuestCount {
			continue
		}
		out = append(out, u)
	}
	return out
}

// buildPerDayReport is the pure availability calculator: it walks every
// calendar day of [q.Start, q.End) against the loaded reservations. A unit is
// occupied on day d iff some reservation for it satisfies entry <= d < exit.
func buildPerDayReport(q AvailabilityQuery, units []models.Unit, reservations []models.Reservation) *models.PerDayReport {
	report := &models.PerDayReport{
		RangeStart:     q.Start.Format(models.DateLayout),
		RangeEnd:       q.End.Format(models.DateLayout),
		Days:           []models.DayOccupancy{},
		Units:          []models.UnitAvailability{},
		FullyAvailable: []string{},
	}
	if !q.Start.Before(q.End) || len(units) == 0 {
		return report
	}

	byUnit := make(map[string][]models.Reservation, len(units))
	for _, r := range reservations {
		byUnit[r.UnitID] = append(byUnit[r.UnitID], r)
	}

	freeDays := make(map[string][]string, len(units))
	for d := q.Start; d.Before(q.End); d = d.AddDate(0, 0, 1) {
		day := models.DayOccupancy{
			Date:     d.Format(models.DateLayout),
			Occupied: []string{},
			Free:     []string{},
		}
		for _, u := range units {
			occupied := false
			for _, r := range byUnit[u.ID] {
				if !d.Before(r.EntryDate) && d.Before(r.ExitDate) {
					occupied = true
					break
				}
			}
			if occupied {
				day.Occupied = append(day.Occupied, u.ID)
			} else {
				day.Free = append(day.Free, u.ID)
				freeDays[u.ID] = append(freeDays[u.ID], day.Date)
			}
		}
		report.Days = append(report.Days, day)
	}

	totalDays := len(report.Days)
	for _, u := range units {
		ua := models.UnitAvailability{
			UnitID:             u.ID,
			DisplayName:        u.DisplayName,
			MaxGuests:          u.MaxGuests,
			FreeDays:           freeDays[u.ID],
			FullyAvailable:     len(freeDays[u.ID]) == totalDays,
			ExactCapacityMatch: q.GuestCount > 0 && u.MaxGuests == q.GuestCount,
		}
		report.Units = append(report.Units, ua)
	}

	// Rank: most free days first, then exact capacity match, then catalog id.
	sort.SliceStable(report.Units, func(i, j int) bool {
		a, b := report.Units[i], report.Units[j]
		if len(a.FreeDays) != len(b.FreeDays) {
			return len(a.FreeDays) > len(b.FreeDays)
		}
		if a.ExactCapacityMatch != b.ExactCapacityMatch {
			return a.ExactCapacityMatch
		}
		return a.UnitID < b.UnitID
	})

	for _, ua := range report.Units {
		if ua.FullyAvailable {
			report.FullyAvailable = append(report.FullyAvailable, ua.UnitID)
		}
	}
	return report
}
