package models

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DayOccupancy lists, for one calendar day, which units are taken and which
// are free among the units the query covered.
type DayOccupancy struct {
	Date     string   `json:"date"`
	Occupied []string `json:"occupied"`
	Free     []string `json:"free"`
}

// UnitAvailability summarizes one unit over the queried range.
type UnitAvailability struct {
	UnitID         string   `json:"unitId"`
	DisplayName    string   `json:"displayName"`
	MaxGuests      int      `json:"maxGuests"`
	FreeDays       []string `json:"freeDays"`
	FullyAvailable bool     `json:"fullyAvailable"`
	// ExactCapacityMatch is set when the query carried a guest count equal
	// to the unit's base occupancy; such units rank above roomier ones.
	ExactCapacityMatch bool `json:"exactCapacityMatch"`
}

// PerDayReport is the availability answer for a half-open range
// [RangeStart, RangeEnd). Units is the ranked summary: most free days first,
// exact capacity matches before over-capacity ones.
type PerDayReport struct {
	RangeStart     string             `json:"rangeStart"`
	RangeEnd       string             `json:"rangeEnd"`
	Days           []DayOccupancy     `json:"days"`
	Units          []UnitAvailability `json:"units"`
	FullyAvailable []string           `json:"fullyAvailable"`
}

// Clone returns a deep copy, so cached reports can be handed to callers
// without sharing mutable slices.
func (r *PerDayReport) Clone() *PerDayReport {
	out := *r
	out.Days = append([]DayOccupancy(nil), r.Days...)
	for i := range out.Days {
		out.Days[i].Occupied = append([]string(nil), out.Days[i].Occupied...)
		out.Days[i].Free = append([]string(nil), out.Days[i].Free...)
	}
	out.Units = append([]UnitAvailability(nil), r.Units...)
	for i := range out.Units {
		out.Units[i].FreeDays = append([]string(nil), out.Units[i].FreeDays...)
	}
	out.FullyAvailable = append([]string(nil), r.FullyAvailable...)
	return &out
}

// Day returns t normalized to a calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NightsBetween counts whole nights in [entry, exit).
func NightsBetween(entry, exit time.Time) int {
	return int(Day(exit).Sub(Day(entry)) / (24 * time.Hour))
}
