package models

import (
	"strings"
	"time"
)

// Reservation is a confirmed booking of one unit for a half-open date range
// [EntryDate, ExitDate). Rows are created only by the reservation coordinator.
type Reservation struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UnitID       string `gorm:"size:50;not null;index:idx_reservations_unit_dates,priority:1;uniqueIndex:uq_reservations_contact_unit_dates,priority:2" json:"unitId"`
	ContactPhone string `gorm:"size:50;not null;uniqueIndex:uq_reservations_contact_unit_dates,priority:1" json:"contactPhone"`
	ContactEmail string `gorm:"size:100" json:"contactEmail"`
	GuestCount   int    `gorm:"not null;check:chk_guest_count,guest_count >= 1 AND guest_count <= 20" json:"guestCount"`
	// Dates are calendar days stored at UTC midnight.
	EntryDate     time.Time `gorm:"type:date;not null;index:idx_reservations_unit_dates,priority:2;uniqueIndex:uq_reservations_contact_unit_dates,priority:3" json:"entryDate"`
	ExitDate      time.Time `gorm:"type:date;not null;check:chk_exit_after_entry,exit_date > entry_date;index:idx_reservations_unit_dates,priority:3;uniqueIndex:uq_reservations_contact_unit_dates,priority:4" json:"exitDate"`
	PaymentMethod string    `gorm:"size:50;default:pending" json:"paymentMethod"`
	// Addons keeps the ordered add-on ids as a comma-joined string.
	Addons string `gorm:"size:255" json:"addons"`
	// TotalAmount is priced at commit time and persisted, never recomputed.
	TotalAmount  int64     `gorm:"not null;check:chk_total_amount,total_amount >= 0" json:"totalAmount"`
	SpecialNotes string    `gorm:"type:text" json:"specialNotes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AddonList splits the stored add-on string back into ordered ids.
func (r *Reservation) AddonList() []string {
	if r.Addons == "" {
		return nil
	}
	parts := strings.Split(r.Addons, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinAddons is the inverse of AddonList.
func JoinAddons(addons []string) string {
	return strings.Join(addons, ",")
}

// Overlaps reports whether the reservation's range intersects [start, end)
// under half-open semantics.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.EntryDate.Before(end) && r.ExitDate.After(start)
}

// ReservationStats is the aggregate view served to the dashboard.
type ReservationStats struct {
	Total        int64            `json:"total"`
	CurrentMonth int64            `json:"currentMonth"`
	PerUnit      map[string]int64 `json:"perUnit"`
}
