package models

// AbsoluteGuestCeiling caps guest_count for every unit, surcharge or not.
// Backed by the store-level check constraint on reservations.guest_count.
const AbsoluteGuestCeiling = 20

// Unit is a bookable lodging unit. The catalog is loaded once at startup
// from configuration and is read-only afterwards.
type Unit struct {
	ID          string `mapstructure:"id" json:"id"`
	DisplayName string `mapstructure:"display_name" json:"displayName"`
	Description string `mapstructure:"description" json:"description,omitempty"`
	// MaxGuests is the base occupancy included in the nightly rate.
	MaxGuests int `mapstructure:"max_guests" json:"maxGuests"`
	// BaseNightlyRate is in currency minor units (COP).
	BaseNightlyRate int64 `mapstructure:"base_nightly_rate" json:"baseNightlyRate"`
	// ExtraGuestNightlyRate, when set, lets the unit accept guests beyond
	// MaxGuests (up to AbsoluteGuestCeiling) at a per-guest nightly surcharge.
	// Units without it reject guest counts above MaxGuests.
	ExtraGuestNightlyRate *int64 `mapstructure:"extra_guest_nightly_rate" json:"extraGuestNightlyRate,omitempty"`
}

// GuestCeiling returns the largest guest_count the unit accepts.
func (u Unit) GuestCeiling() int {
	if u.ExtraGuestNightlyRate != nil {
		return AbsoluteGuestCeiling
	}
	return u.MaxGuests
}
