package booking

import (
	"time"

	"domostay/models"
)

// addonDetails is a priced add-on service offered alongside a stay.
type addonDetails struct {
	ID    string
	Label string
	Price int64
	// CoupleVariant names the add-on that supersedes this one when the stay
	// is for two or more guests; SingleVariant is the reverse downgrade for
	// solo stays. A variant pair always resolves to exactly one priced line.
	CoupleVariant string
	SingleVariant string
}

// addonsMap is the static add-on price table, COP per service.
var addonsMap = map[string]addonDetails{
	"decoration": {
		ID:    "decoration",
		Label: "Special decoration",
		Price: 60000,
	},
	"massage": {
		ID:            "massage",
		Label:         "Relaxing massage",
		Price:         90000,
		CoupleVariant: "couples-massage",
	},
	"couples-massage": {
		ID:            "couples-massage",
		Label:         "Couples massage",
		Price:         180000,
		SingleVariant: "massage",
	},
	"sailboat": {
		ID:    "sailboat",
		Label: "Sailboat ride",
		Price: 150000,
	},
	"motorboat": {
		ID:    "motorboat",
		Label: "Shared motorboat ride",
		Price: 80000,
	},
	"montecillo-hike": {
		ID:    "montecillo-hike",
		Label: "Guided Montecillo hike",
		Price: 50000,
	},
	"pozo-azul-hike": {
		ID:    "pozo-azul-hike",
		Label: "Guided Pozo Azul hike",
		Price: 70000,
	},
}

// QuoteRequest is the input to the pricing engine.
type QuoteRequest struct {
	UnitID     string
	GuestCount int
	EntryDate  time.Time
	ExitDate   time.Time
	Addons     []string
}

// resolveAddon maps a requested add-on id to the variant that applies for the
// guest count, so a couple never gets both the single and couple line.
func resolveAddon(id string, guestCount int) (addonDetails, bool) {
	details, ok := addonsMap[id]
	if !ok {
		return addonDetails{}, false
	}
	if guestCount >= 2 && details.CoupleVariant != "" {
		details = addonsMap[details.CoupleVariant]
	} else if guestCount < 2 && details.SingleVariant != "" {
		details = addonsMap[details.SingleVariant]
	}
	return details, true
}

// Quote prices a prospective stay. It is a pure function over the catalog and
// the static add-on table: no store access, no side effects.
func (s *DefaultBookingService) Quote(req QuoteRequest) (*models.PriceBreakdown, error) {
	unit, err := s.Catalog.Lookup(req.UnitID)
	if err != nil {
		return nil, err
	}
	if err := validateGuestCount(unit, req.GuestCount); err != nil {
		return nil, err
	}
	entry, exit := models.Day(req.EntryDate), models.Day(req.ExitDate)
	if !exit.After(entry) {
		return nil, NewValidationError("dates", "exit date must be after entry date")
	}

	nights := models.NightsBetween(entry, exit)
	if nights < 1 {
		nights = 1
	}

	breakdown := &models.PriceBreakdown{
		UnitID:     unit.ID,
		GuestCount: req.GuestCount,
		Nights:     nights,
		BaseAmount: unit.BaseNightlyRate * int64(nights),
		Currency:   "COP",
	}

	// Surcharge counts guests beyond the base occupancy, only for units
	// that define an extra-guest rate.
	if unit.ExtraGuestNightlyRate != nil && req.GuestCount > unit.MaxGuests {
		extra := int64(req.GuestCount - unit.MaxGuests)
		breakdown.ExtraGuestAmount = *unit.ExtraGuestNightlyRate * extra * int64(nights)
	}

	seen := make(map[string]bool, len(req.Addons))
	for _, id := range req.Addons {
		details, ok := resolveAddon(id, req.GuestCount)
		if !ok {
			return nil, NewValidationError("addons", "unknown add-on: "+id)
		}
		if seen[details.ID] {
			continue
		}
		seen[details.ID] = true
		breakdown.AddonLines = append(breakdown.AddonLines, models.AddonLine{
			ID:     details.ID,
			Label:  details.Label,
			Amount: details.Price,
		})
		breakdown.AddonsAmount += details.Price
	}

	breakdown.Subtotal = breakdown.BaseAmount + breakdown.ExtraGuestAmount + breakdown.AddonsAmount

	// Long-stay discount, applied once to the full subtotal.
	switch {
	case nights >= 7:
		breakdown.DiscountPercent = 10
	case nights >= 4:
		breakdown.DiscountPercent = 5
	}
	breakdown.DiscountAmount = breakdown.Subtotal * int64(breakdown.DiscountPercent) / 100
	breakdown.TotalAmount = breakdown.Subtotal - breakdown.DiscountAmount

	return breakdown, nil
}

// validateGuestCount enforces the occupancy policy: units with an extra-guest
// rate accept up to the absolute ceiling with surcharge, others reject beyond
// their base occupancy.
func validateGuestCount(unit models.Unit, guestCount int) error {
	if guestCount < 1 {
		return NewValidationError("guestCount", "at least one guest is required")
	}
	if guestCount > unit.GuestCeiling() {
		return NewValidationError("guestCount",
			"guest count exceeds capacity of unit "+unit.ID)
	}
	return nil
}
