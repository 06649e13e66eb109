package models

// AddonLine is one priced add-on in a quote. ID may differ from the
// requested id when a guest-count variant superseded it.
type AddonLine struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// PriceBreakdown is the itemized result of a quote. All amounts are in
// currency minor units (COP). The coordinator persists TotalAmount and keeps
// the rest for audit and display.
type PriceBreakdown struct {
	UnitID           string      `json:"unitId"`
	GuestCount       int         `json:"guestCount"`
	Nights           int         `json:"nights"`
	BaseAmount       int64       `json:"baseAmount"`
	ExtraGuestAmount int64       `json:"extraGuestAmount"`
	AddonLines       []AddonLine `json:"addonLines,omitempty"`
	AddonsAmount     int64       `json:"addonsAmount"`
	Subtotal         int64       `json:"subtotal"`
	DiscountPercent  int         `json:"discountPercent"`
	DiscountAmount   int64       `json:"discountAmount"`
	TotalAmount      int64       `json:"totalAmount"`
	Currency         string      `json:"currency"`
}
