package booking

import (
	"domostay/models"
	"domostay/utils"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// rate is a convenience for optional nightly-rate fields.
func rate(v int64) *int64 { return &v }

// defaultUnits is the built-in unit catalog, used when configuration does not
// override it. Rates are COP per night for the base occupancy.
var defaultUnits = []models.Unit{
	{
		ID:              "antares",
		DisplayName:     "Antares",
		Description:     "Family dome with private jacuzzi and panoramic view",
		MaxGuests:       6,
		BaseNightlyRate: 650000,
	},
	{
		ID:                    "polaris",
		DisplayName:           "Polaris",
		Description:           "Spacious dome with fireplace and private terrace",
		MaxGuests:             2,
		BaseNightlyRate:       550000,
		ExtraGuestNightlyRate: rate(100000),
	},
	{
		ID:              "sirius",
		DisplayName:     "Sirius",
		Description:     "Single-floor dome for couples",
		MaxGuests:       2,
		BaseNightlyRate: 450000,
	},
	{
		ID:              "centaury",
		DisplayName:     "Centaury",
		Description:     "Cozy dome with all the basic comforts",
		MaxGuests:       2,
		BaseNightlyRate: 450000,
	},
}

// Catalog is the read-only unit lookup. It is built once at startup; there is
// no write path.
type Catalog struct {
	units map[string]models.Unit
	order []string
}

// NewCatalog builds a catalog from an explicit unit list.
func NewCatalog(units []models.Unit) *Catalog {
	c := &Catalog{units: make(map[string]models.Unit, len(units))}
	for _, u := range units {
		if _, dup := c.units[u.ID]; dup {
			continue
		}
		c.units[u.ID] = u
		c.order = append(c.order, u.ID)
	}
	return c
}

// LoadCatalog builds the catalog from the "units" configuration key, falling
// back to the built-in set when none is configured.
func LoadCatalog() *Catalog {
	if !viper.IsSet("units") {
		return NewCatalog(defaultUnits)
	}
	var units []models.Unit
	if err := viper.UnmarshalKey("units", &units); err != nil || len(units) == 0 {
		utils.GetLogger().Warn("invalid units configuration, using built-in catalog",
			zap.Error(err))
		return NewCatalog(defaultUnits)
	}
	return NewCatalog(units)
}

// Lookup returns the unit for id, or a NotFoundError for unknown ids.
func (c *Catalog) Lookup(id string) (models.Unit, error) {
	u, ok := c.units[id]
	if !ok {
		return models.Unit{}, &NotFoundError{Resource: "unit", ID: id}
	}
	return u, nil
}

// Units returns all units in catalog order.
func (c *Catalog) Units() []models.Unit {
	out := make([]models.Unit, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.units[id])
	}
	return out
}
