package domain

import (
	"github.com/mitchellh/mapstructure"
	"github.com/rotisserie/eris"
)

// RequiredFields lists the location attributes every request must carry.
var RequiredFields = []string{"daily_vehicles", "population_density", "avg_income"}

// LocationRecord is the raw attribute mapping supplied by the caller for one
// candidate charging site. Only RequiredFields are structurally required.
type LocationRecord map[string]any

// Has reports whether the attribute key is present, even with a null value.
func (r LocationRecord) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// MissingFields returns the required fields absent from the record, in
// RequiredFields order.
func (r LocationRecord) MissingFields() []string {
	var missing []string
	for _, field := range RequiredFields {
		if !r.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Validate returns a *ValidationError when required fields are missing.
func (r LocationRecord) Validate() error {
	if missing := r.MissingFields(); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Name returns the caller-supplied location name or fallback.
func (r LocationRecord) Name(fallback string) string {
	if name, ok := r["location_name"].(string); ok && name != "" {
		return name
	}
	return fallback
}

// LocationAttributes is the typed view of a LocationRecord with defaults applied.
type LocationAttributes struct {
	LocationName string `mapstructure:"location_name"`

	// Traffic and demographics
	DailyVehicles     float64 `mapstructure:"daily_vehicles"`
	PopulationDensity float64 `mapstructure:"population_density"`
	AvgIncome         float64 `mapstructure:"avg_income"`

	// Land use scores (0-100)
	CommercialScore  float64 `mapstructure:"commercial_score"`
	ResidentialScore float64 `mapstructure:"residential_score"`
	IndustrialScore  float64 `mapstructure:"industrial_score"`

	// Distances
	HighwayDistance float64 `mapstructure:"highway_distance"`
	MallDistance    float64 `mapstructure:"mall_distance"`
	OfficeDistance  float64 `mapstructure:"office_distance"`

	// EV market and site economics
	EVAdoption       float64 `mapstructure:"ev_adoption"`
	SolarPotential   float64 `mapstructure:"solar_potential"`
	LandCost         float64 `mapstructure:"land_cost"`
	ElectricityRate  float64 `mapstructure:"electricity_rate"`
	SubsidyAvailable float64 `mapstructure:"subsidy_available"`
	Competition      float64 `mapstructure:"competition"`

	// Planned site options and risk flags
	FastCharging    bool `mapstructure:"fast_charging"`
	SolarPowered    bool `mapstructure:"solar_powered"`
	Amenities       bool `mapstructure:"amenities"`
	HighCompetition bool `mapstructure:"high_competition"`
	HighLandCost    bool `mapstructure:"high_land_cost"`

	vehiclesSet   bool
	evAdoptionSet bool
}

// DefaultAttributes returns the values used for attributes the caller omits.
func DefaultAttributes() LocationAttributes {
	return LocationAttributes{
		HighwayDistance: 10,
		MallDistance:    5,
		OfficeDistance:  3,
	}
}

// Attributes decodes the record into typed attributes. Numeric strings and
// 0/1 flags are accepted; values that cannot be coerced are an error.
func (r LocationRecord) Attributes() (LocationAttributes, error) {
	attrs := DefaultAttributes()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &attrs,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return LocationAttributes{}, eris.Wrap(err, "domain: build record decoder")
	}
	if err := dec.Decode(map[string]any(r)); err != nil {
		return LocationAttributes{}, eris.Wrap(err, "domain: decode location record")
	}
	attrs.vehiclesSet = r["daily_vehicles"] != nil
	attrs.evAdoptionSet = r["ev_adoption"] != nil

	return attrs, nil
}

// RevenueVehicles is the daily vehicle count used for revenue projection,
// 1000 when the record did not supply one.
func (a LocationAttributes) RevenueVehicles() float64 {
	if !a.vehiclesSet {
		return 1000
	}
	return a.DailyVehicles
}

// RevenueEVAdoption is the EV adoption rate used for revenue projection,
// 5 when the record did not supply one.
func (a LocationAttributes) RevenueEVAdoption() float64 {
	if !a.evAdoptionSet {
		return 5
	}
	return a.EVAdoption
}

// SampleLocation returns a complete example record for API consumers.
func SampleLocation() LocationRecord {
	return LocationRecord{
		"location_name":      "Downtown Business District",
		"daily_vehicles":     15000,
		"population_density": 8500,
		"avg_income":         85000,
		"commercial_score":   85,
		"residential_score":  60,
		"industrial_score":   20,
		"highway_distance":   2.5,
		"mall_distance":      0.5,
		"office_distance":    0.2,
		"ev_adoption":        15,
		"solar_potential":    75,
		"land_cost":          500000,
		"electricity_rate":   0.12,
		"subsidy_available":  30,
		"competition":        2,
		"fast_charging":      true,
		"solar_powered":      true,
		"amenities":          true,
		"high_competition":   false,
		"high_land_cost":     false,
	}
}
