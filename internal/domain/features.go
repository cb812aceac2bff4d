package domain

// FeatureCount is the length of every FeatureVector.
const FeatureCount = 15

// Feature positions. Trained artifacts depend on this order.
const (
	FeatureTrafficDensity = iota
	FeaturePopulationDensity
	FeatureIncomeLevel
	FeatureCommercialScore
	FeatureResidentialScore
	FeatureIndustrialScore
	FeatureProximityHighway
	FeatureProximityMall
	FeatureProximityOffice
	FeatureEVAdoptionRate
	FeatureSolarPotential
	FeatureLandCost
	FeatureElectricityCost
	FeatureGovernmentSubsidy
	FeatureCompetitionScore
)

// FeatureNames holds the feature names in vector order.
var FeatureNames = [FeatureCount]string{
	"traffic_density",
	"population_density",
	"income_level",
	"commercial_score",
	"residential_score",
	"industrial_score",
	"proximity_highway",
	"proximity_mall",
	"proximity_office",
	"ev_adoption_rate",
	"solar_potential",
	"land_cost",
	"electricity_cost",
	"government_subsidy",
	"competition_score",
}

// FeatureVector is the normalized, fixed-order model input for one location.
type FeatureVector [FeatureCount]float64

// Named returns the features keyed by name.
func (v FeatureVector) Named() map[string]float64 {
	named := make(map[string]float64, FeatureCount)
	for i, name := range FeatureNames {
		named[name] = v[i]
	}
	return named
}

// Slice returns a copy of the vector as a slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

// FeatureOrder returns the feature names as a slice.
func FeatureOrder() []string {
	out := make([]string, FeatureCount)
	copy(out, FeatureNames[:])
	return out
}
