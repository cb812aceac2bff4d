package service

import "github.com/smartcity/evsite/internal/domain"

// Unit scales applied to raw attributes.
const (
	vehiclesPerTrafficUnit = 1000.0
	incomePerLevelUnit     = 1000.0
	landCostPerUnit        = 100000.0
)

// BuildFeatures maps location attributes to the fixed-order model input.
// It is a pure function; defaults were applied when the attributes were decoded.
func BuildFeatures(a domain.LocationAttributes) domain.FeatureVector {
	var v domain.FeatureVector

	v[domain.FeatureTrafficDensity] = a.DailyVehicles / vehiclesPerTrafficUnit
	v[domain.FeaturePopulationDensity] = a.PopulationDensity
	v[domain.FeatureIncomeLevel] = a.AvgIncome / incomePerLevelUnit

	v[domain.FeatureCommercialScore] = a.CommercialScore
	v[domain.FeatureResidentialScore] = a.ResidentialScore
	v[domain.FeatureIndustrialScore] = a.IndustrialScore

	v[domain.FeatureProximityHighway] = a.HighwayDistance
	v[domain.FeatureProximityMall] = a.MallDistance
	v[domain.FeatureProximityOffice] = a.OfficeDistance

	v[domain.FeatureEVAdoptionRate] = a.EVAdoption
	v[domain.FeatureSolarPotential] = a.SolarPotential
	v[domain.FeatureLandCost] = a.LandCost / landCostPerUnit
	v[domain.FeatureElectricityCost] = a.ElectricityRate
	v[domain.FeatureGovernmentSubsidy] = a.SubsidyAvailable
	v[domain.FeatureCompetitionScore] = a.Competition

	return v
}
