package service

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/smartcity/evsite/internal/domain"
)

// CentroidClusterer assigns the index of the nearest centroid. Features are
// divided by scale before distances are taken.
type CentroidClusterer struct {
	scaled [][]float64 // centroids already divided by scale
	scale  []float64
}

// NewCentroidClusterer builds a clusterer. A zero scale entry is treated as 1.
func NewCentroidClusterer(centroids []domain.FeatureVector, scale *domain.FeatureVector) (*CentroidClusterer, error) {
	if len(centroids) == 0 {
		return nil, eris.New("cluster: at least one centroid is required")
	}

	c := &CentroidClusterer{scale: make([]float64, domain.FeatureCount)}
	for i := range c.scale {
		c.scale[i] = 1
		if scale != nil && scale[i] != 0 {
			c.scale[i] = scale[i]
		}
	}
	for _, centroid := range centroids {
		c.scaled = append(c.scaled, c.scaleFeatures(centroid))
	}
	return c, nil
}

func (c *CentroidClusterer) scaleFeatures(v domain.FeatureVector) []float64 {
	out := v.Slice()
	floats.Div(out, c.scale)
	return out
}

// AssignCluster returns the nearest centroid index.
func (c *CentroidClusterer) AssignCluster(_ context.Context, features domain.FeatureVector) (int, error) {
	x := c.scaleFeatures(features)
	best, bestDist := -1, math.Inf(1)
	for id, centroid := range c.scaled {
		if dist := floats.Distance(x, centroid, 2); dist < bestDist {
			best, bestDist = id, dist
		}
	}
	if best < 0 {
		return 0, eris.New("cluster: features are not comparable to any centroid")
	}
	return best, nil
}

// archetypePrototypes are representative sites for each archetype, in id order.
var archetypePrototypes = []domain.LocationAttributes{
	{ // Premium Urban
		DailyVehicles: 20000, PopulationDensity: 10000, AvgIncome: 120000,
		CommercialScore: 80, ResidentialScore: 60, IndustrialScore: 10,
		HighwayDistance: 3, MallDistance: 1, OfficeDistance: 0.5,
		EVAdoption: 25, SolarPotential: 60, LandCost: 800000,
		ElectricityRate: 0.15, SubsidyAvailable: 20, Competition: 2,
	},
	{ // Commercial Hub
		DailyVehicles: 15000, PopulationDensity: 6000, AvgIncome: 70000,
		CommercialScore: 95, ResidentialScore: 30, IndustrialScore: 20,
		HighwayDistance: 4, MallDistance: 0.3, OfficeDistance: 0.5,
		EVAdoption: 12, SolarPotential: 55, LandCost: 600000,
		ElectricityRate: 0.13, SubsidyAvailable: 10, Competition: 5,
	},
	{ // Residential Area
		DailyVehicles: 5000, PopulationDensity: 4000, AvgIncome: 65000,
		CommercialScore: 25, ResidentialScore: 90, IndustrialScore: 5,
		HighwayDistance: 8, MallDistance: 4, OfficeDistance: 5,
		EVAdoption: 10, SolarPotential: 70, LandCost: 250000,
		ElectricityRate: 0.12, SubsidyAvailable: 10, Competition: 2,
	},
	{ // Highway Corridor
		DailyVehicles: 40000, PopulationDensity: 800, AvgIncome: 55000,
		CommercialScore: 30, ResidentialScore: 15, IndustrialScore: 40,
		HighwayDistance: 0.3, MallDistance: 10, OfficeDistance: 12,
		EVAdoption: 8, SolarPotential: 80, LandCost: 150000,
		ElectricityRate: 0.10, SubsidyAvailable: 15, Competition: 1,
	},
	{ // Developing Area
		DailyVehicles: 3000, PopulationDensity: 1200, AvgIncome: 40000,
		CommercialScore: 15, ResidentialScore: 35, IndustrialScore: 25,
		HighwayDistance: 15, MallDistance: 12, OfficeDistance: 10,
		EVAdoption: 3, SolarPotential: 50, LandCost: 80000,
		ElectricityRate: 0.11, SubsidyAvailable: 0, Competition: 0,
	},
}

// FitPrototypeClusterer fits the fallback clusterer: one centroid per
// archetype prototype, with features scaled by their spread across prototypes.
func FitPrototypeClusterer() *CentroidClusterer {
	centroids := make([]domain.FeatureVector, len(archetypePrototypes))
	for i, p := range archetypePrototypes {
		centroids[i] = BuildFeatures(p)
	}

	var scale domain.FeatureVector
	column := make([]float64, len(centroids))
	for f := range scale {
		for i, c := range centroids {
			column[i] = c[f]
		}
		_, scale[f] = stat.PopMeanStdDev(column, nil)
	}

	// Centroids are non-empty, so construction cannot fail.
	c, _ := NewCentroidClusterer(centroids, &scale)
	return c
}
