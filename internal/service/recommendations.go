package service

import (
	"math"

	"github.com/smartcity/evsite/internal/domain"
)

// roiTier maps an exclusive ROI floor to a headline recommendation.
type roiTier struct {
	above   float64
	message string
}

var roiTiers = []roiTier{
	{25, "🚀 **Premium Investment** - Consider multiple charging bays"},
	{15, "✅ **Strong Investment** - Optimal for single station"},
	{8, "🔄 **Moderate Investment** - Start with basic infrastructure"},
	{math.Inf(-1), "⏸️ **Evaluate Carefully** - Consider alternative locations"},
}

var clusterRecommendations = map[int][]string{
	0: {
		"💎 **Install DC Fast Chargers** - Target premium customers",
		"🏢 **Add Lounge Amenities** - Increase dwell time revenue",
	},
	1: {
		"🛒 **Partner with Retailers** - Cross-promotion opportunities",
		"⏰ **Focus on Business Hours** - Peak pricing strategy",
	},
	3: {
		"⚡ **Ultra-Fast Charging** - Minimize stop time for travelers",
		"🍔 **Add Food Services** - Capture additional revenue",
	},
}

// siteRule adds a recommendation when the raw site attributes match.
type siteRule struct {
	matches func(domain.LocationAttributes) bool
	message string
}

var siteRules = []siteRule{
	{
		matches: func(a domain.LocationAttributes) bool { return a.SolarPotential > 70 },
		message: "☀️ **Add Solar Canopy** - Reduce electricity costs and carbon footprint",
	},
	{
		matches: func(a domain.LocationAttributes) bool { return a.EVAdoption < 10 },
		message: "📊 **Community Education** - Work with local EV groups to drive adoption",
	},
}

// ROIRecommendation returns the headline recommendation for an annual ROI.
func ROIRecommendation(roi float64) string {
	for _, t := range roiTiers {
		if roi > t.above {
			return t.message
		}
	}
	return roiTiers[len(roiTiers)-1].message
}

// Recommend builds the ordered recommendation list: ROI headline, archetype
// advice, then site-attribute advice.
func Recommend(roi domain.ROIResult, cluster domain.ClusterResult, site domain.LocationAttributes) []string {
	recs := []string{ROIRecommendation(roi.AnnualROI)}
	recs = append(recs, clusterRecommendations[cluster.ClusterID]...)
	for _, rule := range siteRules {
		if rule.matches(site) {
			recs = append(recs, rule.message)
		}
	}
	return recs
}
