// Package report exports batch analyses for offline review.
package report

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/smartcity/evsite/internal/domain"
)

const sheetName = "Site Analysis"

var batchColumns = []string{
	"Index", "Location", "Error",
	"Annual ROI (%)", "Payback (years)", "Break-even (months)", "Annual Revenue ($)",
	"Cluster", "Location Type", "Viability Score", "Investment Grade", "Risk Level",
	"Recommendations",
}

// WriteBatchXLSX writes one row per batch item, in input order, to path.
func WriteBatchXLSX(path string, result domain.BatchResult) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range batchColumns {
		header.AddCell().SetString(col)
	}

	for _, item := range result.Results {
		row := sheet.AddRow()
		row.AddCell().SetInt(item.LocationIndex)
		row.AddCell().SetString(item.LocationName)
		row.AddCell().SetString(item.Error)
		if item.Failed() {
			continue
		}

		roi := item.Predictions.ROI
		cluster := item.Predictions.LocationType
		row.AddCell().SetFloat(roi.AnnualROI)
		row.AddCell().SetFloat(roi.PaybackPeriod)
		row.AddCell().SetFloat(roi.BreakEvenMonths)
		row.AddCell().SetInt(int(roi.EstimatedAnnualRevenue))
		row.AddCell().SetInt(cluster.ClusterID)
		row.AddCell().SetString(cluster.ClusterName)
		row.AddCell().SetFloat(item.ViabilityScore)
		row.AddCell().SetString(item.InvestmentGrade)
		row.AddCell().SetString(item.RiskLevel)
		row.AddCell().SetString(strings.Join(item.Recommendations, "\n"))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}
