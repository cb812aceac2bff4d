package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcity/evsite/internal/domain"
	"github.com/smartcity/evsite/internal/report"
	"github.com/smartcity/evsite/internal/service"
	"github.com/smartcity/evsite/pkg/utils"
)

var (
	batchSummary bool
	batchXLSX    string
)

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: `Analyze a {"locations": [...]} JSON file (stdin when omitted)`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		var req struct {
			Locations []domain.LocationRecord `json:"locations"`
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return eris.Wrap(err, "batch: decode locations")
		}
		if len(req.Locations) == 0 {
			return eris.New("batch: no locations provided")
		}

		registry := loadRegistry(cmd.Context(), cfg)
		svc := service.NewPredictionService(registry, cfg.Batch.MaxConcurrency)

		bar := progressbar.NewOptions(len(req.Locations),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("analyzing locations"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		result, err := svc.PredictBatch(cmd.Context(), req.Locations,
			service.WithItemCallback(func(item domain.BatchItem) {
				if err := bar.Add(1); err != nil {
					zap.L().Debug("progress bar update failed", zap.Error(err))
				}
			}),
		)
		if err != nil {
			return err
		}
		_ = bar.Finish()

		if batchXLSX != "" {
			if err := report.WriteBatchXLSX(batchXLSX, result); err != nil {
				return err
			}
			zap.L().Info("batch report written", zap.String("path", batchXLSX))
		}

		if batchSummary {
			return printBatchSummary(cmd, result)
		}
		return writeJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	batchCmd.Flags().BoolVar(&batchSummary, "summary", false, "print a one-line summary per location instead of JSON")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "also write the results to an xlsx workbook")
	rootCmd.AddCommand(batchCmd)
}

func printBatchSummary(cmd *cobra.Command, result domain.BatchResult) error {
	out := cmd.OutOrStdout()
	for _, item := range result.Results {
		if item.Failed() {
			fmt.Fprintf(out, "%3d  %-32s  ERROR %s\n", item.LocationIndex, item.LocationName, item.Error)
			continue
		}
		fmt.Fprintf(out, "%3d  %-32s  score %5.1f  roi %5.1f%%  %-15s  %s\n",
			item.LocationIndex,
			item.LocationName,
			utils.RoundTo(item.ViabilityScore, 1),
			utils.RoundTo(item.Predictions.ROI.AnnualROI, 1),
			item.InvestmentGrade,
			item.Predictions.LocationType.ClusterName,
		)
	}
	_, err := fmt.Fprintf(out, "%d/%d locations analyzed\n", result.SuccessfulAnalysis, result.TotalLocations)
	return err
}
