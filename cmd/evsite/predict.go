package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/smartcity/evsite/internal/domain"
	"github.com/smartcity/evsite/internal/service"
)

var predictCmd = &cobra.Command{
	Use:   "predict [file]",
	Short: "Analyze one location record (JSON file, or stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		var loc domain.LocationRecord
		if err := json.Unmarshal(data, &loc); err != nil {
			return eris.Wrap(err, "predict: decode location")
		}

		registry := loadRegistry(cmd.Context(), cfg)

		analysis, err := service.NewPredictionService(registry, cfg.Batch.MaxConcurrency).Analyze(cmd.Context(), loc)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), analysis)
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, eris.Wrap(err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", args[0])
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
