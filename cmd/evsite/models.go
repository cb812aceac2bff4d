package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show which ROI and clustering models would be loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := loadRegistry(cmd.Context(), cfg)

		out := cmd.OutOrStdout()
		for _, m := range registry.Models() {
			source := m.Source
			if source == "" {
				source = "-"
			}
			fmt.Fprintf(out, "%-18s %-28s %-8s %s\n", m.Name, m.Type, m.Status, source)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
