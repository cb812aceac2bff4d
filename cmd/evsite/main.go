package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcity/evsite/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "evsite",
	Short: "EV charging site viability and ROI planner",
	Long:  "Scores candidate EV charging locations: ROI projection, location archetype, viability grade and recommendations.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return eris.Wrap(err, "load .env")
		}

		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
