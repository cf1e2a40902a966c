package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strollerlabs/stroller-truth/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "stroller-truth",
	Short: "Provenance-aware stroller spec comparison engine",
	Long:  "Serves eligibility, disclosures, refusals, and comparison matrices over a trust-scored stroller dataset. No rankings: low-confidence and region-mismatched data is disclosed, never compared.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
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
