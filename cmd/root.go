package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warroom/scoring-service/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "warroom",
	Short: "Submission grading service for competitive intelligence battles",
	Long:  "Grades team submissions against a reference dataset: field accuracy, speed, and source credibility roll up to a battle score with evidence collection and human-review escalation.",
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
