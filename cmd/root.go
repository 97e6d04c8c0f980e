package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ticker-crosswalk/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ticker-crosswalk",
	Short: "Ticker to company-id crosswalk builder",
	Long:  "Matches exchange ticker feeds against a canonical company registry: tiered name matching, heuristic rejection filters, interactive disambiguation, resumable persistence.",
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
