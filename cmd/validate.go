package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ticker-crosswalk/internal/store"
	"github.com/sells-group/ticker-crosswalk/internal/verify"
)

var validateMasterPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compare persisted mappings against a master list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		master, err := verify.LoadMaster(validateMasterPath)
		if err != nil {
			return eris.Wrap(err, "load master list")
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		mappings, err := st.LoadMappings(ctx)
		if err != nil {
			return eris.Wrap(err, "load mappings")
		}

		report := verify.Compare(mappings, master)
		fmt.Print(report.Summary())
		zap.L().Info("validate complete",
			zap.Int("total", report.Total),
			zap.Int("correct", report.Correct),
			zap.Int("wrong", len(report.Wrong)),
			zap.Int("missing", len(report.Missing)),
		)
		if len(report.Wrong) > 0 {
			return eris.Errorf("%d mappings disagree with the master list", len(report.Wrong))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateMasterPath, "master", "", "path to master list CSV/XLSX (required)")
	_ = validateCmd.MarkFlagRequired("master")
	rootCmd.AddCommand(validateCmd)
}
