package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ticker-crosswalk/internal/store"
)

var exportOutPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export persisted mappings as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		mappings, err := st.LoadMappings(ctx)
		if err != nil {
			return eris.Wrap(err, "load mappings")
		}

		out, err := json.MarshalIndent(mappings, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode mappings")
		}
		out = append(out, '\n')

		if exportOutPath == "" || exportOutPath == "-" {
			_, err = os.Stdout.Write(out)
			return eris.Wrap(err, "write stdout")
		}
		if err := os.WriteFile(exportOutPath, out, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", exportOutPath)
		}
		zap.L().Info("export complete",
			zap.Int("mappings", len(mappings)),
			zap.String("path", exportOutPath),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOutPath, "out", "-", "output path (- for stdout)")
	rootCmd.AddCommand(exportCmd)
}
