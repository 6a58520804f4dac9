package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var setDocumentCmd = &cobra.Command{
	Use:   "set-document [mashup-file]",
	Short: "Replace the whole mashup document and resync the query metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		doc, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read mashup document: %w", err)
		}

		b, err := loadBundle(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		edited, diags := newEditor(cfg).SetDocument(b, string(doc))
		reportDiags(log, diags)

		return saveBundle(cmd.Context(), cfg, log, edited)
	},
}

func init() {
	rootCmd.AddCommand(setDocumentCmd)
}
