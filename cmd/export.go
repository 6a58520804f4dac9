package cmd

import (
	"fmt"

	"github.com/agentic-research/flowdef/internal/export"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Write the bundle's decoded parts as files under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		b, err := loadBundle(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		if err := export.WriteParts(osfs.New(args[0]), ".", b); err != nil {
			return err
		}
		fmt.Printf("Exported %d parts to %s\n", len(b.Parts), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Rebuild a bundle from an exported directory and save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		b, err := export.ReadParts(osfs.New(args[0]), ".")
		if err != nil {
			return err
		}
		return saveBundle(cmd.Context(), cfg, log, b)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
