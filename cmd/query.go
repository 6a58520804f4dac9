package cmd

import (
	"fmt"
	"os"

	"github.com/agentic-research/flowdef/internal/definition"
	"github.com/spf13/cobra"
)

var (
	queryName        string
	queryCode        string
	queryCodeFile    string
	queryAttribute   string
	sectionAttribute string
)

var upsertQueryCmd = &cobra.Command{
	Use:   "upsert-query",
	Short: "Add a query to the bundle, or replace it in place if it exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		code := queryCode
		if queryCodeFile != "" {
			data, err := os.ReadFile(queryCodeFile)
			if err != nil {
				return fmt.Errorf("read code file: %w", err)
			}
			code = string(data)
		}
		if queryName == "" || code == "" {
			return fmt.Errorf("--name and --code (or --code-file) are required")
		}

		b, err := loadBundle(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		edited, diags := newEditor(cfg).AddQuery(b, definition.QueryEdit{
			Name:             queryName,
			Code:             code,
			Attribute:        queryAttribute,
			SectionAttribute: sectionAttribute,
		})
		reportDiags(log, diags)

		return saveBundle(cmd.Context(), cfg, log, edited)
	},
}

func init() {
	upsertQueryCmd.Flags().StringVar(&queryName, "name", "", "Query name")
	upsertQueryCmd.Flags().StringVar(&queryCode, "code", "", "Query expression")
	upsertQueryCmd.Flags().StringVar(&queryCodeFile, "code-file", "", "File containing the query expression")
	upsertQueryCmd.Flags().StringVar(&queryAttribute, "attribute", "", "Bracketed attribute literal for the declaration")
	upsertQueryCmd.Flags().StringVar(&sectionAttribute, "section-attribute", "", "Section-level attribute, installed once before the header")
	rootCmd.AddCommand(upsertQueryCmd)
}
