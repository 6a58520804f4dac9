package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List the queries and connections in a definition bundle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		b, err := loadBundle(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		summary := newEditor(cfg).Summarize(b)
		reportDiags(log, summary.Diags)

		if len(summary.Queries) == 0 {
			fmt.Println("No queries.")
		}
		for _, q := range summary.Queries {
			flags := ""
			if q.Hidden {
				flags = " (hidden)"
			}
			id := q.ID
			if id == "" {
				id = "-"
			}
			fmt.Printf("%s  %s%s\n", id, q.Name, flags)
		}
		if len(summary.Connections) > 0 {
			fmt.Println("Connections:")
			for _, c := range summary.Connections {
				fmt.Printf("  %s\n", c)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
