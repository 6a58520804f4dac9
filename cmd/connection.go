package cmd

import (
	"fmt"

	"github.com/agentic-research/flowdef/internal/definition"
	"github.com/spf13/cobra"
)

var (
	connKind       string
	connPath       string
	connID         string
	resolveCluster bool
)

var addConnectionCmd = &cobra.Command{
	Use:   "add-connection",
	Short: "Register an external connection reference in the bundle metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if connID == "" || connKind == "" {
			return fmt.Errorf("--connection-id and --kind are required")
		}

		b, err := loadBundle(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		var resolver definition.ClusterResolver
		if resolveCluster {
			resolver = newRemote(cfg, log)
		}
		edited, diags := newEditor(cfg).AddConnection(cmd.Context(), b, definition.ConnectionSpec{
			Kind:         connKind,
			Path:         connPath,
			ConnectionID: connID,
		}, resolver)
		reportDiags(log, diags)

		return saveBundle(cmd.Context(), cfg, log, edited)
	},
}

func init() {
	addConnectionCmd.Flags().StringVar(&connKind, "kind", "", "Connection kind, e.g. SQL")
	addConnectionCmd.Flags().StringVar(&connPath, "path", "", "Connection path, e.g. server;database")
	addConnectionCmd.Flags().StringVar(&connID, "connection-id", "", "External connection id")
	addConnectionCmd.Flags().BoolVar(&resolveCluster, "resolve-cluster", false, "Look up the gateway cluster and store a composite id")
	rootCmd.AddCommand(addConnectionCmd)
}
