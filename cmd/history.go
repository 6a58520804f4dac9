package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/agentic-research/flowdef/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect local definition snapshots",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots for the configured item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		if cfg.HistoryPath == "" {
			return fmt.Errorf("no history_path configured")
		}
		h, err := store.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer func() { _ = h.Close() }()

		snaps, err := h.List(cmd.Context(), cfg.Workspace, cfg.Item)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("No snapshots.")
			return nil
		}
		for _, s := range snaps {
			fmt.Printf("%d  %s  %d parts\n", s.ID, s.TakenAt.Format(time.RFC3339), s.PartCount)
		}
		return nil
	},
}

var historyRestoreCmd = &cobra.Command{
	Use:   "restore [id]",
	Short: "Save the snapshot with the given id as the current definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if cfg.HistoryPath == "" {
			return fmt.Errorf("no history_path configured")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid snapshot id %q", args[0])
		}
		h, err := store.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer func() { _ = h.Close() }()

		b, err := h.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return saveBundle(cmd.Context(), cfg, log, b)
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRestoreCmd)
	rootCmd.AddCommand(historyCmd)
}
