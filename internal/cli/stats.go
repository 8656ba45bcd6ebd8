package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/rivebrain/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show snapshot and topic statistics",
		Long:  "Show database size, snapshot/trigger/reply totals and per-topic counts for the latest snapshot.",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if textOutput() {
		printStatsText(stats)
		return
	}
	printJSON(stats)
}

func printStatsText(st *store.Stats) {
	fmt.Printf("db:        %s (%d bytes)\n", st.DBPath, st.DBSizeBytes)
	fmt.Printf("snapshots: %d  triggers: %d  replies: %d\n", st.Snapshots, st.Triggers, st.Replies)
	if st.Latest == nil {
		return
	}
	fmt.Printf("latest:    %s  %s  v%g\n", st.Latest.ID, st.Latest.Source, st.Latest.Version)
	for _, t := range st.Topics {
		fmt.Printf("  %-20s %4d triggers %4d previous\n", t.Topic, t.Triggers, t.Previous)
	}
}
