package cli

import (
	"fmt"
	"strings"

	"github.com/rcliao/rivebrain/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search triggers and replies by keyword",
		Long:  "Search trigger patterns and reply text of a snapshot (latest by default).",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().String("snapshot", "", "Snapshot id (default: latest)")
	cmd.Flags().StringP("topic", "t", "", "Filter by topic")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	snapshot, _ := cmd.Flags().GetString("snapshot")
	topic, _ := cmd.Flags().GetString("topic")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		SnapshotID: snapshot,
		Query:      query,
		Topic:      topic,
		Limit:      limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(results)
}
