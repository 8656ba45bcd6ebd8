package cli

import (
	"fmt"

	"github.com/rcliao/rivebrain/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the topic includes/inherits graph",
		Run:   runGraph,
	}

	cmd.Flags().String("snapshot", "", "Snapshot id (default: latest)")
	cmd.Flags().StringP("topic", "t", "", "Only edges from or to this topic")

	RootCmd.AddCommand(cmd)
}

func runGraph(cmd *cobra.Command, args []string) {
	snapshot, _ := cmd.Flags().GetString("snapshot")
	topic, _ := cmd.Flags().GetString("topic")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	edges, err := s.Edges(cmd.Context(), store.EdgeParams{
		SnapshotID: snapshot,
		Topic:      topic,
	})
	if err != nil {
		exitErr("graph", err)
	}

	if textOutput() {
		for _, e := range edges {
			fmt.Printf("%s --%s--> %s\n", e.Topic, e.Rel, e.Target)
		}
		return
	}

	if len(edges) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(edges)
}
