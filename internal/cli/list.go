package cli

import (
	"fmt"

	"github.com/rcliao/rivebrain/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots",
		Run:   runList,
	}

	cmd.Flags().StringP("source", "s", "", "Filter by source")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output snapshot ids")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snaps, err := s.List(cmd.Context(), store.ListParams{
		Source: source,
		Limit:  limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, sn := range snaps {
			fmt.Println(sn.ID)
		}
		return
	}

	if textOutput() {
		for _, sn := range snaps {
			fmt.Printf("%s  %-20s  v%g  %d topics  %d triggers\n",
				sn.ID, sn.Source, sn.Version, sn.Counts.Topics, sn.Counts.Triggers)
		}
		return
	}

	if len(snaps) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(snaps)
}
