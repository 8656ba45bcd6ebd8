package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	id := args[0]

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.Rm(cmd.Context(), id); err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", id)
}
