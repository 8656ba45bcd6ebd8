package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	cmd := &cobra.Command{
		Use:   "dump [id]",
		Short: "Print a stored brain",
		Long:  "Print a snapshot's brain as JSON (or YAML with --format yaml). Without an id the latest snapshot is used. JSON output can be fed back to import.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runDump,
	}

	RootCmd.AddCommand(cmd)
}

func runDump(cmd *cobra.Command, args []string) {
	id := ""
	if len(args) > 0 {
		id = args[0]
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if formatFlag == "yaml" {
		brain, _, err := s.Load(cmd.Context(), id)
		if err != nil {
			exitErr("dump", err)
		}
		out, err := yaml.Marshal(brain)
		if err != nil {
			exitErr("encode yaml", err)
		}
		fmt.Print(string(out))
		return
	}

	data, err := s.Export(cmd.Context(), id)
	if err != nil {
		exitErr("dump", err)
	}
	fmt.Println(string(data))
}
