package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a brain from JSON",
		Long:  "Read a brain as JSON from stdin and save it as a new snapshot. Expects the format produced by dump.",
		Run:   runImport,
	}

	cmd.Flags().String("source", "import", "Snapshot source label")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snap, err := s.Import(cmd.Context(), data, source)
	if err != nil {
		exitErr("import", err)
	}
	logger.Info("imported snapshot", zap.String("id", snap.ID), zap.Int("topics", snap.Counts.Topics))

	printJSON(snap)
}
