package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/rivebrain/internal/loader"
	"github.com/rcliao/rivebrain/internal/logging"
	"github.com/rcliao/rivebrain/internal/model"
	"github.com/rcliao/rivebrain/internal/parser"
	"github.com/rcliao/rivebrain/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "load [path]",
		Short: "Parse a document or directory of documents",
		Long:  "Parse a RiveScript file, or every document in a directory (begin.rs first), and report what was built.",
		Args:  cobra.ExactArgs(1),
		Run:   runLoad,
	}

	cmd.Flags().Bool("save", false, "Save the brain as a new snapshot")
	cmd.Flags().Bool("dump", false, "Print the whole brain instead of counts")
	cmd.Flags().Bool("strict", false, "Fail if the parser reported any warnings")
	cmd.Flags().String("source", "", "Snapshot source label (default: the path's base name)")

	RootCmd.AddCommand(cmd)
}

type loadResult struct {
	Path     string          `json:"path"`
	Counts   model.Counts    `json:"counts"`
	Warnings []string        `json:"warnings,omitempty"`
	Snapshot *model.Snapshot `json:"snapshot,omitempty"`
}

func runLoad(cmd *cobra.Command, args []string) {
	path := args[0]
	save, _ := cmd.Flags().GetBool("save")
	dump, _ := cmd.Flags().GetBool("dump")
	strict, _ := cmd.Flags().GetBool("strict")
	source, _ := cmd.Flags().GetString("source")

	collector := &parser.Collector{}
	brain, err := buildBrain(path, collector)
	if err != nil {
		var verr *parser.VersionError
		if errors.As(err, &verr) {
			logger.Error("unsupported document version",
				zap.String("file", verr.File),
				zap.Float64("declared", verr.Declared),
				zap.Float64("supported", verr.Supported))
		}
		exitErr("load", err)
	}

	warnings := collector.Warnings()
	if strict && len(warnings) > 0 {
		exitErr("load", fmt.Errorf("%d warnings in strict mode, first: %s", len(warnings), warnings[0]))
	}

	result := loadResult{Path: path, Counts: brain.Count()}
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, w.String())
	}

	if save {
		if source == "" {
			source = filepath.Base(path)
		}
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()

		snap, err := s.Save(cmd.Context(), store.SaveParams{Source: source, Brain: brain})
		if err != nil {
			exitErr("save", err)
		}
		logger.Info("saved snapshot", zap.String("id", snap.ID), zap.String("source", source))
		result.Snapshot = snap
	}

	if dump {
		printJSON(brain)
		return
	}
	printJSON(result)
}

// buildBrain loads path into a fresh brain, logging diagnostics and also
// handing them to collector.
func buildBrain(path string, collector *parser.Collector) (*model.Brain, error) {
	reporter := logging.Tee(logging.NewReporter(logger), collector)
	return loader.Build(buildParams(path, reporter))
}
