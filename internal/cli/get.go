package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/rivebrain/internal/logging"
	"github.com/rcliao/rivebrain/internal/loader"
	"github.com/rcliao/rivebrain/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up a trigger",
		Long:  "Look up a trigger in a topic, optionally under a %Previous qualifier. Reads the latest snapshot unless --snapshot or --path is given.",
		Run:   runGet,
	}

	cmd.Flags().StringP("topic", "t", model.DefaultTopic, "Topic name")
	cmd.Flags().StringP("trigger", "g", "", "Trigger pattern (required)")
	cmd.Flags().StringP("previous", "p", "", "Previous-reply qualifier")
	addBrainFlags(cmd)

	cmd.MarkFlagRequired("trigger")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	topicName, _ := cmd.Flags().GetString("topic")
	pattern, _ := cmd.Flags().GetString("trigger")
	previous, _ := cmd.Flags().GetString("previous")

	brain := resolveBrain(cmd)

	var trig *model.Trigger
	if previous != "" {
		trig = brain.PreviousTriggers(topicName, previous)[pattern]
	} else if topic := brain.Topic(topicName); topic != nil {
		trig = topic.Triggers[pattern]
	}
	if trig == nil {
		exitErr("get", fmt.Errorf("no trigger %q in topic %s", pattern, topicName))
	}

	printJSON(trig)
}

func addBrainFlags(cmd *cobra.Command) {
	cmd.Flags().String("snapshot", "", "Snapshot id (default: latest)")
	cmd.Flags().String("path", "", "Parse this file or directory instead of reading a snapshot")
}

// resolveBrain returns the brain named by --path or --snapshot.
func resolveBrain(cmd *cobra.Command) *model.Brain {
	path, _ := cmd.Flags().GetString("path")
	snapshot, _ := cmd.Flags().GetString("snapshot")

	if path != "" {
		brain, err := loader.Build(buildParams(path, logging.NewReporter(logger)))
		if err != nil {
			exitErr("load", err)
		}
		return brain
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	brain, _, err := s.Load(cmd.Context(), snapshot)
	if err != nil {
		exitErr("load snapshot", err)
	}
	return brain
}
