package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List topics with trigger counts",
		Run:   runTopics,
	}

	addBrainFlags(cmd)

	RootCmd.AddCommand(cmd)
}

type topicSummary struct {
	Name     string   `json:"name"`
	Triggers int      `json:"triggers"`
	Includes []string `json:"includes,omitempty"`
	Inherits []string `json:"inherits,omitempty"`
}

func runTopics(cmd *cobra.Command, args []string) {
	brain := resolveBrain(cmd)

	var out []topicSummary
	for _, name := range brain.TopicNames() {
		t := brain.Topic(name)
		out = append(out, topicSummary{
			Name:     name,
			Triggers: len(t.Triggers),
			Includes: t.Includes,
			Inherits: t.Inherits,
		})
	}

	if textOutput() {
		for _, t := range out {
			line := fmt.Sprintf("%-20s %4d", t.Name, t.Triggers)
			if len(t.Includes) > 0 {
				line += "  includes " + strings.Join(t.Includes, " ")
			}
			if len(t.Inherits) > 0 {
				line += "  inherits " + strings.Join(t.Inherits, " ")
			}
			fmt.Println(line)
		}
		return
	}
	printJSON(out)
}
