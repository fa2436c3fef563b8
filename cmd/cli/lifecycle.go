package main

import (
	"fmt"
	"strings"

	"github.com/go-arcade/agileboard/pkg/statemachine"
	"github.com/spf13/cobra"
)

var lifecycleFrom string

// lifecycleCmd prints the project lifecycle as a Graphviz digraph, or the
// statuses reachable from --from.
var lifecycleCmd = &cobra.Command{
	Use:   "lifecycle",
	Short: "Print the project status lifecycle",
	Long:  "Print the project status lifecycle as DOT (pipe into `dot -Tsvg`), or the next statuses of --from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if lifecycleFrom == "" {
			_, err := fmt.Fprint(out, statemachine.ProjectLifecycleDot())
			return err
		}

		from, ok := statemachine.ParseProjectStatus(lifecycleFrom)
		if !ok {
			return fmt.Errorf("unknown project status %q", lifecycleFrom)
		}
		next := statemachine.NextProjectStatuses(from)
		if len(next) == 0 {
			_, err := fmt.Fprintf(out, "%s is terminal\n", from)
			return err
		}
		names := make([]string, 0, len(next))
		for _, st := range next {
			names = append(names, string(st))
		}
		_, err := fmt.Fprintln(out, strings.Join(names, "\n"))
		return err
	},
}

func init() {
	lifecycleCmd.Flags().StringVar(&lifecycleFrom, "from", "", "list the statuses reachable from this status")
}
