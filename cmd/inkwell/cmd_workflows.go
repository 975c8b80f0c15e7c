package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"inkwell/internal/plan"
)

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List workflow shapes and their step sequences",
	RunE:  runWorkflows,
}

func runWorkflows(cmd *cobra.Command, _ []string) error {
	sequences := plan.Sequences()

	shapes := make([]string, 0, len(sequences))
	for shape := range sequences {
		shapes = append(shapes, string(shape))
	}
	sort.Strings(shapes)

	out := cmd.OutOrStdout()
	for _, shape := range shapes {
		steps := sequences[plan.Shape(shape)]
		names := make([]string, len(steps))
		for i, step := range steps {
			names[i] = string(step)
		}
		fmt.Fprintf(out, "%-22s %s\n", shape, strings.Join(names, " -> "))
	}
	return nil
}
