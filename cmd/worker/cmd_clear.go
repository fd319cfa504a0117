package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var detectionsOnly bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete graph data",
	Long: `Deletes every node and relationship. With --detections-only only detector
output is removed: suspicious flags, centrality scores and SUSPICIOUS_LINK
relationships.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&detectionsOnly, "detections-only", false, "only remove detector output")
}

func runClear(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if detectionsOnly {
		st, err := app.Detection.ClearDetections(cmd.Context())
		if err != nil {
			return err
		}
		printCleared(out, st)
		return nil
	}

	if err := app.Admin.ClearData(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(out, "All nodes and relationships deleted")
	return nil
}
