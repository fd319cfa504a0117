package main

import (
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/spf13/cobra"
)

var thresholds domain.Thresholds

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run every fraud detector against the graph",
	Long: `Clears previous detector output, runs the medical mill, kickback, staged
accident, phantom passenger and adjuster collusion detectors, flags the
entities and claims they find and recomputes degree centrality.

Unset thresholds fall back to the DETECT_* settings. When Redis is reachable
the run is recorded in the run history and holds the cluster run lock.`,
	Args: cobra.NoArgs,
	RunE: runDetect,
}

func init() {
	f := detectCmd.Flags()
	f.IntVar(&thresholds.MinClaims, "min-claims", 0, "medical mill: minimum claims per provider")
	f.Float64Var(&thresholds.MinAvgAmount, "min-avg-amount", 0, "medical mill: minimum average claim amount")
	f.IntVar(&thresholds.MinSharedClaims, "min-shared-claims", 0, "kickback: minimum claims shared by an attorney and a body shop")
	f.IntVar(&thresholds.MinStagedClaims, "min-staged-claims", 0, "staged accident: minimum claims shared by two people")
	f.IntVar(&thresholds.MinConnections, "min-connections", 0, "phantom passenger: minimum connections and claims of a hub")
	f.IntVar(&thresholds.MinAdjusterCollusion, "min-adjuster-collusion", 0, "adjuster collusion: minimum claims shared by an adjuster and a provider")
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	overrides := thresholdOverrides(cmd)

	if app.Runs == nil {
		rep, err := app.Detection.RunAll(ctx, overrides)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), rep)
		return nil
	}

	run, err := app.Detection.StartRun(ctx, &domain.CreateRunRequest{
		Trigger:     domain.TriggerCLI,
		RequestedBy: "worker",
		Thresholds:  overrides,
	})
	if err != nil {
		return err
	}
	app.Detection.Wait()

	done, err := app.Detection.GetRun(ctx, run.RunID)
	if err != nil {
		return err
	}
	if done.Status != domain.StatusCompleted {
		return &runError{run: done}
	}
	printReport(cmd.OutOrStdout(), done.Report)
	return nil
}

// thresholdOverrides keeps only the flags given on the command line, so
// --min-avg-amount=0 is passed through rather than read as unset.
func thresholdOverrides(cmd *cobra.Command) domain.ThresholdOverrides {
	f := cmd.Flags()
	var o domain.ThresholdOverrides
	if f.Changed("min-claims") {
		o.MinClaims = &thresholds.MinClaims
	}
	if f.Changed("min-avg-amount") {
		o.MinAvgAmount = &thresholds.MinAvgAmount
	}
	if f.Changed("min-shared-claims") {
		o.MinSharedClaims = &thresholds.MinSharedClaims
	}
	if f.Changed("min-staged-claims") {
		o.MinStagedClaims = &thresholds.MinStagedClaims
	}
	if f.Changed("min-connections") {
		o.MinConnections = &thresholds.MinConnections
	}
	if f.Changed("min-adjuster-collusion") {
		o.MinAdjusterCollusion = &thresholds.MinAdjusterCollusion
	}
	return o
}
