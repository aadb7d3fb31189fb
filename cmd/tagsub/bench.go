package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/tagsub-go/internal/bench"
	"github.com/rmacdonaldsmith/tagsub-go/internal/config"
)

func newBenchCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare Accept latency of both strategies",
		Long: `Subscribe N identical {hello: world} filters to each strategy and measure
Accept for an event every subscription matches and one none of them match.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.BenchSubscriptions, "subscriptions", cfg.BenchSubscriptions, "Number of subscriptions per strategy")
	return cmd
}

func runBench(cmd *cobra.Command, cfg *config.Config) error {
	log.Info().Int("subscriptions", cfg.BenchSubscriptions).Msg("running benchmarks")

	results, err := bench.RunAll(cfg.BenchSubscriptions)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tWORKLOAD\tSUBSCRIPTIONS\tNS/OP\tALLOCS/OP\tB/OP\tDELIVERIES")
	var failed []string
	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = fmt.Sprintf("got %d want %d", r.Delivered, r.Expected)
			failed = append(failed, fmt.Sprintf("%s/%s", r.Strategy, r.Workload))
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.Strategy, r.Workload, r.Subscriptions, r.NsPerOp, r.AllocsPerOp, r.BytesPerOp, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(failed) > 0 {
		return fmt.Errorf("unexpected delivery counts: %v", failed)
	}
	return nil
}
