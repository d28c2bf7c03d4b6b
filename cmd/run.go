package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdcch-replay/pdcch-replay/dci"
	"github.com/pdcch-replay/pdcch-replay/dci/enb"
	"github.com/pdcch-replay/pdcch-replay/dci/replay"
	"github.com/pdcch-replay/pdcch-replay/dci/trace"
)

var runFlags cliFlags

// runCmd replays a trace through the scheduler using parameters from flags, file and environment
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a DCI trace onto the subframe timeline",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := runFlags.resolve(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		logrus.Infof("Starting replay of %s: %d PRB, %d port(s), cell %d, frames=%d",
			cfg.Input, cfg.Cell.NofPRB, cfg.Cell.NofPorts, cfg.Cell.ID, cfg.Scheduler.Frames)
		startTime := time.Now()

		ctx, stop := notifyContext(context.Background())
		defer stop()

		if _, err := runReplay(ctx, cfg, cmd.OutOrStdout()); err != nil {
			stop()
			logrus.Fatalf("Replay failed: %v", err)
		}
		logrus.Infof("Replay complete in %v", time.Since(startTime))
	},
}

// openSink selects the output collaborator from the configured name.
func openSink(output string, cell dci.CellConfig) (dci.Sink, error) {
	switch output {
	case outputDiscard:
		return enb.DiscardSink{}, nil
	case "":
		return enb.NewLogSink(), nil
	default:
		return enb.CreateParquetSink(output, cell)
	}
}

// runReplay wires source, codec, scheduler and sink for one run and prints
// the run metrics to out.
func runReplay(ctx context.Context, cfg RunConfig, out io.Writer) (enb.Stats, error) {
	strict, err := replay.StrictFields(cfg.StrictFields)
	if err != nil {
		return enb.Stats{}, err
	}
	codec := dci.NewCodec()
	dec := replay.NewDecoder(cfg.Cell, codec)
	dec.Strict = strict

	src, err := replay.OpenFileReplay(cfg.Input, dec)
	if err != nil {
		return enb.Stats{}, err
	}
	defer src.Close()

	sink, err := openSink(cfg.Output, cfg.Cell)
	if err != nil {
		return enb.Stats{}, err
	}

	sched, err := enb.NewScheduler(cfg.Scheduler, src, codec, sink)
	if err != nil {
		_ = sink.Close()
		return enb.Stats{}, err
	}
	st := trace.NewScheduleTrace(trace.TraceLevel(cfg.TraceLevel))
	sched.SetTrace(st)

	stats, runErr := sched.Run(ctx)
	if err := sink.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("closing output: %w", err)
	}
	if runErr != nil {
		return stats, runErr
	}

	rs := src.Stats()
	logrus.Infof("Trace: %d lines, %d records in %d groups, %d rejected",
		rs.Lines, rs.Records, rs.Groups, rs.Rejected)
	stats.Print(out)
	if st.Enabled() {
		printTraceSummary(out, trace.Summarize(st))
	}
	return stats, nil
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Placement Trace ===")
	fmt.Fprintf(w, "Traced Subframes     : %d (%d matched)\n", s.Subframes, s.MatchedSubframes)
	fmt.Fprintf(w, "Placements           : %d\n", s.TotalPlacements)
	fmt.Fprintf(w, "Unique RNTIs         : %d\n", s.UniqueRNTIs)
	fmt.Fprintf(w, "Mean CCE Utilization : %.3f\n", s.MeanCCEUtilization)
	fmt.Fprintf(w, "Peak CCE Utilization : %.3f\n", s.MaxCCEUtilization)
	for l := uint32(0); l <= 3; l++ {
		if n := s.AggregationLevelHit[l]; n > 0 {
			fmt.Fprintf(w, "Aggregation L=%d      : %d\n", 1<<l, n)
		}
	}
}
