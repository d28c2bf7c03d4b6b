package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pdcch-replay/pdcch-replay/dci"
	"github.com/pdcch-replay/pdcch-replay/dci/replay"
)

var (
	inspectFlags   cliFlags
	inspectFormat  string // yaml or json
	inspectParquet string // optional decode log path
)

// inspectCmd replays a trace without scheduling and reports its quality
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Decode a DCI trace and summarise groups, rejects and inconsistencies",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := inspectFlags.resolve(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := inspectTrace(cfg, inspectFormat, inspectParquet, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Inspect failed: %v", err)
		}
	},
}

// inspectTrace groups the whole trace, optionally logging every decoded DCI
// to parquet, and writes the summary to out.
func inspectTrace(cfg RunConfig, format, parquetPath string, out io.Writer) error {
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unknown summary format %q", format)
	}
	strict, err := replay.StrictFields(cfg.StrictFields)
	if err != nil {
		return err
	}
	dec := replay.NewDecoder(cfg.Cell, dci.NewCodec())
	dec.Strict = strict

	src, err := replay.OpenFileReplay(cfg.Input, dec)
	if err != nil {
		return err
	}
	defer src.Close()

	var decodeLog *replay.DecodeLog
	if parquetPath != "" {
		if decodeLog, err = replay.CreateDecodeLog(parquetPath, cfg.Cell); err != nil {
			return err
		}
	}

	z := replay.NewSummarizer()
	for src.Advance() {
		z.Observe(src)
		if decodeLog == nil {
			continue
		}
		if err := decodeLog.Observe(src); err != nil {
			_ = decodeLog.Close()
			return err
		}
	}
	z.ObserveRejected(src.Rejected())
	if decodeLog != nil {
		if err := decodeLog.Close(); err != nil {
			return fmt.Errorf("closing decode log: %w", err)
		}
	}

	summary := z.Summary()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	enc := yaml.NewEncoder(out)
	defer enc.Close()
	return enc.Encode(summary)
}
