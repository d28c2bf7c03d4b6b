package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/pdcch-replay/pdcch-replay/dci"
	"github.com/pdcch-replay/pdcch-replay/dci/enb"
	"github.com/pdcch-replay/pdcch-replay/dci/replay"
	"github.com/pdcch-replay/pdcch-replay/dci/trace"
)

// envPrefix namespaces every environment override, e.g. PDCCH_CELL_NOF_PRB.
const envPrefix = "PDCCH_"

// outputDiscard is the output name that drops every subframe.
const outputDiscard = "NULL"

// RunConfig is the full run configuration.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type RunConfig struct {
	Input        string         `yaml:"input" env:"INPUT"`
	Output       string         `yaml:"output" env:"OUTPUT"` // parquet path, NULL to discard, empty to log
	StrictFields []string       `yaml:"strict_fields" env:"STRICT_FIELDS"`
	TraceLevel   string         `yaml:"trace_level" env:"TRACE_LEVEL"`
	Cell         dci.CellConfig `yaml:"cell" envPrefix:"CELL_"`
	Scheduler    enb.Config     `yaml:"scheduler" envPrefix:"SCHED_"`
}

// DefaultRunConfig returns the defaults every other source overrides.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		TraceLevel: string(trace.TraceLevelNone),
		Cell:       dci.DefaultCell(),
		Scheduler:  enb.DefaultConfig(),
	}
}

// Validate checks every section.
func (c RunConfig) Validate() error {
	if c.Input == "" {
		return errors.New("no input trace given")
	}
	if err := c.Cell.Validate(); err != nil {
		return fmt.Errorf("cell: %w", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("unknown trace level %q", c.TraceLevel)
	}
	if _, err := replay.StrictFields(c.StrictFields); err != nil {
		return err
	}
	return nil
}

// loadRunConfig overlays the YAML file at path onto cfg.
// Uses strict field checking: typos must cause errors.
func loadRunConfig(path string, cfg *RunConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays PDCCH_* environment variables onto cfg. Unset variables
// leave the field untouched.
func applyEnv(cfg *RunConfig) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// cliFlags holds the flag values shared by the subcommands. Only flags the
// user actually set override the file and environment.
type cliFlags struct {
	configPath   string
	input        string
	output       string
	frames       int
	cellID       uint32
	nofPRB       uint32
	txMode       int
	defaultCFI   uint32
	rnti         uint16
	strictFields []string
	traceLevel   string
	drainLast    bool
}

func (f *cliFlags) registerCell(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "YAML run configuration file")
	fs.Uint32VarP(&f.cellID, "cell-id", "c", 0, "Physical cell id")
	fs.Uint32VarP(&f.nofPRB, "nof-prb", "p", 25, "Number of PRB (6, 15, 25, 50, 75, 100)")
	fs.IntVarP(&f.txMode, "tx-mode", "x", 1, "Transmission mode 1..4 (mode 1 uses one port, others two)")
}

func (f *cliFlags) registerInput(fs *pflag.FlagSet) {
	fs.StringVarP(&f.input, "input", "i", "", "DCI trace file")
	fs.StringSliceVar(&f.strictFields, "strict-fields", nil, "Reject records inconsistent in these fields (rnti, format, aggregation, ncce, mcs, ndi, ndi_1)")
}

func (f *cliFlags) registerScheduler(fs *pflag.FlagSet) {
	fs.StringVarP(&f.output, "output", "o", "", "Parquet placement log ('NULL' discards, empty logs each subframe)")
	fs.IntVarP(&f.frames, "frames", "n", -1, "Number of frames to transmit (-1 for unlimited)")
	fs.Uint32Var(&f.defaultCFI, "cfi", 2, "CFI used until the first trace interval is reached")
	fs.StringVar(&f.traceLevel, "trace-level", "none", "Placement tracing: none, placements")
	fs.BoolVar(&f.drainLast, "drain-last", false, "Keep running until the last trace group is transmitted")
}

func (f *cliFlags) registerRNTI(fs *pflag.FlagSet) {
	fs.Uint16Var(&f.rnti, "rnti", 0x1234, "UE RNTI whose search space is cached")
}

// resolve builds the configuration: defaults < YAML < environment < changed flags.
func (f *cliFlags) resolve(fs *pflag.FlagSet) (RunConfig, error) {
	cfg := DefaultRunConfig()
	if f.configPath != "" {
		if err := loadRunConfig(f.configPath, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := f.apply(fs, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (f *cliFlags) apply(fs *pflag.FlagSet, cfg *RunConfig) error {
	changed := func(name string) bool {
		fl := fs.Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("input") {
		cfg.Input = f.input
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("strict-fields") {
		cfg.StrictFields = f.strictFields
	}
	if changed("trace-level") {
		cfg.TraceLevel = f.traceLevel
	}
	if changed("cell-id") {
		cfg.Cell.ID = f.cellID
	}
	if changed("nof-prb") {
		cfg.Cell.NofPRB = f.nofPRB
	}
	if changed("tx-mode") {
		ports, err := portsForTxMode(f.txMode)
		if err != nil {
			return err
		}
		cfg.Cell.NofPorts = ports
	}
	if changed("frames") {
		cfg.Scheduler.Frames = f.frames
	}
	if changed("cfi") {
		cfg.Scheduler.DefaultCFI = f.defaultCFI
	}
	if changed("drain-last") {
		cfg.Scheduler.DrainLast = f.drainLast
	}
	if changed("rnti") {
		cfg.Scheduler.RNTI = f.rnti
	}
	return nil
}

func portsForTxMode(mode int) (uint32, error) {
	switch mode {
	case 1:
		return 1, nil
	case 2, 3, 4:
		return 2, nil
	default:
		return 0, fmt.Errorf("transmission mode must be 1..4, got %d", mode)
	}
}
