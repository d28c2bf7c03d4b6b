package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdcch-replay/pdcch-replay/dci"
	"github.com/pdcch-replay/pdcch-replay/dci/enb"
)

var searchSpaceFlags cliFlags

// searchSpaceCmd prints the UE-specific search space the scheduler verifies against
var searchSpaceCmd = &cobra.Command{
	Use:   "search-space",
	Short: "Print the cached UE-specific search space for every CFI and subframe",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := searchSpaceFlags.resolve(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := cfg.Cell.Validate(); err != nil {
			logrus.Fatalf("Invalid cell configuration: %v", err)
		}
		if err := writeSearchSpace(cfg, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Search space failed: %v", err)
		}
	},
}

// writeSearchSpace renders one table row per (CFI, subframe) pair.
func writeSearchSpace(cfg RunConfig, out io.Writer) error {
	cache, err := enb.NewSearchSpaceCache(dci.NewCodec(), cfg.Cell, cfg.Scheduler.RNTI)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "RNTI 0x%04x, %d PRB, %d port(s)\n", cache.RNTI(), cfg.Cell.NofPRB, cfg.Cell.NofPorts)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"CFI", "NCCE", "SF", "Candidates"})
	table.SetAutoWrapText(false)
	for cfi := uint32(1); cfi <= dci.MaxCFI; cfi++ {
		for sf := uint32(0); sf < dci.SubframesPerFrame; sf++ {
			locs := cache.Locations(cfi, sf)
			names := make([]string, len(locs))
			for i, l := range locs {
				names[i] = fmt.Sprintf("%d@%d", l.NofCCE(), l.NCCE)
			}
			table.Append([]string{
				fmt.Sprint(cfi), fmt.Sprint(cache.NofCCE(cfi)), fmt.Sprint(sf), strings.Join(names, " "),
			})
		}
	}
	table.Render()
	return nil
}
