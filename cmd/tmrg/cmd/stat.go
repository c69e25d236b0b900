package cmd

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/rtlil"
	"github.com/OpenTraceLab/OpenTraceTMR/pkg/tmr"
	"github.com/markkurossi/tabulate"
	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <design.il>",
	Short: "Show per-module statistics of a design",
	Long: `Print a table of wires, ports, cells, redundancy primitives and
connections for every module, followed by the design fingerprint.

The fingerprint is a BLAKE2b digest of the normalized RTLIL text. Two designs
with the same fingerprint are identical.

Examples:
  tmrg stat design.il
  tmrg stat design_tmr.il`,
	Args: cobra.ExactArgs(1),
	RunE: runStat,
}

func init() {
	rootCmd.AddCommand(statCmd)
}

func runStat(cmd *cobra.Command, args []string) error {
	d, err := readDesign(args[0])
	if err != nil {
		return err
	}

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Module").SetAlign(tabulate.ML)
	tab.Header("Wires").SetAlign(tabulate.MR)
	tab.Header("Bits").SetAlign(tabulate.MR)
	tab.Header("Ports").SetAlign(tabulate.MR)
	tab.Header("Cells").SetAlign(tabulate.MR)
	tab.Header("Voters").SetAlign(tabulate.MR)
	tab.Header("Fanouts").SetAlign(tabulate.MR)
	tab.Header("Conns").SetAlign(tabulate.MR)

	for _, m := range d.Modules() {
		st := m.Stats()
		row := tab.Row()
		row.Column(m.Name)
		row.Column(fmt.Sprintf("%d", st.Wires))
		row.Column(fmt.Sprintf("%d", st.Bits))
		row.Column(fmt.Sprintf("%d", st.Ports))
		row.Column(fmt.Sprintf("%d", st.Cells))
		row.Column(fmt.Sprintf("%d", st.CellTypes[tmr.VoterType]))
		row.Column(fmt.Sprintf("%d", st.CellTypes[tmr.FanoutType]))
		row.Column(fmt.Sprintf("%d", st.Connections))
	}
	tab.Print(os.Stdout)

	fmt.Printf("Fingerprint: %s\n", rtlil.Fingerprint(d))
	return nil
}
