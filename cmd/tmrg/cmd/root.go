package cmd

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceTMR/pkg/rtlil"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tmrg",
	Short: "Triple Modular Redundancy netlist generator",
	Long: `A netlist rewriting tool that triplicates gate-level RTLIL designs and
inserts majority voters and fanouts at the boundaries of logic that must
stay single.

Examples:
  tmrg run design.il -o design_tmr.il    # Triplicate every module
  tmrg run design.il --module core       # Triplicate one module
  tmrg stat design_tmr.il                # Show per-module statistics
  tmrg export design.il --format dot     # Graphviz view of each module`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// readDesign parses an RTLIL file.
func readDesign(filename string) (*netlist.Design, error) {
	parser, err := rtlil.NewParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}
	d, err := parser.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Read %s: %d module(s)\n", filename, len(d.Modules()))
	}
	return d, nil
}
