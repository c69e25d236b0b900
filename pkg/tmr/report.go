package tmr

import (
	"fmt"
	"io"

	"github.com/markkurossi/tabulate"
)

// Report collects the per-module results of a pass run.
type Report struct {
	Modules []*Result
}

// Totals sums the counters of all modules.
func (r *Report) Totals() Result {
	total := Result{Module: "Total"}
	for _, m := range r.Modules {
		total.ExemptWires += m.ExemptWires
		total.ExemptCells += m.ExemptCells
		total.WiresTriplicated += m.WiresTriplicated
		total.CellsTriplicated += m.CellsTriplicated
		total.InstancesTriplicated += m.InstancesTriplicated
		total.WiresRemoved += m.WiresRemoved
		total.ConnectionsBefore += m.ConnectionsBefore
		total.ConnectionsAfter += m.ConnectionsAfter
		total.ConnectionsRemoved += m.ConnectionsRemoved
		total.Conflicts += m.Conflicts
		total.Voters = append(total.Voters, m.Voters...)
		total.Fanouts = append(total.Fanouts, m.Fanouts...)
		total.Unresolved = append(total.Unresolved, m.Unresolved...)
		total.Dangling = append(total.Dangling, m.Dangling...)
		total.MultiDriven = append(total.MultiDriven, m.MultiDriven...)
	}
	return total
}

// Result returns the result for the named module or nil.
func (r *Report) Result(module string) *Result {
	for _, m := range r.Modules {
		if m.Module == module {
			return m
		}
	}
	return nil
}

// Print writes the report as a table.
func (r *Report) Print(w io.Writer) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Module").SetAlign(tabulate.ML)
	tab.Header("Exempt").SetAlign(tabulate.MR)
	tab.Header("Wires").SetAlign(tabulate.MR)
	tab.Header("Cells").SetAlign(tabulate.MR)
	tab.Header("Inst").SetAlign(tabulate.MR)
	tab.Header("Voters").SetAlign(tabulate.MR)
	tab.Header("Fanouts").SetAlign(tabulate.MR)
	tab.Header("Conns").SetAlign(tabulate.MR)
	tab.Header("Removed").SetAlign(tabulate.MR)

	for _, m := range r.Modules {
		row := tab.Row()
		for _, col := range resultColumns(m) {
			row.Column(col)
		}
	}
	if len(r.Modules) > 1 {
		total := r.Totals()
		row := tab.Row()
		for _, col := range resultColumns(&total) {
			row.Column(col).SetFormat(tabulate.FmtBold)
		}
	}
	tab.Print(w)

	for _, m := range r.Modules {
		for _, name := range m.Unresolved {
			fmt.Fprintf(w, "%s: unresolved conflict on %s\n", m.Module, name)
		}
		for _, name := range m.Dangling {
			fmt.Fprintf(w, "%s: kept %s, still bound to a cell\n", m.Module, name)
		}
		for _, name := range m.MultiDriven {
			fmt.Fprintf(w, "%s: %s has more than one driver\n", m.Module, name)
		}
	}
}

func resultColumns(m *Result) []string {
	return []string{
		m.Module,
		fmt.Sprintf("%d/%d", m.ExemptWires, m.ExemptCells),
		fmt.Sprintf("%d", m.WiresTriplicated),
		fmt.Sprintf("%d", m.CellsTriplicated),
		fmt.Sprintf("%d", m.InstancesTriplicated),
		fmt.Sprintf("%d", len(m.Voters)),
		fmt.Sprintf("%d", len(m.Fanouts)),
		fmt.Sprintf("%d→%d", m.ConnectionsBefore, m.ConnectionsAfter),
		fmt.Sprintf("%d", m.WiresRemoved),
	}
}
