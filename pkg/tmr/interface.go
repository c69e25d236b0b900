package tmr

import (
	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// PortDir is a port direction bit set.
type PortDir uint8

const (
	DirInput PortDir = 1 << iota
	DirOutput

	DirInout = DirInput | DirOutput
)

func (d PortDir) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirInout:
		return "inout"
	default:
		return "none"
	}
}

// Interface maps the port names of a module to their directions.
type Interface map[string]PortDir

// SnapshotInterfaces records the port directions of every module. Instance
// ports are classified against this snapshot, so transforming a submodule
// first does not change how its instances are treated.
func SnapshotInterfaces(d *netlist.Design) map[string]Interface {
	result := make(map[string]Interface, len(d.Modules()))
	for _, m := range d.Modules() {
		iface := make(Interface)
		for _, name := range m.Ports() {
			w := m.Wire(name)
			var dir PortDir
			if w.PortInput {
				dir |= DirInput
			}
			if w.PortOutput {
				dir |= DirOutput
			}
			iface[name] = dir
		}
		result[m.Name] = iface
	}
	return result
}
