package tmr

import (
	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// cleanup deletes the connections that reference queued wires and then
// the wires themselves. Wires still bound to a cell port are kept and
// reported as dangling.
func (s *state) cleanup() {
	queued := s.remove.sorted()

	s.result.ConnectionsRemoved = s.dropConnections(func(conn netlist.Connection) bool {
		for _, w := range queued {
			if conn.References(w) {
				return true
			}
		}
		return false
	})

	del := make(map[*netlist.Wire]bool)
	for _, w := range queued {
		if s.mod.BoundToCell(w) {
			s.result.Dangling = append(s.result.Dangling, w.Name)
			s.logf("queued wire %s is still bound to a cell, kept", w.Name)
			continue
		}
		del[w] = true
	}
	s.mod.RemoveWires(del)
	s.result.WiresRemoved = len(del)
	s.result.ConnectionsAfter = len(s.mod.Connections())
}
