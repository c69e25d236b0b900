package tmr

import (
	"log"
	"sort"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// Replica suffixes, in order.
var suffixes = [3]string{"A", "B", "C"}

// Reserved redundancy primitive types.
const (
	VoterType  = `\majorityVoter`
	FanoutType = `\fanout`
)

// IsReserved reports whether a module or cell type names one of the
// redundancy primitives.
func IsReserved(name string) bool {
	return name == VoterType || name == FanoutType
}

// wireSet is a set of wires with deterministic iteration.
type wireSet map[*netlist.Wire]bool

func (s wireSet) sorted() []*netlist.Wire {
	result := make([]*netlist.Wire, 0, len(s))
	for w := range s {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// group is the set of objects synthesized from one source statement.
type group struct {
	cells []*netlist.Cell
	wires []*netlist.Wire
}

// state holds everything accumulated while transforming one module. It is
// created for each module and dropped afterwards.
type state struct {
	cfg    *Config
	log    *log.Logger
	design *netlist.Design
	mod    *netlist.Module
	ifaces map[string]Interface
	result *Result

	// Snapshots taken before the first mutation.
	origWires []*netlist.Wire
	origPorts []string

	exemptCells map[*netlist.Cell]bool
	exemptWires wireSet
	voterCand   wireSet
	fanoutCand  wireSet
	passThrough wireSet
	reconciled  wireSet
	replicas    wireSet
	remove      wireSet

	groups map[netlist.Provenance]*group
}

func newState(cfg *Config, d *netlist.Design, m *netlist.Module, ifaces map[string]Interface) *state {
	ports := make([]string, len(m.Ports()))
	copy(ports, m.Ports())
	return &state{
		cfg:         cfg,
		log:         cfg.Logger,
		design:      d,
		mod:         m,
		ifaces:      ifaces,
		result:      &Result{Module: m.Name},
		origWires:   m.Wires(),
		origPorts:   ports,
		exemptCells: make(map[*netlist.Cell]bool),
		exemptWires: make(wireSet),
		voterCand:   make(wireSet),
		fanoutCand:  make(wireSet),
		passThrough: make(wireSet),
		reconciled:  make(wireSet),
		replicas:    make(wireSet),
		remove:      make(wireSet),
		groups:      make(map[netlist.Provenance]*group),
	}
}

func (s *state) logf(format string, args ...any) {
	if s.cfg.Verbose {
		s.log.Printf("tmr: %s: "+format, append([]any{s.mod.Name}, args...)...)
	}
}

// hasCandidacy reports whether w is a voter or fanout candidate.
func (s *state) hasCandidacy(w *netlist.Wire) bool {
	return s.voterCand[w] || s.fanoutCand[w]
}

// single reports whether w stays single-rail.
func (s *state) single(w *netlist.Wire) bool {
	return s.exemptWires[w] || s.passThrough[w]
}

// replica returns the replica of w for a suffix, creating it when missing.
// Replicas of single-rail wires are plain internal wires; other replicas
// copy the original's port direction.
func (s *state) replica(w *netlist.Wire, suffix string) *netlist.Wire {
	name := w.Name + suffix
	if r := s.mod.Wire(name); r != nil {
		return r
	}
	r := s.mod.AddWire(name, w.Width)
	r.Offset = w.Offset
	r.Upto = w.Upto
	r.Signed = w.Signed
	if !s.single(w) {
		r.PortInput = w.PortInput
		r.PortOutput = w.PortOutput
	}
	s.replicas[r] = true
	return r
}

// remap rebuilds a signal on the replicas of one suffix. Constant chunks
// are kept, wire chunks keep their offset and width.
func (s *state) remap(sig netlist.SigSpec, suffix string) netlist.SigSpec {
	return sig.Map(func(c netlist.SigChunk) netlist.SigChunk {
		c.Wire = s.replica(c.Wire, suffix)
		return c
	})
}

// allExempt reports whether sig references at least one wire and every
// wire chunk is exempt.
func (s *state) allExempt(sig netlist.SigSpec) bool {
	wires := sig.Wires()
	if len(wires) == 0 {
		return false
	}
	for _, w := range wires {
		if !s.exemptWires[w] {
			return false
		}
	}
	return true
}

// singleRail reports whether sig references at least one wire and every
// wire chunk stays single-rail.
func (s *state) singleRail(sig netlist.SigSpec) bool {
	wires := sig.Wires()
	if len(wires) == 0 {
		return false
	}
	for _, w := range wires {
		if !s.single(w) {
			return false
		}
	}
	return true
}

// cellName returns name when it is free in the module and a fresh
// generated identifier otherwise.
func (s *state) cellName(name string) string {
	for s.mod.Cell(name) != nil {
		name = s.design.NewID("tmrg")
	}
	return name
}

// done records a completed stage.
func (s *state) done(st Stage) {
	s.result.Stages = append(s.result.Stages, st)
}
