package tmr

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// ErrMissingWire is returned when a wire that must exist by name is gone.
// It aborts the whole run.
var ErrMissingWire = errors.New("tmr: missing wire")

// Stage is a step of the per-module transformation.
type Stage int

const (
	StageInit Stage = iota
	StageResolveExempt
	StageClassifyBoundary
	StageRewriteConnections
	StageTriplicateWires
	StageTriplicateCells
	StageTriplicateInstances
	StageInsertFanout
	StageInsertVoters
	StageFixupPorts
	StageCleanup
	StageDone
)

var stageNames = [...]string{
	StageInit:                "init",
	StageResolveExempt:       "resolve-exempt",
	StageClassifyBoundary:    "classify-boundary",
	StageRewriteConnections:  "rewrite-connections",
	StageTriplicateWires:     "triplicate-wires",
	StageTriplicateCells:     "triplicate-cells",
	StageTriplicateInstances: "triplicate-instances",
	StageInsertFanout:        "insert-fanout",
	StageInsertVoters:        "insert-voters",
	StageFixupPorts:          "fixup-ports",
	StageCleanup:             "cleanup",
	StageDone:                "done",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Result describes the transformation of one module.
type Result struct {
	Module string
	Stages []Stage

	ExemptWires          int
	ExemptCells          int
	WiresTriplicated     int
	CellsTriplicated     int
	InstancesTriplicated int
	WiresRemoved         int

	ConnectionsBefore  int
	ConnectionsAfter   int
	ConnectionsRemoved int

	Voters     []string // wires driven by an inserted voter
	Fanouts    []string // wires feeding an inserted fanout
	Conflicts  int      // wires that qualified for both
	Unresolved []string // conflicts rejected by ConflictReject
	Dangling   []string // queued wires kept because a cell still uses them

	// Replicas driven by a fanout and by a replicated cell. This happens
	// when an exempt wire is driven directly by a cell that is not part of
	// an exempt statement.
	MultiDriven []string
}

// Progress reports the state of a pass run.
type Progress struct {
	Phase  string // "init", "module", "done"
	Module string // Module being transformed
	Index  int    // Current module index (0-based)
	Total  int    // Number of modules to transform
}

// Pass is the tmrg design pass.
type Pass struct {
	cfg *Config
	log *log.Logger
}

// New creates a pass. A nil config selects DefaultConfig.
func New(cfg *Config) (*Pass, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pass{cfg: cfg, log: cfg.Logger}, nil
}

// Config returns the validated configuration of the pass.
func (p *Pass) Config() *Config {
	return p.cfg
}

// Run applies the pass to every selected module of the design except the
// redundancy primitives themselves. The design is modified in place.
//
// Parameters:
//   - ctx: Context for cancellation between modules
//   - d: Design to transform
//   - progress: Optional channel for progress updates (can be nil)
func (p *Pass) Run(ctx context.Context, d *netlist.Design, progress chan<- Progress) (*Report, error) {
	p.log.Printf("#### Running TMRG pass ####")

	if p.cfg.Library {
		for _, name := range AddLibrary(d) {
			p.log.Printf("tmr: added library module %s", name)
		}
	}

	PropagateAttributes(d)
	ifaces := SnapshotInterfaces(d)

	var mods []*netlist.Module
	for _, m := range d.SelectedModules() {
		if IsReserved(m.Name) {
			continue
		}
		mods = append(mods, m)
	}

	if progress != nil {
		progress <- Progress{Phase: "init", Total: len(mods)}
	}

	report := &Report{}
	for i, m := range mods {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		if progress != nil {
			progress <- Progress{Phase: "module", Module: m.Name, Index: i, Total: len(mods)}
		}

		res, err := p.transform(d, m, ifaces)
		if res != nil {
			report.Modules = append(report.Modules, res)
		}
		if err != nil {
			return report, err
		}
	}

	if progress != nil {
		progress <- Progress{Phase: "done", Index: len(mods), Total: len(mods)}
	}
	return report, nil
}

// TransformModule applies the transformation to a single module of a
// design, using the current port directions of the design's modules for
// instance classification.
func (p *Pass) TransformModule(m *netlist.Module) (*Result, error) {
	d := m.Design()
	if d == nil {
		return nil, fmt.Errorf("tmr: module %s is not part of a design", m.Name)
	}
	if IsReserved(m.Name) {
		return nil, fmt.Errorf("tmr: module %s is a redundancy primitive", m.Name)
	}
	return p.transform(d, m, SnapshotInterfaces(d))
}

func (p *Pass) transform(d *netlist.Design, m *netlist.Module, ifaces map[string]Interface) (*Result, error) {
	s := newState(p.cfg, d, m, ifaces)
	s.logf("transforming %d wires, %d cells", m.NumWires(), m.NumCells())
	s.done(StageInit)

	s.resolveExempt()
	s.done(StageResolveExempt)

	s.classifyBoundary()
	s.done(StageClassifyBoundary)

	s.rewriteConnections()
	s.done(StageRewriteConnections)

	s.triplicateWires()
	s.done(StageTriplicateWires)

	s.triplicateCells()
	s.done(StageTriplicateCells)

	if err := s.triplicateInstances(); err != nil {
		return s.result, err
	}
	s.done(StageTriplicateInstances)

	fanouts, voters := s.resolveRoles()
	for _, w := range fanouts {
		if err := s.insertFanout(w); err != nil {
			return s.result, err
		}
	}
	s.done(StageInsertFanout)

	for _, w := range voters {
		if err := s.insertVoter(w); err != nil {
			return s.result, err
		}
	}
	s.done(StageInsertVoters)

	s.fixupPorts()
	s.done(StageFixupPorts)

	s.cleanup()
	s.done(StageCleanup)

	s.done(StageDone)
	return s.result, nil
}

// PropagateAttributes copies the string attributes of every selected module
// onto the cells that instantiate it, so that a submodule's
// tmrg_do_not_triplicate list reaches its instances. The src attribute is
// left alone so instances keep their own location.
func PropagateAttributes(d *netlist.Design) {
	attrs := make(map[string]netlist.Attributes)
	for _, m := range d.SelectedModules() {
		for _, name := range m.Attributes.Names() {
			v := m.Attributes[name]
			if !v.IsString || name == netlist.AttrSrc {
				continue
			}
			if attrs[m.Name] == nil {
				attrs[m.Name] = make(netlist.Attributes)
			}
			attrs[m.Name][name] = v
		}
	}
	for _, m := range d.SelectedModules() {
		for _, c := range m.Cells() {
			if c.Internal() || IsReserved(c.Type) {
				continue
			}
			for _, name := range attrs[c.Type].Names() {
				c.SetAttribute(name, attrs[c.Type][name])
			}
		}
	}
}
