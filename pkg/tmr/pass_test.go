package tmr

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceTMR/pkg/rtlil"
)

const scenarioA = `
module \top
  wire input 1 \X
  wire \Y
  wire output 2 \Z
  cell $not \g
    parameter \A_SIGNED 0
    parameter \A_WIDTH 1
    parameter \Y_WIDTH 1
    connect \A \X
    connect \Y \Y
  end
  connect \Z \Y
end
`

const scenarioB = `
attribute \tmrg_do_not_triplicate "Y"
module \top
  wire input 1 \X
  wire \Y
  wire output 2 \Z
  wire $not$top.v:3$1_Y
  wire $not$top.v:4$2_Y
  cell $not $not$top.v:3$1
    connect \A \X
    connect \Y $not$top.v:3$1_Y
  end
  cell $not $not$top.v:4$2
    connect \A \Y
    connect \Y $not$top.v:4$2_Y
  end
  connect \Y $not$top.v:3$1_Y
  connect \Z $not$top.v:4$2_Y
end
`

const scenarioC = `
attribute \tmrg_do_not_triplicate "Y"
module \top
  wire input 1 \X
  wire \Y
  wire output 2 \Z
  cell $not \g
    connect \A \X
    connect \Y \Y
  end
  connect \Z \Y
end
`

// scenarioBDirect lists a wire that a user-named gate drives directly, so
// no statement group keeps the gate single.
const scenarioBDirect = `
attribute \tmrg_do_not_triplicate "Y"
module \top
  wire input 1 \X
  wire \Y
  wire output 2 \Z
  cell $not \g
    connect \A \X
    connect \Y \Y
  end
  cell $not \h
    connect \A \Y
    connect \Y \Z
  end
end
`

func TestScenarioNoExemptions(t *testing.T) {
	d := parseDesign(t, scenarioA)
	report := runPass(t, d, nil)
	m := d.Module(`\top`)

	want := `input \XA,input \XB,input \XC,output \ZA,output \ZB,output \ZC`
	if got := sortedPorts(m); got != want {
		t.Errorf("ports = %s, want %s", got, want)
	}

	gates := cellsOfType(m, `$not`)
	if len(gates) != 3 {
		t.Fatalf("expected 3 gates, got %d", len(gates))
	}
	for i, s := range suffixes {
		g := gates[i]
		if g.Name != `\g`+s {
			t.Errorf("gate %d named %s, want \\g%s", i, g.Name, s)
		}
		if got := portWire(t, g, `\A`).Name; got != `\X`+s {
			t.Errorf("gate %s input %s, want \\X%s", g.Name, got, s)
		}
		if got := portWire(t, g, `\Y`).Name; got != `\Y`+s {
			t.Errorf("gate %s output %s, want \\Y%s", g.Name, got, s)
		}
		if v := g.Parameters[`\Y_WIDTH`]; v.AsInt(false) != 1 {
			t.Errorf("gate %s lost its parameters", g.Name)
		}
		if !hasConnection(m, `\Z`+s, `\Y`+s) {
			t.Errorf("missing connection Z%s <- Y%s", s, s)
		}
	}
	if m.Cell(`\g`) != nil {
		t.Errorf("original gate not removed")
	}
	for _, name := range []string{`\X`, `\Y`, `\Z`} {
		if m.Wire(name) != nil {
			t.Errorf("original wire %s not removed", name)
		}
	}
	if len(cellsOfType(m, VoterType)) != 0 || len(cellsOfType(m, FanoutType)) != 0 {
		t.Errorf("unexpected redundancy primitives")
	}
	if len(m.Connections()) != 3 {
		t.Errorf("expected 3 connections, got %d", len(m.Connections()))
	}
	checkReferences(t, m)

	res := report.Result(`\top`)
	if res == nil {
		t.Fatal("no result for \\top")
	}
	if res.CellsTriplicated != 1 || res.WiresTriplicated != 3 || res.WiresRemoved != 3 {
		t.Errorf("unexpected counters %+v", res)
	}
}

func TestScenarioInternalExempt(t *testing.T) {
	d := parseDesign(t, scenarioB)
	report := runPass(t, d, nil)
	m := d.Module(`\top`)

	// The statement producing Y stays single.
	g1 := m.Cell(`$not$top.v:3$1`)
	if g1 == nil {
		t.Fatal("exempt statement cell was triplicated")
	}
	if got := portWire(t, g1, `\A`).Name; got != `\X` {
		t.Errorf("exempt cell reads %s, want \\X", got)
	}
	if !hasConnection(m, `\Y`, `$not$top.v:3$1_Y`) {
		t.Errorf("exempt assignment to Y not kept")
	}

	checkFanout(t, m, `\Y`)
	if len(cellsOfType(m, VoterType)) != 1 {
		t.Errorf("expected only the input voter, got %d voters", len(cellsOfType(m, VoterType)))
	}
	for _, c := range cellsOfType(m, VoterType) {
		if portWire(t, c, `\out`).Name == `\Y` {
			t.Errorf("unexpected voter on Y")
		}
	}

	// The triplicated input is voted into the exempt statement.
	checkVoter(t, m, `\X`)
	if m.Wire(`\X`).IsPort() {
		t.Errorf("voted wire X should no longer be a port")
	}

	// Downstream logic consumes the replicas.
	if m.Cell(`$not$top.v:4$2`) != nil {
		t.Errorf("downstream cell not triplicated")
	}
	for _, s := range suffixes {
		g := m.Cell(`$not$top.v:4$2` + s)
		if g == nil {
			t.Fatalf("missing downstream copy %s", s)
		}
		if got := portWire(t, g, `\A`).Name; got != `\Y`+s {
			t.Errorf("downstream copy %s reads %s, want \\Y%s", s, got, s)
		}
		if !hasConnection(m, `\Z`+s, `$not$top.v:4$2_Y`+s) {
			t.Errorf("missing connection Z%s", s)
		}
	}

	want := `input \XA,input \XB,input \XC,output \ZA,output \ZB,output \ZC`
	if got := sortedPorts(m); got != want {
		t.Errorf("ports = %s, want %s", got, want)
	}
	if res := report.Result(`\top`); len(res.MultiDriven) != 0 {
		t.Errorf("unexpected multi-driven replicas %v", res.MultiDriven)
	}
	checkExclusive(t, m)
	checkReferences(t, m)
}

func TestScenarioInternalExemptDirectDriver(t *testing.T) {
	d := parseDesign(t, scenarioBDirect)
	report := runPass(t, d, nil)
	m := d.Module(`\top`)

	checkFanout(t, m, `\Y`)
	if n := len(cellsOfType(m, VoterType)); n != 0 {
		t.Errorf("expected no voters, got %d", n)
	}

	// The gate is triplicated onto the replicas the fanout also drives,
	// and nothing drives Y itself.
	gates := cellsOfType(m, `$not`)
	if len(gates) != 6 {
		t.Fatalf("expected 6 gates, got %d", len(gates))
	}
	for _, g := range gates {
		if got := portWire(t, g, `\Y`).Name; got == `\Y` {
			t.Errorf("gate %s drives the exempt wire", g.Name)
		}
	}
	for _, s := range suffixes {
		if got := portWire(t, m.Cell(`\g`+s), `\Y`).Name; got != `\Y`+s {
			t.Errorf("gate g%s drives %s, want \\Y%s", s, got, s)
		}
		if got := portWire(t, m.Cell(`\h`+s), `\A`).Name; got != `\Y`+s {
			t.Errorf("gate h%s reads %s, want \\Y%s", s, got, s)
		}
	}

	res := report.Result(`\top`)
	if !equalNames(res.MultiDriven, []string{`\YA`, `\YB`, `\YC`}) {
		t.Errorf("multi-driven = %v, want [\\YA \\YB \\YC]", res.MultiDriven)
	}
	want := `input \XA,input \XB,input \XC,output \ZA,output \ZB,output \ZC`
	if got := sortedPorts(m); got != want {
		t.Errorf("ports = %s, want %s", got, want)
	}

	var buf bytes.Buffer
	report.Print(&buf)
	if !strings.Contains(buf.String(), `\top: \YA has more than one driver`) {
		t.Errorf("report does not mention the multi-driven replica:\n%s", buf.String())
	}
	checkReferences(t, m)
}

func TestScenarioEffectiveOutput(t *testing.T) {
	d := parseDesign(t, scenarioC)
	report := runPass(t, d, nil)
	m := d.Module(`\top`)

	checkVoter(t, m, `\Y`)
	if len(cellsOfType(m, FanoutType)) != 0 {
		t.Errorf("unexpected fanout")
	}
	if !hasConnection(m, `\Z`, `\Y`) {
		t.Errorf("Y should connect to Z unsuffixed")
	}
	z := m.Wire(`\Z`)
	if z == nil || !z.PortOutput {
		t.Fatalf("Z should stay a single output")
	}
	for _, s := range suffixes {
		if m.Wire(`\Z`+s) != nil {
			t.Errorf("pass-through port Z got replica %s", s)
		}
	}

	want := `input \XA,input \XB,input \XC,output \Z`
	if got := sortedPorts(m); got != want {
		t.Errorf("ports = %s, want %s", got, want)
	}
	if res := report.Result(`\top`); len(res.Voters) != 1 || res.Voters[0] != `\Y` {
		t.Errorf("unexpected voters %v", res.Voters)
	}
	checkReferences(t, m)
}

func TestStagesRecorded(t *testing.T) {
	d := parseDesign(t, scenarioA)
	report := runPass(t, d, nil)

	stages := report.Result(`\top`).Stages
	if len(stages) != int(StageDone)+1 {
		t.Fatalf("expected %d stages, got %v", StageDone+1, stages)
	}
	for i, st := range stages {
		if st != Stage(i) {
			t.Errorf("stage %d is %s, want %s", i, st, Stage(i))
		}
	}
	if StageInsertVoters.String() != "insert-voters" {
		t.Errorf("unexpected stage name %s", StageInsertVoters)
	}
}

func TestDeterministicOutput(t *testing.T) {
	var prints []string
	for i := 0; i < 2; i++ {
		d := parseDesign(t, scenarioB)
		runPass(t, d, nil)
		prints = append(prints, rtlil.Fingerprint(d))
	}
	if prints[0] != prints[1] {
		t.Errorf("two runs produced different designs: %s != %s", prints[0], prints[1])
	}
}

func TestReservedModulesUntouched(t *testing.T) {
	d := parseDesign(t, scenarioC)
	AddLibrary(d)
	before := rtlil.ModuleFingerprint(d.Module(VoterType))

	report := runPass(t, d, nil)

	if after := rtlil.ModuleFingerprint(d.Module(VoterType)); after != before {
		t.Errorf("voter library module was modified")
	}
	if report.Result(VoterType) != nil || report.Result(FanoutType) != nil {
		t.Errorf("reserved modules were transformed")
	}
}

func TestRunCancelled(t *testing.T) {
	d := parseDesign(t, scenarioA)
	pass, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pass.Run(ctx, d, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if d.Module(`\top`).Wire(`\X`) == nil {
		t.Errorf("module transformed despite cancellation")
	}
}

func TestRunProgress(t *testing.T) {
	d := parseDesign(t, scenarioA)
	pass, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	progress := make(chan Progress)
	var phases []string
	done := make(chan struct{})
	go func() {
		for p := range progress {
			phases = append(phases, p.Phase)
		}
		close(done)
	}()

	_, err = pass.Run(context.Background(), d, progress)
	close(progress)
	<-done
	if err != nil {
		t.Fatal(err)
	}

	if len(phases) != 3 || phases[0] != "init" || phases[1] != "module" || phases[2] != "done" {
		t.Errorf("unexpected progress phases %v", phases)
	}
}

func TestTransformModuleRequiresDesign(t *testing.T) {
	pass, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pass.TransformModule(netlist.NewModule(`\lonely`)); err == nil {
		t.Errorf("expected error for a module outside a design")
	}
}

func TestPropagateAttributes(t *testing.T) {
	d := parseDesign(t, `
attribute \tmrg_do_not_triplicate "d"
attribute \src "sub.v:1.1-5.10"
module \sub
  wire input 1 \d
end
module \top
  wire \a
  attribute \src "top.v:7.3-7.20"
  cell \sub \u
    connect \d \a
  end
  cell $not \g
    connect \A \a
    connect \Y \a
  end
end
`)
	PropagateAttributes(d)

	u := d.Module(`\top`).Cell(`\u`)
	if got := u.Attributes.StringSet(netlist.AttrDoNotTriplicate); !got["d"] {
		t.Errorf("attribute not propagated to instance, got %v", got)
	}
	if u.Provenance != (netlist.Provenance{File: "top.v", Line: 7}) {
		t.Errorf("instance src overwritten: %v", u.Provenance)
	}
	if _, ok := d.Module(`\top`).Cell(`\g`).Attributes[netlist.AttrDoNotTriplicate]; ok {
		t.Errorf("attribute propagated to a primitive cell")
	}
}
