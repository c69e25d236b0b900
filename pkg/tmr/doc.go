// Package tmr implements the tmrg pass: it turns a gate-level netlist into
// a Triple Modular Redundant one by replicating logic three ways and
// inserting majority voters and fanouts where replicated logic meets logic
// that must stay single.
//
// # Overview
//
// Each selected module is rewritten in a fixed sequence of stages:
//  1. Resolve the exempt set from the tmrg_do_not_triplicate attribute,
//     growing it with the cells and private wires synthesized from the
//     same source statement as each listed internal wire
//  2. Classify the boundary: exempt outputs get a voter, exempt inputs and
//     public internal wires get a fanout, and output ports assigned
//     straight from exempt logic stay single-rail (pass-through)
//  3. Rebuild the connection list with one assignment per replica
//  4. Replicate wires as <name>A/B/C, primitive cells as three copies and
//     submodule instances as one cell with suffixed ports
//  5. Insert \fanout and \majorityVoter cells for the boundary wires
//  6. Move module port directions onto the replicas
//  7. Remove the originals nothing refers to any more
//
// # Usage
//
//	cfg := tmr.DefaultConfig()
//	cfg.Conflict = tmr.ConflictReject
//
//	pass, err := tmr.New(cfg)
//	if err != nil {
//		return err
//	}
//	report, err := pass.Run(ctx, design, nil)
//	if err != nil {
//		return err
//	}
//	report.Print(os.Stderr)
//
// # Limitations
//
// The pass is not idempotent. Running it on its own output triplicates the
// replicas again, and replica names may collide with user wires that
// already end in A, B or C, in which case the existing wire is reused.
//
// Statement groups only take private cells. An exempt wire driven directly
// by a user-named cell therefore keeps that cell triplicated: its copies
// drive the same replicas as the fanout, and the exempt wire itself is left
// without a driver. The pass does not repair this; the affected replicas are
// listed in Result.MultiDriven.
package tmr
