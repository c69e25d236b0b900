// Package netlist is an in-memory gate-level netlist model in the shape of
// Yosys RTLIL: a Design holds Modules, which own Wires, Cells and direct
// assignments (Connections) between Signals.
//
// Identifiers keep their RTLIL sigil. A leading '\' marks a user-declared
// (public) name and a leading '$' a synthesized (private) one. The
// Visibility of every wire and cell is fixed when it is created, and its
// Provenance, the source statement it came from, is taken from the src
// attribute or, for private names, recovered from the $fn:line$ token that
// synthesis tools embed in generated identifiers.
//
// All accessors that enumerate maps return their results sorted by name so
// that transformations built on this package are deterministic.
package netlist
