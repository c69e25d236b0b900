package tmr

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// ConflictPolicy decides what happens to a wire that qualifies for both a
// voter and a fanout.
type ConflictPolicy string

const (
	ConflictVoter  ConflictPolicy = "voter"  // voter wins
	ConflictFanout ConflictPolicy = "fanout" // fanout wins
	ConflictReject ConflictPolicy = "reject" // neither, wire is reported
)

// InstancePortPolicy decides the role of a wire bound to a submodule port
// that is excluded from triplication.
type InstancePortPolicy string

const (
	// InstancePortsClassify votes wires feeding submodule inputs and fans
	// out wires driven by submodule outputs.
	InstancePortsClassify InstancePortPolicy = "classify"
	// InstancePortsPassthrough connects the wire unchanged without a role.
	InstancePortsPassthrough InstancePortPolicy = "passthrough"
)

// Config controls the behavior of the TMR pass.
type Config struct {
	// Boundary policies
	Conflict      ConflictPolicy     // Voter/fanout conflict resolution (default: voter)
	InstancePorts InstancePortPolicy // Role of non-triplicated instance ports (default: classify)

	// Primitive generation
	WidthFromWire bool // Set \WIDTH to the wire width instead of 1 (default: false)
	Library       bool // Add \majorityVoter and \fanout definitions if missing (default: false)

	// Logging
	Verbose bool        // Log per-wire decisions
	Logger  *log.Logger // Destination for log output; nil discards
}

// DefaultConfig returns the default pass configuration.
func DefaultConfig() *Config {
	return &Config{
		Conflict:      ConflictVoter,
		InstancePorts: InstancePortsClassify,
		WidthFromWire: false,
		Library:       false,
	}
}

// Validate normalizes policy names and checks the configuration for errors.
func (c *Config) Validate() error {
	c.Conflict = ConflictPolicy(strings.ToLower(strings.TrimSpace(string(c.Conflict))))
	switch c.Conflict {
	case "":
		c.Conflict = ConflictVoter
	case ConflictVoter, ConflictFanout, ConflictReject:
	default:
		return fmt.Errorf("tmr: unknown conflict policy %q (want voter, fanout or reject)", c.Conflict)
	}

	c.InstancePorts = InstancePortPolicy(strings.ToLower(strings.TrimSpace(string(c.InstancePorts))))
	switch c.InstancePorts {
	case "":
		c.InstancePorts = InstancePortsClassify
	case InstancePortsClassify, InstancePortsPassthrough:
	default:
		return fmt.Errorf("tmr: unknown instance port policy %q (want classify or passthrough)", c.InstancePorts)
	}

	// The generated library modules are single-bit.
	if c.Library && c.WidthFromWire {
		return fmt.Errorf("tmr: library primitives are single-bit and cannot be combined with wide primitives")
	}

	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
	return nil
}

// primitiveWidth returns the \WIDTH parameter for a primitive on a wire of
// the given width.
func (c *Config) primitiveWidth(width int) int {
	if c.WidthFromWire && width > 0 {
		return width
	}
	return 1
}
