package netlist

import (
	"fmt"
	"strconv"
	"strings"
)

// State is the value of a single constant bit.
type State uint8

// Bit states, in RTLIL notation 0 1 x z - m.
const (
	S0 State = iota
	S1
	Sx
	Sz
	Sa // don't care
	Sm // marker
)

func (s State) String() string {
	switch s {
	case S0:
		return "0"
	case S1:
		return "1"
	case Sx:
		return "x"
	case Sz:
		return "z"
	case Sa:
		return "-"
	case Sm:
		return "m"
	default:
		return "?"
	}
}

// ParseState converts an RTLIL bit character into a State.
func ParseState(ch byte) (State, error) {
	switch ch {
	case '0':
		return S0, nil
	case '1':
		return S1, nil
	case 'x':
		return Sx, nil
	case 'z':
		return Sz, nil
	case '-':
		return Sa, nil
	case 'm':
		return Sm, nil
	default:
		return 0, fmt.Errorf("netlist: invalid bit state %q", ch)
	}
}

// Const is a parameter or attribute value: either a string or a vector of
// bits stored LSB first.
type Const struct {
	Bits     []State
	Str      string
	IsString bool
}

// ConstInt returns a width-bit constant holding v.
func ConstInt(v int64, width int) Const {
	bits := make([]State, width)
	for i := 0; i < width; i++ {
		if i < 64 && (v>>uint(i))&1 == 1 {
			bits[i] = S1
		}
	}
	return Const{Bits: bits}
}

// ConstString returns a string constant.
func ConstString(s string) Const {
	return Const{Str: s, IsString: true}
}

// ParseBits parses a sized constant such as 4'01x0 (MSB first).
func ParseBits(lit string) (Const, error) {
	tick := strings.IndexByte(lit, '\'')
	if tick < 0 {
		return Const{}, fmt.Errorf("netlist: malformed constant %q", lit)
	}
	width, err := strconv.Atoi(lit[:tick])
	if err != nil {
		return Const{}, fmt.Errorf("netlist: malformed constant %q: %w", lit, err)
	}
	digits := lit[tick+1:]
	if len(digits) != width {
		return Const{}, fmt.Errorf("netlist: constant %q has %d bits, want %d",
			lit, len(digits), width)
	}
	bits := make([]State, width)
	for i := 0; i < width; i++ {
		s, err := ParseState(digits[width-1-i])
		if err != nil {
			return Const{}, err
		}
		bits[i] = s
	}
	return Const{Bits: bits}, nil
}

// Width returns the number of bits of a bit-vector constant.
func (c Const) Width() int {
	return len(c.Bits)
}

// FullyDefined reports whether every bit is 0 or 1.
func (c Const) FullyDefined() bool {
	if c.IsString {
		return false
	}
	for _, b := range c.Bits {
		if b != S0 && b != S1 {
			return false
		}
	}
	return true
}

// AsInt interprets the bits as a two's complement integer when signed is
// set, unsigned otherwise. Undefined bits read as zero.
func (c Const) AsInt(signed bool) int64 {
	var v int64
	for i := len(c.Bits) - 1; i >= 0; i-- {
		v <<= 1
		if c.Bits[i] == S1 {
			v |= 1
		}
	}
	n := len(c.Bits)
	if signed && n > 0 && n < 64 && c.Bits[n-1] == S1 {
		v -= 1 << uint(n)
	}
	return v
}

// Equal compares two constants.
func (c Const) Equal(o Const) bool {
	if c.IsString != o.IsString {
		return false
	}
	if c.IsString {
		return c.Str == o.Str
	}
	if len(c.Bits) != len(o.Bits) {
		return false
	}
	for i := range c.Bits {
		if c.Bits[i] != o.Bits[i] {
			return false
		}
	}
	return true
}

// String renders the constant in RTLIL notation. Fully defined 32-bit
// values are printed as decimal integers.
func (c Const) String() string {
	if c.IsString {
		return strconv.Quote(c.Str)
	}
	if len(c.Bits) == 32 && c.FullyDefined() {
		return strconv.FormatInt(c.AsInt(true), 10)
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(c.Bits)))
	b.WriteByte('\'')
	for i := len(c.Bits) - 1; i >= 0; i-- {
		b.WriteString(c.Bits[i].String())
	}
	return b.String()
}

// Attributes maps attribute names to values.
type Attributes map[string]Const

// Well-known attribute names.
const (
	AttrSrc             = `\src`
	AttrDoNotTriplicate = `\tmrg_do_not_triplicate`
)

// StringSet splits a string attribute on whitespace. Missing or non-string
// attributes yield an empty set.
func (a Attributes) StringSet(name string) map[string]bool {
	result := make(map[string]bool)
	v, ok := a[name]
	if !ok || !v.IsString {
		return result
	}
	for _, f := range strings.Fields(v.Str) {
		result[f] = true
	}
	return result
}

// Names returns the attribute names in sorted order.
func (a Attributes) Names() []string {
	return sortedKeys(a)
}
