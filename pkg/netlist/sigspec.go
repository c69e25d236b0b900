package netlist

import (
	"fmt"
	"strings"
)

// SigChunk is a contiguous slice of a wire, or a run of constant bits when
// Wire is nil.
type SigChunk struct {
	Wire   *Wire
	Offset int
	Width  int
	Data   []State
}

// IsConst reports whether the chunk carries constant bits.
func (c SigChunk) IsConst() bool {
	return c.Wire == nil
}

func (c SigChunk) String() string {
	if c.Wire == nil {
		return Const{Bits: c.Data}.String()
	}
	if c.Offset == 0 && c.Width == c.Wire.Width {
		return c.Wire.Name
	}
	if c.Width == 1 {
		return fmt.Sprintf("%s [%d]", c.Wire.Name, c.Offset+c.Wire.Offset)
	}
	return fmt.Sprintf("%s [%d:%d]", c.Wire.Name,
		c.Offset+c.Wire.Offset+c.Width-1, c.Offset+c.Wire.Offset)
}

// SigSpec is a signal: a concatenation of chunks, LSB first.
type SigSpec struct {
	chunks []SigChunk
}

// SigWire returns a signal covering the whole wire.
func SigWire(w *Wire) SigSpec {
	var s SigSpec
	s.AppendWire(w, 0, w.Width)
	return s
}

// SigConst returns a constant signal.
func SigConst(bits ...State) SigSpec {
	var s SigSpec
	s.AppendConst(bits...)
	return s
}

// AppendWire appends a slice of a wire. Slices continuing the previous
// chunk of the same wire are merged into it.
func (s *SigSpec) AppendWire(w *Wire, offset, width int) {
	if width <= 0 {
		return
	}
	n := len(s.chunks)
	if n > 0 {
		last := s.chunks[n-1]
		if last.Wire == w && last.Offset+last.Width == offset {
			last.Width += width
			s.chunks = append(s.chunks[:n-1:n-1], last)
			return
		}
	}
	// Clip capacity so copies of s never share a backing array.
	s.chunks = append(s.chunks[:n:n], SigChunk{Wire: w, Offset: offset, Width: width})
}

// AppendConst appends constant bits, merging with a trailing constant
// chunk.
func (s *SigSpec) AppendConst(bits ...State) {
	if len(bits) == 0 {
		return
	}
	n := len(s.chunks)
	if n > 0 && s.chunks[n-1].Wire == nil {
		last := s.chunks[n-1]
		last.Data = append(last.Data[:len(last.Data):len(last.Data)], bits...)
		last.Width = len(last.Data)
		s.chunks = append(s.chunks[:n-1:n-1], last)
		return
	}
	data := make([]State, len(bits))
	copy(data, bits)
	s.chunks = append(s.chunks[:n:n], SigChunk{Width: len(data), Data: data})
}

// Append appends all chunks of another signal.
func (s *SigSpec) Append(o SigSpec) {
	for _, c := range o.chunks {
		if c.Wire == nil {
			s.AppendConst(c.Data...)
		} else {
			s.AppendWire(c.Wire, c.Offset, c.Width)
		}
	}
}

// Chunks returns the signal chunks. The slice must not be modified.
func (s SigSpec) Chunks() []SigChunk {
	return s.chunks
}

// Width returns the total bit width.
func (s SigSpec) Width() int {
	var sum int
	for _, c := range s.chunks {
		sum += c.Width
	}
	return sum
}

// Empty reports whether the signal has no bits.
func (s SigSpec) Empty() bool {
	return len(s.chunks) == 0
}

// IsWire reports whether the signal is exactly one whole wire.
func (s SigSpec) IsWire() bool {
	return len(s.chunks) == 1 && s.chunks[0].Wire != nil &&
		s.chunks[0].Offset == 0 && s.chunks[0].Width == s.chunks[0].Wire.Width
}

// AsWire returns the wire when IsWire holds and nil otherwise.
func (s SigSpec) AsWire() *Wire {
	if !s.IsWire() {
		return nil
	}
	return s.chunks[0].Wire
}

// IsFullyConst reports whether the signal has no wire chunks.
func (s SigSpec) IsFullyConst() bool {
	for _, c := range s.chunks {
		if c.Wire != nil {
			return false
		}
	}
	return true
}

// Wires returns the distinct wires referenced by the signal in chunk
// order.
func (s SigSpec) Wires() []*Wire {
	var result []*Wire
	seen := make(map[*Wire]bool)
	for _, c := range s.chunks {
		if c.Wire != nil && !seen[c.Wire] {
			seen[c.Wire] = true
			result = append(result, c.Wire)
		}
	}
	return result
}

// References reports whether any chunk refers to w.
func (s SigSpec) References(w *Wire) bool {
	for _, c := range s.chunks {
		if c.Wire == w {
			return true
		}
	}
	return false
}

// Equal compares two signals chunk by chunk.
func (s SigSpec) Equal(o SigSpec) bool {
	if len(s.chunks) != len(o.chunks) {
		return false
	}
	for i, c := range s.chunks {
		d := o.chunks[i]
		if c.Wire != d.Wire || c.Offset != d.Offset || c.Width != d.Width {
			return false
		}
		if c.Wire == nil && !(Const{Bits: c.Data}).Equal(Const{Bits: d.Data}) {
			return false
		}
	}
	return true
}

// Map rebuilds the signal, replacing every wire chunk by the chunk
// returned from fn. Constant chunks are copied verbatim.
func (s SigSpec) Map(fn func(c SigChunk) SigChunk) SigSpec {
	var result SigSpec
	for _, c := range s.chunks {
		if c.Wire == nil {
			result.AppendConst(c.Data...)
			continue
		}
		m := fn(c)
		result.AppendWire(m.Wire, m.Offset, m.Width)
	}
	return result
}

// String renders the signal in RTLIL notation.
func (s SigSpec) String() string {
	switch len(s.chunks) {
	case 0:
		return "{ }"
	case 1:
		return s.chunks[0].String()
	}
	parts := make([]string, 0, len(s.chunks))
	for i := len(s.chunks) - 1; i >= 0; i-- {
		parts = append(parts, s.chunks[i].String())
	}
	return "{ " + strings.Join(parts, " ") + " }"
}
