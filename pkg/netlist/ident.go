package netlist

import (
	"regexp"
	"strconv"
	"strings"
)

// Identifier sigils used by RTLIL.
const (
	PublicSigil  = '\\'
	PrivateSigil = '$'
)

// Visibility tells user-declared objects apart from synthesized ones.
type Visibility uint8

const (
	Public Visibility = iota
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// VisibilityOf classifies an identifier by its leading character.
func VisibilityOf(id string) Visibility {
	if len(id) > 0 && id[0] == PrivateSigil {
		return Private
	}
	return Public
}

// Escape returns the public RTLIL identifier for a base name. Names that
// already carry a sigil are returned unchanged.
func Escape(name string) string {
	if len(name) == 0 {
		return name
	}
	if name[0] == PublicSigil || name[0] == PrivateSigil {
		return name
	}
	return string(PublicSigil) + name
}

// Unescape strips the public sigil. Private identifiers keep their sigil.
func Unescape(id string) string {
	if len(id) > 0 && id[0] == PublicSigil {
		return id[1:]
	}
	return id
}

// Provenance identifies the source statement an object was synthesized
// from.
type Provenance struct {
	File string
	Line int
}

// Valid reports whether the provenance carries a source location.
func (p Provenance) Valid() bool {
	return p.File != "" && p.Line > 0
}

func (p Provenance) String() string {
	if !p.Valid() {
		return "<none>"
	}
	return p.File + ":" + strconv.Itoa(p.Line)
}

// Synthesized names look like $and$top.v:12$34 or $and$top.v:12$34_Y.
var reNameProvenance = regexp.MustCompile(`\$.*?\$(.+):([0-9]+)\$`)

// ProvenanceFromName recovers the provenance token embedded in a private
// identifier. Public identifiers and names without a token yield an
// invalid provenance.
func ProvenanceFromName(id string) Provenance {
	if VisibilityOf(id) != Private {
		return Provenance{}
	}
	m := reNameProvenance.FindStringSubmatch(id)
	if m == nil {
		return Provenance{}
	}
	line, err := strconv.Atoi(m[2])
	if err != nil {
		return Provenance{}
	}
	return Provenance{File: m[1], Line: line}
}

// ProvenanceFromSrc parses a src attribute value such as
// "top.v:12.5-12.30". Only the first location of a multi-location value
// (separated by '|') is used.
func ProvenanceFromSrc(src string) Provenance {
	if i := strings.IndexByte(src, '|'); i >= 0 {
		src = src[:i]
	}
	colon := strings.LastIndexByte(src, ':')
	if colon <= 0 {
		return Provenance{}
	}
	loc := src[colon+1:]
	end := 0
	for end < len(loc) && loc[end] >= '0' && loc[end] <= '9' {
		end++
	}
	if end == 0 {
		return Provenance{}
	}
	line, err := strconv.Atoi(loc[:end])
	if err != nil {
		return Provenance{}
	}
	return Provenance{File: src[:colon], Line: line}
}

// provenanceOf prefers the explicit src attribute and falls back to the
// identifier shim.
func provenanceOf(id string, attrs Attributes) Provenance {
	if src, ok := attrs[AttrSrc]; ok && src.IsString {
		if p := ProvenanceFromSrc(src.Str); p.Valid() {
			return p
		}
	}
	return ProvenanceFromName(id)
}
