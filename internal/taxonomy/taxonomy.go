// Package taxonomy is the closed registry of knowledge graph entity types: their
// canonical tags, alias spellings, colors, icons and localized labels.
package taxonomy

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Type is the canonical tag of a graph entity.
type Type uint8

const (
	Unknown Type = iota
	Group
	Process
	Standard
	Risk
	Deliverable
	Tool
	Skill
)

// Leaves is the leaf tier in row priority order.
var Leaves = []Type{Standard, Risk, Deliverable, Tool, Skill}

// All lists every known type, containers first.
var All = []Type{Group, Process, Standard, Risk, Deliverable, Tool, Skill}

type names struct {
	singular string
	plural   string
	aliases  []string
}

var typeNames = map[Type]names{
	Group:       {"group", "groups", []string{"bloc", "blocs", "block", "blocks"}},
	Process:     {"process", "processes", []string{"phase", "phases"}},
	Standard:    {"standard", "standards", []string{"norme", "normes"}},
	Risk:        {"risk", "risks", []string{"risque", "risques"}},
	Deliverable: {"deliverable", "deliverables", []string{"livrable", "livrables"}},
	Tool:        {"tool", "tools", []string{"outil", "outils"}},
	Skill:       {"skill", "skills", []string{"competence", "competences"}},
}

var byAlias = func() map[string]Type {
	m := make(map[string]Type)
	for t, n := range typeNames {
		m[n.singular] = t
		m[n.plural] = t
		for _, a := range n.aliases {
			m[a] = t
		}
	}
	return m
}()

// String returns the canonical singular tag, or "unknown".
func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n.singular
	}
	return "unknown"
}

// Plural returns the identifier used at the fetch boundary ("risks").
func (t Type) Plural() string {
	if n, ok := typeNames[t]; ok {
		return n.plural
	}
	return "unknown"
}

// IsLeaf reports whether t belongs to the leaf tier.
func (t Type) IsLeaf() bool {
	return t >= Standard && t <= Skill
}

// Known reports whether t is one of the seven canonical tags.
func (t Type) Known() bool {
	return t >= Group && t <= Skill
}

// Normalize maps a singular, plural or French spelling to its canonical tag.
// Matching ignores case, surrounding space and diacritics.
func Normalize(s string) (Type, bool) {
	t, ok := byAlias[fold(s)]
	return t, ok
}

// Parse is Normalize without the ok flag; unrecognized input yields Unknown.
func Parse(s string) Type {
	t, _ := Normalize(s)
	return t
}

func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if isASCII(s) {
		return s
	}
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		return s
	}
	return stripped
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// MarshalText encodes the canonical singular tag.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts any alias; unrecognized tags decode to Unknown.
func (t *Type) UnmarshalText(b []byte) error {
	*t = Parse(string(b))
	return nil
}
