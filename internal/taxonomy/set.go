package taxonomy

import (
	"fmt"
	"strings"
)

// Set is a set of leaf types. The zero value is empty. Non-leaf types are
// ignored by every method.
type Set uint8

// AllLeaves contains every leaf type.
var AllLeaves = NewSet(Leaves...)

func bit(t Type) Set {
	if !t.IsLeaf() {
		return 0
	}
	return 1 << (t - Standard)
}

// NewSet builds a set from the leaf types given.
func NewSet(types ...Type) Set {
	var s Set
	for _, t := range types {
		s |= bit(t)
	}
	return s
}

// Has reports membership.
func (s Set) Has(t Type) bool {
	b := bit(t)
	return b != 0 && s&b != 0
}

// With returns s plus t.
func (s Set) With(t Type) Set { return s | bit(t) }

// Without returns s minus t.
func (s Set) Without(t Type) Set { return s &^ bit(t) }

// Toggle flips the membership of t.
func (s Set) Toggle(t Type) Set { return s ^ bit(t) }

// Contains reports whether every member of o is in s.
func (s Set) Contains(o Set) bool { return s&o == o }

// Len returns the number of members.
func (s Set) Len() int {
	n := 0
	for _, t := range Leaves {
		if s.Has(t) {
			n++
		}
	}
	return n
}

// Types returns the members in row priority order.
func (s Set) Types() []Type {
	out := make([]Type, 0, len(Leaves))
	for _, t := range Leaves {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Plurals returns the comma-joined plural identifiers used by the fetch boundary.
func (s Set) Plurals() string {
	types := s.Types()
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.Plural()
	}
	return strings.Join(parts, ",")
}

// String is the same as Plurals.
func (s Set) String() string { return s.Plurals() }

// ParseSet parses a comma separated list of leaf type spellings.
func ParseSet(list string) (Set, error) {
	var s Set
	for _, raw := range strings.Split(list, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		t, ok := Normalize(raw)
		if !ok || !t.IsLeaf() {
			return 0, fmt.Errorf("unknown leaf type %q", strings.TrimSpace(raw))
		}
		s = s.With(t)
	}
	return s, nil
}

// MarshalText encodes the set as its plural list.
func (s Set) MarshalText() ([]byte, error) {
	return []byte(s.Plurals()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Set) UnmarshalText(b []byte) error {
	parsed, err := ParseSet(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
