package kgraph

import "github.com/msalah0e/gridmap/internal/taxonomy"

// Attributes is the type-specific record of a node. The concrete type always
// matches the node's taxonomy type; unknown types carry RawAttributes.
type Attributes interface {
	attributes()
}

// GroupAttributes describes a top-level group (bloc).
type GroupAttributes struct {
	ProcessCount *int `json:"processCount,omitempty" yaml:"processCount,omitempty"`
}

// ProcessAttributes describes a process (phase) inside one group.
type ProcessAttributes struct {
	GroupCode *string `json:"groupCode,omitempty" yaml:"groupCode,omitempty"`
	Order     *int    `json:"order,omitempty" yaml:"order,omitempty"`
}

// StandardAttributes describes a norm or regulation.
type StandardAttributes struct {
	IssuingBody *string `json:"issuingBody,omitempty" yaml:"issuingBody,omitempty"`
	Scope       *string `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// RiskAttributes describes a project risk. Severity ranges 1–5.
type RiskAttributes struct {
	Severity   *int    `json:"severity,omitempty" yaml:"severity,omitempty"`
	Category   *string `json:"category,omitempty" yaml:"category,omitempty"`
	Mitigation *string `json:"mitigation,omitempty" yaml:"mitigation,omitempty"`
}

// DeliverableAttributes describes a process output.
type DeliverableAttributes struct {
	Mandatory *bool   `json:"mandatory,omitempty" yaml:"mandatory,omitempty"`
	Format    *string `json:"format,omitempty" yaml:"format,omitempty"`
}

// ToolAttributes describes software or equipment used by a process.
type ToolAttributes struct {
	License   *string `json:"license,omitempty" yaml:"license,omitempty"`
	Publisher *string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
}

// SkillAttributes describes a competence. RequiredLevel ranges 1–5.
type SkillAttributes struct {
	Pole          *string `json:"pole,omitempty" yaml:"pole,omitempty"`
	RequiredLevel *int    `json:"requiredLevel,omitempty" yaml:"requiredLevel,omitempty"`
}

// RawAttributes keeps the attributes of types this build does not know.
type RawAttributes map[string]any

func (*GroupAttributes) attributes()       {}
func (*ProcessAttributes) attributes()     {}
func (*StandardAttributes) attributes()    {}
func (*RiskAttributes) attributes()        {}
func (*DeliverableAttributes) attributes() {}
func (*ToolAttributes) attributes()        {}
func (*SkillAttributes) attributes()       {}
func (RawAttributes) attributes()          {}

// newAttributes returns a decode target for type t.
func newAttributes(t taxonomy.Type) any {
	switch t {
	case taxonomy.Group:
		return &GroupAttributes{}
	case taxonomy.Process:
		return &ProcessAttributes{}
	case taxonomy.Standard:
		return &StandardAttributes{}
	case taxonomy.Risk:
		return &RiskAttributes{}
	case taxonomy.Deliverable:
		return &DeliverableAttributes{}
	case taxonomy.Tool:
		return &ToolAttributes{}
	case taxonomy.Skill:
		return &SkillAttributes{}
	default:
		return &RawAttributes{}
	}
}

// asAttributes converts a decode target back to the Attributes variant.
func asAttributes(v any) Attributes {
	if raw, ok := v.(*RawAttributes); ok {
		if *raw == nil {
			return RawAttributes{}
		}
		return *raw
	}
	return v.(Attributes)
}

// Ptr returns a pointer to v. Handy for building attribute records.
func Ptr[T any](v T) *T {
	return &v
}
