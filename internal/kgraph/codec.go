package kgraph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/msalah0e/gridmap/internal/taxonomy"
	"gopkg.in/yaml.v3"
)

// nodeWire is the node envelope on the wire; attributes are decoded separately
// once the type is known.
type nodeWire struct {
	ID          string `json:"id" yaml:"id"`
	Type        string `json:"type" yaml:"type"`
	Code        string `json:"code,omitempty" yaml:"code,omitempty"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func (n Node) wire() nodeWire {
	return nodeWire{
		ID:          n.ID,
		Type:        n.TypeName(),
		Code:        n.Code,
		Label:       n.Label,
		Description: n.Description,
	}
}

func (n *Node) fromWire(w nodeWire) {
	n.ID = w.ID
	n.RawType = w.Type
	n.Type = taxonomy.Parse(w.Type)
	n.Code = w.Code
	n.Label = w.Label
	n.Description = w.Description
}

// MarshalJSON encodes the node with its canonical type tag.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		nodeWire
		Attributes Attributes `json:"attributes,omitempty"`
	}{n.wire(), n.Attributes})
}

// UnmarshalJSON accepts singular, plural or localized type tags and decodes the
// attributes into the matching variant.
func (n *Node) UnmarshalJSON(b []byte) error {
	var w struct {
		nodeWire
		Attributes json.RawMessage `json:"attributes"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	n.fromWire(w.nodeWire)

	target := newAttributes(n.Type)
	if len(w.Attributes) > 0 && string(w.Attributes) != "null" {
		if err := json.Unmarshal(w.Attributes, target); err != nil {
			return fmt.Errorf("node %s attributes: %w", w.ID, err)
		}
	}
	n.Attributes = asAttributes(target)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (n Node) MarshalYAML() (any, error) {
	return struct {
		nodeWire   `yaml:",inline"`
		Attributes Attributes `yaml:"attributes,omitempty"`
	}{n.wire(), n.Attributes}, nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var w struct {
		nodeWire   `yaml:",inline"`
		Attributes yaml.Node `yaml:"attributes"`
	}
	if err := value.Decode(&w); err != nil {
		return err
	}
	n.fromWire(w.nodeWire)

	target := newAttributes(n.Type)
	if w.Attributes.Kind != 0 {
		if err := w.Attributes.Decode(target); err != nil {
			return fmt.Errorf("node %s attributes: %w", w.ID, err)
		}
	}
	n.Attributes = asAttributes(target)
	return nil
}

// Format is a serialization format for snapshots and datasets.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatOf picks the format from a file extension; anything but .yaml/.yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Decode parses a snapshot and fills missing stats.
func Decode(data []byte, f Format) (*Snapshot, error) {
	s := &Snapshot{}
	var err error
	if f == YAML {
		err = yaml.Unmarshal(data, s)
	} else {
		err = json.Unmarshal(data, s)
	}
	if err != nil {
		return nil, fmt.Errorf("graph parse: %w", err)
	}
	s.Count()
	return s, nil
}

// Encode serializes any value in the given format.
func Encode(v any, f Format) ([]byte, error) {
	if f == YAML {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// LoadFile reads a snapshot or dataset file.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, FormatOf(path))
}
