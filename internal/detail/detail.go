// Package detail projects a selected node into the label/value rows shown by a
// detail panel. It knows nothing about how the rows are drawn.
package detail

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/taxonomy"
)

// Row is one label/value line of the panel.
type Row struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Panel is a full detail panel: header plus rows.
type Panel struct {
	ID    string         `json:"id" yaml:"id"`
	Title string         `json:"title" yaml:"title"`
	Type  string         `json:"type" yaml:"type"`
	Color taxonomy.Color `json:"color" yaml:"color"`
	Icon  taxonomy.Icon  `json:"icon" yaml:"icon"`
	Rows  []Row          `json:"rows" yaml:"rows"`
}

// Build returns the panel for n.
func Build(n kgraph.Node, loc taxonomy.Locale) Panel {
	return Panel{
		ID:    n.ID,
		Title: n.Title(),
		Type:  n.TypeName(),
		Color: taxonomy.ColorOf(n.Type),
		Icon:  taxonomy.IconOf(n.Type),
		Rows:  Present(n, loc),
	}
}

type rows struct {
	loc taxonomy.Locale
	out []Row
}

func (r *rows) add(en, fr, value string) {
	if value == "" {
		return
	}
	r.out = append(r.out, Row{Label: r.loc.Text(en, fr), Value: value})
}

func (r *rows) str(en, fr string, v *string) {
	if v != nil {
		r.add(en, fr, *v)
	}
}

func (r *rows) num(en, fr string, v *int) {
	if v != nil {
		r.add(en, fr, strconv.Itoa(*v))
	}
}

func (r *rows) outOfFive(en, fr string, v *int) {
	if v != nil {
		r.add(en, fr, fmt.Sprintf("%d/5", *v))
	}
}

// Present returns the ordered rows for n: type, code, the type-specific
// attributes, then the description. Absent attributes produce no row.
func Present(n kgraph.Node, loc taxonomy.Locale) []Row {
	r := &rows{loc: loc}

	typeLabel := taxonomy.LabelOf(n.Type, loc)
	if !n.Type.Known() && n.RawType != "" {
		typeLabel = n.RawType
	}
	r.add("Type", "Type", typeLabel)
	r.add("Code", "Code", n.Code)

	attrs := n.Attributes
	if v := reflect.ValueOf(attrs); v.Kind() == reflect.Pointer && v.IsNil() {
		attrs = nil
	}
	switch a := attrs.(type) {
	case *kgraph.GroupAttributes:
		r.num("Processes", "Phases", a.ProcessCount)
	case *kgraph.ProcessAttributes:
		r.str("Group", "Bloc", a.GroupCode)
		r.num("Order", "Ordre", a.Order)
	case *kgraph.StandardAttributes:
		r.str("Issuing body", "Organisme", a.IssuingBody)
		r.str("Scope", "Périmètre", a.Scope)
	case *kgraph.RiskAttributes:
		r.outOfFive("Severity", "Gravité", a.Severity)
		r.str("Category", "Catégorie", a.Category)
		r.str("Mitigation", "Atténuation", a.Mitigation)
	case *kgraph.DeliverableAttributes:
		if a.Mandatory != nil {
			if *a.Mandatory {
				r.add("Requirement", "Exigence", loc.Text("Mandatory", "Obligatoire"))
			} else {
				r.add("Requirement", "Exigence", loc.Text("Optional", "Optionnel"))
			}
		}
		r.str("Format", "Format", a.Format)
	case *kgraph.ToolAttributes:
		r.str("License", "Licence", a.License)
		r.str("Publisher", "Éditeur", a.Publisher)
	case *kgraph.SkillAttributes:
		r.str("Pole", "Pôle", a.Pole)
		r.outOfFive("Required level", "Niveau requis", a.RequiredLevel)
	case kgraph.RawAttributes:
		keys := make([]string, 0, len(a))
		for k := range a {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if a[k] == nil {
				continue
			}
			r.add(k, k, fmt.Sprint(a[k]))
		}
	}

	r.add("Description", "Description", n.Description)
	return r.out
}
