package taxonomy

import (
	"strconv"
	"strings"
)

// Color is a "#RRGGBB" hex color.
type Color string

// Neutral is used for anything the registry does not recognize.
const Neutral Color = "#9CA3AF"

// RGB decodes the hex color. Malformed values decode as the neutral gray.
func (c Color) RGB() (r, g, b int) {
	s := strings.TrimPrefix(string(c), "#")
	if len(s) != 6 {
		return Neutral.RGB()
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Neutral.RGB()
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}

// Icon references a renderer icon by name and carries a single-cell glyph for
// terminal surfaces.
type Icon struct {
	Name  string `json:"name" yaml:"name"`
	Glyph string `json:"glyph" yaml:"glyph"`
}

// DefaultIcon is used for unknown types.
var DefaultIcon = Icon{Name: "circle", Glyph: "○"}

// ColorOf returns the display color of t.
func ColorOf(t Type) Color {
	switch t {
	case Group:
		return "#1D4ED8"
	case Process:
		return "#7C3AED"
	case Standard:
		return "#0891B2"
	case Risk:
		return "#DC2626"
	case Deliverable:
		return "#16A34A"
	case Tool:
		return "#EA580C"
	case Skill:
		return "#CA8A04"
	default:
		return Neutral
	}
}

// IconOf returns the icon of t.
func IconOf(t Type) Icon {
	switch t {
	case Group:
		return Icon{Name: "layers", Glyph: "◆"}
	case Process:
		return Icon{Name: "workflow", Glyph: "◉"}
	case Standard:
		return Icon{Name: "book-open", Glyph: "▤"}
	case Risk:
		return Icon{Name: "alert-triangle", Glyph: "▲"}
	case Deliverable:
		return Icon{Name: "package", Glyph: "■"}
	case Tool:
		return Icon{Name: "wrench", Glyph: "✦"}
	case Skill:
		return Icon{Name: "graduation-cap", Glyph: "★"}
	default:
		return DefaultIcon
	}
}
