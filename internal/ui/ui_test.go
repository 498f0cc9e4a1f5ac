package ui

import (
	"testing"

	"github.com/fatih/color"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/stretchr/testify/assert"
)

func TestPadCountsVisibleColumns(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	colored := Bad.Sprint("risk")
	assert.Equal(t, colored+"  ", pad(colored, 6))
	assert.Equal(t, "Compétence ", pad("Compétence", 11))
	assert.Equal(t, "toolong", pad("toolong", 3))
}

func TestSwatch(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	assert.Equal(t, "▲", Swatch(taxonomy.Risk))
	assert.Equal(t, taxonomy.DefaultIcon.Glyph, Swatch(taxonomy.Unknown))
}
