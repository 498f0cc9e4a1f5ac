package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/msalah0e/gridmap/internal/scene"
	"github.com/msalah0e/gridmap/internal/taxonomy"
)

// cell is one character of the canvas.
type cell struct {
	r     rune
	color taxonomy.Color
	node  bool
}

// canvas projects scene coordinates onto a character grid.
type canvas struct {
	w, h  int
	cells [][]cell
	// where each node landed, by scene index
	at map[int][2]int
}

// project fits the scene into w×h characters. A row of the layout maps to a
// row of the grid; a single column or row is centered.
func project(sc *scene.Scene, w, h int) *canvas {
	c := &canvas{w: w, h: h, at: make(map[int][2]int, len(sc.Nodes))}
	c.cells = make([][]cell, h)
	for i := range c.cells {
		c.cells[i] = make([]cell, w)
	}
	if len(sc.Nodes) == 0 || w < 1 || h < 1 {
		return c
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, n := range sc.Nodes {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	scale := func(v, lo, hi float64, size int) int {
		if hi == lo || size == 1 {
			return size / 2
		}
		return int(math.Round((v - lo) / (hi - lo) * float64(size-1)))
	}

	index := make(map[string]int, len(sc.Nodes))
	for i, n := range sc.Nodes {
		c.at[i] = [2]int{scale(n.X, minX, maxX, w), scale(n.Y, minY, maxY, h)}
		index[n.ID] = i
	}

	for _, e := range sc.Edges {
		from, to := c.at[index[e.Source]], c.at[index[e.Target]]
		c.line(from, to, e.Color)
	}
	for i, n := range sc.Nodes {
		p := c.at[i]
		c.cells[p[1]][p[0]] = cell{r: []rune(taxonomy.IconOf(n.Type).Glyph)[0], color: taxonomy.ColorOf(n.Type), node: true}
	}
	return c
}

// line draws a dotted segment between two points, leaving both ends free.
func (c *canvas) line(from, to [2]int, color taxonomy.Color) {
	x0, y0, x1, y1 := from[0], from[1], to[0], to[1]
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		if (x0 != from[0] || y0 != from[1]) && (x0 != x1 || y0 != y1) && !c.cells[y0][x0].node {
			c.cells[y0][x0] = cell{r: '·', color: color}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// render draws the grid. The cursor node is underlined, the selected one
// reversed.
func (c *canvas) render(cursor, selected int) string {
	marks := map[[2]int]lipgloss.Style{}
	if p, ok := c.at[cursor]; ok {
		marks[p] = lipgloss.NewStyle().Underline(true).Bold(true)
	}
	if p, ok := c.at[selected]; ok {
		marks[p] = lipgloss.NewStyle().Reverse(true).Bold(true)
	}

	var b strings.Builder
	for y, row := range c.cells {
		for x, cl := range row {
			if cl.r == 0 {
				b.WriteByte(' ')
				continue
			}
			style, marked := marks[[2]int{x, y}]
			if !marked {
				style = lipgloss.NewStyle()
			}
			b.WriteString(style.Foreground(lipgloss.Color(string(cl.color))).Render(string(cl.r)))
		}
		if y < len(c.cells)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// readingOrder returns scene indexes sorted top to bottom, then left to right.
func readingOrder(sc *scene.Scene) []int {
	order := make([]int, len(sc.Nodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		na, nb := sc.Nodes[order[a]], sc.Nodes[order[b]]
		if na.Y != nb.Y {
			return na.Y < nb.Y
		}
		return na.X < nb.X
	})
	return order
}

// nearestInRow finds, in the layout row above (dir=-1) or below (dir=1) the
// node at, the node closest in x. It returns at when there is no such row.
func nearestInRow(sc *scene.Scene, at, dir int) int {
	cur := sc.Nodes[at]
	rowY := math.NaN()
	for _, n := range sc.Nodes {
		if d := n.Y - cur.Y; float64(dir)*d > 0 && (math.IsNaN(rowY) || math.Abs(d) < math.Abs(rowY-cur.Y)) {
			rowY = n.Y
		}
	}
	if math.IsNaN(rowY) {
		return at
	}
	best, bestDX := at, math.Inf(1)
	for i, n := range sc.Nodes {
		if n.Y == rowY && math.Abs(n.X-cur.X) < bestDX {
			best, bestDX = i, math.Abs(n.X-cur.X)
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
