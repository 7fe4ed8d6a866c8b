package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colorBackground = lipgloss.Color("236")

// canvas is a grid of glyphs with a foreground color per cell.
type canvas struct {
	w, h   int
	cells  []rune
	colors []lipgloss.Color
}

func newCanvas(w, h int) *canvas {
	c := &canvas{
		w:      w,
		h:      h,
		cells:  make([]rune, w*h),
		colors: make([]lipgloss.Color, w*h),
	}
	for i := range c.cells {
		c.cells[i] = ' '
		c.colors[i] = colorBackground
	}
	return c
}

func (c *canvas) inside(x, y int) bool {
	return x >= 0 && x < c.w && y >= 0 && y < c.h
}

func (c *canvas) set(x, y int, r rune, color lipgloss.Color) {
	if !c.inside(x, y) {
		return
	}
	c.cells[y*c.w+x] = r
	c.colors[y*c.w+x] = color
}

func (c *canvas) at(x, y int) rune {
	if !c.inside(x, y) {
		return 0
	}
	return c.cells[y*c.w+x]
}

// text writes s starting at (x, y), clipped to the row.
func (c *canvas) text(x, y int, s string, color lipgloss.Color) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, color)
	}
}

// String renders the canvas, styling runs of equal color together.
func (c *canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		row := y * c.w
		start := 0
		for x := 1; x <= c.w; x++ {
			if x < c.w && c.colors[row+x] == c.colors[row+start] {
				continue
			}
			style := lipgloss.NewStyle().Foreground(c.colors[row+start])
			b.WriteString(style.Render(string(c.cells[row+start : row+x])))
			start = x
		}
		if y < c.h-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
