package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = rune(0x2800)

// Canvas is a braille pixel grid with one color per character cell. When
// several colored dots share a cell the brightest one wins.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]colorful.Color
	lightness     [][]float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:     w,
		Height:    h,
		Grid:      make([][]rune, h),
		Colors:    make([][]colorful.Color, h),
		lightness: make([][]float64, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]colorful.Color, w)
		c.lightness[i] = make([]float64, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) cell(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, rune(pixelMap[y%4][x%2]), true
}

// Set lights the sub-pixel (x, y) without touching the cell color. The
// canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= bit
	}
}

// Plot lights (x, y) and offers col as the cell color.
func (c *Canvas) Plot(x, y int, col colorful.Color) {
	row, cl, bit, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][cl] |= bit
	col = col.Clamped()
	if l, _, _ := col.Lab(); l > c.lightness[row][cl] {
		c.lightness[row][cl] = l
		c.Colors[row][cl] = col
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = colorful.Color{}
			c.lightness[i][j] = -1
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, col colorful.Color) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Plot(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String renders the grid without colors.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render renders the grid with cell colors, batching runs of equal color
// into one styled segment. Lit cells without a color use fallback.
func (c *Canvas) Render(fallback colorful.Color) string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for start < len(row) {
			hex := c.cellHex(i, start, fallback)
			end := start + 1
			for end < len(row) && c.cellHex(i, end, fallback) == hex {
				end++
			}
			seg := string(row[start:end])
			if hex == "" {
				b.WriteString(seg)
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(seg))
			}
			start = end
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (c *Canvas) cellHex(row, col int, fallback colorful.Color) string {
	switch {
	case c.Grid[row][col] == blank:
		return ""
	case c.lightness[row][col] < 0:
		return fallback.Hex()
	}
	return c.Colors[row][col].Hex()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
