package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/horizon/internal/sim"
)

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XLabel, YLabel string
	Points         []struct{ X, Y float64 }
}

// FramePortrait plots distance from the center against speed for every
// particle of f.
func FramePortrait(f *sim.Frame) *PhasePortrait2D {
	portrait := &PhasePortrait2D{
		XLabel: "r",
		YLabel: "|v|",
		Points: make([]struct{ X, Y float64 }, 0, len(f.Positions)),
	}
	for i, p := range f.Positions {
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: r3.Norm(p),
			Y: r3.Norm(f.Velocities[i]),
		})
	}
	return portrait
}

// PhasePortraitToASCII renders the portrait as a density plot. Cells hit
// more often get heavier glyphs.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return "No points"
	}

	xs := make([]float64, len(portrait.Points))
	ys := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	minX, maxX := padRange(floats.Min(xs), floats.Max(xs))
	minY, maxY := padRange(floats.Min(ys), floats.Max(ys))

	counts := make([][]int, height)
	for i := range counts {
		counts[i] = make([]int, width)
	}
	peak := 0
	for i := range xs {
		col := int((xs[i] - minX) / (maxX - minX) * float64(width-1))
		row := height - 1 - int((ys[i]-minY)/(maxY-minY)*float64(height-1))
		if row < 0 || row >= height || col < 0 || col >= width {
			continue
		}
		counts[row][col]++
		peak = max(peak, counts[row][col])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %.4g .. %.4g\n", portrait.YLabel, minY, maxY)
	for _, row := range counts {
		sb.WriteRune('│')
		for _, c := range row {
			sb.WriteRune(densityGlyph(c, peak))
		}
		sb.WriteRune('\n')
	}
	sb.WriteRune('└')
	sb.WriteString(strings.Repeat("─", width))
	fmt.Fprintf(&sb, "\n%s %.4g .. %.4g\n", portrait.XLabel, minX, maxX)
	return sb.String()
}

var densityGlyphs = []rune{'·', '•', '●'}

func densityGlyph(count, peak int) rune {
	if count == 0 {
		return ' '
	}
	idx := (count - 1) * len(densityGlyphs) / peak
	return densityGlyphs[min(idx, len(densityGlyphs)-1)]
}

func padRange(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - 0.05*span, hi + 0.05*span
}
