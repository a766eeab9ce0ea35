package export

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/horizon/internal/sim"
	"github.com/san-kum/horizon/internal/viz"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

type dot struct {
	x, y  int
	depth float64
	fill  string
}

// FrameToSVG draws the particles of f through cam on a size×size image,
// far particles first, with the absorption sphere of radius rs outlined
// behind them.
func FrameToSVG(f *sim.Frame, cam *viz.Camera, rs float64, size int, horizon colorful.Color) string {
	if f == nil || cam == nil || size <= 0 {
		return ""
	}

	var sb strings.Builder
	header(&sb, size, size)

	fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-width=\"1\" opacity=\"0.6\">\n", horizon.Clamped().Hex())
	for _, e := range viz.HorizonWireframe(rs, 48, horizon).Edges {
		x0, y0, _, ok0 := cam.Project(e.Start, size, size)
		x1, y1, _, ok1 := cam.Project(e.End, size, size)
		if !ok0 || !ok1 {
			continue
		}
		fmt.Fprintf(&sb, "<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\"/>\n", x0, y0, x1, y1)
	}
	sb.WriteString("</g>\n")

	dots := make([]dot, 0, len(f.Positions))
	for i, p := range f.Positions {
		x, y, depth, ok := cam.Project(p, size, size)
		if !ok {
			continue
		}
		dots = append(dots, dot{x: x, y: y, depth: depth, fill: f.Colors[i].Hex()})
	}
	// the camera sits on +z, so ascending depth paints far to near
	slices.SortStableFunc(dots, func(a, b dot) int { return cmp.Compare(a.depth, b.depth) })

	r := math.Max(0.8, float64(size)/600)
	sb.WriteString("<g>\n")
	for _, d := range dots {
		fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"%.1f\" fill=\"%s\"/>\n", d.x, d.y, r, d.fill)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG draws values against times as a single polyline.
func SeriesToSVG(times, values []float64, width, height int, stroke string) string {
	n := min(len(times), len(values))
	if n < 2 {
		return ""
	}

	minX, maxX := times[0], times[0]
	minY, maxY := values[0], values[0]
	for i := 1; i < n; i++ {
		minX, maxX = math.Min(minX, times[i]), math.Max(maxX, times[i])
		minY, maxY = math.Min(minY, values[i]), math.Max(maxY, values[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	minY -= rangeY * 0.1
	rangeX *= 1.1
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)

	for i := 0; i < n; i++ {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
