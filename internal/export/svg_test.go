package export

import (
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/sim"
	"github.com/san-kum/horizon/internal/viz"
)

func TestFrameToSVG(t *testing.T) {
	f := &sim.Frame{
		Live:       2,
		Positions:  []r3.Vec{{X: 10}, {Y: -10}},
		Velocities: []r3.Vec{{}, {}},
		Colors:     []physics.Color{{R: 1}, {B: 1}},
	}
	cam := viz.NewCamera(20)
	cam.RotX = 0

	svg := FrameToSVG(f, cam, 4, 200, colorful.Color{R: 1, G: 1, B: 1})
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("malformed svg:\n%s", svg)
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 particles, got %d", got)
	}
	if !strings.Contains(svg, `fill="#ff0000"`) || !strings.Contains(svg, `fill="#0000ff"`) {
		t.Error("particle colors missing")
	}
	if !strings.Contains(svg, "<line") {
		t.Error("horizon outline missing")
	}
}

func TestFrameToSVG_Nil(t *testing.T) {
	if FrameToSVG(nil, viz.NewCamera(1), 1, 100, colorful.Color{}) != "" {
		t.Error("expected empty output for nil frame")
	}
}

func TestSeriesToSVG(t *testing.T) {
	svg := SeriesToSVG([]float64{0, 1, 2}, []float64{5, 5, 5}, 300, 100, "#00ff00")
	if !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Error("stroke color missing")
	}
	if got := strings.Count(svg, " L"); got != 2 {
		t.Errorf("expected 2 line segments, got %d", got)
	}
	if SeriesToSVG([]float64{0}, []float64{1}, 10, 10, "#fff") != "" {
		t.Error("a single point should produce no svg")
	}
}
