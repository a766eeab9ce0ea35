package physics

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	glowAmplitude = 0.3
	glowCenter    = 1.2
	glowWidth     = 0.3
)

// Color is a linear RGB triple with channels in [0, 1].
type Color struct {
	R, G, B float64
}

// Hex renders the color as #rrggbb.
func (c Color) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}

// Heat normalizes speed by maxSpeed. A maximum that is not positive and
// finite yields zero heat instead of propagating NaN or Inf.
func Heat(speed, maxSpeed float64) float64 {
	if !(maxSpeed > 0) || math.IsInf(maxSpeed, 1) {
		return 0
	}
	h := speed / maxSpeed
	if math.IsNaN(h) {
		return 0
	}
	return clamp01(h)
}

// Glow is the Gaussian brightness bump centered at 1.2·r_s.
func Glow(dist, rs float64) float64 {
	x := (dist - glowCenter*rs) / (glowWidth * rs)
	return glowAmplitude * math.Exp(-(x * x))
}

// HeatColor combines the heat ramp with the glow term and clamps the result.
func HeatColor(heat, dist, rs float64) Color {
	g := Glow(dist, rs)
	if math.IsNaN(g) {
		g = 0
	}
	return Color{
		R: clamp01(heat + g),
		G: clamp01(0.4 + 0.6*heat + g),
		B: clamp01(0.1 + 0.3*heat + g),
	}
}

// MaxFinite returns the largest finite value in xs, or 0 if there is none.
func MaxFinite(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		if x > m && !math.IsInf(x, 1) {
			m = x
		}
	}
	return m
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
