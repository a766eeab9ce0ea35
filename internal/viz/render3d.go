package viz

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera manages 3D projection to a 2D plane. World coordinates are divided
// by Extent first, so a sphere of radius Extent fills about a third of the
// shorter screen side at Zoom 1.
type Camera struct {
	Distance         float64
	Near             float64
	Extent           float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

const (
	cameraDistance = 5.0
	minZoom        = 0.1
	maxZoom        = 20.0
)

// DefaultTilt is the camera pitch that looks at an untilted disk from
// slightly above its plane.
const DefaultTilt = -1.2

func NewCamera(extent float64) *Camera {
	if extent <= 0 {
		extent = 1
	}
	return &Camera{
		Distance: cameraDistance,
		Near:     0.1,
		Extent:   extent,
		RotX:     DefaultTilt,
		Zoom:     1.0,
	}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(maxZoom, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(minZoom, c.Zoom/1.2) }

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p r3.Vec) r3.Vec {
	sx, cx := math.Sincos(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	sy, cy := math.Sincos(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	sz, cz := math.Sincos(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts world coordinates to sub-pixel coordinates on a sw×sh
// surface. It returns x, y, depth and whether the point is on screen.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	rot := r3.Scale(c.Zoom/c.Extent, c.RotatePoint(p))
	if rot.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	pScale := float64(min(sw, sh)) / 3.0
	x := int(math.Round(rot.X*scale*pScale)) + sw/2
	y := int(math.Round(-rot.Y*scale*pScale)) + sh/2
	return x, y, rot.Z, x >= 0 && x < sw && y >= 0 && y < sh
}

type Edge struct {
	Start, End r3.Vec
}

type Wireframe struct {
	Edges []Edge
	Color colorful.Color
}

func (w *Wireframe) AddEdge(s, e r3.Vec) { w.Edges = append(w.Edges, Edge{s, e}) }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe onto the canvas, far edges first.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.Width*2, c.Height*4
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2, w.Color)
	}
}

// HorizonWireframe approximates the absorption sphere of radius rs with
// three orthogonal great circles.
func HorizonWireframe(rs float64, segments int, col colorful.Color) *Wireframe {
	if segments < 3 {
		segments = 3
	}
	w := &Wireframe{Color: col}
	ring := func(at func(s, c float64) r3.Vec) {
		prev := at(math.Sincos(0))
		for i := 1; i <= segments; i++ {
			next := at(math.Sincos(2 * math.Pi * float64(i) / float64(segments)))
			w.AddEdge(prev, next)
			prev = next
		}
	}
	ring(func(s, c float64) r3.Vec { return r3.Vec{X: rs * c, Y: rs * s} })
	ring(func(s, c float64) r3.Vec { return r3.Vec{X: rs * c, Z: rs * s} })
	ring(func(s, c float64) r3.Vec { return r3.Vec{Y: rs * c, Z: rs * s} })
	return w
}

// AxesWireframe draws the three coordinate axes from the origin.
func AxesWireframe(l float64, col colorful.Color) *Wireframe {
	w := &Wireframe{Color: col}
	w.AddEdge(r3.Vec{}, r3.Vec{X: l})
	w.AddEdge(r3.Vec{}, r3.Vec{Y: l})
	w.AddEdge(r3.Vec{}, r3.Vec{Z: l})
	return w
}
