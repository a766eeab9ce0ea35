package physics

import "gonum.org/v1/gonum/spatial/r3"

// State holds the live particles as two index-aligned contiguous slices.
type State struct {
	Pos []r3.Vec
	Vel []r3.Vec
}

func NewState(capacity int) *State {
	return &State{
		Pos: make([]r3.Vec, 0, capacity),
		Vel: make([]r3.Vec, 0, capacity),
	}
}

func (s *State) Len() int { return len(s.Pos) }

// Add appends one particle.
func (s *State) Add(pos, vel r3.Vec) {
	s.Pos = append(s.Pos, pos)
	s.Vel = append(s.Vel, vel)
}

func (s *State) Clone() *State {
	c := &State{
		Pos: make([]r3.Vec, len(s.Pos)),
		Vel: make([]r3.Vec, len(s.Vel)),
	}
	copy(c.Pos, s.Pos)
	copy(c.Vel, s.Vel)
	return c
}

func (s *State) truncate(n int) {
	s.Pos = s.Pos[:n]
	s.Vel = s.Vel[:n]
}

// Distances writes ‖pos‖ per particle into dst, growing it as needed.
func (s *State) Distances(dst []float64) []float64 {
	dst = resize(dst, s.Len())
	for i, p := range s.Pos {
		dst[i] = r3.Norm(p)
	}
	return dst
}

// Speeds writes ‖vel‖ per particle into dst, growing it as needed.
func (s *State) Speeds(dst []float64) []float64 {
	dst = resize(dst, s.Len())
	for i, v := range s.Vel {
		dst[i] = r3.Norm(v)
	}
	return dst
}

func resize[T any](buf []T, n int) []T {
	if cap(buf) < n {
		return make([]T, n)
	}
	return buf[:n]
}
