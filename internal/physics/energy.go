package physics

import "gonum.org/v1/gonum/spatial/r3"

// SpecificEnergy returns the summed specific orbital energy
// Σ(v²/2 - GM/r) of the live particles.
func SpecificEnergy(s *State, gm float64) float64 {
	e := 0.0
	for i, p := range s.Pos {
		v := s.Vel[i]
		e += 0.5*r3.Dot(v, v) - gm/r3.Norm(p)
	}
	return e
}

// AngularMomentum returns the summed specific angular momentum Σ r × v.
func AngularMomentum(s *State) r3.Vec {
	var l r3.Vec
	for i, p := range s.Pos {
		l = r3.Add(l, r3.Cross(p, s.Vel[i]))
	}
	return l
}
