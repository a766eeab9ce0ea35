// Package physics implements the central-mass particle model: a disk of
// test particles orbiting a point mass at the origin.
//
// One simulation step is three stages run in order on a [State]:
//
//   - [Kernel.Integrate]: semi-implicit Euler step under a = -GM/r³·x
//   - [Kernel.Absorb]: stable in-place removal of particles with r <= r_s
//   - [Kernel.HeatColors]: per-particle color from speed and distance
//
// [Seed] builds the initial tilted disk from a [Config].
//
// # Slot Reuse
//
// Particles have no identity beyond their index. Absorb compacts the
// slices, so indices taken before an Absorb call are meaningless after it.
package physics
