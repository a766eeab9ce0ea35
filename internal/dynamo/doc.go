// Package dynamo provides the shared primitives used by the simulation
// packages:
//
//   - sentinel errors and [SimulationError]
//   - [ParallelFor]: bounded data-parallel loop over an index range
//   - [RNG]: deterministic random source for particle seeding
//
// # Thread Safety
//
// [RNG] is NOT safe for concurrent use. [ParallelFor] blocks until every
// chunk has completed, so callers never observe a partially processed range.
package dynamo
