// Package sim provides the trace-driven keep-alive simulation engine.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - pool.go: Reservation lifecycle (reserved → consumed | expired | evicted) per generation
//   - execution.go: how invocations are served warm or cold and what they cost
//   - simulator.go: the per-minute replay loop, settlement and admission
//
// # Architecture
//
// The sim package defines interfaces and bridge types; implementations live in
// sub-packages:
//   - sim/cost/: profile-based cost model (execution and keep-alive carbon)
//   - sim/optimizer/: keep-alive strategies (firefly, swarm, grid, oracle)
//   - sim/workload/: invocation, memory and carbon-intensity trace loading
//   - sim/trace/: decision trace recording
//
// sim/optimizer registers its constructor via init() by setting the
// package-level factory variable NewStrategyFunc.
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - CostModel: service times and carbon of executions and keep-alive
//   - Strategy: per-function (placement, keep-alive) decision each invoked step
//   - AdmissionPolicy: evict reservations until a pool fits its memory limit
package sim
