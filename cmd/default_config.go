package cmd

import (
	"github.com/keepalive-sim/keepalive-sim/sim/cost"
	"github.com/keepalive-sim/keepalive-sim/sim/workload"
)

// loadWorkload reads the invocation and carbon traces. Function memory comes
// from --memory when given, otherwise from the cost profile in defaults.yaml.
func loadWorkload(profile *cost.Profile) (*workload.Workload, error) {
	if memoryPath != "" {
		return workload.Load(invocationsPath, memoryPath, carbonPath, functionNames)
	}
	trace, err := workload.LoadInvocations(invocationsPath)
	if err != nil {
		return nil, err
	}
	carbon, err := workload.LoadCarbon(carbonPath)
	if err != nil {
		return nil, err
	}
	return workload.Assemble(trace, profileMemory(profile), carbon, functionNames)
}

// profileMemory returns the memory footprint of every profiled function.
func profileMemory(profile *cost.Profile) map[string]float64 {
	memory := make(map[string]float64, len(profile.Functions))
	for _, f := range profile.Functions {
		memory[f.Name] = f.MemoryMB
	}
	return memory
}
