package workload

import (
	"fmt"

	"github.com/keepalive-sim/keepalive-sim/sim"
)

// Workload is the aligned input of one simulation run.
type Workload struct {
	Functions   []sim.Function
	Invocations [][]int
	Carbon      []float64
}

// Assemble joins the loaded inputs. When names is non-empty only those
// functions are kept, in the given order; otherwise trace order is used.
// Every kept function needs a memory entry, and the carbon series must cover
// every step of the trace.
func Assemble(trace *InvocationTrace, memory map[string]float64, carbon []float64, names []string) (*Workload, error) {
	if trace == nil || len(trace.Functions) == 0 {
		return nil, fmt.Errorf("empty invocation trace")
	}
	if len(carbon) < trace.Steps() {
		return nil, fmt.Errorf("carbon trace covers %d steps, invocation trace covers %d", len(carbon), trace.Steps())
	}
	if len(names) == 0 {
		names = trace.Functions
	}

	w := &Workload{Carbon: carbon}
	for i, name := range names {
		row, ok := trace.Row(name)
		if !ok {
			return nil, fmt.Errorf("function %q not in invocation trace", name)
		}
		mem, ok := memory[name]
		if !ok {
			return nil, fmt.Errorf("function %q has no memory entry", name)
		}
		w.Functions = append(w.Functions, sim.Function{ID: i, Name: name, MemoryMB: mem})
		w.Invocations = append(w.Invocations, row)
	}
	return w, nil
}

// Load reads and assembles the three input files.
func Load(invocationsPath, memoryPath, carbonPath string, names []string) (*Workload, error) {
	trace, err := LoadInvocations(invocationsPath)
	if err != nil {
		return nil, err
	}
	memory, err := LoadMemory(memoryPath)
	if err != nil {
		return nil, err
	}
	carbon, err := LoadCarbon(carbonPath)
	if err != nil {
		return nil, err
	}
	return Assemble(trace, memory, carbon, names)
}

// TotalInvocations sums invocation counts over [start, end).
func (w *Workload) TotalInvocations(start, end int64) int {
	total := 0
	for _, row := range w.Invocations {
		for t := start; t < end && t < int64(len(row)); t++ {
			total += row[t]
		}
	}
	return total
}
