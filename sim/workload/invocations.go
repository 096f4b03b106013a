// Package workload loads the inputs a simulation run replays: per-function
// invocation counts, per-function memory footprints, and the carbon-intensity
// series. All loaders fully materialize their data before the run starts.
package workload

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/gocarina/gocsv"
)

// FunctionColumn is the header of the function-name column in invocation and
// memory CSVs.
const FunctionColumn = "function"

// InvocationTrace holds one row of per-step invocation counts per function,
// in file order.
type InvocationTrace struct {
	Functions []string
	Counts    [][]int
}

// Steps returns the number of time steps covered by the trace.
func (t *InvocationTrace) Steps() int {
	if len(t.Counts) == 0 {
		return 0
	}
	return len(t.Counts[0])
}

// Row returns the counts of the named function.
func (t *InvocationTrace) Row(name string) ([]int, bool) {
	for i, fn := range t.Functions {
		if fn == name {
			return t.Counts[i], true
		}
	}
	return nil, false
}

// LoadInvocations reads a wide invocation CSV: a "function" column followed
// by one column per step, headed 0, 1, 2, ...
func LoadInvocations(path string) (*InvocationTrace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening invocation trace: %w", err)
	}
	defer f.Close()
	trace, err := ReadInvocations(f)
	if err != nil {
		return nil, fmt.Errorf("invocation trace %s: %w", path, err)
	}
	return trace, nil
}

// ReadInvocations parses the wide invocation CSV format from r.
func ReadInvocations(r io.Reader) (*InvocationTrace, error) {
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no functions")
	}

	trace := &InvocationTrace{}
	seen := make(map[string]bool, len(rows))
	steps := -1
	for i, row := range rows {
		name, ok := row[FunctionColumn]
		if !ok {
			return nil, fmt.Errorf("missing %q column", FunctionColumn)
		}
		if name == "" {
			return nil, fmt.Errorf("row %d: empty function name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate function %q", name)
		}
		seen[name] = true

		counts, err := parseCounts(row)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		if steps >= 0 && len(counts) != steps {
			return nil, fmt.Errorf("function %s covers %d steps, expected %d", name, len(counts), steps)
		}
		steps = len(counts)
		trace.Functions = append(trace.Functions, name)
		trace.Counts = append(trace.Counts, counts)
	}
	return trace, nil
}

// parseCounts turns the step columns of one row into a dense slice. Step
// headers must be exactly 0..n-1.
func parseCounts(row map[string]string) ([]int, error) {
	steps := make([]int, 0, len(row))
	values := make(map[int]string, len(row))
	for key, v := range row {
		if key == FunctionColumn {
			continue
		}
		step, err := strconv.Atoi(key)
		if err != nil || step < 0 {
			return nil, fmt.Errorf("column %q is not a step index", key)
		}
		steps = append(steps, step)
		values[step] = v
	}
	sort.Ints(steps)
	counts := make([]int, len(steps))
	for i, step := range steps {
		if step != i {
			return nil, fmt.Errorf("step columns are not contiguous: missing step %d", i)
		}
		n, err := strconv.Atoi(values[step])
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("step %d: negative invocation count %d", step, n)
		}
		counts[i] = n
	}
	return counts, nil
}
