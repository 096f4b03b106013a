// Package testutil provides shared test infrastructure for the keep-alive
// simulator: on-disk input fixtures and float assertion helpers shared by the
// sim/ subpackages.
package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Inputs describes a small workload to write as the CSV files the loaders read.
type Inputs struct {
	Functions   []string
	MemoryMB    []float64
	Invocations [][]int
	Carbon      []float64
}

// InputPaths are the files written by WriteInputs.
type InputPaths struct {
	Invocations string
	Memory      string
	Carbon      string
}

// WriteInputs writes in as invocations.csv, memory.csv and carbon.csv under dir.
func WriteInputs(t *testing.T, dir string, in Inputs) InputPaths {
	t.Helper()
	if len(in.Functions) != len(in.Invocations) || len(in.Functions) != len(in.MemoryMB) {
		t.Fatalf("inconsistent fixture: %d functions, %d traces, %d memory entries",
			len(in.Functions), len(in.Invocations), len(in.MemoryMB))
	}

	var inv strings.Builder
	inv.WriteString("function")
	steps := 0
	if len(in.Invocations) > 0 {
		steps = len(in.Invocations[0])
	}
	for s := 0; s < steps; s++ {
		fmt.Fprintf(&inv, ",%d", s)
	}
	inv.WriteString("\n")
	for i, name := range in.Functions {
		inv.WriteString(name)
		for _, c := range in.Invocations[i] {
			fmt.Fprintf(&inv, ",%d", c)
		}
		inv.WriteString("\n")
	}

	var mem strings.Builder
	mem.WriteString("function,memory_mb\n")
	for i, name := range in.Functions {
		fmt.Fprintf(&mem, "%s,%g\n", name, in.MemoryMB[i])
	}

	var ci strings.Builder
	ci.WriteString("step,carbon_intensity\n")
	for s, v := range in.Carbon {
		fmt.Fprintf(&ci, "%d,%g\n", s, v)
	}

	return InputPaths{
		Invocations: WriteFile(t, dir, "invocations.csv", inv.String()),
		Memory:      WriteFile(t, dir, "memory.csv", mem.String()),
		Carbon:      WriteFile(t, dir, "carbon.csv", ci.String()),
	}
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// DefaultsPath returns the path of the repository's defaults.yaml.
// The path is resolved relative to this source file: sim/internal/testutil/ → repo root.
func DefaultsPath(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "defaults.yaml")
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
