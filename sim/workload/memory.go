package workload

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// MemoryRecord is one row of the memory CSV.
type MemoryRecord struct {
	Function string  `csv:"function"`
	MemoryMB float64 `csv:"memory_mb"`
}

// LoadMemory reads per-function memory footprints in MB, keyed by function name.
func LoadMemory(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening memory trace: %w", err)
	}
	defer f.Close()
	memory, err := ReadMemory(f)
	if err != nil {
		return nil, fmt.Errorf("memory trace %s: %w", path, err)
	}
	return memory, nil
}

// ReadMemory parses the memory CSV format from r.
func ReadMemory(r io.Reader) (map[string]float64, error) {
	var records []MemoryRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	memory := make(map[string]float64, len(records))
	for _, rec := range records {
		if rec.Function == "" {
			return nil, fmt.Errorf("empty function name")
		}
		if rec.MemoryMB < 0 {
			return nil, fmt.Errorf("function %s: negative memory %g MB", rec.Function, rec.MemoryMB)
		}
		if _, dup := memory[rec.Function]; dup {
			return nil, fmt.Errorf("duplicate function %q", rec.Function)
		}
		memory[rec.Function] = rec.MemoryMB
	}
	return memory, nil
}
