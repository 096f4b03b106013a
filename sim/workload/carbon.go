package workload

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
)

// CarbonRecord is one row of the carbon-intensity CSV, in gCO2/kWh.
type CarbonRecord struct {
	Step            int64   `csv:"step"`
	CarbonIntensity float64 `csv:"carbon_intensity"`
}

// LoadCarbon reads a carbon-intensity series indexed by step.
func LoadCarbon(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening carbon trace: %w", err)
	}
	defer f.Close()
	series, err := ReadCarbon(f)
	if err != nil {
		return nil, fmt.Errorf("carbon trace %s: %w", path, err)
	}
	return series, nil
}

// ReadCarbon parses the carbon CSV format from r. Rows may appear in any
// order but must cover steps 0..n-1 exactly once.
func ReadCarbon(r io.Reader) ([]float64, error) {
	var records []CarbonRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no samples")
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Step < records[j].Step })
	series := make([]float64, len(records))
	for i, rec := range records {
		if rec.Step != int64(i) {
			return nil, fmt.Errorf("steps are not contiguous: expected step %d, got %d", i, rec.Step)
		}
		if rec.CarbonIntensity < 0 {
			return nil, fmt.Errorf("step %d: negative carbon intensity %g", rec.Step, rec.CarbonIntensity)
		}
		series[i] = rec.CarbonIntensity
	}
	return series, nil
}
