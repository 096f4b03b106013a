package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
)

const (
	ResultsFileName = "results.json"
	LedgerFileName  = "ledger.csv"
)

// RunResult is the persisted outcome of one run.
type RunResult struct {
	RunID     string                           `json:"run_id"`
	Strategy  string                           `json:"strategy"`
	Lambda    float64                          `json:"lambda"`
	Servers   [2]string                        `json:"servers"`
	Summary   Summary                          `json:"summary"`
	Functions map[string]map[int64]LedgerEntry `json:"functions"`
}

// Result assembles the run's persisted outcome.
func (s *Simulator) Result() *RunResult {
	r := &RunResult{
		RunID:     s.Metrics.RunID,
		Strategy:  s.strategyName(),
		Lambda:    s.Config.Policy.Lambda,
		Servers:   [2]string{s.Config.Servers.Old, s.Config.Servers.New},
		Summary:   s.Metrics.Summarize(),
		Functions: make(map[string]map[int64]LedgerEntry, len(s.Functions)),
	}
	for _, fn := range s.Functions {
		r.Functions[fn.Name] = s.Ledger.Function(fn.ID)
	}
	return r
}

// SaveResults writes results.json and ledger.csv into dir, creating it if needed.
// The ledger is only written here, once, at the end of a run.
func (s *Simulator) SaveResults(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	data, err := json.MarshalIndent(s.Result(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	resultsPath := filepath.Join(dir, ResultsFileName)
	if err := os.WriteFile(resultsPath, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	ledgerPath := filepath.Join(dir, LedgerFileName)
	f, err := os.Create(ledgerPath)
	if err != nil {
		return fmt.Errorf("creating ledger csv: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logrus.Errorf("Error closing %s: %v", ledgerPath, closeErr)
		}
	}()
	records := s.Ledger.Records(s.Functions)
	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("writing ledger csv: %w", err)
	}
	logrus.Infof("Results written to %s and %s", resultsPath, ledgerPath)
	return nil
}

// LoadResults reads a results.json written by SaveResults.
func LoadResults(path string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	var r RunResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing results %s: %w", path, err)
	}
	return &r, nil
}
