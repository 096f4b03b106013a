// Package cost implements sim.CostModel from per-server power and embodied
// carbon figures plus per-function cold/warm service times.
package cost

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Timing is the measured cold and warm service time (seconds) of one function on one server.
type Timing struct {
	Cold float64 `yaml:"cold"`
	Warm float64 `yaml:"warm"`
}

// ServerProfile describes one server generation.
type ServerProfile struct {
	Name            string  `yaml:"name"`
	ExecPowerW      float64 `yaml:"exec_power_w"`        // power attributed to one running invocation
	IdlePowerWPerGB float64 `yaml:"idle_power_w_per_gb"` // DRAM power of an idle warm instance
	EmbodiedGrams   float64 `yaml:"embodied_grams"`      // manufacturing carbon of the whole server
	LifetimeYears   float64 `yaml:"lifetime_years"`
	MemoryGB        float64 `yaml:"memory_gb"`
	Cores           int     `yaml:"cores"`
}

// FunctionProfile holds a function's per-server timings.
type FunctionProfile struct {
	Name     string            `yaml:"name"`
	MemoryMB float64           `yaml:"memory_mb"`
	Timings  map[string]Timing `yaml:"timings"`
}

// Profile is the full cost profile, loadable from YAML.
type Profile struct {
	Servers   []ServerProfile   `yaml:"servers"`
	Functions []FunctionProfile `yaml:"functions"`
}

// LoadProfile reads a YAML cost profile with strict field checking.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cost profile: %w", err)
	}
	var p Profile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing cost profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cost profile %s: %w", path, err)
	}
	return &p, nil
}

// Validate rejects profiles that would break the cost model's positivity.
func (p *Profile) Validate() error {
	seen := make(map[string]bool)
	for _, s := range p.Servers {
		if s.Name == "" {
			return fmt.Errorf("server with empty name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate server %q", s.Name)
		}
		seen[s.Name] = true
		if s.ExecPowerW < 0 || s.IdlePowerWPerGB < 0 || s.EmbodiedGrams < 0 {
			return fmt.Errorf("server %q: power and embodied carbon must be non-negative", s.Name)
		}
		if s.LifetimeYears <= 0 || s.MemoryGB <= 0 || s.Cores <= 0 {
			return fmt.Errorf("server %q: lifetime_years, memory_gb and cores must be positive", s.Name)
		}
	}
	fns := make(map[string]bool)
	for _, f := range p.Functions {
		if fns[f.Name] {
			return fmt.Errorf("duplicate function %q", f.Name)
		}
		fns[f.Name] = true
		if f.MemoryMB < 0 {
			return fmt.Errorf("function %q: memory_mb must be non-negative", f.Name)
		}
		for server, t := range f.Timings {
			if t.Cold <= 0 || t.Warm <= 0 {
				return fmt.Errorf("function %q on %q: cold and warm times must be positive", f.Name, server)
			}
		}
	}
	return nil
}

// Function returns the named function profile.
func (p *Profile) Function(name string) (FunctionProfile, bool) {
	for _, f := range p.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return FunctionProfile{}, false
}
