package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyBundle holds policy configuration loadable from a YAML file.
// Nil pointer fields mean "not set in YAML" and do not override flags.
// String fields use empty string for "not set".
type PolicyBundle struct {
	Strategy         string              `yaml:"strategy"`
	Lambda           *float64            `yaml:"lambda"`
	IncludeKeepAlive *bool               `yaml:"include_keepalive"`
	Admission        string              `yaml:"admission"`
	Replacement      string              `yaml:"replacement"`
	Durations        []int               `yaml:"keepalive_durations"`
	Memory           MemoryBundleConfig  `yaml:"memory"`
	Firefly          FireflyBundleConfig `yaml:"firefly"`
	Swarm            SwarmBundleConfig   `yaml:"swarm"`
}

// MemoryBundleConfig holds per-generation pool limits.
type MemoryBundleConfig struct {
	OldMB *float64 `yaml:"old_mb"`
	NewMB *float64 `yaml:"new_mb"`
}

// FireflyBundleConfig holds firefly optimizer parameters.
type FireflyBundleConfig struct {
	PopulationSize *int     `yaml:"population_size"`
	Alpha          *float64 `yaml:"alpha"`
	Beta           *float64 `yaml:"beta"`
	Gamma          *float64 `yaml:"gamma"`
}

// SwarmBundleConfig holds particle swarm parameters.
type SwarmBundleConfig struct {
	PopulationSize *int     `yaml:"population_size"`
	Inertia        *float64 `yaml:"inertia"`
	Cognitive      *float64 `yaml:"cognitive"`
	Social         *float64 `yaml:"social"`
}

// LoadPolicyBundle reads and strictly parses a YAML policy configuration file.
// Unknown keys are errors so that typos do not silently fall back to defaults.
func LoadPolicyBundle(path string) (*PolicyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy config: %w", err)
	}
	var bundle PolicyBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing policy config: %w", err)
	}
	return &bundle, nil
}

// Validate checks that all policy names and parameter ranges in the bundle are valid.
func (b *PolicyBundle) Validate() error {
	if !IsValidStrategy(b.Strategy) {
		return fmt.Errorf("unknown strategy %q", b.Strategy)
	}
	if !IsValidAdmissionPolicy(b.Admission) {
		return fmt.Errorf("unknown admission policy %q", b.Admission)
	}
	if !IsValidReplacementPolicy(b.Replacement) {
		return fmt.Errorf("unknown replacement policy %q", b.Replacement)
	}
	if b.Lambda != nil && (*b.Lambda < 0 || *b.Lambda > 1) {
		return fmt.Errorf("lambda must be in [0,1], got %f", *b.Lambda)
	}
	for _, d := range b.Durations {
		if d < 0 {
			return fmt.Errorf("keepalive_durations must be non-negative, got %d", d)
		}
	}
	if b.Memory.OldMB != nil && *b.Memory.OldMB < 0 {
		return fmt.Errorf("memory.old_mb must be non-negative, got %f", *b.Memory.OldMB)
	}
	if b.Memory.NewMB != nil && *b.Memory.NewMB < 0 {
		return fmt.Errorf("memory.new_mb must be non-negative, got %f", *b.Memory.NewMB)
	}
	if b.Firefly.PopulationSize != nil && *b.Firefly.PopulationSize <= 0 {
		return fmt.Errorf("firefly.population_size must be positive, got %d", *b.Firefly.PopulationSize)
	}
	for name, v := range map[string]*float64{"firefly.alpha": b.Firefly.Alpha, "firefly.beta": b.Firefly.Beta, "firefly.gamma": b.Firefly.Gamma} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *v)
		}
	}
	if b.Swarm.PopulationSize != nil && *b.Swarm.PopulationSize <= 0 {
		return fmt.Errorf("swarm.population_size must be positive, got %d", *b.Swarm.PopulationSize)
	}
	return nil
}
