package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/keepalive-sim/keepalive-sim/sim"
	"github.com/keepalive-sim/keepalive-sim/sim/cost"
	_ "github.com/keepalive-sim/keepalive-sim/sim/optimizer" // registers strategies
	"github.com/keepalive-sim/keepalive-sim/sim/trace"
)

var (
	// Inputs
	invocationsPath  string   // Wide invocation CSV
	memoryPath       string   // Per-function memory CSV (optional)
	carbonPath       string   // Carbon intensity CSV
	defaultsFilePath string   // Cost profile YAML
	functionNames    []string // Subset of functions to simulate
	policyConfigPath string   // Policy bundle YAML

	// Simulation configs
	seed       int64  // Seed for the optimizers' random streams
	logLevel   string // Log verbosity level
	serverPair []string
	katTimes   []int   // Candidate keep-alive durations in minutes
	windowSize int     // Trailing history used for gap estimation
	startStep  int64   // First simulated step
	horizon    int64   // Number of simulated steps
	memOld     float64 // Old-generation pool limit in MB
	memNew     float64 // New-generation pool limit in MB

	// Policy configs
	strategyName      string
	lambda            float64
	includeKeepAlive  bool
	admissionPolicy   string
	replacementPolicy string
	fireflySize       int
	fireflyAlpha      float64
	fireflyBeta       float64
	fireflyGamma      float64
	swarmSize         int
	swarmInertia      float64
	swarmCognitive    float64
	swarmSocial       float64

	// Outputs
	resultsDir      string
	metricsTextfile string
	traceLevel      string
	summarizeTrace  bool
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "keepalive-sim",
	Short: "Trace-driven simulator for carbon-aware serverless keep-alive policies",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay an invocation trace under a keep-alive strategy",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if invocationsPath == "" || carbonPath == "" {
			logrus.Fatalf("Both --invocations and --carbon are required. Exiting simulation.")
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q. Valid: none, decisions, full", traceLevel)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		profile, err := cost.LoadProfile(defaultsFilePath)
		if err != nil {
			logrus.Fatalf("Failed to load cost profile: %v", err)
		}
		model := cost.NewModel(profile)

		w, err := loadWorkload(profile)
		if err != nil {
			logrus.Fatalf("Failed to load workload: %v", err)
		}
		for _, fn := range w.Functions {
			if !model.Has(fn.Name, cfg.Servers) {
				logrus.Fatalf("No cost profile for function %s on %s/%s", fn.Name, cfg.Servers.Old, cfg.Servers.New)
			}
		}

		var tr *trace.SimulationTrace
		if lvl := trace.TraceLevel(traceLevel); lvl != "" && lvl != trace.TraceLevelNone {
			tr = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		}

		logrus.Infof("Starting simulation: %d functions, steps [%d,%d), strategy=%s, lambda=%.2f, servers=%s/%s, memory=%.0f/%.0f MB",
			len(w.Functions), cfg.Window.Start, cfg.Window.Start+cfg.Window.Horizon, cfg.Policy.Strategy,
			cfg.Policy.Lambda, cfg.Servers.Old, cfg.Servers.New, cfg.Memory.OldLimitMB, cfg.Memory.NewLimitMB)
		startTime := time.Now()

		s, err := sim.NewSimulator(cfg, w.Functions, w.Invocations, w.Carbon, model, tr)
		if err != nil {
			logrus.Fatalf("Failed to create simulator: %v", err)
		}
		if err := s.Run(); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		s.Metrics.Print()

		if resultsDir != "" {
			if err := s.SaveResults(resultsDir); err != nil {
				logrus.Fatalf("Failed to save results: %v", err)
			}
		}
		if metricsTextfile != "" {
			if err := s.Metrics.WriteTextfile(metricsTextfile); err != nil {
				logrus.Fatalf("Failed to write metrics textfile: %v", err)
			}
		}
		if summarizeTrace && tr != nil {
			printTraceSummary(trace.Summarize(tr))
		}

		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}

// buildConfig assembles the run configuration from flags, then applies the
// policy bundle to every setting whose flag was not given explicitly.
func buildConfig(cmd *cobra.Command) (sim.SimConfig, error) {
	if len(serverPair) != 2 {
		return sim.SimConfig{}, fmt.Errorf("--server-pair needs exactly two servers (old,new), got %v", serverPair)
	}
	cfg := sim.SimConfig{
		Seed:      seed,
		Servers:   sim.ServerPair{Old: serverPair[0], New: serverPair[1]},
		Durations: append([]int(nil), katTimes...),
		Window:    sim.WindowConfig{WindowSize: windowSize, Start: startStep, Horizon: horizon},
		Memory:    sim.MemoryConfig{OldLimitMB: memOld, NewLimitMB: memNew},
		Policy: sim.PolicyConfig{
			Strategy:         strategyName,
			Lambda:           lambda,
			IncludeKeepAlive: includeKeepAlive,
			Admission:        admissionPolicy,
			Replacement:      sim.ReplacementPolicy(replacementPolicy),
		},
		Firefly: sim.FireflyConfig{PopulationSize: fireflySize, Alpha: fireflyAlpha, Beta: fireflyBeta, Gamma: fireflyGamma},
		Swarm:   sim.SwarmConfig{PopulationSize: swarmSize, Inertia: swarmInertia, Cognitive: swarmCognitive, Social: swarmSocial},
	}

	if policyConfigPath != "" {
		bundle, err := sim.LoadPolicyBundle(policyConfigPath)
		if err != nil {
			return cfg, err
		}
		if err := bundle.Validate(); err != nil {
			return cfg, fmt.Errorf("policy config %s: %w", policyConfigPath, err)
		}
		applyBundle(&cfg, bundle, cmd.Flags().Changed)
		logrus.Infof("Loaded policy config from %s", policyConfigPath)
	}
	return cfg, cfg.Validate()
}

// applyBundle copies bundle settings into cfg unless changed reports that the
// corresponding flag was set on the command line.
func applyBundle(cfg *sim.SimConfig, b *sim.PolicyBundle, changed func(string) bool) {
	setString := func(flag, v string, dst *string) {
		if v != "" && !changed(flag) {
			*dst = v
		}
	}
	setFloat := func(flag string, v *float64, dst *float64) {
		if v != nil && !changed(flag) {
			*dst = *v
		}
	}
	setInt := func(flag string, v *int, dst *int) {
		if v != nil && !changed(flag) {
			*dst = *v
		}
	}

	setString("strategy", b.Strategy, &cfg.Policy.Strategy)
	setString("admission", b.Admission, &cfg.Policy.Admission)
	if b.Replacement != "" && !changed("replacement") {
		cfg.Policy.Replacement = sim.ReplacementPolicy(b.Replacement)
	}
	setFloat("lambda", b.Lambda, &cfg.Policy.Lambda)
	if b.IncludeKeepAlive != nil && !changed("include-keepalive") {
		cfg.Policy.IncludeKeepAlive = *b.IncludeKeepAlive
	}
	if len(b.Durations) > 0 && !changed("kat-times") {
		cfg.Durations = append([]int(nil), b.Durations...)
	}
	setFloat("mem-old", b.Memory.OldMB, &cfg.Memory.OldLimitMB)
	setFloat("mem-new", b.Memory.NewMB, &cfg.Memory.NewLimitMB)

	setInt("firefly-size", b.Firefly.PopulationSize, &cfg.Firefly.PopulationSize)
	setFloat("firefly-alpha", b.Firefly.Alpha, &cfg.Firefly.Alpha)
	setFloat("firefly-beta", b.Firefly.Beta, &cfg.Firefly.Beta)
	setFloat("firefly-gamma", b.Firefly.Gamma, &cfg.Firefly.Gamma)

	setInt("swarm-size", b.Swarm.PopulationSize, &cfg.Swarm.PopulationSize)
	setFloat("swarm-inertia", b.Swarm.Inertia, &cfg.Swarm.Inertia)
	setFloat("swarm-cognitive", b.Swarm.Cognitive, &cfg.Swarm.Cognitive)
	setFloat("swarm-social", b.Swarm.Social, &cfg.Swarm.Social)
}

func printTraceSummary(ts *trace.TraceSummary) {
	fmt.Println("=== Decision Trace Summary ===")
	fmt.Printf("Decisions            : %d (%d with keep-alive)\n", ts.TotalDecisions, ts.KeepAliveDecisions)
	fmt.Printf("Mean Keep-alive      : %.2f min\n", ts.MeanKeepAlive)
	for _, g := range sim.Generations {
		fmt.Printf("Placement %-10s : %d\n", g, ts.PlacementDistribution[g.String()])
	}
	fmt.Printf("Discards             : %d\n", ts.Discards)
	fmt.Printf("Settled Carbon       : %.6f g\n", ts.SettledCarbon)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := sim.DefaultSimConfig()

	runCmd.Flags().StringVar(&invocationsPath, "invocations", "", "Wide invocation CSV (function,0,1,...)")
	runCmd.Flags().StringVar(&memoryPath, "memory", "", "Per-function memory CSV (function,memory_mb); defaults to the cost profile's memory_mb")
	runCmd.Flags().StringVar(&carbonPath, "carbon", "", "Carbon intensity CSV (step,carbon_intensity) in gCO2/kWh")
	runCmd.Flags().StringVar(&defaultsFilePath, "profiles", "defaults.yaml", "Cost profile YAML with server and function profiles")
	runCmd.Flags().StringSliceVar(&functionNames, "functions", nil, "Comma-separated subset of functions to simulate (default: all)")
	runCmd.Flags().StringVar(&policyConfigPath, "policy-config", "", "Policy bundle YAML; explicit flags take precedence")

	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for the optimizers' random streams")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringSliceVar(&serverPair, "server-pair", []string{defaults.Servers.Old, defaults.Servers.New}, "Old and new server generation")
	runCmd.Flags().IntSliceVar(&katTimes, "kat-times", defaults.Durations, "Candidate keep-alive durations in minutes")
	runCmd.Flags().IntVar(&windowSize, "window-size", defaults.Window.WindowSize, "Steps of history used to estimate inter-invocation gaps")
	runCmd.Flags().Int64Var(&startStep, "start", defaults.Window.Start, "First simulated step")
	runCmd.Flags().Int64Var(&horizon, "horizon", defaults.Window.Horizon, "Number of simulated steps (minutes)")
	runCmd.Flags().Float64Var(&memOld, "mem-old", defaults.Memory.OldLimitMB, "Old-generation warm pool limit in MB")
	runCmd.Flags().Float64Var(&memNew, "mem-new", defaults.Memory.NewLimitMB, "New-generation warm pool limit in MB")

	runCmd.Flags().StringVar(&strategyName, "strategy", defaults.Policy.Strategy, "Keep-alive strategy: firefly, swarm, performance, carbon, oracle")
	runCmd.Flags().Float64Var(&lambda, "lambda", defaults.Policy.Lambda, "Service-time weight in [0,1]; carbon gets 1-lambda")
	runCmd.Flags().BoolVar(&includeKeepAlive, "include-keepalive", defaults.Policy.IncludeKeepAlive, "Charge expected keep-alive carbon in the optimizer objective")
	runCmd.Flags().StringVar(&admissionPolicy, "admission", defaults.Policy.Admission, "Pool eviction order: newest-first, oldest-first, largest-first")
	runCmd.Flags().StringVar(&replacementPolicy, "replacement", string(defaults.Policy.Replacement), "Handling of a replaced reservation: overwrite, settle")
	runCmd.Flags().IntVar(&fireflySize, "firefly-size", defaults.Firefly.PopulationSize, "Fireflies per function")
	runCmd.Flags().Float64Var(&fireflyAlpha, "firefly-alpha", defaults.Firefly.Alpha, "Firefly randomization step")
	runCmd.Flags().Float64Var(&fireflyBeta, "firefly-beta", defaults.Firefly.Beta, "Firefly attractiveness at distance 0")
	runCmd.Flags().Float64Var(&fireflyGamma, "firefly-gamma", defaults.Firefly.Gamma, "Firefly light absorption")
	runCmd.Flags().IntVar(&swarmSize, "swarm-size", defaults.Swarm.PopulationSize, "Particles per function")
	runCmd.Flags().Float64Var(&swarmInertia, "swarm-inertia", defaults.Swarm.Inertia, "Particle velocity inertia")
	runCmd.Flags().Float64Var(&swarmCognitive, "swarm-cognitive", defaults.Swarm.Cognitive, "Pull toward a particle's own best")
	runCmd.Flags().Float64Var(&swarmSocial, "swarm-social", defaults.Swarm.Social, "Pull toward the swarm best")

	runCmd.Flags().StringVar(&resultsDir, "results-dir", "", "Directory for results.json and ledger.csv")
	runCmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this textfile")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level: none, decisions, full")
	runCmd.Flags().BoolVar(&summarizeTrace, "summarize-trace", false, "Print a decision trace summary after the run")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
}
