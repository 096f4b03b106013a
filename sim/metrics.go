// Tracks run-wide totals and per-step admission statistics.

package sim

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about a simulation run for final reporting.
// Counters mirror into a private Prometheus registry so a run can be exported
// as a node-exporter textfile.
type Metrics struct {
	RunID string

	Invocations int              // invocations served
	WarmStarts  [2]int           // warm starts per generation
	ColdStarts  [2]int           // cold starts per generation
	ServiceTime float64          // total service time (seconds)
	ExecCarbon  float64          // total execution carbon (grams)
	KACarbon    float64          // total settled keep-alive carbon (grams)
	Discards    []int            // reservations discarded by admission, per step
	PeakPoolMB  [2]float64       // highest post-admission footprint per generation
	Steps       int64            // simulated steps
	Decisions   map[Decision]int // applied decision histogram

	perInvoke   []weightedSample
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec // generation, start
	discarded   *prometheus.CounterVec // generation
	kaCarbon    *prometheus.CounterVec // generation
	footprint   *prometheus.GaugeVec   // generation
	carbonTotal *prometheus.CounterVec // kind
}

type weightedSample struct {
	serviceTime float64
	carbon      float64
	weight      float64
}

// NewMetrics creates an empty Metrics with a fresh run identifier.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunID:     uuid.NewString(),
		Decisions: make(map[Decision]int),
		registry:  prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keepalive_sim_invocations_total",
			Help: "Invocations served, by generation and start type",
		}, []string{"generation", "start"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keepalive_sim_discarded_reservations_total",
			Help: "Keep-alive reservations discarded by memory admission control",
		}, []string{"generation"}),
		kaCarbon: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keepalive_sim_keepalive_carbon_grams_total",
			Help: "Settled keep-alive carbon, by generation",
		}, []string{"generation"}),
		footprint: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "keepalive_sim_pool_footprint_mb",
			Help: "Warm pool memory footprint after the last admission pass",
		}, []string{"generation"}),
		carbonTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keepalive_sim_carbon_grams_total",
			Help: "Realized carbon, by kind (execution, keepalive)",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.invocations, m.discarded, m.kaCarbon, m.footprint, m.carbonTotal)
	return m
}

// Registry exposes the run's Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the run's counters in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// RecordExecution accounts one function's invocations at one step.
func (m *Metrics) RecordExecution(e Execution) {
	if e.Count == 0 {
		return
	}
	m.Invocations += e.Count
	m.ServiceTime += e.ServiceTime
	m.ExecCarbon += e.Carbon
	for _, g := range Generations {
		m.WarmStarts[g] += e.Warm[g]
		m.ColdStarts[g] += e.Cold[g]
		m.invocations.WithLabelValues(g.String(), "warm").Add(float64(e.Warm[g]))
		m.invocations.WithLabelValues(g.String(), "cold").Add(float64(e.Cold[g]))
	}
	m.carbonTotal.WithLabelValues("execution").Add(e.Carbon)
	n := float64(e.Count)
	m.perInvoke = append(m.perInvoke, weightedSample{serviceTime: e.ServiceTime / n, carbon: e.Carbon / n, weight: n})
}

// RecordDecision counts a strategy decision.
func (m *Metrics) RecordDecision(d Decision) {
	m.Decisions[d]++
}

// RecordKeepAlive accounts settled keep-alive carbon on generation g.
func (m *Metrics) RecordKeepAlive(g Generation, carbon float64) {
	m.KACarbon += carbon
	m.kaCarbon.WithLabelValues(g.String()).Add(carbon)
	m.carbonTotal.WithLabelValues("keepalive").Add(carbon)
}

// RecordAdmission accounts one admission pass on generation g.
func (m *Metrics) RecordAdmission(g Generation, discarded int, footprintMB float64) {
	m.discarded.WithLabelValues(g.String()).Add(float64(discarded))
	m.footprint.WithLabelValues(g.String()).Set(footprintMB)
	m.PeakPoolMB[g] = max(m.PeakPoolMB[g], footprintMB)
}

// EndStep closes a step with its total discard count.
func (m *Metrics) EndStep(discarded int) {
	m.Steps++
	m.Discards = append(m.Discards, discarded)
}

// TotalDiscards sums discards over all steps.
func (m *Metrics) TotalDiscards() int {
	total := 0
	for _, d := range m.Discards {
		total += d
	}
	return total
}

// TotalCarbon is execution plus settled keep-alive carbon.
func (m *Metrics) TotalCarbon() float64 {
	return m.ExecCarbon + m.KACarbon
}

// Summary condenses Metrics into per-invocation averages and percentiles.
type Summary struct {
	RunID              string  `json:"run_id"`
	Invocations        int     `json:"invocations"`
	ColdStarts         int     `json:"cold_starts"`
	WarmStarts         int     `json:"warm_starts"`
	TotalServiceTime   float64 `json:"total_service_time_s"`
	ExecutionCarbon    float64 `json:"execution_carbon_g"`
	KeepAliveCarbon    float64 `json:"keepalive_carbon_g"`
	AvgServiceTime     float64 `json:"avg_service_time_s"`
	AvgCarbon          float64 `json:"avg_carbon_g"`
	P50ServiceTime     float64 `json:"p50_service_time_s"`
	P95ServiceTime     float64 `json:"p95_service_time_s"`
	P95ExecutionCarbon float64 `json:"p95_execution_carbon_g"`
	Discarded          int     `json:"discarded_reservations"`
	PeakOldPoolMB      float64 `json:"peak_old_pool_mb"`
	PeakNewPoolMB      float64 `json:"peak_new_pool_mb"`
	Steps              int64   `json:"steps"`
}

// Summarize computes the run summary. Averages divide the total carbon
// (execution plus keep-alive) and service time by the invocation count.
func (m *Metrics) Summarize() Summary {
	s := Summary{
		RunID:            m.RunID,
		Invocations:      m.Invocations,
		ColdStarts:       m.ColdStarts[Old] + m.ColdStarts[New],
		WarmStarts:       m.WarmStarts[Old] + m.WarmStarts[New],
		TotalServiceTime: m.ServiceTime,
		ExecutionCarbon:  m.ExecCarbon,
		KeepAliveCarbon:  m.KACarbon,
		Discarded:        m.TotalDiscards(),
		PeakOldPoolMB:    m.PeakPoolMB[Old],
		PeakNewPoolMB:    m.PeakPoolMB[New],
		Steps:            m.Steps,
	}
	if m.Invocations == 0 {
		return s
	}
	s.AvgServiceTime = m.ServiceTime / float64(m.Invocations)
	s.AvgCarbon = m.TotalCarbon() / float64(m.Invocations)

	st, stWeights := m.sortedSamples(func(w weightedSample) float64 { return w.serviceTime })
	s.P50ServiceTime = stat.Quantile(0.5, stat.Empirical, st, stWeights)
	s.P95ServiceTime = stat.Quantile(0.95, stat.Empirical, st, stWeights)
	carbon, carbonWeights := m.sortedSamples(func(w weightedSample) float64 { return w.carbon })
	s.P95ExecutionCarbon = stat.Quantile(0.95, stat.Empirical, carbon, carbonWeights)
	return s
}

func (m *Metrics) sortedSamples(value func(weightedSample) float64) ([]float64, []float64) {
	samples := append([]weightedSample(nil), m.perInvoke...)
	sort.SliceStable(samples, func(i, j int) bool { return value(samples[i]) < value(samples[j]) })
	xs := make([]float64, len(samples))
	ws := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = value(s)
		ws[i] = s.weight
	}
	return xs, ws
}

// Print displays the run summary.
func (m *Metrics) Print() {
	s := m.Summarize()
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Run ID               : %s\n", s.RunID)
	fmt.Printf("Total Invocations    : %d\n", s.Invocations)
	fmt.Printf("Cold / Warm Starts   : %d / %d\n", s.ColdStarts, s.WarmStarts)
	if s.Invocations > 0 {
		fmt.Printf("Avg Service Time     : %.4f s\n", s.AvgServiceTime)
		fmt.Printf("P50 / P95 Service    : %.4f / %.4f s\n", s.P50ServiceTime, s.P95ServiceTime)
		fmt.Printf("Avg Carbon Footprint : %.6f g\n", s.AvgCarbon)
		fmt.Printf("Keep-alive Carbon    : %.6f g\n", s.KeepAliveCarbon)
	}
	fmt.Printf("Discarded Reservations: %d\n", s.Discarded)
	fmt.Printf("Peak Pool (old/new)  : %.1f / %.1f MB\n", s.PeakOldPoolMB, s.PeakNewPoolMB)
}
