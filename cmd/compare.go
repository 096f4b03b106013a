package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	sim "github.com/keepalive-sim/keepalive-sim/sim"
)

var comparePlotPath string // Output image for the trade-off scatter

// compareCmd reads results.json files from earlier runs and compares them
var compareCmd = &cobra.Command{
	Use:   "compare RESULTS...",
	Short: "Compare average service time and carbon across runs",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		results := make([]*sim.RunResult, 0, len(args))
		for _, path := range args {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, sim.ResultsFileName)
			}
			r, err := sim.LoadResults(path)
			if err != nil {
				logrus.Fatalf("Failed to load results: %v", err)
			}
			results = append(results, r)
		}
		writeComparison(os.Stdout, results)
		if comparePlotPath != "" {
			if err := plotComparison(results, comparePlotPath); err != nil {
				logrus.Fatalf("Failed to plot comparison: %v", err)
			}
			logrus.Infof("Comparison plot written to %s", comparePlotPath)
		}
	},
}

// runLabel names a run by strategy and lambda.
func runLabel(r *sim.RunResult) string {
	return fmt.Sprintf("%s(λ=%.2f)", r.Strategy, r.Lambda)
}

// writeComparison prints one row per run, with service time and carbon
// relative to the first run.
func writeComparison(out io.Writer, results []*sim.RunResult) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tINVOCATIONS\tAVG SERVICE (s)\tAVG CARBON (g)\tCOLD STARTS\tDISCARDS\tΔSERVICE\tΔCARBON")
	base := results[0].Summary
	for _, r := range results {
		s := r.Summary
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.6f\t%d\t%d\t%s\t%s\n",
			runLabel(r), s.Invocations, s.AvgServiceTime, s.AvgCarbon, s.ColdStarts, s.Discarded,
			relative(s.AvgServiceTime, base.AvgServiceTime), relative(s.AvgCarbon, base.AvgCarbon))
	}
	_ = tw.Flush()
}

func relative(v, base float64) string {
	if base == 0 {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", 100*(v-base)/base)
}

// plotComparison draws each run as a point in (avg carbon, avg service time)
// space. The output format follows the file extension.
func plotComparison(results []*sim.RunResult, path string) error {
	p := plot.New()
	p.Title.Text = "Service time vs. carbon"
	p.X.Label.Text = "Average carbon per invocation (g)"
	p.Y.Label.Text = "Average service time (s)"

	pts := make(plotter.XYs, len(results))
	labels := make([]string, len(results))
	for i, r := range results {
		pts[i].X = r.Summary.AvgCarbon
		pts[i].Y = r.Summary.AvgServiceTime
		labels[i] = runLabel(r)
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("building scatter: %w", err)
	}
	names, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return fmt.Errorf("building labels: %w", err)
	}
	p.Add(scatter, names, plotter.NewGrid())

	if ext := strings.ToLower(filepath.Ext(path)); ext == "" {
		return fmt.Errorf("plot path %s needs an extension (.png, .svg, .pdf)", path)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}

func init() {
	compareCmd.Flags().StringVar(&comparePlotPath, "plot", "", "Write a service-time/carbon scatter to this image file")
}
