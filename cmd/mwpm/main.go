// Command mwpm estimates particle-motion ellipses from a three-component
// record.
//
// Usage:
//
//	mwpm [flags] input.txt
//
// The input holds x (east), y (north) and z (up) columns. Each band of the
// multiwavelet transform produces one series, written as text.
//
// Examples:
//
//	mwpm -dt 0.01 record.txt
//	mwpm -config run.yaml -out results record.txt
//	mwpm -avlen 20 -step 4 -band 2 record.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-mwpm/internal/config"
	"github.com/cwbudde/algo-mwpm/internal/monitoring"
	"github.com/cwbudde/algo-mwpm/mwt"
	"github.com/cwbudde/algo-mwpm/pm"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mwpm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML run configuration")
	dt := fs.Float64("dt", 0, "sample interval in seconds (overrides config)")
	t0 := fs.Float64("t0", 0, "time of the first sample in seconds (overrides config)")
	band := fs.Int("band", -1, "process only this band (-1 for all)")
	step := fs.Int("step", 0, "band samples between averaged estimates (overrides config)")
	avlen := fs.Int("avlen", -1, "averaging length in input samples, 0 for none (overrides config)")
	outDir := fs.String("out", "", "output directory (overrides config; empty writes to stdout)")
	workers := fs.Int("workers", 0, "concurrent estimates per series (overrides config)")
	quiet := fs.Bool("quiet", false, "suppress progress logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mwpm [flags] input.txt\n\n")
		fmt.Fprintf(stderr, "Estimates particle-motion ellipses per band of a three-component record.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *quiet {
		restore := monitoring.Mute()
		defer restore()
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["dt"] {
		cfg.Input.Dt = *dt
	}
	if set["t0"] {
		cfg.Input.T0 = *t0
	}
	if set["step"] {
		cfg.Motion.Step = *step
	}
	if set["avlen"] {
		cfg.Motion.AveragingLength = *avlen
	}
	if set["out"] {
		cfg.Output.Dir = *outDir
	}
	if set["workers"] {
		cfg.Motion.Workers = *workers
	}
	if fs.NArg() > 0 {
		cfg.Input.Path = fs.Arg(0)
	}
	if cfg.Input.Path == "" {
		fs.Usage()
		return fmt.Errorf("no input file")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	record, err := loadRecord(cfg.Input)
	if err != nil {
		return err
	}
	engine, err := cfg.Transform.Engine()
	if err != nil {
		return err
	}
	bundle, err := mwt.Transform3C(engine, record)
	if err != nil {
		return err
	}
	monitoring.Logf("mwpm: %d samples, %d bands × %d wavelets",
		len(record.Components[mwt.AxisX].Samples), bundle.NumBands(), bundle.NumWavelets())

	bands := make([]int, 0, bundle.NumBands())
	for b := range bundle.NumBands() {
		if *band < 0 || *band == b {
			bands = append(bands, b)
		}
	}
	if len(bands) == 0 {
		return fmt.Errorf("band %d not in [0, %d)", *band, bundle.NumBands())
	}

	var results []bandResult
	for _, b := range bands {
		s, err := buildSeries(ctx, bundle, b, cfg.Motion)
		if err != nil {
			return fmt.Errorf("band %d: %w", b, err)
		}
		if n := s.ZeroGaps(cfg.Motion.Windows()); n > 0 {
			monitoring.Logf("mwpm: band %d: zeroed %d estimates inside gaps", b, n)
		}
		if err := writeSeries(s, cfg.Output, stdout); err != nil {
			return err
		}
		peak, peakZ, err := peakEnvelopes(bundle, b)
		if err != nil {
			return fmt.Errorf("band %d: %w", b, err)
		}
		results = append(results, bandResult{series: s, peak: peak, peakZ: peakZ})
	}

	summary := stdout
	if cfg.Output.Dir == "" {
		summary = stderr
	}
	return printSummary(summary, results)
}

func loadRecord(in config.InputConfig) (mwt.ThreeComponent, error) {
	f, err := os.Open(in.Path)
	if err != nil {
		return mwt.ThreeComponent{}, err
	}
	defer f.Close()

	record, err := readRecord(f, in.T0, in.Dt)
	if err != nil {
		return mwt.ThreeComponent{}, fmt.Errorf("%s: %w", in.Path, err)
	}
	record.Meta = mwt.Metadata{"source": filepath.Base(in.Path)}
	return record, nil
}

func buildSeries(ctx context.Context, bundle *mwt.Bundle, band int, m config.MotionConfig) (*pm.Series, error) {
	if m.AveragingLength > 0 {
		return pm.NewAveragedSeries(ctx, bundle, band, m.Step, m.AveragingLength, m.Options()...)
	}
	return pm.NewSeries(ctx, bundle, band, m.Options()...)
}

func writeSeries(s *pm.Series, out config.OutputConfig, stdout io.Writer) error {
	if out.Dir == "" {
		_, err := s.WriteTo(stdout)
		return err
	}
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(out.Dir, fmt.Sprintf("%s_band%02d.txt", out.Prefix, s.Band))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	monitoring.Logf("mwpm: wrote %s", path)
	return f.Close()
}

// bandResult is one summary row: a built series and the peak envelopes of
// its band.
type bandResult struct {
	series *pm.Series
	peak   float64 // three-component envelope
	peakZ  float64 // vertical envelope
}

// peakEnvelopes returns the largest three-component and vertical envelope
// of band over all wavelets.
func peakEnvelopes(bundle *mwt.Bundle, band int) (peak, peakZ float64, err error) {
	for iw := range bundle.NumWavelets() {
		env, err := bundle.Envelope(band, iw)
		if err != nil {
			return 0, 0, err
		}
		_, _, z, err := bundle.Triplet(band, iw)
		if err != nil {
			return 0, 0, err
		}
		if len(env) == 0 {
			continue
		}
		peak = max(peak, floats.Max(env))
		peakZ = max(peakZ, floats.Max(z.Envelope()))
	}
	return peak, peakZ, nil
}

func printSummary(w io.Writer, results []bandResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Band\tF0 [Hz]\tDt [s]\tEstimates\tMean Rect\tMax Major\tPeak Env\tPeak Z\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "----\t-------\t------\t---------\t---------\t---------\t--------\t------\n"); err != nil {
		return err
	}
	for _, r := range results {
		s := r.series
		rect := s.Rectilinearity().Samples
		major := s.MajorAmplitude().Samples
		if _, err := fmt.Fprintf(tw, "%d\t%.3f\t%.4f\t%d\t%.3f\t%.4g\t%.4g\t%.4g\n",
			s.Band, s.F0, s.Dt, s.Len(), stat.Mean(rect, nil), floats.Max(major), r.peak, r.peakZ); err != nil {
			return err
		}
	}
	return tw.Flush()
}
