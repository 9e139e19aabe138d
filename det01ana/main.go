package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	det01 "github.com/next-exp/det01_go/pkg"
)

var logger det01.SlogLogger

func init() {
	logger = det01.NewSlogLogger(os.Stdout, os.Stderr)
}

type Options struct {
	Threshold float64
	Fold      int
	Bins      int
	Lo        float64
	Hi        float64
	Prefix    string
	NoPlots   bool
}

type Report struct {
	Total        int
	Coincident   int
	Fold         int
	NDetectors   int
	Fits         []*MoyalFit
	Correlation  float64
	Timing       TimingResult
	coincidences []int
}

func main() {
	opts := Options{}
	flag.Float64Var(&opts.Threshold, "threshold", 0.5, "Coincidence threshold in MeV")
	flag.IntVar(&opts.Fold, "fold", 0, "Minimum number of slabs above threshold in a coincidence, 0 for all")
	flag.IntVar(&opts.Bins, "bins", 100, "Number of bins of the energy histograms")
	flag.Float64Var(&opts.Lo, "lo", 10, "Lower edge of the fit range in MeV")
	flag.Float64Var(&opts.Hi, "hi", 100, "Upper edge of the fit range in MeV")
	flag.StringVar(&opts.Prefix, "o", "results/det01", "Prefix of the output plots")
	flag.BoolVar(&opts.NoPlots, "no-plots", false, "Do not write plots")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: det01ana [flags] file.{root,csv}")
		flag.PrintDefaults()
		os.Exit(2)
	}
	det01.SetLogger(logger)

	input := flag.Arg(0)
	logger.Info(fmt.Sprintf("Loading: %s", input), "main")
	table, err := LoadTable(input)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	report, err := Analyse(table, opts)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	printReport(report)

	if !opts.NoPlots {
		if err := savePlots(table, report, opts); err != nil {
			logger.Error(fmt.Errorf("error saving plots: %w", err).Error())
			os.Exit(1)
		}
	}
}

// Analyse selects the coincidences and fits the energy deposition of every
// slab. Fits that fail are logged and left nil.
func Analyse(table *Table, opts Options) (*Report, error) {
	nDet := table.NDetectors()
	if nDet == 0 {
		return nil, fmt.Errorf("no Edep_Scin columns in input")
	}
	fold := opts.Fold
	if fold <= 0 || fold > nDet {
		fold = nDet
	}

	rows, err := Coincidence(table, fold, opts.Threshold)
	if err != nil {
		return nil, err
	}
	report := &Report{
		Total:        table.Len,
		Coincident:   len(rows),
		Fold:         fold,
		NDetectors:   nDet,
		Fits:         make([]*MoyalFit, nDet),
		coincidences: rows,
	}
	if len(rows) < 10 {
		logger.Info("Too few coincidence events for fitting", "analysis")
	}

	for i := 0; i < nDet; i++ {
		col, err := table.Column(fmt.Sprintf("Edep_Scin%d", i))
		if err != nil {
			return nil, err
		}
		h := FillHistogram(pick(col, rows), opts.Bins, opts.Lo, opts.Hi)
		res, err := FitMoyal(h)
		if err != nil {
			logger.Info(fmt.Sprintf("Fit failed for Scin%d: %v", i, err), "analysis")
			continue
		}
		report.Fits[i] = &res
	}

	if report.Correlation, err = Correlation(table, 0, nDet-1, rows); err != nil {
		return nil, err
	}

	// files written without a PMT sensitive detector carry no time columns
	if _, err := table.Column("Time_PMT0"); err == nil {
		if report.Timing, _, err = TimeDifference(table, nDet-1, 0, rows); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (r *Report) Rate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Coincident) / float64(r.Total)
}

func printReport(r *Report) {
	logger.Info(fmt.Sprintf("Total Events: %d", r.Total), "analysis")
	logger.Info(fmt.Sprintf("%d-Fold Coincidence Events: %d (%.1f%%)", r.Fold, r.Coincident, 100*r.Rate()), "analysis")
	for i, f := range r.Fits {
		if f == nil {
			continue
		}
		logger.Info(fmt.Sprintf("Scin%d: MPV %.2f MeV, width %.2f MeV, %d entries", i, f.MPV, f.Width, f.Entries), "analysis")
	}
	logger.Info(fmt.Sprintf("Correlation Scin0 vs Scin%d: %.3f", r.NDetectors-1, r.Correlation), "analysis")
	if r.Timing.N > 0 {
		logger.Info(fmt.Sprintf("Time PMT%d - PMT0: mean %.3f ns, sigma %.3f ns over %d events",
			r.NDetectors-1, r.Timing.Mean, r.Timing.StdDev, r.Timing.N), "analysis")
	}
}

func savePlots(table *Table, r *Report, opts Options) error {
	if dir := filepath.Dir(opts.Prefix); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	for i := 0; i < r.NDetectors; i++ {
		col, err := table.Column(fmt.Sprintf("Edep_Scin%d", i))
		if err != nil {
			return err
		}
		h := FillHistogram(pick(col, r.coincidences), opts.Bins, opts.Lo, opts.Hi)
		fname := fmt.Sprintf("%s_edep_scin%d.png", opts.Prefix, i)
		if err := plotEdep(fname, fmt.Sprintf("Scin%d", i), h, r.Fits[i]); err != nil {
			return err
		}
	}

	all, selected, err := TriggerCheck(table, 0, r.coincidences, opts.Bins, 0, opts.Hi)
	if err != nil {
		return err
	}
	if err := plotTriggerCheck(fmt.Sprintf("%s_trigger_check.png", opts.Prefix), "Scin0", all, selected); err != nil {
		return err
	}

	last := r.NDetectors - 1
	bottom, _ := table.Column("Edep_Scin0")
	top, _ := table.Column(fmt.Sprintf("Edep_Scin%d", last))
	fname := fmt.Sprintf("%s_correlation.png", opts.Prefix)
	err = plotCorrelation(fname, "Scin0", fmt.Sprintf("Scin%d", last), pick(bottom, r.coincidences), pick(top, r.coincidences))
	if err != nil {
		return err
	}

	if _, err := table.Column("Time_PMT0"); err != nil {
		return nil
	}
	_, diffs, err := TimeDifference(table, last, 0, r.coincidences)
	if err != nil {
		return err
	}
	return plotTiming(fmt.Sprintf("%s_timing.png", opts.Prefix), diffs, opts.Bins)
}
