package main

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/fit"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Coincidence returns the rows where at least fold of the table's slabs saw
// more than threshold MeV.
func Coincidence(t *Table, fold int, threshold float64) ([]int, error) {
	nDet := t.NDetectors()
	if fold <= 0 || fold > nDet {
		return nil, fmt.Errorf("fold %d out of range for %d slabs", fold, nDet)
	}
	edeps := make([][]float64, nDet)
	for i := range edeps {
		col, err := t.Column(fmt.Sprintf("Edep_Scin%d", i))
		if err != nil {
			return nil, err
		}
		edeps[i] = col
	}

	var selected []int
	for row := 0; row < t.Len; row++ {
		hits := 0
		for _, col := range edeps {
			if col[row] > threshold {
				hits++
			}
		}
		if hits >= fold {
			selected = append(selected, row)
		}
	}
	return selected, nil
}

// TriggerCheck histograms the deposits of one slab for every event and for
// the selected rows only.
func TriggerCheck(t *Table, slab int, rows []int, nbins int, lo, hi float64) (all, selected *hbook.H1D, err error) {
	col, err := t.Column(fmt.Sprintf("Edep_Scin%d", slab))
	if err != nil {
		return nil, nil, err
	}
	return FillHistogram(col, nbins, lo, hi), FillHistogram(pick(col, rows), nbins, lo, hi), nil
}

func pick(col []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = col[r]
	}
	return out
}

// moyal is the Landau approximation used for the energy deposition fits.
func moyal(x, mpv, width float64) float64 {
	z := (x - mpv) / width
	return math.Exp(-(z+math.Exp(-z))/2) / (width * math.Sqrt(2*math.Pi))
}

type MoyalFit struct {
	MPV     float64
	Width   float64
	Amp     float64
	Entries int
}

func (f MoyalFit) Eval(x float64) float64 {
	return f.Amp * moyal(x, f.MPV, f.Width)
}

// FillHistogram books an nbins histogram over [lo, hi) and fills it with
// the values inside that range.
func FillHistogram(values []float64, nbins int, lo, hi float64) *hbook.H1D {
	h := hbook.NewH1D(nbins, lo, hi)
	for _, v := range values {
		if v >= lo && v < hi {
			h.Fill(v, 1)
		}
	}
	return h
}

// FitMoyal fits amp * moyal(x; mpv, width) to h. The starting point is the
// fullest bin, a width of 5 MeV and an amplitude of five times its height.
func FitMoyal(h *hbook.H1D) (MoyalFit, error) {
	entries := int(h.Entries())
	if entries == 0 {
		return MoyalFit{}, fmt.Errorf("no entries in fit range")
	}

	heights := make([]float64, h.Len())
	for i, bin := range h.Binning.Bins {
		heights[i] = bin.SumW()
	}
	peak := floats.MaxIdx(heights)
	guessMPV := h.Binning.Bins[peak].XMid()
	guessAmp := heights[peak] * 5

	res, err := fit.H1D(
		h,
		fit.Func1D{
			F: func(x float64, ps []float64) float64 {
				return ps[2] * moyal(x, ps[0], math.Abs(ps[1]))
			},
			Ps: []float64{guessMPV, 5, guessAmp},
		},
		nil, &optimize.NelderMead{},
	)
	if err != nil {
		return MoyalFit{}, fmt.Errorf("moyal fit failed: %w", err)
	}
	return MoyalFit{
		MPV:     res.X[0],
		Width:   math.Abs(res.X[1]),
		Amp:     res.X[2],
		Entries: entries,
	}, nil
}

// Correlation is the Pearson coefficient of the energy deposited in two
// slabs over the selected rows.
func Correlation(t *Table, a, b int, rows []int) (float64, error) {
	colA, err := t.Column(fmt.Sprintf("Edep_Scin%d", a))
	if err != nil {
		return 0, err
	}
	colB, err := t.Column(fmt.Sprintf("Edep_Scin%d", b))
	if err != nil {
		return 0, err
	}
	if len(rows) < 2 {
		return math.NaN(), nil
	}
	return stat.Correlation(pick(colA, rows), pick(colB, rows), nil), nil
}

type TimingResult struct {
	Mean   float64
	StdDev float64
	N      int
}

// TimeDifference compares the first photon times of two PMTs over the
// selected rows where both saw light (time >= 0).
func TimeDifference(t *Table, a, b int, rows []int) (TimingResult, []float64, error) {
	colA, err := t.Column(fmt.Sprintf("Time_PMT%d", a))
	if err != nil {
		return TimingResult{}, nil, err
	}
	colB, err := t.Column(fmt.Sprintf("Time_PMT%d", b))
	if err != nil {
		return TimingResult{}, nil, err
	}

	var diffs []float64
	for _, r := range rows {
		if colA[r] < 0 || colB[r] < 0 {
			continue
		}
		diffs = append(diffs, colA[r]-colB[r])
	}
	res := TimingResult{N: len(diffs)}
	if len(diffs) == 0 {
		return res, nil, nil
	}
	res.Mean, res.StdDev = stat.MeanStdDev(diffs, nil)
	return res, diffs, nil
}
