package main

import (
	"fmt"
	"image/color"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func plotEdep(fname string, label string, h *hbook.H1D, fit *MoyalFit) error {
	p := hplot.New()
	p.Title.Text = fmt.Sprintf("%s Energy Deposition", label)
	p.X.Label.Text = "Energy (MeV)"
	p.Y.Label.Text = "Counts"

	hh := hplot.NewH1D(h)
	hh.FillColor = color.NRGBA{R: 65, G: 105, B: 225, A: 100}
	p.Add(hh)
	p.Legend.Add("Data", hh)

	if fit != nil {
		f := plotter.NewFunction(fit.Eval)
		f.Color = color.Black
		f.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		f.Samples = 200
		p.Add(f)
		p.Legend.Add(fmt.Sprintf("Fit (MPV=%.1f)", fit.MPV), f)
	}
	p.Add(plotter.NewGrid())

	return p.Save(6*vg.Inch, 4*vg.Inch, fname)
}

// plotTriggerCheck overlays the deposits of all events and of the
// coincidences on a log scale.
func plotTriggerCheck(fname string, label string, all, selected *hbook.H1D) error {
	p := hplot.New()
	p.Title.Text = fmt.Sprintf("Trigger Efficiency Check (%s)", label)
	p.X.Label.Text = "Energy (MeV)"
	p.Y.Label.Text = "Counts"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{}

	for _, entry := range []struct {
		name string
		h    *hbook.H1D
		fill color.NRGBA
	}{
		{"All Events", all, color.NRGBA{R: 128, G: 128, B: 128, A: 120}},
		{"Coincidence", selected, color.NRGBA{R: 220, G: 20, B: 60, A: 120}},
	} {
		// empty histograms have no positive bin to draw on a log axis
		if entry.h.Entries() == 0 {
			continue
		}
		hh := hplot.NewH1D(entry.h, hplot.WithLogY(true))
		hh.FillColor = entry.fill
		p.Add(hh)
		p.Legend.Add(entry.name, hh)
	}
	p.Add(plotter.NewGrid())

	return p.Save(6*vg.Inch, 4*vg.Inch, fname)
}

func plotCorrelation(fname string, xlabel, ylabel string, xs, ys []float64) error {
	p := hplot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", ylabel, xlabel)
	p.X.Label.Text = xlabel + " (MeV)"
	p.Y.Label.Text = ylabel + " (MeV)"

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	sca, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sca.Radius = vg.Points(1)
	p.Add(sca)
	p.Add(plotter.NewGrid())

	return p.Save(5*vg.Inch, 5*vg.Inch, fname)
}

func plotTiming(fname string, diffs []float64, nbins int) error {
	if len(diffs) == 0 {
		return nil
	}
	lo, hi := diffs[0], diffs[0]
	for _, d := range diffs {
		lo = min(lo, d)
		hi = max(hi, d)
	}
	if hi <= lo {
		hi = lo + 1
	}
	h := hbook.NewH1D(nbins, lo, hi+1e-9)
	for _, d := range diffs {
		h.Fill(d, 1)
	}

	p := hplot.New()
	p.Title.Text = "First photon time difference"
	p.X.Label.Text = "Time difference (ns)"
	p.Y.Label.Text = "Counts"
	p.Add(hplot.NewH1D(h))
	p.Add(plotter.NewGrid())
	return p.Save(6*vg.Inch, 4*vg.Inch, fname)
}
