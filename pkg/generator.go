package det01

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	sourceHeight   = 50 * mm
	muPlusFraction = 0.55
)

// CosmicMuonSource shoots one muon per event downwards from a horizontal
// plane above the stack. The zenith angle follows cos^2, the energy an
// exponential tail above MinEnergy.
type CosmicMuonSource struct {
	PlaneY     float64
	HalfX      float64
	HalfZ      float64
	MeanEnergy float64
	MinEnergy  float64
}

func NewCosmicMuonSource(det *Detector, config Configuration) *CosmicMuonSource {
	return &CosmicMuonSource{
		PlaneY:     det.StackTop() + sourceHeight,
		HalfX:      config.SourceHalfX,
		HalfZ:      config.SourceHalfZ,
		MeanEnergy: config.MuonMeanEnergy,
		MinEnergy:  config.MuonMinEnergy,
	}
}

func (s *CosmicMuonSource) GeneratePrimaries(event *Event, rng *rand.Rand) {
	pos := r3.Vec{
		X: (2*rng.Float64() - 1) * s.HalfX,
		Y: s.PlaneY,
		Z: (2*rng.Float64() - 1) * s.HalfZ,
	}

	// dN/dcos(theta) ~ cos^2(theta)
	cosTheta := math.Cbrt(rng.Float64())
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	phi := 2 * math.Pi * rng.Float64()
	dir := r3.Vec{
		X: sinTheta * math.Cos(phi),
		Y: -cosTheta,
		Z: sinTheta * math.Sin(phi),
	}

	energy := s.MinEnergy
	if tail := s.MeanEnergy - s.MinEnergy; tail > 0 {
		energy += distuv.Exponential{Rate: 1 / tail, Src: rng}.Rand()
	}

	particle, charge := MuonMinus, -1
	if rng.Float64() < muPlusFraction {
		particle, charge = MuonPlus, 1
	}

	event.Vertices = append(event.Vertices, PrimaryVertex{
		Position: pos,
		Primaries: []PrimaryParticle{{
			Particle:      particle,
			Charge:        charge,
			KineticEnergy: energy,
			Direction:     dir,
		}},
	})
}
