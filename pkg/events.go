package det01

import "gonum.org/v1/gonum/spatial/r3"

type PrimaryParticle struct {
	Particle      ParticleKind
	Charge        int
	KineticEnergy float64
	Direction     r3.Vec
}

type PrimaryVertex struct {
	Position  r3.Vec
	Time      float64
	Primaries []PrimaryParticle
}

type Event struct {
	ID       int
	Vertices []PrimaryVertex
	HCE      *HCofThisEvent
}

// PrimaryVertex returns the i-th primary vertex. The generator always
// produces one, so callers do not check for nil on index 0.
func (e *Event) PrimaryVertex(i int) *PrimaryVertex {
	if i < 0 || i >= len(e.Vertices) {
		return nil
	}
	return &e.Vertices[i]
}

// EventRecord is the per-event tally handed to the analysis manager.
// Slices are indexed by detector ID.
type EventRecord struct {
	EventID    int
	Edep       []float64
	PE         []int
	Time       []float64
	PosIn      []r3.Vec
	PosOut     []r3.Vec
	HasPrimary []bool
	TruthZ     float64
}

func newEventRecord(eventID int, nDetectors int) EventRecord {
	return EventRecord{
		EventID:    eventID,
		Edep:       make([]float64, nDetectors),
		PE:         make([]int, nDetectors),
		Time:       make([]float64, nDetectors),
		PosIn:      make([]r3.Vec, nDetectors),
		PosOut:     make([]r3.Vec, nDetectors),
		HasPrimary: make([]bool, nDetectors),
	}
}
