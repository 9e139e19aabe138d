package det01

import "gonum.org/v1/gonum/spatial/r3"

type ParticleKind int

const (
	MuonMinus ParticleKind = iota
	MuonPlus
	Electron
	OpticalPhoton
)

func (p ParticleKind) String() string {
	switch p {
	case MuonMinus:
		return "mu-"
	case MuonPlus:
		return "mu+"
	case Electron:
		return "e-"
	case OpticalPhoton:
		return "opticalphoton"
	default:
		return "unknown"
	}
}

type TrackStatus int

const (
	Alive TrackStatus = iota
	StopAndKill
)

// PrimaryTrackID is the track ID the engine gives to the generated particle.
const PrimaryTrackID = 1

type Track struct {
	ID       int
	ParentID int
	Particle ParticleKind
	Status   TrackStatus
}

// Kill stops any further transport of the track.
func (t *Track) Kill() {
	t.Status = StopAndKill
}

// Touchable identifies the placed volume a step point lies in. Every
// placement in the detector is flat in the world, so the copy number is
// also the replica number at depth 0.
type Touchable struct {
	Volume     VolumeKind
	CopyNumber int
}

func (t Touchable) ReplicaNumber(depth int) int {
	return t.CopyNumber
}

type StepPoint struct {
	Position      r3.Vec
	GlobalTime    float64
	KineticEnergy float64
	Touchable     Touchable
}

type Step struct {
	Track              *Track
	PreStepPoint       StepPoint
	PostStepPoint      StepPoint
	TotalEnergyDeposit float64
	Length             float64
}
