package det01

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func scintStep(trackID int, detID int, edep float64, pre, post r3.Vec) *Step {
	touch := Touchable{Volume: Scintillator, CopyNumber: detID}
	return &Step{
		Track:              &Track{ID: trackID, Particle: MuonMinus},
		PreStepPoint:       StepPoint{Position: pre, Touchable: touch},
		PostStepPoint:      StepPoint{Position: post, Touchable: touch},
		TotalEnergyDeposit: edep,
	}
}

func photonStep(detID int, t float64) *Step {
	point := StepPoint{GlobalTime: t, Touchable: Touchable{Volume: Photocathode, CopyNumber: detID}}
	return &Step{
		Track:         &Track{ID: 100, ParentID: 1, Particle: OpticalPhoton},
		PreStepPoint:  point,
		PostStepPoint: point,
	}
}

func newTestSDManager(nDetectors int, pmt bool) *SDManager {
	sdm := NewSDManager()
	sdm.SetSensitiveDetector(Scintillator, NewScintSD(nDetectors, true))
	if pmt {
		sdm.SetSensitiveDetector(Photocathode, NewPmtSD(nDetectors, false))
	}
	return sdm
}

func TestSDManagerCollectionIDs(t *testing.T) {
	sdm := newTestSDManager(2, true)

	assert.Equal(t, 0, sdm.GetCollectionID("ScintSD/ScintHitsCollection"))
	assert.Equal(t, 1, sdm.GetCollectionID("PmtSD/HitsCollection"))
	assert.Equal(t, -1, sdm.GetCollectionID("PmtSD/Unknown"))

	// registering the same collection twice keeps its ID
	again := NewScintSD(2, false)
	assert.Equal(t, 0, sdm.AddNewDetector(again))
}

func TestScintSDIgnoresZeroDeposit(t *testing.T) {
	sdm := newTestSDManager(2, false)
	hce := sdm.PrepareNewEvent()

	processed := sdm.Dispatch(scintStep(1, 0, 0, r3.Vec{}, r3.Vec{}))
	assert.False(t, processed)
	assert.Zero(t, hce.Get(0).Len())
}

func TestScintSDTracksOnlyPrimary(t *testing.T) {
	sdm := newTestSDManager(2, false)
	hce := sdm.PrepareNewEvent()

	posA := r3.Vec{Y: 75}
	posB := r3.Vec{Y: 40}
	sdm.Dispatch(scintStep(2, 1, 0.5, posA, posB))

	hit := hce.Get(0).Get(1)
	require.NotNil(t, hit)
	assert.Equal(t, 0.5, hit.Edep)
	assert.False(t, hit.HasPrimary)
	assert.Equal(t, r3.Vec{}, hit.PosIn)
}

func TestScintSDWithoutPositionTracking(t *testing.T) {
	sdm := NewSDManager()
	sdm.SetSensitiveDetector(Scintillator, NewScintSD(2, false))
	hce := sdm.PrepareNewEvent()

	sdm.Dispatch(scintStep(PrimaryTrackID, 0, 1.0, r3.Vec{Y: 1}, r3.Vec{Y: 2}))

	hit := hce.Get(0).Get(0)
	require.NotNil(t, hit)
	assert.False(t, hit.HasPrimary)
}

func TestPmtSDKillsAndCountsPhotons(t *testing.T) {
	sdm := newTestSDManager(2, true)
	hce := sdm.PrepareNewEvent()

	step := photonStep(1, 4.5)
	assert.True(t, sdm.Dispatch(step))
	assert.Equal(t, StopAndKill, step.Track.Status)
	sdm.Dispatch(photonStep(1, 3.0))

	hit := hce.Get(1).Get(1)
	require.NotNil(t, hit)
	assert.Equal(t, 2, hit.PhotonCount)
	assert.Equal(t, 3.0, hit.Time)
}

func TestPmtSDIgnoresChargedParticles(t *testing.T) {
	sdm := newTestSDManager(2, true)
	hce := sdm.PrepareNewEvent()

	step := scintStep(1, 0, 1.0, r3.Vec{}, r3.Vec{})
	step.PreStepPoint.Touchable.Volume = Photocathode
	assert.False(t, sdm.Dispatch(step))
	assert.Equal(t, Alive, step.Track.Status)
	assert.Zero(t, hce.Get(1).Len())
}

func TestPmtSDKillsPhotonOutsideDetectorRange(t *testing.T) {
	sdm := newTestSDManager(2, true)
	hce := sdm.PrepareNewEvent()

	step := photonStep(7, 1.0)
	assert.False(t, sdm.Dispatch(step))
	assert.Equal(t, StopAndKill, step.Track.Status)
	assert.Zero(t, hce.Get(1).Len())
}

func TestDispatchSkipsUnregisteredVolumes(t *testing.T) {
	sdm := newTestSDManager(2, false)
	sdm.PrepareNewEvent()

	step := photonStep(0, 1.0)
	assert.False(t, sdm.Dispatch(step))
	assert.Equal(t, Alive, step.Track.Status)
}

type recordingLogger struct {
	buf bytes.Buffer
}

func (l *recordingLogger) Info(message string, module string) {
	l.buf.WriteString(message + "\n")
}

func (l *recordingLogger) Error(message string) {
	l.buf.WriteString("ERROR " + message + "\n")
}

func TestPmtSDPhotonSummary(t *testing.T) {
	rec := &recordingLogger{}
	SetLogger(rec)
	defer SetLogger(nil)

	sdm := NewSDManager()
	sdm.SetSensitiveDetector(Photocathode, NewPmtSD(2, true))

	hce := sdm.PrepareNewEvent()
	sdm.TerminateEvent(hce)
	assert.Empty(t, rec.buf.String())

	hce = sdm.PrepareNewEvent()
	sdm.Dispatch(photonStep(1, 2.0))
	sdm.Dispatch(photonStep(1, 2.5))
	sdm.TerminateEvent(hce)
	assert.Equal(t, "Event Summary -> DET_0: 0 photons, DET_1: 2 photons.\n", rec.buf.String())
}
