package det01

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newTestEvent(sdm *SDManager, truth r3.Vec) *Event {
	return &Event{
		ID:       42,
		Vertices: []PrimaryVertex{{Position: truth}},
		HCE:      sdm.PrepareNewEvent(),
	}
}

func TestEndOfEventActionAggregates(t *testing.T) {
	sdm := newTestSDManager(2, true)
	action := NewEventAction(sdm, 2)
	event := newTestEvent(sdm, r3.Vec{X: 5, Y: 300, Z: -12})

	posA := r3.Vec{X: 1, Y: 75, Z: 3}
	posB := r3.Vec{X: 2, Y: 30, Z: 3}
	posC := r3.Vec{X: 3, Y: -75, Z: 3}
	sdm.Dispatch(scintStep(PrimaryTrackID, 0, 1.0, posA, posB))
	sdm.Dispatch(scintStep(PrimaryTrackID, 0, 2.0, posB, posC))
	sdm.Dispatch(scintStep(2, 1, 0.5, posA, posC))
	sdm.TerminateEvent(event.HCE)

	rec, ok := action.EndOfEventAction(event)
	require.True(t, ok)

	assert.Equal(t, 42, rec.EventID)
	assert.Equal(t, 3.0, rec.Edep[0])
	assert.Equal(t, posA, rec.PosIn[0])
	assert.Equal(t, posC, rec.PosOut[0])
	assert.Equal(t, 0.5, rec.Edep[1])
	assert.False(t, rec.HasPrimary[1])
	assert.Equal(t, r3.Vec{}, rec.PosIn[1])
	assert.Equal(t, r3.Vec{}, rec.PosOut[1])
	assert.Equal(t, -12.0, rec.TruthZ)
}

func TestEndOfEventActionNoPhotons(t *testing.T) {
	sdm := newTestSDManager(2, true)
	action := NewEventAction(sdm, 2)
	event := newTestEvent(sdm, r3.Vec{})

	sdm.Dispatch(photonStep(1, 6.5))
	sdm.Dispatch(photonStep(1, 5.0))
	sdm.TerminateEvent(event.HCE)

	rec, ok := action.EndOfEventAction(event)
	require.True(t, ok)

	assert.Equal(t, 0, rec.PE[0])
	assert.Equal(t, -1.0, rec.Time[0])
	assert.Equal(t, 2, rec.PE[1])
	assert.Equal(t, 5.0, rec.Time[1])
	for _, tm := range rec.Time {
		assert.NotEqual(t, NoPhotonTime, tm)
	}
}

func TestEndOfEventActionMissingPmtCollection(t *testing.T) {
	sdm := newTestSDManager(2, false)
	action := NewEventAction(sdm, 2)
	event := newTestEvent(sdm, r3.Vec{Z: 7})

	sdm.Dispatch(scintStep(PrimaryTrackID, 1, 4.0, r3.Vec{}, r3.Vec{Y: -1}))
	sdm.TerminateEvent(event.HCE)

	rec, ok := action.EndOfEventAction(event)
	require.True(t, ok)
	assert.Equal(t, []int{0, 0}, rec.PE)
	assert.Equal(t, []float64{-1, -1}, rec.Time)
	assert.Equal(t, []float64{0, 4.0}, rec.Edep)
}

func TestEndOfEventActionWithoutCollections(t *testing.T) {
	sdm := newTestSDManager(2, true)
	action := NewEventAction(sdm, 2)

	_, ok := action.EndOfEventAction(&Event{ID: 1})
	assert.False(t, ok)
}
