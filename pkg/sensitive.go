package det01

import (
	"fmt"
	"strings"
)

// SensitiveDetector is attached to a volume kind and called for every step
// the engine takes inside that volume.
type SensitiveDetector interface {
	Name() string
	CollectionName() string
	SetCollectionID(id int)
	Initialize(hce *HCofThisEvent)
	ProcessHits(step *Step) bool
	EndOfEvent(hce *HCofThisEvent)
}

// FullCollectionName is the "<detector>/<collection>" key collections are
// looked up by.
func FullCollectionName(sd SensitiveDetector) string {
	return sd.Name() + "/" + sd.CollectionName()
}

// SDManager registers the sensitive detectors of one worker and owns the
// collection ID assignment.
type SDManager struct {
	detectors []SensitiveDetector
	byVolume  map[VolumeKind]SensitiveDetector
	ids       map[string]int
}

func NewSDManager() *SDManager {
	return &SDManager{
		byVolume: make(map[VolumeKind]SensitiveDetector),
		ids:      make(map[string]int),
	}
}

// AddNewDetector registers sd and returns its collection ID.
func (m *SDManager) AddNewDetector(sd SensitiveDetector) int {
	name := FullCollectionName(sd)
	if id, ok := m.ids[name]; ok {
		return id
	}
	id := len(m.detectors)
	m.detectors = append(m.detectors, sd)
	m.ids[name] = id
	sd.SetCollectionID(id)
	return id
}

func (m *SDManager) SetSensitiveDetector(kind VolumeKind, sd SensitiveDetector) {
	m.AddNewDetector(sd)
	m.byVolume[kind] = sd
}

// GetCollectionID returns -1 when no detector registered the collection.
func (m *SDManager) GetCollectionID(fullName string) int {
	if id, ok := m.ids[fullName]; ok {
		return id
	}
	return -1
}

func (m *SDManager) Detector(kind VolumeKind) SensitiveDetector {
	return m.byVolume[kind]
}

// PrepareNewEvent creates the empty collections of a new event.
func (m *SDManager) PrepareNewEvent() *HCofThisEvent {
	hce := NewHCofThisEvent(len(m.detectors))
	for _, sd := range m.detectors {
		sd.Initialize(hce)
	}
	return hce
}

func (m *SDManager) TerminateEvent(hce *HCofThisEvent) {
	for _, sd := range m.detectors {
		sd.EndOfEvent(hce)
	}
}

// Dispatch hands the step to the detector attached to the pre-step volume.
// Steps in volumes without a detector are skipped.
func (m *SDManager) Dispatch(step *Step) bool {
	sd, ok := m.byVolume[step.PreStepPoint.Touchable.Volume]
	if !ok {
		return false
	}
	return sd.ProcessHits(step)
}

type baseSD struct {
	name           string
	collectionName string
	collectionID   int
	nDetectors     int
	hits           *HitsCollection
}

func (b *baseSD) Name() string { return b.name }
func (b *baseSD) CollectionName() string { return b.collectionName }
func (b *baseSD) SetCollectionID(id int) { b.collectionID = id }
func (b *baseSD) Hits() *HitsCollection { return b.hits }

func (b *baseSD) initialize(hce *HCofThisEvent) {
	b.hits = NewHitsCollection(b.name, b.collectionName, b.nDetectors)
	hce.Add(b.collectionID, b.hits)
}

// ScintSD sums the energy deposited in each slab and tracks where the
// primary muon enters and leaves it.
type ScintSD struct {
	baseSD
	trackPositions bool
}

const (
	ScintSDName         = "ScintSD"
	ScintCollectionName = "ScintHitsCollection"
	PmtSDName           = "PmtSD"
	PmtCollectionName   = "HitsCollection"
)

func NewScintSD(nDetectors int, trackPositions bool) *ScintSD {
	return &ScintSD{
		baseSD: baseSD{
			name:           ScintSDName,
			collectionName: ScintCollectionName,
			collectionID:   -1,
			nDetectors:     nDetectors,
		},
		trackPositions: trackPositions,
	}
}

func (sd *ScintSD) Initialize(hce *HCofThisEvent) {
	sd.initialize(hce)
}

func (sd *ScintSD) ProcessHits(step *Step) bool {
	edep := step.TotalEnergyDeposit
	if edep == 0 {
		return false
	}

	detID := step.PreStepPoint.Touchable.CopyNumber
	hit := sd.hits.FindOrCreate(detID)
	if hit == nil {
		return false
	}
	hit.AddEdep(edep)

	if sd.trackPositions && step.Track != nil && step.Track.ID == PrimaryTrackID {
		hit.AddPrimaryStep(step.PreStepPoint.Position, step.PostStepPoint.Position)
	}
	return true
}

func (sd *ScintSD) EndOfEvent(*HCofThisEvent) {}

// PmtSD counts optical photons absorbed in the photocathodes.
type PmtSD struct {
	baseSD
	summary bool
}

func NewPmtSD(nDetectors int, summary bool) *PmtSD {
	return &PmtSD{
		baseSD: baseSD{
			name:           PmtSDName,
			collectionName: PmtCollectionName,
			collectionID:   -1,
			nDetectors:     nDetectors,
		},
		summary: summary,
	}
}

func (sd *PmtSD) Initialize(hce *HCofThisEvent) {
	sd.initialize(hce)
}

func (sd *PmtSD) ProcessHits(step *Step) bool {
	if step.Track == nil || step.Track.Particle != OpticalPhoton {
		return false
	}

	// the photocathode absorbs every photon reaching it
	step.Track.Kill()

	detID := step.PreStepPoint.Touchable.ReplicaNumber(0)
	hit := sd.hits.FindOrCreate(detID)
	if hit == nil {
		return false
	}
	hit.AddPhoton(step.PostStepPoint.GlobalTime)
	return true
}

func (sd *PmtSD) EndOfEvent(*HCofThisEvent) {
	if !sd.summary || sd.hits.Len() == 0 {
		return
	}
	counts := make([]string, sd.nDetectors)
	for i := range counts {
		n := 0
		if hit := sd.hits.Get(i); hit != nil {
			n = hit.PhotonCount
		}
		counts[i] = fmt.Sprintf("DET_%d: %d photons", i, n)
	}
	logger.Info("Event Summary -> "+strings.Join(counts, ", ")+".", "pmt")
}
