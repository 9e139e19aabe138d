package det01

import "gonum.org/v1/gonum/spatial/r3"

// NoPhotonTime marks a Hit that has not seen an optical photon yet. It is
// replaced by -1 on export.
const NoPhotonTime = 99999 * ns

type Hit struct {
	DetID       int
	Edep        float64
	Time        float64
	PhotonCount int
	PosIn       r3.Vec
	PosOut      r3.Vec
	HasPrimary  bool
}

func NewHit(detID int) *Hit {
	return &Hit{
		DetID: detID,
		Time:  NoPhotonTime,
	}
}

func (h *Hit) AddEdep(edep float64) {
	h.Edep += edep
}

// AddPhoton counts one detected photon and keeps the earliest arrival.
func (h *Hit) AddPhoton(t float64) {
	h.PhotonCount++
	if t < h.Time {
		h.Time = t
	}
}

// AddPrimaryStep records the primary track crossing: the entry point is
// fixed by the first step seen, the exit point follows every step.
func (h *Hit) AddPrimaryStep(pre, post r3.Vec) {
	if !h.HasPrimary {
		h.PosIn = pre
		h.HasPrimary = true
	}
	h.PosOut = post
}

// HitsCollection holds at most one Hit per detector index. The detector
// count is fixed when the collection is created, so hits are addressed
// directly by index.
type HitsCollection struct {
	SDName string
	Name   string
	byID   []*Hit
	order  []*Hit
}

func NewHitsCollection(sdName, name string, nDetectors int) *HitsCollection {
	return &HitsCollection{
		SDName: sdName,
		Name:   name,
		byID:   make([]*Hit, nDetectors),
	}
}

// FindOrCreate returns the Hit for detID, creating it on first use. It
// returns nil for an index outside the detector range.
func (hc *HitsCollection) FindOrCreate(detID int) *Hit {
	if detID < 0 || detID >= len(hc.byID) {
		return nil
	}
	hit := hc.byID[detID]
	if hit == nil {
		hit = NewHit(detID)
		hc.byID[detID] = hit
		hc.order = append(hc.order, hit)
	}
	return hit
}

func (hc *HitsCollection) Get(detID int) *Hit {
	if hc == nil || detID < 0 || detID >= len(hc.byID) {
		return nil
	}
	return hc.byID[detID]
}

// Entries returns the hits in creation order.
func (hc *HitsCollection) Entries() []*Hit {
	if hc == nil {
		return nil
	}
	return hc.order
}

func (hc *HitsCollection) Len() int {
	if hc == nil {
		return 0
	}
	return len(hc.order)
}

// NDetectors is the number of detector indices the collection can address.
func (hc *HitsCollection) NDetectors() int {
	return len(hc.byID)
}

// HCofThisEvent is the per-event set of hits collections, indexed by the
// collection IDs handed out by the SDManager.
type HCofThisEvent struct {
	collections []*HitsCollection
}

func NewHCofThisEvent(nCollections int) *HCofThisEvent {
	return &HCofThisEvent{collections: make([]*HitsCollection, nCollections)}
}

func (hce *HCofThisEvent) Add(id int, hc *HitsCollection) {
	if id < 0 {
		return
	}
	if id >= len(hce.collections) {
		grown := make([]*HitsCollection, id+1)
		copy(grown, hce.collections)
		hce.collections = grown
	}
	hce.collections[id] = hc
}

// Get returns nil for an unknown or unregistered collection ID.
func (hce *HCofThisEvent) Get(id int) *HitsCollection {
	if hce == nil || id < 0 || id >= len(hce.collections) {
		return nil
	}
	return hce.collections[id]
}
