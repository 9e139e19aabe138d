package det01

// EventAction turns the hits collections of a finished event into one
// EventRecord. Collection IDs are resolved once, when the action is built,
// against the worker's SDManager.
type EventAction struct {
	nDetectors int
	scintHCID  int
	pmtHCID    int
}

func NewEventAction(sdm *SDManager, nDetectors int) *EventAction {
	return &EventAction{
		nDetectors: nDetectors,
		scintHCID:  sdm.GetCollectionID(ScintSDName + "/" + ScintCollectionName),
		pmtHCID:    sdm.GetCollectionID(PmtSDName + "/" + PmtCollectionName),
	}
}

func (a *EventAction) BeginOfEventAction(*Event) {}

// EndOfEventAction returns false when the event carries no hits collections
// at all. Missing collections and detectors without hits export zeros, and
// a time of -1 when no photon was seen.
func (a *EventAction) EndOfEventAction(event *Event) (EventRecord, bool) {
	if event.HCE == nil {
		return EventRecord{}, false
	}

	rec := newEventRecord(event.ID, a.nDetectors)

	scintHC := event.HCE.Get(a.scintHCID)
	for _, hit := range scintHC.Entries() {
		id := hit.DetID
		if id < 0 || id >= a.nDetectors {
			continue
		}
		rec.Edep[id] += hit.Edep
		if hit.HasPrimary {
			rec.PosIn[id] = hit.PosIn
			rec.PosOut[id] = hit.PosOut
			rec.HasPrimary[id] = true
		}
	}

	for id := range rec.Time {
		rec.Time[id] = NoPhotonTime
	}
	pmtHC := event.HCE.Get(a.pmtHCID)
	for _, hit := range pmtHC.Entries() {
		id := hit.DetID
		if id < 0 || id >= a.nDetectors {
			continue
		}
		rec.PE[id] += hit.PhotonCount
		if hit.Time < rec.Time[id] {
			rec.Time[id] = hit.Time
		}
	}
	for id, pe := range rec.PE {
		if pe == 0 {
			rec.Time[id] = -1
		}
	}

	rec.TruthZ = event.PrimaryVertex(0).Position.Z
	return rec, true
}
