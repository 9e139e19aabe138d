package det01

import (
	"fmt"
	"time"
)

// WorkerActions is the thread-local set every worker builds for itself:
// its own sensitive detectors, engine and event action.
type WorkerActions struct {
	SDManager   *SDManager
	Engine      *Engine
	EventAction *EventAction
}

// ActionInitialization builds the per-worker actions and the master run
// action of one application version.
type ActionInitialization struct {
	spec   VersionSpec
	config Configuration
	det    *Detector
	conds  Conditions
}

func NewActionInitialization(spec VersionSpec, config Configuration, det *Detector, conds Conditions) *ActionInitialization {
	return &ActionInitialization{spec: spec, config: config, det: det, conds: conds}
}

func (a *ActionInitialization) Build() *WorkerActions {
	sdm := NewSDManager()
	sdm.SetSensitiveDetector(Scintillator, NewScintSD(a.spec.NDetectors, a.spec.Positions))
	if a.spec.PmtSD {
		sdm.SetSensitiveDetector(Photocathode, NewPmtSD(a.spec.NDetectors, a.spec.PhotonSummary))
	}

	source := NewCosmicMuonSource(a.det, a.config)
	engine := NewEngine(a.det, sdm, source, a.conds, a.config)
	eventAction := NewEventAction(sdm, a.spec.NDetectors)
	engine.SetEventAction(eventAction)

	return &WorkerActions{
		SDManager:   sdm,
		Engine:      engine,
		EventAction: eventAction,
	}
}

func (a *ActionInitialization) BuildForMaster(am *AnalysisManager, run RunInfo) *RunAction {
	return NewRunAction(am, run)
}

// RunAction opens the output at the start of the run and writes and closes
// it at the end. It runs on the master only.
type RunAction struct {
	am      *AnalysisManager
	run     RunInfo
	started time.Time
}

func NewRunAction(am *AnalysisManager, run RunInfo) *RunAction {
	return &RunAction{am: am, run: run}
}

func (r *RunAction) BeginOfRunAction() error {
	r.started = time.Now()
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("### Run %d (%s) start, version %s, %d events", r.run.RunNumber, r.run.RunUUID, r.run.Version, r.run.NumEvents)
		logger.Info(message, "run")
	}
	if err := r.am.OpenFile(r.run); err != nil {
		return fmt.Errorf("error opening output for run %d: %w", r.run.RunNumber, err)
	}
	return nil
}

func (r *RunAction) EndOfRunAction() error {
	writeErr := r.am.Write()
	closeErr := r.am.CloseFile()

	summary := r.am.Summary()
	message := fmt.Sprintf("### Run %d end: %d events, %d rows, %d coincidences in %d ms",
		r.run.RunNumber, summary.Events, summary.Rows, summary.Coincidences, time.Since(r.started).Milliseconds())
	logger.Info(message, "run")
	for id := range summary.HitsPerDet {
		message := fmt.Sprintf("Detector %d: %d events with energy, %d photoelectrons", id, summary.HitsPerDet[id], summary.PhotonsPerDet[id])
		logger.Info(message, "run")
	}

	if writeErr != nil {
		return fmt.Errorf("error writing run output: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("error closing run output: %w", closeErr)
	}
	return nil
}
