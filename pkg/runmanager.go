package det01

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// RunManager drives one run: the master run action, a pool of workers each
// with its own actions, and a single consumer that tallies the results.
type RunManager struct {
	spec    VersionSpec
	config  Configuration
	init    *ActionInitialization
	am      *AnalysisManager
	metrics *Metrics
	status  *RunStatus
}

func NewRunManager(spec VersionSpec, config Configuration, init *ActionInitialization, am *AnalysisManager) *RunManager {
	return &RunManager{
		spec:   spec,
		config: config,
		init:   init,
		am:     am,
		status: &RunStatus{},
	}
}

func (rm *RunManager) SetMetrics(m *Metrics) {
	rm.metrics = m
}

func (rm *RunManager) Status() *RunStatus {
	return rm.status
}

func (rm *RunManager) NewRunInfo(nEvents int) RunInfo {
	return RunInfo{
		RunNumber: rm.config.RunNumber,
		RunUUID:   uuid.New(),
		Version:   rm.spec.Name,
		Seed:      rm.config.Seed,
		NumEvents: nEvents,
	}
}

// BeamOn simulates nEvents events starting at event ID skip. Cancelling ctx
// stops the production of new events; the end of run action always runs
// once the run has begun.
func (rm *RunManager) BeamOn(ctx context.Context, nEvents int) (RunSummary, error) {
	run := rm.NewRunInfo(nEvents)
	runAction := rm.init.BuildForMaster(rm.am, run)
	if err := runAction.BeginOfRunAction(); err != nil {
		return RunSummary{}, err
	}
	rm.status.Start(run)
	defer rm.status.Stop()

	nWorkers := rm.config.NumWorkers
	if nWorkers < 1 {
		nWorkers = 1
	}
	jobs := make(chan int, 2*nWorkers)
	results := make(chan WorkerResult, 2*nWorkers)

	var wg sync.WaitGroup
	for w := 1; w <= nWorkers; w++ {
		actions := rm.init.Build()
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(id, actions, jobs, results)
		}(w)
	}

	// a failing writer stops the production as well
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	first := rm.config.Skip
	go sendEventsToWorkers(runCtx, first, nEvents, jobs)
	go func() {
		wg.Wait()
		close(results)
	}()

	consumeErr := processWorkerResults(results, first, func(result WorkerResult) error {
		err := rm.consume(result)
		if err != nil {
			cancel()
		}
		return err
	})
	endErr := runAction.EndOfRunAction()

	var ctxErr error
	if ctx.Err() != nil {
		ctxErr = fmt.Errorf("run %s interrupted: %w", run.RunUUID, ctx.Err())
	}
	return rm.am.Summary(), errors.Join(consumeErr, ctxErr, endErr)
}

func (rm *RunManager) consume(result WorkerResult) error {
	rm.metrics.ObserveResult(result)
	rm.status.EventDone(result.Error)
	if result.Error {
		return nil
	}
	if err := rm.am.AddRecord(&result.Record); err != nil {
		return err
	}
	if rm.am.Schema() != nil {
		rm.metrics.RowWritten()
	}
	if configuration.Verbosity > 1 {
		rec := result.Record
		message := fmt.Sprintf("Event %d: edep %v MeV, PE %v", rec.EventID, rec.Edep, rec.PE)
		logger.Info(message, "event")
	}
	return nil
}

// SetupRun assembles the geometry, output and actions of the configured
// version. conds may be nil, the configured defaults are used then.
func SetupRun(config Configuration, conds Conditions) (*RunManager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	spec, err := LookupVersion(config.Version)
	if err != nil {
		return nil, err
	}
	fileType, err := ParseFileType(config.OutputFileType(spec))
	if err != nil {
		return nil, err
	}
	if conds == nil {
		conds = DefaultConditions(spec.NDetectors, config)
	}

	writer, err := NewOutputWriter(fileType, config.FileOut, config)
	if err != nil {
		return nil, err
	}
	am, err := NewAnalysisManager(spec, spec.Schema(config.PrimaryFlags), writer)
	if err != nil {
		return nil, err
	}

	det := NewDetector(spec.NDetectors)
	init := NewActionInitialization(spec, config, det, conds)
	return NewRunManager(spec, config, init, am), nil
}
