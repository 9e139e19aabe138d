package det01

import (
	"context"
	"fmt"
	"time"
)

type WorkerResult struct {
	EventID  int
	Record   EventRecord
	Stats    EventStats
	Duration time.Duration
	Error    bool
}

func worker(id int, actions *WorkerActions, jobs <-chan int, results chan<- WorkerResult) {
	for eventID := range jobs {
		if configuration.Verbosity > 2 {
			logger.Info(fmt.Sprintf("Worker %d processing event %d", id, eventID), "worker")
		}
		results <- processEvent(id, actions, eventID)
	}
}

func processEvent(id int, actions *WorkerActions, eventID int) (result WorkerResult) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("worker %d recovered from panic on event %d: %v", id, eventID, r)
			logger.Error(errMessage.Error())
			logger.Error(fmt.Sprintf("discarding event %d", eventID))
			result = WorkerResult{EventID: eventID, Error: true}
		}
	}()

	start := time.Now()
	event, stats := actions.Engine.ProcessEvent(eventID)
	record, ok := actions.EventAction.EndOfEventAction(event)
	if !ok {
		logger.Error(fmt.Sprintf("event %d has no hits collections, discarding", eventID))
		return WorkerResult{EventID: eventID, Error: true}
	}
	return WorkerResult{
		EventID:  eventID,
		Record:   record,
		Stats:    stats,
		Duration: time.Since(start),
	}
}

// sendEventsToWorkers emits the IDs first..first+count-1 and closes jobs.
// It stops early when ctx is cancelled.
func sendEventsToWorkers(ctx context.Context, first int, count int, jobs chan<- int) {
	defer close(jobs)
	for eventID := first; eventID < first+count; eventID++ {
		select {
		case jobs <- eventID:
		case <-ctx.Done():
			return
		}
	}
}

// processWorkerResults hands the results to consume in event ID order,
// buffering the ones that arrive early. It returns the first consume error;
// the remaining results are still drained so the workers can finish.
func processWorkerResults(results <-chan WorkerResult, first int, consume func(WorkerResult) error) error {
	pending := make(map[int]WorkerResult)
	next := first
	var firstErr error

	deliver := func(result WorkerResult) {
		if firstErr != nil {
			return
		}
		if err := consume(result); err != nil {
			firstErr = err
		}
	}

	for result := range results {
		pending[result.EventID] = result
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			deliver(r)
			next++
		}
	}

	// IDs missing after a cancellation leave gaps, flush the rest in order
	for len(pending) > 0 {
		if r, ok := pending[next]; ok {
			delete(pending, next)
			deliver(r)
		}
		next++
	}
	return firstErr
}
