package det01

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessWorkerResultsOrders(t *testing.T) {
	results := make(chan WorkerResult, 5)
	for _, id := range []int{12, 10, 14, 11, 13} {
		results <- WorkerResult{EventID: id}
	}
	close(results)

	var got []int
	err := processWorkerResults(results, 10, func(r WorkerResult) error {
		got = append(got, r.EventID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 12, 13, 14}, got)
}

func TestProcessWorkerResultsFlushesGaps(t *testing.T) {
	results := make(chan WorkerResult, 3)
	for _, id := range []int{3, 0, 5} {
		results <- WorkerResult{EventID: id}
	}
	close(results)

	var got []int
	err := processWorkerResults(results, 0, func(r WorkerResult) error {
		got = append(got, r.EventID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 5}, got)
}

func TestProcessWorkerResultsKeepsFirstError(t *testing.T) {
	results := make(chan WorkerResult, 3)
	for id := 0; id < 3; id++ {
		results <- WorkerResult{EventID: id}
	}
	close(results)

	calls := 0
	err := processWorkerResults(results, 0, func(r WorkerResult) error {
		calls++
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
}

func TestSendEventsToWorkers(t *testing.T) {
	jobs := make(chan int, 10)
	sendEventsToWorkers(context.Background(), 4, 3, jobs)

	var got []int
	for id := range jobs {
		got = append(got, id)
	}
	assert.Equal(t, []int{4, 5, 6}, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := make(chan int)
	sendEventsToWorkers(ctx, 0, 100, blocked)
	_, open := <-blocked
	assert.False(t, open)
}

func TestProcessEventRecoversPanic(t *testing.T) {
	// an engine without a source panics on the first event
	actions := &WorkerActions{
		SDManager:   NewSDManager(),
		Engine:      &Engine{},
		EventAction: &EventAction{},
	}
	result := processEvent(1, actions, 8)
	assert.True(t, result.Error)
	assert.Equal(t, 8, result.EventID)
}
