package download

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// SaveFunc is one unit of queued work. Each function owns its request
// and connection; the queue only schedules and collects errors.
type SaveFunc func(ctx context.Context) error

// Queue runs a batch of saves concurrently with a concurrency cap.
// The engine itself is strictly sequential per connection, so batch
// downloads fan out across connections, one per queued save.
type Queue struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	sem      chan struct{}
	shutdown atomic.Bool
	errs     []error
}

// NewQueue creates a Queue limited to maxConcurrent saves at a time.
// If maxConcurrent <= 0, concurrency is unlimited.
func NewQueue(maxConcurrent int) *Queue {
	q := &Queue{}
	if maxConcurrent > 0 {
		q.sem = make(chan struct{}, maxConcurrent)
	}

	return q
}

// Go schedules fn and returns a Job for tracking it individually.
// After Shutdown, fn is not executed and the Job completes with
// ErrQueueShutdown.
func (q *Queue) Go(ctx context.Context, fn SaveFunc) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	q.wg.Add(1)
	go func() {
		defer func() {
			cancel()
			close(j.done)
			q.wg.Done()
		}()

		if q.shutdown.Load() {
			j.err = ErrQueueShutdown
			q.recordErr(j.err)
			return
		}

		if q.sem != nil {
			select {
			case q.sem <- struct{}{}:
				defer func() { <-q.sem }()
			case <-ctx.Done():
				j.err = ctx.Err()
				q.recordErr(j.err)
				return
			}
		}

		if err := fn(ctx); err != nil {
			j.err = err
			q.recordErr(err)
		}
	}()

	return j
}

// Wait blocks until every queued save completes and returns all
// recorded errors joined via errors.Join.
func (q *Queue) Wait() error {
	q.wg.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()

	return errors.Join(q.errs...)
}

// Shutdown prevents saves queued afterwards from executing. In-flight
// saves run to completion.
func (q *Queue) Shutdown() {
	q.shutdown.Store(true)
}

func (q *Queue) recordErr(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.errs = append(q.errs, err)
}

// ErrQueueShutdown is recorded for saves queued after Shutdown.
var ErrQueueShutdown = errors.New("download queue shut down")

// Job tracks one queued save.
type Job struct {
	done   chan struct{}
	err    error
	cancel context.CancelFunc
}

// Wait blocks until the save completes and returns its error.
func (j *Job) Wait() error {
	<-j.done
	return j.err
}

// Cancel aborts the save's context. The save may still complete
// successfully if it was already past its last cancellation point.
func (j *Job) Cancel() {
	j.cancel()
}
