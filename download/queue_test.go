package download_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adamwoolhether/wirehttp/download"
)

func TestQueue_RunsAllSaves(t *testing.T) {
	q := download.NewQueue(4)

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		q.Go(context.Background(), func(_ context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	if err := q.Wait(); err != nil {
		t.Fatalf("Wait = %v", err)
	}
	if got := ran.Load(); got != 10 {
		t.Errorf("ran %d saves, want 10", got)
	}
}

func TestQueue_RespectsConcurrencyCap(t *testing.T) {
	q := download.NewQueue(2)

	var active, peak atomic.Int32
	for i := 0; i < 8; i++ {
		q.Go(context.Background(), func(_ context.Context) error {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
			return nil
		})
	}

	if err := q.Wait(); err != nil {
		t.Fatalf("Wait = %v", err)
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency %d, want <= 2", p)
	}
}

func TestQueue_CollectsErrors(t *testing.T) {
	q := download.NewQueue(0)

	errBoom := errors.New("boom")
	q.Go(context.Background(), func(_ context.Context) error { return errBoom })
	q.Go(context.Background(), func(_ context.Context) error { return nil })

	err := q.Wait()
	if !errors.Is(err, errBoom) {
		t.Errorf("Wait = %v, want wrapped boom", err)
	}
}

func TestQueue_ShutdownStopsNewWork(t *testing.T) {
	q := download.NewQueue(0)
	q.Shutdown()

	var ran atomic.Bool
	j := q.Go(context.Background(), func(_ context.Context) error {
		ran.Store(true)
		return nil
	})

	if err := j.Wait(); !errors.Is(err, download.ErrQueueShutdown) {
		t.Errorf("job err = %v, want ErrQueueShutdown", err)
	}
	if ran.Load() {
		t.Error("save executed after shutdown")
	}
	if err := q.Wait(); !errors.Is(err, download.ErrQueueShutdown) {
		t.Errorf("Wait = %v, want ErrQueueShutdown", err)
	}
}

func TestJob_Cancel(t *testing.T) {
	q := download.NewQueue(0)

	j := q.Go(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	j.Cancel()

	if err := j.Wait(); !errors.Is(err, context.Canceled) {
		t.Errorf("job err = %v, want context.Canceled", err)
	}
}
