package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSubmitRunsTask(t *testing.T) {
	q := NewAnalysisQueue(2, 1, zap.NewNop())
	defer q.Close()

	var ran atomic.Bool
	handle, ok := q.Submit(func(context.Context) {
		ran.Store(true)
	})
	if !ok {
		t.Fatal("submission rejected")
	}

	select {
	case <-handle.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task never finished")
	}
	if !ran.Load() {
		t.Error("task did not run")
	}
	if handle.State() != TaskCompleted {
		t.Errorf("state = %s, want COMPLETED", handle.State())
	}
}

func TestSubmitFullQueueDoesNotBlock(t *testing.T) {
	q := NewAnalysisQueue(1, 1, zap.NewNop())
	defer q.Close()

	block := make(chan struct{})
	// Occupy the single worker, then fill the single buffer slot.
	if _, ok := q.Submit(func(context.Context) { <-block }); !ok {
		t.Fatal("first submission rejected")
	}
	for {
		if _, ok := q.Submit(func(context.Context) {}); !ok {
			break
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := q.Submit(func(context.Context) {}); ok {
			t.Error("submission accepted on a full queue")
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
	close(block)
}

func TestTaskPanicDoesNotKillWorker(t *testing.T) {
	q := NewAnalysisQueue(2, 1, zap.NewNop())
	defer q.Close()

	panicked, _ := q.Submit(func(context.Context) { panic("boom") })
	select {
	case <-panicked.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("panicking task never completed")
	}

	follow, ok := q.Submit(func(context.Context) {})
	if !ok {
		t.Fatal("submission rejected after a panic")
	}
	select {
	case <-follow.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker dead after a panicking task")
	}
}

func TestCloseWaitsForInFlight(t *testing.T) {
	q := NewAnalysisQueue(2, 2, zap.NewNop())

	var finished atomic.Int32
	for i := 0; i < 2; i++ {
		if _, ok := q.Submit(func(context.Context) {
			time.Sleep(10 * time.Millisecond)
			finished.Add(1)
		}); !ok {
			t.Fatal("submission rejected")
		}
	}
	q.Close()
	if finished.Load() != 2 {
		t.Errorf("finished = %d, want 2 after Close", finished.Load())
	}
}
