// Package worker provides the bounded queue the moderation pipeline runs
// on, keeping analysis off the ticket-creation request path.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// TaskState tracks a submitted task.
type TaskState string

const (
	TaskPending   TaskState = "PENDING"
	TaskRunning   TaskState = "RUNNING"
	TaskCompleted TaskState = "COMPLETED"
)

// Task is one unit of queued work.
type Task func(ctx context.Context)

// TaskHandle exposes the observable completion state of a submission.
type TaskHandle struct {
	mu    sync.Mutex
	state TaskState
	done  chan struct{}
}

func newTaskHandle() *TaskHandle {
	return &TaskHandle{state: TaskPending, done: make(chan struct{})}
}

// Done is closed once the task has finished.
func (h *TaskHandle) Done() <-chan struct{} {
	return h.done
}

// State returns the current task state.
func (h *TaskHandle) State() TaskState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *TaskHandle) setState(state TaskState) {
	h.mu.Lock()
	h.state = state
	h.mu.Unlock()
	if state == TaskCompleted {
		close(h.done)
	}
}

type submission struct {
	task   Task
	handle *TaskHandle
}

// AnalysisQueue is a bounded task queue with a fixed worker pool.
type AnalysisQueue struct {
	tasks  chan submission
	logger *zap.Logger
	wg     sync.WaitGroup
	once   sync.Once
}

// NewAnalysisQueue builds a queue with the given capacity and worker count.
func NewAnalysisQueue(size, workers int, logger *zap.Logger) *AnalysisQueue {
	if size <= 0 {
		size = 64
	}
	if workers <= 0 {
		workers = 1
	}
	q := &AnalysisQueue{
		tasks:  make(chan submission, size),
		logger: logger,
	}
	q.start(workers)
	return q
}

func (q *AnalysisQueue) start(workers int) {
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.run()
	}
}

func (q *AnalysisQueue) run() {
	defer q.wg.Done()
	for sub := range q.tasks {
		sub.handle.setState(TaskRunning)
		q.invoke(sub.task)
		sub.handle.setState(TaskCompleted)
	}
}

func (q *AnalysisQueue) invoke(task Task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("analysis task panicked", zap.Any("panic", r))
		}
	}()
	task(context.Background())
}

// Submit enqueues a task without blocking. The second return value is
// false when the queue is full; the caller decides the degraded path.
func (q *AnalysisQueue) Submit(task Task) (*TaskHandle, bool) {
	handle := newTaskHandle()
	select {
	case q.tasks <- submission{task: task, handle: handle}:
		return handle, true
	default:
		return nil, false
	}
}

// Close stops intake and waits for in-flight tasks to finish.
func (q *AnalysisQueue) Close() {
	q.once.Do(func() {
		close(q.tasks)
	})
	q.wg.Wait()
}
