package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultCapacity bounds the number of pending tasks.
	DefaultCapacity = 64

	waitPollInterval = 50 * time.Millisecond
)

var (
	// ErrQueueFull is returned by Add when the pending buffer is at capacity.
	ErrQueueFull = errors.New("taskqueue: queue is full")
	// ErrNilTask is returned by Add for a task without a Run function.
	ErrNilTask = errors.New("taskqueue: task has no run function")
)

// Task is a deferred unit of work. Run captures its own arguments.
type Task struct {
	Name       string
	Run        func(ctx context.Context) error
	OnComplete func()
}

// State is the worker's position in its loop.
type State int32

const (
	StateIdle State = iota
	StateExecuting
)

func (s State) String() string {
	if s == StateExecuting {
		return "executing"
	}
	return "idle"
}

// Options configure a Queue.
type Options struct {
	Capacity int
	Status   *Status
	Logger   zerolog.Logger
}

// Queue runs tasks one at a time, in the order they were added, on a single
// background worker.
type Queue struct {
	tasks   chan Task
	status  *Status
	log     zerolog.Logger
	pending atomic.Int64
	state   atomic.Int32

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// New creates a stopped queue. Call Start to begin draining it.
func New(opts Options) *Queue {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		tasks:  make(chan Task, capacity),
		status: opts.Status,
		log:    opts.Logger.With().Str("component", "taskqueue").Logger(),
	}
}

// Status returns the status signal the worker raises, possibly nil.
func (q *Queue) Status() *Status {
	return q.status
}

// Add enqueues a task without blocking. Tasks may be added before Start.
func (q *Queue) Add(task Task) error {
	if task.Run == nil {
		return ErrNilTask
	}
	q.pending.Add(1)
	select {
	case q.tasks <- task:
		q.log.Debug().Str("task", task.Name).Int("pending", len(q.tasks)).Msg("task queued")
		return nil
	default:
		q.pending.Add(-1)
		return fmt.Errorf("%w (capacity %d)", ErrQueueFull, cap(q.tasks))
	}
}

// IsWorking reports whether a task is executing or waiting to execute.
func (q *Queue) IsWorking() bool {
	return q.pending.Load() > 0
}

// Len returns the number of tasks waiting in the buffer.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// State returns whether the worker is idle or executing a task.
func (q *Queue) State() State {
	return State(q.state.Load())
}

// Running reports whether a worker goroutine is alive.
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.aliveLocked()
}

func (q *Queue) aliveLocked() bool {
	if q.done == nil {
		return false
	}
	select {
	case <-q.done:
		return false
	default:
		return true
	}
}

// Start launches the worker if none is alive. Calling it on a running queue
// is a no-op. If a Stop is still waiting for the previous worker, Start waits
// for that worker to exit before launching a new one. The worker also exits
// when ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.stop == nil && q.aliveLocked() {
		done := q.done
		q.mu.Unlock()
		<-done
		q.mu.Lock()
	}
	if q.aliveLocked() {
		return
	}
	q.stop = make(chan struct{})
	q.done = make(chan struct{})
	go q.run(ctx, q.stop, q.done)
	q.log.Info().Msg("worker started")
}

// Stop asks the worker to exit once its current task is done and waits for
// it. It does not cancel the running task. Pending tasks stay queued.
func (q *Queue) Stop() {
	q.mu.Lock()
	stop, done := q.stop, q.done
	// done stays set until the worker has exited so Running and Start
	// still see it alive.
	q.stop = nil
	q.mu.Unlock()

	if done == nil {
		return
	}
	if stop != nil {
		q.log.Info().Msg("stopping worker")
		close(stop)
	}
	<-done

	q.mu.Lock()
	if q.done == done {
		q.done = nil
	}
	q.mu.Unlock()
	if stop != nil {
		q.log.Info().Int("pending", len(q.tasks)).Msg("worker stopped")
	}
}

// Wait blocks until the queue is no longer working or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()
	for q.IsWorking() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (q *Queue) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		// Check for shutdown before taking more work so a stop requested
		// during a task is honoured even when the buffer is not empty.
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case task := <-q.tasks:
			q.execute(ctx, task)
		}
	}
}

func (q *Queue) execute(ctx context.Context, task Task) {
	q.state.Store(int32(StateExecuting))
	defer func() {
		q.state.Store(int32(StateIdle))
		q.pending.Add(-1)
	}()

	logger := q.log.With().Str("task", task.Name).Logger()
	logger.Info().Msg("executing task")
	start := time.Now()

	if err := attempt(ctx, task.Run); err != nil {
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("task failed")
	} else {
		logger.Info().Dur("elapsed", time.Since(start)).Msg("task finished")
	}

	// Runs after every attempt: the signal means "a task finished", not
	// "a task succeeded".
	q.status.Signal()
	if task.OnComplete != nil {
		if err := attempt(ctx, func(context.Context) error {
			task.OnComplete()
			return nil
		}); err != nil {
			logger.Error().Err(err).Msg("completion callback failed")
		}
	}
}

// attempt runs fn and converts a panic into an error.
func attempt(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx)
}
