package taskqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestQueue(t *testing.T, status *Status) *Queue {
	t.Helper()
	q := New(Options{Status: status, Logger: zerolog.Nop()})
	t.Cleanup(q.Stop)
	return q
}

func waitIdle(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Wait(ctx); err != nil {
		t.Fatalf("queue still working after timeout: %v", err)
	}
}

func TestQueue_RunsTaskOnceWithArguments(t *testing.T) {
	status := &Status{}
	q := newTestQueue(t, status)
	if q.Status() != status {
		t.Fatal("Status does not return the shared signal")
	}

	var calls atomic.Int32
	var got string
	var completed atomic.Bool
	arg := "station-42"

	if err := q.Add(Task{
		Name: "refresh",
		Run: func(context.Context) error {
			calls.Add(1)
			got = arg
			return nil
		},
		OnComplete: func() { completed.Store(true) },
	}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if !q.IsWorking() {
		t.Fatal("IsWorking = false with a pending task")
	}

	q.Start(context.Background())
	waitIdle(t, q)

	if calls.Load() != 1 {
		t.Fatalf("task ran %d times, want 1", calls.Load())
	}
	if got != arg {
		t.Fatalf("task saw %q, want %q", got, arg)
	}
	if !completed.Load() {
		t.Fatal("OnComplete was not called")
	}
	if !status.RefreshNeeded() {
		t.Fatal("status was not signalled")
	}
	if q.IsWorking() {
		t.Fatal("IsWorking = true after task completed")
	}
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := newTestQueue(t, nil)
	q.Start(context.Background())

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"A", "B", "C"} {
		name := name
		if err := q.Add(Task{Name: name, Run: func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}}); err != nil {
			t.Fatalf("Add(%s) returned error: %v", name, err)
		}
	}
	waitIdle(t, q)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != "A" || order[1] != "B" || order[2] != "C" {
		t.Fatalf("order = %v, want [A B C]", order)
	}
}

func TestQueue_NoConcurrentExecution(t *testing.T) {
	q := newTestQueue(t, nil)
	q.Start(context.Background())

	var running, maxRunning atomic.Int32
	for i := 0; i < 10; i++ {
		if err := q.Add(Task{Name: "overlap", Run: func(context.Context) error {
			n := running.Add(1)
			for {
				m := maxRunning.Load()
				if n <= m || maxRunning.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
			return nil
		}}); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}
	waitIdle(t, q)

	if maxRunning.Load() != 1 {
		t.Fatalf("max concurrent tasks = %d, want 1", maxRunning.Load())
	}
}

func TestQueue_FailingTaskDoesNotStopWorker(t *testing.T) {
	tests := []struct {
		name string
		run  func(context.Context) error
	}{
		{"error", func(context.Context) error { return errors.New("boom") }},
		{"panic", func(context.Context) error { panic("boom") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := &Status{}
			q := newTestQueue(t, status)
			q.Start(context.Background())

			var completed atomic.Bool
			if err := q.Add(Task{Name: "bad", Run: tt.run, OnComplete: func() { completed.Store(true) }}); err != nil {
				t.Fatalf("Add returned error: %v", err)
			}
			var ranAfter atomic.Bool
			if err := q.Add(Task{Name: "good", Run: func(context.Context) error {
				ranAfter.Store(true)
				return nil
			}}); err != nil {
				t.Fatalf("Add returned error: %v", err)
			}
			waitIdle(t, q)

			if !ranAfter.Load() {
				t.Fatal("task after the failing one did not run")
			}
			if q.IsWorking() {
				t.Fatal("IsWorking = true after failing task")
			}
			if !q.Running() {
				t.Fatal("worker exited after failing task")
			}
			// A failed attempt still signals and completes.
			if !completed.Load() {
				t.Fatal("OnComplete not called for failing task")
			}
			if !status.RefreshNeeded() {
				t.Fatal("status not signalled after failing task")
			}
		})
	}
}

func TestQueue_PanickingCallbackIsContained(t *testing.T) {
	q := newTestQueue(t, nil)
	q.Start(context.Background())

	var ranAfter atomic.Bool
	_ = q.Add(Task{Name: "cb", Run: func(context.Context) error { return nil }, OnComplete: func() { panic("cb") }})
	_ = q.Add(Task{Name: "next", Run: func(context.Context) error { ranAfter.Store(true); return nil }})
	waitIdle(t, q)

	if !ranAfter.Load() {
		t.Fatal("worker did not survive a panicking callback")
	}
}

func TestQueue_StartIsIdempotent(t *testing.T) {
	q := newTestQueue(t, nil)
	ctx := context.Background()
	q.Start(ctx)
	q.mu.Lock()
	firstDone := q.done
	q.mu.Unlock()

	q.Start(ctx)
	q.mu.Lock()
	secondDone := q.done
	q.mu.Unlock()

	if firstDone != secondDone {
		t.Fatal("second Start launched a new worker")
	}
}

func TestQueue_StopIsIdempotentAndWaitsForTask(t *testing.T) {
	q := New(Options{Logger: zerolog.Nop()})
	q.Stop() // no worker yet

	q.Start(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	_ = q.Add(Task{Name: "slow", Run: func(context.Context) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	}})
	<-started

	stopped := make(chan struct{})
	go func() {
		q.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a task was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the task finished")
	}
	if !finished.Load() {
		t.Fatal("in-flight task was interrupted")
	}
	if q.Running() {
		t.Fatal("Running = true after Stop")
	}
	q.Stop()
}

func TestQueue_StartDuringStopKeepsOneWorker(t *testing.T) {
	q := newTestQueue(t, nil)
	q.Start(context.Background())

	var running, maxRunning atomic.Int32
	track := func() {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
	}

	started := make(chan struct{})
	release := make(chan struct{})
	_ = q.Add(Task{Name: "a", Run: func(context.Context) error {
		track()
		close(started)
		<-release
		running.Add(-1)
		return nil
	}})
	var ranB atomic.Bool
	_ = q.Add(Task{Name: "b", Run: func(context.Context) error {
		track()
		ranB.Store(true)
		running.Add(-1)
		return nil
	}})
	<-started

	stopped := make(chan struct{})
	go func() {
		q.Stop()
		close(stopped)
	}()
	// Wait until Stop has taken the stop channel.
	deadline := time.Now().Add(2 * time.Second)
	for {
		q.mu.Lock()
		stopping := q.stop == nil
		q.mu.Unlock()
		if stopping {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Stop did not begin")
		}
		time.Sleep(time.Millisecond)
	}
	if !q.Running() {
		t.Fatal("Running = false while the worker is still executing a task")
	}

	restarted := make(chan struct{})
	go func() {
		q.Start(context.Background())
		close(restarted)
	}()
	select {
	case <-restarted:
		t.Fatal("Start returned while the previous worker was still alive")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	for _, ch := range []chan struct{}{stopped, restarted} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("Stop/Start did not return after the task finished")
		}
	}
	waitIdle(t, q)

	if !ranB.Load() {
		t.Fatal("pending task did not run on the restarted worker")
	}
	if got := maxRunning.Load(); got != 1 {
		t.Fatalf("max concurrent tasks = %d, want 1", got)
	}
}

func TestQueue_StopLeavesPendingTasks(t *testing.T) {
	q := New(Options{Logger: zerolog.Nop()})
	_ = q.Add(Task{Name: "later", Run: func(context.Context) error { return nil }})

	q.Start(context.Background())
	waitIdle(t, q)
	q.Stop()

	var ran atomic.Bool
	_ = q.Add(Task{Name: "queued while stopped", Run: func(context.Context) error {
		ran.Store(true)
		return nil
	}})
	time.Sleep(20 * time.Millisecond)
	if ran.Load() {
		t.Fatal("task ran while the queue was stopped")
	}
	if q.Len() != 1 || !q.IsWorking() {
		t.Fatalf("Len = %d IsWorking = %v, want 1 pending", q.Len(), q.IsWorking())
	}

	q.Start(context.Background())
	waitIdle(t, q)
	q.Stop()
	if !ran.Load() {
		t.Fatal("pending task did not run after restart")
	}
}

func TestQueue_RestartsAfterContextCancel(t *testing.T) {
	q := newTestQueue(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for q.Running() {
		if time.Now().After(deadline) {
			t.Fatal("worker did not exit after context cancellation")
		}
		time.Sleep(5 * time.Millisecond)
	}

	q.Start(context.Background())
	if !q.Running() {
		t.Fatal("Start did not relaunch a worker after the previous one exited")
	}
}

func TestQueue_AddValidation(t *testing.T) {
	q := New(Options{Capacity: 1, Logger: zerolog.Nop()})

	if err := q.Add(Task{Name: "nil"}); !errors.Is(err, ErrNilTask) {
		t.Fatalf("Add(nil run) error = %v, want ErrNilTask", err)
	}
	noop := func(context.Context) error { return nil }
	if err := q.Add(Task{Name: "first", Run: noop}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if err := q.Add(Task{Name: "overflow", Run: noop}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Add on full queue error = %v, want ErrQueueFull", err)
	}
	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (rejected task must not count)", q.Len())
	}
	if q.pending.Load() != 1 {
		t.Fatalf("pending = %d, want 1", q.pending.Load())
	}
}

func TestStatus_LevelCoalesces(t *testing.T) {
	var s Status
	if s.Consume() {
		t.Fatal("Consume on fresh status = true")
	}
	s.Signal()
	s.Signal()
	s.Signal()
	if !s.RefreshNeeded() {
		t.Fatal("RefreshNeeded = false after Signal")
	}
	if !s.Consume() {
		t.Fatal("first Consume = false")
	}
	if s.Consume() {
		t.Fatal("second Consume = true; signals should coalesce into one level")
	}

	var nilStatus *Status
	nilStatus.Signal()
	if nilStatus.Consume() || nilStatus.RefreshNeeded() {
		t.Fatal("nil Status should be inert")
	}
}

func TestStateString(t *testing.T) {
	if StateIdle.String() != "idle" || StateExecuting.String() != "executing" {
		t.Fatalf("State strings = %q/%q", StateIdle, StateExecuting)
	}
}
