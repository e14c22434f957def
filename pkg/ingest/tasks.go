package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task is a handle to one background unit of work. Callers can wait on
// Done, read the terminal error, or cancel it.
type Task struct {
	ID   string
	Name string

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func (t *Task) Done() <-chan struct{} { return t.done }

func (t *Task) Cancel() { t.cancel() }

// Err returns the task's terminal error. Only meaningful after Done is
// closed.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task) setErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

// Runner tracks background tasks so they can be awaited on shutdown
// instead of leaking as detached goroutines.
type Runner struct {
	logger *zap.Logger

	mu    sync.Mutex
	tasks map[string]*Task
	wg    sync.WaitGroup
}

func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger: logger,
		tasks:  make(map[string]*Task),
	}
}

// Go launches fn as a tracked task and returns its handle immediately.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	task := &Task{
		ID:     uuid.NewString(),
		Name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	r.tasks[task.ID] = task
	r.mu.Unlock()
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		defer close(task.done)
		defer cancel()
		defer func() {
			r.mu.Lock()
			delete(r.tasks, task.ID)
			r.mu.Unlock()
		}()
		defer func() {
			if p := recover(); p != nil {
				err := fmt.Errorf("task panicked: %v", p)
				task.setErr(err)
				r.logger.Error("background task panicked",
					zap.String("task", name),
					zap.String("id", task.ID),
					zap.Any("panic", p))
			}
		}()

		if err := fn(ctx); err != nil {
			task.setErr(err)
			r.logger.Warn("background task failed",
				zap.String("task", name),
				zap.String("id", task.ID),
				zap.Error(err))
		}
	}()

	return task
}

// Running reports the number of in-flight tasks.
func (r *Runner) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Wait blocks until every launched task has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
