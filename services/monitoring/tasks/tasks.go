package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Swyp/Swyp-Backend/services/monitoring/logging"
	"github.com/sirupsen/logrus"
)

// Task represents a scheduled task
type Task struct {
	ID          string
	Name        string
	Fn          func(context.Context) error
	Interval    time.Duration // For recurring tasks. Zero means run once
	LastRun     time.Time
	LastErr     error
	Runs        int
	IsRecurring bool

	cancel context.CancelFunc
}

// TaskScheduler manages the background sweeps of the engine
type TaskScheduler struct {
	tasks  map[string]*Task
	mu     sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *logging.Logger
}

func NewTaskScheduler(logger *logging.Logger) *TaskScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &TaskScheduler{
		tasks:  make(map[string]*Task),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// AddTask adds a new task to the scheduler
func (ts *TaskScheduler) AddTask(id, name string, fn func(context.Context) error, interval time.Duration) (*Task, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.tasks[id]; exists {
		return nil, fmt.Errorf("task with ID %s already exists", id)
	}

	task := &Task{
		ID:          id,
		Name:        name,
		Fn:          fn,
		Interval:    interval,
		IsRecurring: interval > 0,
	}

	ts.tasks[id] = task
	ts.logger.Info(fmt.Sprintf("Added task %s to scheduler", id))
	return task, nil
}

// ScheduleTask starts a task after delay; recurring tasks then run every Interval
// until stopped.
func (ts *TaskScheduler) ScheduleTask(id string, delay time.Duration) error {
	ts.mu.Lock()
	task, exists := ts.tasks[id]
	if !exists {
		ts.mu.Unlock()
		return fmt.Errorf("task with ID %s not found", id)
	}
	if task.cancel != nil {
		ts.mu.Unlock()
		return fmt.Errorf("task with ID %s is already scheduled", id)
	}
	ctx, cancel := context.WithCancel(ts.ctx)
	task.cancel = cancel
	ts.mu.Unlock()

	ts.logger.Info(fmt.Sprintf("Scheduling task %s to run in %s", id, delay))

	ts.wg.Add(1)
	go func() {
		defer ts.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				ts.logger.Info(fmt.Sprintf("Task %s context cancelled", id))
				return
			case <-timer.C:
				ts.execute(ctx, task)
				if !task.IsRecurring {
					return
				}
				timer.Reset(task.Interval)
			}
		}
	}()

	return nil
}

func (ts *TaskScheduler) execute(ctx context.Context, task *Task) {
	err := task.Fn(ctx)
	if err != nil {
		ts.logger.WithFields(logrus.Fields{"task": task.ID}).Error(fmt.Sprintf("Task %s failed: %v", task.Name, err))
	}

	ts.mu.Lock()
	task.LastRun = time.Now()
	task.LastErr = err
	task.Runs++
	ts.mu.Unlock()
}

// GetTask retrieves a snapshot of a task by ID
func (ts *TaskScheduler) GetTask(id string) (Task, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	task, exists := ts.tasks[id]
	if !exists {
		return Task{}, fmt.Errorf("task with ID %s not found", id)
	}

	return *task, nil
}

// Shutdown cancels every task and waits for in-flight runs to return
func (ts *TaskScheduler) Shutdown() {
	ts.cancel()
	ts.wg.Wait()
}
