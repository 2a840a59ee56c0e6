package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"authhub/internal/metrics"

	"go.uber.org/zap"
)

// Dispatcher runs side effects (mail, notification fan-out) without making the
// caller wait for them. Failures are logged, never returned.
type Dispatcher interface {
	Dispatch(name string, fn func(ctx context.Context) error)
}

type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type TaskWorker struct {
	log *zap.Logger

	queue       chan Task
	workerCount int
	stopChan    chan struct{}
	wg          sync.WaitGroup
	running     bool
	mu          sync.RWMutex

	enqueueTimeout time.Duration
	taskTimeout    time.Duration
}

func NewTaskWorker(workerCount, queueSize int, log *zap.Logger) *TaskWorker {
	if workerCount <= 0 {
		workerCount = 3
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &TaskWorker{
		log:            log.Named("task-worker"),
		queue:          make(chan Task, queueSize),
		workerCount:    workerCount,
		stopChan:       make(chan struct{}),
		enqueueTimeout: 5 * time.Second,
		taskTimeout:    time.Minute,
	}
}

func (w *TaskWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.worker(i)
	}
	w.log.Info("task worker started", zap.Int("workers", w.workerCount), zap.Int("queue_size", cap(w.queue)))
}

// Stop waits for the workers to finish every task already queued.
func (w *TaskWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()
	w.log.Info("task worker stopped")
}

func (w *TaskWorker) Submit(task Task) error {
	// Held until the task is queued so Stop cannot close the workers in between.
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.running {
		return fmt.Errorf("task worker is not running")
	}

	select {
	case w.queue <- task:
		return nil
	case <-time.After(w.enqueueTimeout):
		return fmt.Errorf("task queue is full, try again later")
	}
}

func (w *TaskWorker) Dispatch(name string, fn func(ctx context.Context) error) {
	if err := w.Submit(Task{Name: name, Run: fn}); err != nil {
		metrics.BackgroundTasksTotal.WithLabelValues(name, metrics.OutcomeRejected).Inc()
		w.log.Warn("background task dropped", zap.String("task", name), zap.Error(err))
	}
}

func (w *TaskWorker) worker(workerID int) {
	defer w.wg.Done()

	for {
		select {
		case task := <-w.queue:
			w.execute(workerID, task)
		case <-w.stopChan:
			for {
				select {
				case task := <-w.queue:
					w.execute(workerID, task)
				default:
					return
				}
			}
		}
	}
}

func (w *TaskWorker) execute(workerID int, task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), w.taskTimeout)
	defer cancel()
	runTask(ctx, task, w.log.With(zap.Int("worker", workerID)))
}

func runTask(ctx context.Context, task Task, log *zap.Logger) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.BackgroundTasksTotal.WithLabelValues(task.Name, metrics.OutcomeFailure).Inc()
			log.Error("background task panicked", zap.String("task", task.Name), zap.Any("panic", r))
		}
	}()

	if err := task.Run(ctx); err != nil {
		metrics.BackgroundTasksTotal.WithLabelValues(task.Name, metrics.OutcomeFailure).Inc()
		log.Error("background task failed", zap.String("task", task.Name), zap.Error(err))
		return
	}
	metrics.BackgroundTasksTotal.WithLabelValues(task.Name, metrics.OutcomeSuccess).Inc()
	log.Debug("background task done", zap.String("task", task.Name), zap.Duration("elapsed", time.Since(start)))
}

// InlineDispatcher runs each task before Dispatch returns.
type InlineDispatcher struct {
	Log *zap.Logger
}

func (d InlineDispatcher) Dispatch(name string, fn func(ctx context.Context) error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	runTask(context.Background(), Task{Name: name, Run: fn}, log)
}
