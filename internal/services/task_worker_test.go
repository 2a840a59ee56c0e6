package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTaskWorkerRunsSubmittedTasks(t *testing.T) {
	w := NewTaskWorker(2, 10, zap.NewNop())
	w.Start()

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		w.Dispatch("count", func(ctx context.Context) error {
			defer wg.Done()
			ran.Add(1)
			return nil
		})
	}
	wg.Wait()
	w.Stop()

	assert.Equal(t, int32(5), ran.Load())
}

func TestTaskWorkerSurvivesFailuresAndPanics(t *testing.T) {
	w := NewTaskWorker(1, 10, zap.NewNop())
	w.Start()
	defer w.Stop()

	done := make(chan struct{})
	w.Dispatch("fails", func(ctx context.Context) error { return errors.New("boom") })
	w.Dispatch("panics", func(ctx context.Context) error { panic("boom") })
	w.Dispatch("ok", func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker stopped processing after a failing task")
	}
}

func TestTaskWorkerStopDrainsQueue(t *testing.T) {
	w := NewTaskWorker(1, 10, zap.NewNop())
	w.Start()

	release := make(chan struct{})
	var ran atomic.Int32
	w.Dispatch("block", func(ctx context.Context) error {
		<-release
		ran.Add(1)
		return nil
	})
	for i := 0; i < 3; i++ {
		w.Dispatch("queued", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	close(release)
	w.Stop()
	assert.Equal(t, int32(4), ran.Load())
}

func TestTaskWorkerRejectsWhenStopped(t *testing.T) {
	w := NewTaskWorker(1, 1, zap.NewNop())

	err := w.Submit(Task{Name: "noop", Run: func(ctx context.Context) error { return nil }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestTaskWorkerRunsEveryAcceptedTaskAcrossStop(t *testing.T) {
	for round := 0; round < 20; round++ {
		w := NewTaskWorker(2, 100, zap.NewNop())
		w.Start()

		var accepted, ran atomic.Int32
		var submitters sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 50; i++ {
			submitters.Add(1)
			go func() {
				defer submitters.Done()
				<-start
				err := w.Submit(Task{Name: "count", Run: func(ctx context.Context) error {
					ran.Add(1)
					return nil
				}})
				if err == nil {
					accepted.Add(1)
				}
			}()
		}

		close(start)
		w.Stop()
		submitters.Wait()

		require.Equal(t, accepted.Load(), ran.Load(), "round %d", round)
	}
}

func TestInlineDispatcherRunsImmediately(t *testing.T) {
	ran := false
	InlineDispatcher{}.Dispatch("inline", func(ctx context.Context) error {
		ran = true
		return nil
	})
	assert.True(t, ran)
}
