package sender

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 8, Workers: 1})
	defer d.Close()

	done := make(chan struct{})
	if err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
}

func TestDispatcherSingleAttempt(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 8, Workers: 1})

	var calls atomic.Int32
	_ = d.Enqueue(context.Background(), "delete.message", "deleteMessage", func() error {
		calls.Add(1)
		return errors.New("telegram: Bad Request (400)")
	})
	d.Close()

	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, failures must not be retried", got)
	}
	if got := d.ErrorCount(); got != 1 {
		t.Fatalf("error count = %d", got)
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 1, Workers: 1})
	defer d.Close()

	block := make(chan struct{})
	release := make(chan struct{})
	_ = d.Enqueue(context.Background(), "a", "", func() error {
		close(block)
		<-release
		return nil
	})
	<-block

	// The single worker is busy; fill the queue, then overflow it.
	_ = d.Enqueue(context.Background(), "b", "", func() error { return nil })
	err := d.Enqueue(context.Background(), "c", "", func() error { return nil })
	close(release)

	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, expected ErrQueueFull", err)
	}
}

func TestDispatcherClosedQueue(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 1, Workers: 1})
	d.Close()

	err := d.Enqueue(context.Background(), "a", "", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, expected ErrQueueClosed", err)
	}
}
