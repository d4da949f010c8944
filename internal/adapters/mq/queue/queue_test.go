package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/tiewatch/internal/domain/model"
)

func job(id string) Job {
	return Job{Record: model.NewGroupRecord(model.GroupID(id), map[model.Pair]model.Outcome{
		model.NewPair("a", "b"): model.Pending,
	})}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, job("1")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.Record.ID() != "1" {
		t.Errorf("expected group 1, got %v", got.Record.ID())
	}
	if got.EnqueuedAt.IsZero() {
		t.Error("expected enqueue time to be stamped")
	}
}

func TestInMemoryQueue_BlocksWhenFull(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))

	if err := q.Enqueue(context.Background(), job("1")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(ctx, job("2")); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected enqueue to wait until the deadline, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(8))
	ctx := context.Background()
	producers := 10
	perProducer := 50

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				if err := q.Enqueue(ctx, job(fmt.Sprintf("%d-%d", id, j))); err != nil {
					t.Errorf("enqueue failed: %v", err)
				}
			}
		}(i)
	}

	consumed := make(chan model.GroupID, producers*perProducer)
	var consumers sync.WaitGroup
	for i := 0; i < 4; i++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for j := range q.Dequeue(ctx) {
				consumed <- j.Record.ID()
			}
		}()
	}

	wg.Wait()
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	consumers.Wait()
	close(consumed)

	seen := make(map[model.GroupID]bool)
	for id := range consumed {
		seen[id] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("expected %d distinct jobs, got %d", producers*perProducer, len(seen))
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if err := q.Enqueue(ctx, job("1")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if err := q.Enqueue(ctx, job("2")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, job("3")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after closing, got %v", err)
	}

	// Buffered jobs are still delivered, then the channel closes.
	var drained []model.GroupID
	timeout := time.After(time.Second)
	jobs := q.Dequeue(ctx)
	for {
		select {
		case j, ok := <-jobs:
			if !ok {
				if len(drained) != 2 {
					t.Errorf("expected 2 drained jobs, got %v", drained)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			drained = append(drained, j.Record.ID())
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}
