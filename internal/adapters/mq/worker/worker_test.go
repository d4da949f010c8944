package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/tiewatch/internal/adapters/mq/queue"
	worker "github.com/okian/tiewatch/internal/adapters/mq/worker"
	"github.com/okian/tiewatch/internal/domain/enumerate"
	model "github.com/okian/tiewatch/internal/domain/model"
	logging "github.com/okian/tiewatch/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockSaver struct {
	mu    sync.Mutex
	saved map[model.GroupID]model.Analysis
	err   error
}

func newMockSaver() *mockSaver {
	return &mockSaver{saved: make(map[model.GroupID]model.Analysis)}
}

func (s *mockSaver) Save(_ context.Context, a model.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved[a.Group] = a
	return nil
}

func (s *mockSaver) get(id model.GroupID) (model.Analysis, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.saved[id]
	return a, ok
}

func (s *mockSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// panicEnumerator simulates a domain defect for one group.
type panicEnumerator struct {
	bad model.GroupID
}

func (p panicEnumerator) EnumerateChecked(rec model.GroupRecord) (model.Branches, error) {
	if rec.ID() == p.bad {
		panic("winner is not a member of the pair")
	}
	return enumerate.Enumerate(rec), nil
}

func cycle(id model.GroupID) model.GroupRecord {
	return model.NewGroupRecord(id, map[model.Pair]model.Outcome{
		model.NewPair("a", "b"): model.Decided("a"),
		model.NewPair("b", "c"): model.Decided("b"),
		model.NewPair("a", "c"): model.Decided("c"),
	})
}

func fill(q *queue.InMemoryQueue, ids ...model.GroupID) {
	for _, id := range ids {
		if err := q.Enqueue(context.Background(), queue.Job{Record: cycle(id)}); err != nil {
			panic(err)
		}
	}
	_ = q.Close()
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker over a closed queue", t, func() {
		_ = logging.Init()
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		saver := newMockSaver()

		convey.Convey("When every group is well formed", func() {
			fill(q, "1", "2")
			w := worker.NewWorker(q, enumerate.New(), saver, worker.WithName("test-worker"))
			err := w.Run(context.Background())

			convey.Convey("Then each group is analysed and saved", func() {
				convey.So(err, convey.ShouldBeNil)
				a, ok := saver.get("2")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(a.Classification, convey.ShouldEqual, model.Guaranteed)
				convey.So(saver.count(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the domain panics on a group", func() {
			fill(q, "1", "bad")
			w := worker.NewWorker(q, panicEnumerator{bad: "bad"}, saver)
			err := w.Run(context.Background())

			convey.Convey("Then the panic becomes malformed input", func() {
				convey.So(errors.Is(err, model.ErrMalformedInput), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "group bad")
			})
		})

		convey.Convey("When a group has too many pending matches", func() {
			open := model.NewGroupRecord("9", map[model.Pair]model.Outcome{
				model.NewPair("a", "b"): model.Pending,
				model.NewPair("b", "c"): model.Pending,
			})
			convey.So(q.Enqueue(context.Background(), queue.Job{Record: open}), convey.ShouldBeNil)
			_ = q.Close()
			w := worker.NewWorker(q, enumerate.New(enumerate.WithMaxPending(1)), saver)
			err := w.Run(context.Background())

			convey.Convey("Then the enumeration limit error is returned", func() {
				convey.So(errors.Is(err, enumerate.ErrTooManyPending), convey.ShouldBeTrue)
				convey.So(saver.count(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When saving fails", func() {
			fill(q, "1")
			saver.err = errors.New("disk full")
			err := worker.NewWorker(q, enumerate.New(), saver).Run(context.Background())

			convey.Convey("Then the save error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "disk full")
			})
		})

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			w := worker.NewWorker(q, enumerate.New(), saver)
			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()
			cancel()

			convey.Convey("Then the worker stops", func() {
				select {
				case err := <-done:
					convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
				case <-time.After(time.Second):
					convey.So("worker did not stop", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		saver := newMockSaver()

		convey.Convey("When the queue holds many groups", func() {
			ids := make([]model.GroupID, 0, 40)
			for i := 0; i < 40; i++ {
				ids = append(ids, model.GroupID(string(rune('A'+i%26))+string(rune('0'+i/26))))
			}
			fill(q, ids...)
			p := worker.NewPool(4, q, enumerate.New(), saver, worker.WithLogger(logging.Nop()))
			err := p.Run(context.Background())

			convey.Convey("Then all groups are analysed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Size(), convey.ShouldEqual, 4)
				convey.So(saver.count(), convey.ShouldEqual, 40)
			})
		})

		convey.Convey("When one group is malformed", func() {
			fill(q, "1", "2", "bad", "3")
			p := worker.NewPool(2, q, panicEnumerator{bad: "bad"}, saver, worker.WithLogger(logging.Nop()))
			err := p.Run(context.Background())

			convey.Convey("Then the whole run fails", func() {
				convey.So(errors.Is(err, model.ErrMalformedInput), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the worker count is not positive", func() {
			p := worker.NewPool(0, q, enumerate.New(), saver, worker.WithLogger(logging.Nop()))
			convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
