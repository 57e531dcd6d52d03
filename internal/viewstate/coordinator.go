package viewstate

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"radiology-portal/internal/models"
	"radiology-portal/internal/worklist"
)

type ExamLister interface {
	ListExams(ctx context.Context) ([]*models.Exam, error)
}

// Snapshot is what subscribers receive after every change.
type Snapshot struct {
	State  State
	Exams  []*models.Exam
	Counts map[models.Category]int
}

// Coordinator owns the single current State. Dispatches are serialized and
// every subscriber sees snapshots in dispatch order. Subscribers must not
// call Dispatch or Refresh.
type Coordinator struct {
	source ExamLister
	logger zerolog.Logger

	dispatchMu sync.Mutex

	mu     sync.RWMutex
	state  State
	last   Snapshot
	subs   map[int]func(Snapshot)
	nextID int
}

func NewCoordinator(source ExamLister, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		source: source,
		logger: logger,
		state:  Initial(),
		subs:   make(map[int]func(Snapshot)),
	}
}

func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Last returns the most recently published snapshot.
func (c *Coordinator) Last() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Dispatch applies events in order and publishes the new view. On error the
// state is left unchanged and nothing is published.
func (c *Coordinator) Dispatch(ctx context.Context, events ...Event) (Snapshot, error) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	next := c.State()
	for _, e := range events {
		var err error
		if next, err = next.With(e); err != nil {
			return Snapshot{}, err
		}
	}
	return c.publish(ctx, next)
}

// Refresh recomputes the view for the current state, after the exam
// collection changed.
func (c *Coordinator) Refresh(ctx context.Context) (Snapshot, error) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	return c.publish(ctx, c.State())
}

func (c *Coordinator) publish(ctx context.Context, next State) (Snapshot, error) {
	all, err := c.source.ListExams(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list exams: %w", err)
	}
	snap := Snapshot{
		State:  next,
		Exams:  worklist.Apply(all, next.Criteria()),
		Counts: worklist.CountByCategory(all),
	}

	c.mu.Lock()
	c.state = next
	c.last = snap
	subs := make([]func(Snapshot), 0, len(c.subs))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	c.mu.Unlock()

	c.logger.Debug().
		Str("category", string(next.Category())).
		Int("visible", len(snap.Exams)).
		Int("subscribers", len(subs)).
		Msg("view updated")

	for _, fn := range subs {
		fn(snap)
	}
	return snap, nil
}

// Subscribe registers fn for every future snapshot. The returned func
// removes it.
func (c *Coordinator) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// SubscribeChan delivers snapshots on a buffered channel. A slow reader
// loses older snapshots, never the latest one. cancel closes the channel.
func (c *Coordinator) SubscribeChan(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)
	var closed bool
	var chMu sync.Mutex

	unsubscribe := c.Subscribe(func(s Snapshot) {
		chMu.Lock()
		defer chMu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	})

	return ch, func() {
		unsubscribe()
		chMu.Lock()
		defer chMu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}
}
