package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-arcade/ingest/pkg/loop"
)

// DefaultPollInterval is how often a Subscription re-lists tasks.
const DefaultPollInterval = 5 * time.Second

var ErrSubscriptionStarted = errors.New("subscription already started")

// Snapshot is what one poll cycle observed.
type Snapshot struct {
	Generation uint64 `json:"generation"`
	Tasks      []Task `json:"tasks"`
	Total      int64  `json:"total"`
	// Errors holds the attributed failure cause per task id.
	Errors map[uint64]string `json:"errors,omitempty"`
}

// Subscription polls the task list on a fixed interval and attributes
// failures, delivering one Snapshot per cycle. It is the only writer of the
// snapshot it delivers.
type Subscription struct {
	m        *Manager
	interval time.Duration
	jitter   time.Duration
	filter   Filter
	page     int
	pageSize int
	onUpdate func(Snapshot)
	onError  func(error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type SubscriptionOption func(*Subscription)

func WithPollInterval(d time.Duration) SubscriptionOption {
	return func(s *Subscription) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithPollJitter(d time.Duration) SubscriptionOption {
	return func(s *Subscription) {
		s.jitter = d
	}
}

func WithFilter(f Filter) SubscriptionOption {
	return func(s *Subscription) {
		s.filter = f
	}
}

func WithPage(page, pageSize int) SubscriptionOption {
	return func(s *Subscription) {
		s.page = page
		s.pageSize = pageSize
	}
}

func OnUpdate(fn func(Snapshot)) SubscriptionOption {
	return func(s *Subscription) {
		s.onUpdate = fn
	}
}

// OnError receives request errors of a cycle; the previous snapshot stays valid.
func OnError(fn func(error)) SubscriptionOption {
	return func(s *Subscription) {
		s.onError = fn
	}
}

func (m *Manager) Subscribe(opts ...SubscriptionOption) *Subscription {
	s := &Subscription{
		m:        m,
		interval: DefaultPollInterval,
		page:     1,
		pageSize: 10,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Poll runs a single cycle.
func (s *Subscription) Poll(ctx context.Context) (Snapshot, error) {
	res, err := s.m.List(ctx, s.filter, s.page, s.pageSize)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Generation: res.Generation,
		Tasks:      res.Items,
		Total:      res.Total,
		Errors:     s.m.resolver.Resolve(ctx, res.Generation, res.Items),
	}, nil
}

// Start polls in the background until ctx ends or Stop is called. The first
// cycle runs immediately.
func (s *Subscription) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrSubscriptionStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	l := loop.New(
		loop.WithInterval(s.interval),
		loop.WithJitter(s.jitter),
		loop.WithContext(ctx),
	)
	go func(done chan struct{}) {
		defer close(done)
		_ = l.Do(func() (bool, error) {
			snap, err := s.Poll(ctx)
			if ctx.Err() != nil {
				return true, nil
			}
			if err != nil {
				if s.onError != nil {
					s.onError(err)
				}
				return false, err
			}
			if s.onUpdate != nil {
				s.onUpdate(snap)
			}
			return false, nil
		})
	}(s.done)
	return nil
}

// Stop cancels polling and waits for the running cycle to return. A cycle
// cut short by Stop delivers nothing.
func (s *Subscription) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
