// Package poll keeps a remote resource fresh by refetching it on a fixed
// interval and publishing each successful result to subscribers.
package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	Idle State = iota
	Active
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

var (
	ErrAlreadyStarted = errors.New("poller already started")
	ErrStopped        = errors.New("poller stopped")
	ErrNotActive      = errors.New("poller is not active")
)

type Fetch[T any] func(ctx context.Context) (T, error)

type Snapshot[T any] struct {
	Value     T
	FetchedAt time.Time
	// Seq increases with every applied result, in completion order.
	Seq uint64
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	ticker *time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t timeTicker) Stop() {
	t.ticker.Stop()
}

func newTimeTicker(interval time.Duration) Ticker {
	return timeTicker{ticker: time.NewTicker(interval)}
}

type options struct {
	newTicker func(time.Duration) Ticker
	logger    *zap.Logger
	now       func() time.Time
	name      string
}

type Option func(*options)

func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(o *options) {
		if newTicker != nil {
			o.newTicker = newTicker
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithName labels log lines so concurrent pollers can be told apart.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Poller owns one refresh cycle. Fetches may overlap; results are applied in
// the order they complete, so the latest snapshot is always the most recently
// completed fetch. Fetch functions must return once their context is done.
type Poller[T any] struct {
	fetch    Fetch[T]
	interval time.Duration
	opts     options
	logger   *zap.Logger

	mu          sync.Mutex
	state       State
	loopCtx     context.Context
	cancel      context.CancelFunc
	loopDone    chan struct{}
	inflight    sync.WaitGroup
	latest      Snapshot[T]
	hasLatest   bool
	lastErr     error
	seq         uint64
	subscribers map[int]chan Snapshot[T]
	nextSubID   int
}

func New[T any](fetch Fetch[T], interval time.Duration, opts ...Option) *Poller[T] {
	o := options{
		newTicker: newTimeTicker,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if o.name != "" {
		logger = logger.With(zap.String("poller", o.name))
	}

	return &Poller[T]{
		fetch:       fetch,
		interval:    interval,
		opts:        o,
		logger:      logger,
		subscribers: map[int]chan Snapshot[T]{},
	}
}

// Start fetches once immediately and then once per interval until Stop is
// called or ctx is done. Either way the poller ends up Stopped.
func (p *Poller[T]) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case Active:
		return ErrAlreadyStarted
	case Stopped:
		return ErrStopped
	}

	p.loopCtx, p.cancel = context.WithCancel(ctx)
	p.loopDone = make(chan struct{})
	p.state = Active

	ticker := p.opts.newTicker(p.interval)
	p.dispatchLocked()
	go p.loop(p.loopCtx, ticker, p.loopDone)

	return nil
}

func (p *Poller[T]) loop(ctx context.Context, ticker Ticker, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.state == Active {
				p.state = Stopped
				p.closeSubscribersLocked()
			}
			p.mu.Unlock()
			return
		case <-ticker.C():
			p.mu.Lock()
			if p.state == Active {
				p.dispatchLocked()
			}
			p.mu.Unlock()
		}
	}
}

func (p *Poller[T]) dispatchLocked() {
	ctx := p.loopCtx
	p.inflight.Add(1)

	go func() {
		defer p.inflight.Done()

		value, err := p.fetch(ctx)
		if err != nil {
			p.recordFailure(err)
			return
		}
		p.apply(value)
	}()
}

// Refresh fetches out of band without disturbing the tick schedule. Unlike
// tick failures, its error is returned to the caller.
func (p *Poller[T]) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if p.state != Active {
		p.mu.Unlock()
		return ErrNotActive
	}
	loopCtx := p.loopCtx
	p.inflight.Add(1)
	p.mu.Unlock()
	defer p.inflight.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(loopCtx, cancel)
	defer stop()

	value, err := p.fetch(ctx)
	if err != nil {
		p.mu.Lock()
		if p.state == Active {
			p.lastErr = err
		}
		p.mu.Unlock()
		return err
	}

	p.apply(value)
	return nil
}

// Stop tears the cycle down. Once it returns no fetch is running and none
// will be started. Results still arriving are discarded. Stop is idempotent.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	switch p.state {
	case Stopped:
		// The parent context may have stopped the loop; fetches it started
		// can still be settling.
		done := p.loopDone
		p.mu.Unlock()
		if done != nil {
			<-done
		}
		p.inflight.Wait()
		return
	case Idle:
		p.state = Stopped
		p.closeSubscribersLocked()
		p.mu.Unlock()
		return
	}

	p.state = Stopped
	p.cancel()
	done := p.loopDone
	p.closeSubscribersLocked()
	p.mu.Unlock()

	<-done
	p.inflight.Wait()
}

func (p *Poller[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

func (p *Poller[T]) Latest() (Snapshot[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.latest, p.hasLatest
}

// LastError returns the most recent fetch failure, cleared by the next
// successful fetch.
func (p *Poller[T]) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastErr
}

// Subscribe returns a channel of snapshots. A subscriber that falls behind
// only ever sees the newest snapshot. The channel is closed by cancel or Stop.
func (p *Poller[T]) Subscribe() (<-chan Snapshot[T], func()) {
	ch := make(chan Snapshot[T], 1)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Stopped {
		close(ch)
		return ch, func() {}
	}

	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = ch
	if p.hasLatest {
		ch <- p.latest
	}

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		if sub, ok := p.subscribers[id]; ok {
			delete(p.subscribers, id)
			close(sub)
		}
	}
}

func (p *Poller[T]) apply(value T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Active {
		return
	}

	p.seq++
	p.latest = Snapshot[T]{Value: value, FetchedAt: p.opts.now(), Seq: p.seq}
	p.hasLatest = true
	p.lastErr = nil

	for _, ch := range p.subscribers {
		select {
		case ch <- p.latest:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- p.latest
		}
	}
}

func (p *Poller[T]) recordFailure(err error) {
	p.mu.Lock()
	if p.state != Active {
		p.mu.Unlock()
		return
	}
	p.lastErr = err
	p.mu.Unlock()

	p.logger.Warn("poll fetch failed", zap.Error(err))
}

func (p *Poller[T]) closeSubscribersLocked() {
	for id, ch := range p.subscribers {
		delete(p.subscribers, id)
		close(ch)
	}
}
