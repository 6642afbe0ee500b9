package tetris

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the time between two falling ticks.
const DefaultInterval = time.Second

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

// NewTicker returns a stopped Ticker on the wall clock. Reset starts it.
func NewTicker(d time.Duration) Ticker {
	t := &wrappedTicker{ticker: time.NewTicker(d)}
	t.ticker.Stop()
	return t
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// Runner is a caller side game loop: a single goroutine feeds ticks and
// intents to an Engine and publishes a Frame after each of them.
type Runner struct {
	updateCh chan Frame
	actionCh chan Intent
	doneCh   chan struct{}
	stopOnce sync.Once

	engine   *Engine
	ticker   Ticker
	interval time.Duration
	logger   *slog.Logger
	events   []Event
}

func NewRunner(cfg Config) *Runner {
	return NewConfigurableRunner(New(cfg), NewTicker(DefaultInterval), DefaultInterval)
}

// NewConfigurableRunner runs e on a custom ticker.
func NewConfigurableRunner(e *Engine, ticker Ticker, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := &Runner{
		updateCh: make(chan Frame),
		actionCh: make(chan Intent),
		doneCh:   make(chan struct{}),
		engine:   e,
		ticker:   ticker,
		interval: interval,
		logger:   e.logger,
	}
	e.Subscribe(func(ev Event) { r.events = append(r.events, ev) })
	return r
}

// Start spawns the first piece and starts the loop. The first frame is
// published right away.
func (r *Runner) Start() {
	if err := r.engine.Start(); err != nil {
		r.logger.Warn("unable to spawn first piece", slog.String("error", err.Error()))
	}
	go r.listen()
}

// Stop ends the loop. It is safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.ticker.Stop()
		close(r.doneCh)
	})
}

// Action queues an intent. It returns without effect once stopped.
func (r *Runner) Action(i Intent) {
	select {
	case r.actionCh <- i:
	case <-r.doneCh:
	}
}

// GetUpdate returns the frame channel.
func (r *Runner) GetUpdate() <-chan Frame { return r.updateCh }

func (r *Runner) listen() {
	r.ticker.Reset(r.interval)
	for {
		if !r.publish() {
			return
		}
		select {
		case <-r.ticker.C():
			r.apply(Tick)
		case i := <-r.actionCh:
			r.apply(i)
			if i == HardDrop {
				// the next piece gets a full interval before its first tick
				r.ticker.Reset(r.interval)
			}
		case <-r.doneCh:
			return
		}
	}
}

func (r *Runner) apply(i Intent) {
	err := r.engine.ApplyIntent(i)
	switch {
	case err == nil, errors.Is(err, ErrNoPiece):
	default:
		r.logger.Error("unable to apply intent", slog.String("intent", string(i)), slog.String("error", err.Error()))
	}
}

func (r *Runner) publish() bool {
	f := r.engine.Frame()
	f.Events, r.events = r.events, nil
	select {
	case r.updateCh <- f:
		return true
	case <-r.doneCh:
		return false
	}
}
