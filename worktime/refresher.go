/*
refresher.go - Periodic display refresher for open sessions

PURPOSE:
  While a session is open and the weekly timer is active, the elapsed
  display must be recomputed once per second. The Refresher owns that
  ticker and enforces start/stop symmetry.

DISCIPLINE:
  - Start cancels any prior ticker before launching a new one, so no two
    tickers for the same session are ever live concurrently
  - Stop is synchronous and idempotent; after it returns no further
    callbacks fire
  - Every start has exactly one matching stop on every exit path; the
    owning view stops the refresher on teardown, session close, or cap

USAGE:
  ref := worktime.NewRefresher(func(now time.Time) { ...recompute... })
  ref.Start()
  // ... session closes or view torn down
  ref.Stop()

SEE ALSO:
  - api/elapsed.go: Per-employee refreshers behind the live display endpoint
*/
package worktime

import (
	"sync"
	"time"
)

// RefreshInterval is the display refresh cadence.
const RefreshInterval = 1 * time.Second

// Refresher invokes a callback at a fixed cadence between Start and Stop.
type Refresher struct {
	Interval time.Duration
	OnTick   func(now time.Time)

	mu     sync.Mutex
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewRefresher creates a refresher with the standard 1-second interval.
func NewRefresher(onTick func(now time.Time)) *Refresher {
	return &Refresher{Interval: RefreshInterval, OnTick: onTick}
}

// Start begins ticking. Any previously started ticker is cancelled first,
// so Start is safe to call on an already-running refresher.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()

	r.ticker = time.NewTicker(r.Interval)
	r.stop = make(chan struct{})
	r.wg.Add(1)

	go r.run(r.ticker, r.stop)
}

// Stop cancels the ticker and waits for the tick goroutine to exit. After
// Stop returns no further callbacks fire. Calling Stop on a stopped
// refresher is a no-op.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// Running reports whether a ticker is currently live.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticker != nil
}

func (r *Refresher) stopLocked() {
	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	close(r.stop)
	r.wg.Wait()
	r.ticker = nil
	r.stop = nil
}

func (r *Refresher) run(ticker *time.Ticker, stop chan struct{}) {
	defer r.wg.Done()
	for {
		select {
		case now := <-ticker.C:
			r.OnTick(now)
		case <-stop:
			return
		}
	}
}
