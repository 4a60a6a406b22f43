package timectrl

import (
	"sync"
	"time"
)

// Mode describes how the TickDriver advances simulation time.
type Mode int

const (
	// RealTime ticks at the configured interval and reports measured
	// wall-clock deltas, so listeners stay robust to scheduling jitter.
	RealTime Mode = iota
	// Accelerated ticks as fast as the loop can run, reporting the
	// configured interval as a fixed synthetic delta.
	Accelerated
)

// TickDriver is the host-side tick loop: it invokes registered listeners
// once per frame with the elapsed delta in seconds. Listeners run on the
// driver's single goroutine, in registration order, so controller state
// never sees concurrent writers.
type TickDriver struct {
	mu        sync.Mutex
	interval  time.Duration
	mode      Mode
	listeners []func(dt float64)

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
	running  bool
}

// NewTickDriver constructs a driver. interval is the target frame period
// (e.g. ~16.7ms for 60 Hz).
func NewTickDriver(interval time.Duration, mode Mode) *TickDriver {
	return &TickDriver{
		interval: interval,
		mode:     mode,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// AddListener registers a per-tick callback. Must be called before Start.
func (d *TickDriver) AddListener(fn func(dt float64)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Start runs the loop in a separate goroutine for at most maxDuration of
// simulated time (zero means unbounded). The returned channel is closed
// when the loop exits, whether by duration, Stop, or both.
func (d *TickDriver) Start(maxDuration time.Duration) <-chan struct{} {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return d.done
	}
	d.running = true
	listeners := append([]func(dt float64){}, d.listeners...)
	d.mu.Unlock()

	go func() {
		defer close(d.done)

		elapsed := time.Duration(0)
		last := time.Now()

		var ticker *time.Ticker
		if d.mode == RealTime {
			ticker = time.NewTicker(d.interval)
			defer ticker.Stop()
		}

		for {
			if maxDuration > 0 && elapsed >= maxDuration {
				return
			}

			var dt float64
			if d.mode == RealTime {
				select {
				case <-d.stopCh:
					return
				case now := <-ticker.C:
					dt = now.Sub(last).Seconds()
					last = now
				}
			} else {
				select {
				case <-d.stopCh:
					return
				default:
				}
				dt = d.interval.Seconds()
			}

			elapsed += time.Duration(dt * float64(time.Second))

			for _, fn := range listeners {
				fn(dt)
			}
		}
	}()
	return d.done
}

// Stop tears the loop down. No listener is invoked after Stop returns and
// the loop goroutine has exited; callers needing that guarantee wait on the
// channel returned by Start.
func (d *TickDriver) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
}

// Wait blocks until the loop has exited.
func (d *TickDriver) Wait() { <-d.done }
