package amounts

import (
	"sync"
	"time"

	"github.com/meridianswap/preview-engine/internal/metrics"
)

// Debouncer collapses a stream of raw inputs into the single value still
// current after a quiet interval. Intermediate values are discarded without
// side effects; this is the engine's primary backpressure against
// keystroke-rate input.
//
// The emit callback runs on a timer goroutine. Callers that mutate shared
// state from emit must do their own locking.
type Debouncer struct {
	mu      sync.Mutex
	quiet   time.Duration
	timer   *time.Timer
	pending string
	hasPend bool
	stopped bool
	emit    func(value string)
}

func NewDebouncer(quiet time.Duration, emit func(value string)) *Debouncer {
	return &Debouncer{quiet: quiet, emit: emit}
}

// Input records a new raw value and restarts the quiet interval. A value
// superseded before the interval elapses is dropped.
func (d *Debouncer) Input(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.hasPend {
		metrics.DebounceDrops.Inc()
	}
	d.pending = value
	d.hasPend = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || !d.hasPend {
		d.mu.Unlock()
		return
	}
	value := d.pending
	d.hasPend = false
	d.mu.Unlock()

	d.emit(value)
}

// Flush emits any pending value immediately instead of waiting out the quiet
// interval.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.fire()
}

// Stop discards any pending value and prevents further emissions.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.hasPend = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
