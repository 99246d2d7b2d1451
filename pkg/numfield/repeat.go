package numfield

import "time"

// RepeatInterval is the tick period of continuous stepping while an arrow
// key is held.
const RepeatInterval = 50 * time.Millisecond

// Ticker delivers repeat ticks. *time.Ticker satisfies it through
// NewTicker; tests substitute a manual implementation.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d
type TickerFactory func(d time.Duration) Ticker

// Dispatcher runs fn on the goroutine that owns UI state. The default
// dispatcher calls fn directly on the ticker goroutine.
type Dispatcher func(fn func())

type timeTicker struct {
	t *time.Ticker
}

// NewTicker wraps time.NewTicker
func NewTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func dispatchInline(fn func()) { fn() }

// repeater is the handle of one running continuous step. It is owned by a
// Field; a nil handle means no repeat is running.
type repeater struct {
	direction int
	done      chan struct{}
}

// run forwards ticks until done is closed
func (r *repeater) run(t Ticker, dispatch Dispatcher, tick func(*repeater)) {
	defer t.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-t.C():
			select {
			case <-r.done:
				return
			default:
			}
			dispatch(func() { tick(r) })
		}
	}
}

// cancel stops future ticks. A tick already handed to the dispatcher still
// runs but finds the handle detached from its field.
func (r *repeater) cancel() {
	close(r.done)
}
