package playback

import "time"

// Ticker is the part of time.Ticker the clock needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a running ticker for an interval.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Clock is the position clock of one session. It has no goroutine of its
// own: the controller loop reads C() and is the only caller of its methods,
// so after Stop returns no tick of that run can be handled.
type Clock struct {
	newTicker TickerFunc
	ticker    Ticker
	interval  time.Duration
}

func NewClock(f TickerFunc) *Clock {
	if f == nil {
		f = NewTimeTicker
	}
	return &Clock{newTicker: f}
}

// Start begins ticking every interval, replacing any running ticker.
func (c *Clock) Start(interval time.Duration) {
	c.Stop()
	c.interval = interval
	c.ticker = c.newTicker(interval)
}

// Stop is idempotent.
func (c *Clock) Stop() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	c.ticker = nil
}

// C returns the tick channel, nil while stopped.
func (c *Clock) C() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C()
}

func (c *Clock) Running() bool { return c.ticker != nil }

// Interval is the interval of the last Start.
func (c *Clock) Interval() time.Duration { return c.interval }
