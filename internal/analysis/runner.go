// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"audiolyzer/internal/handoff"
	applog "audiolyzer/internal/log"
	"audiolyzer/internal/metrics"
)

// Frame is one completed analysis tick.
type Frame struct {
	Levels   []float64 // One value in [0, 1] per output bin; valid until the next tick.
	Window   WindowFunc
	Seq      uint64    // Mailbox sequence of the analyzed block.
	Captured time.Time // When the analyzed block was captured.
	BlockLen int
}

// Sink consumes frames produced by a Runner.
type Sink interface {
	WriteFrame(Frame) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Frame) error

// WriteFrame calls f(frame).
func (f SinkFunc) WriteFrame(frame Frame) error {
	return f(frame)
}

// DefaultInterval is the tick period used when none is given (~60Hz).
const DefaultInterval = time.Second / 60

// Runner is the consumer side of the handoff. On every tick it copies the
// latest block out of the mailbox, runs the engine on the private copy and
// hands the frame to the sink. A tick that finds the mailbox empty or busy,
// or a block too short to analyze, produces nothing; the next tick retries.
//
// The owner of the timer can call Tick directly (the terminal UI does), or
// Start a goroutine that ticks at the configured interval.
type Runner struct {
	engine   *Engine
	mailbox  *handoff.Mailbox
	sink     Sink
	metrics  *metrics.Metrics
	interval time.Duration

	ticker   *time.Ticker   // Ticker that triggers analysis.
	doneChan chan struct{}  // Closed to stop the goroutine.
	stopOnce sync.Once      // Ensures the stop logic runs only once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the goroutine to finish during Stop.
	mu       sync.Mutex     // Protects ticker and doneChan during Start/Stop.

	pendingBins atomic.Int64 // Requested bin count, applied at the next tick; 0 for none.

	// Pre-allocated buffers for the tick path.
	block  []float32
	levels []float64
}

// NewRunner wires an engine to a mailbox. sink may be nil when the caller
// only uses the frames returned by Tick; m may be nil to use metrics.Default.
// A non-positive interval defaults to DefaultInterval.
func NewRunner(engine *Engine, mailbox *handoff.Mailbox, sink Sink, m *metrics.Metrics, interval time.Duration) (*Runner, error) {
	if engine == nil {
		return nil, fmt.Errorf("runner: engine cannot be nil")
	}
	if mailbox == nil {
		return nil, fmt.Errorf("runner: mailbox cannot be nil")
	}
	if m == nil {
		m = metrics.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
		applog.Warnf("Runner: Invalid interval provided, defaulting to %s", interval)
	}

	blockLen := engine.Config().BlockLen
	return &Runner{
		engine:   engine,
		mailbox:  mailbox,
		sink:     sink,
		metrics:  m,
		interval: interval,
		block:    make([]float32, 0, blockLen),
		levels:   make([]float64, engine.Bins()),
	}, nil
}

// Engine returns the engine driven by the runner.
func (r *Runner) Engine() *Engine {
	return r.engine
}

// Interval returns the tick period.
func (r *Runner) Interval() time.Duration {
	return r.interval
}

// Resize requests a new output bin count. It is safe from any goroutine and
// takes effect at the start of the next tick.
func (r *Runner) Resize(bins int) error {
	if bins <= 0 {
		return fmt.Errorf("%w: bin count must be positive, got %d", ErrInvalidConfig, bins)
	}
	r.pendingBins.Store(int64(bins))
	return nil
}

// Tick runs one analysis cycle. It returns the frame and true when a frame
// was produced. The frame's Levels slice is reused by the next Tick.
func (r *Runner) Tick() (Frame, bool) {
	ctx := context.Background()

	if bins := r.pendingBins.Swap(0); bins > 0 {
		if err := r.engine.Resize(int(bins)); err != nil {
			applog.Errorf("Runner: Resize failed: %v", err)
		}
	}

	blk, status := r.mailbox.TryLatest(r.block)
	r.block = blk.Samples
	switch status {
	case handoff.Empty:
		r.metrics.RecordSkip(ctx, metrics.SkipEmpty)
		return Frame{}, false
	case handoff.Busy:
		r.metrics.RecordSkip(ctx, metrics.SkipBusy)
		return Frame{}, false
	}

	start := time.Now()
	if !r.engine.Process(blk.Samples) {
		r.metrics.RecordSkip(ctx, metrics.SkipDegenerate)
		return Frame{}, false
	}
	r.metrics.AnalysisDuration.Record(ctx, time.Since(start).Seconds())
	r.metrics.FramesAnalyzed.Add(ctx, 1)

	r.levels = r.engine.OutputInto(r.levels)
	frame := Frame{
		Levels:   r.levels,
		Window:   r.engine.Window(),
		Seq:      blk.Seq,
		Captured: blk.Captured,
		BlockLen: len(blk.Samples),
	}

	if r.sink != nil {
		if err := r.sink.WriteFrame(frame); err != nil {
			applog.Warnf("Runner: Sink rejected frame %d: %v", frame.Seq, err)
		}
	}
	return frame, true
}

// Start launches a goroutine that calls Tick every interval until Stop.
// Calling Start on a running Runner is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	if r.ticker != nil {
		r.mu.Unlock()
		applog.Warnf("Runner: Start called but already running.")
		return
	}

	r.ticker = time.NewTicker(r.interval)
	r.doneChan = make(chan struct{})
	r.stopOnce = sync.Once{}

	ticker := r.ticker
	doneChan := r.doneChan
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		applog.Infof("Runner: Analysis goroutine started (Interval: %s)", r.interval)
		for {
			select {
			case <-ticker.C:
				r.Tick()
			case <-doneChan:
				applog.Infof("Runner: Analysis goroutine received stop signal.")
				return
			}
		}
	}()
}

// Stop signals the goroutine to exit and waits for it. Safe to call more
// than once.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if r.ticker == nil {
		r.mu.Unlock()
		applog.Debugf("Runner: Stop called but not running.")
		return nil
	}

	r.stopOnce.Do(func() {
		close(r.doneChan)
		r.ticker.Stop()
		r.ticker = nil
	})
	r.mu.Unlock()

	r.wg.Wait()
	applog.Infof("Runner: Analysis goroutine finished.")
	return nil
}

// Close implements io.Closer by stopping the goroutine.
func (r *Runner) Close() error {
	return r.Stop()
}

var _ interface{ Close() error } = (*Runner)(nil)
var _ Sink = SinkFunc(nil)
