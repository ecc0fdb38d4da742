// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"sync"
	"time"

	"audiolyzer/internal/analysis"
	applog "audiolyzer/internal/log"

	"gonum.org/v1/gonum/floats"
)

// DefaultReportInterval is how often LoggingTransport writes a line.
const DefaultReportInterval = time.Second

// LoggingTransport implements the Transport interface by logging a summary of
// the spectrum: the dominant output bin, its approximate frequency and level.
// Frames arriving between reports are only counted.
type LoggingTransport struct {
	mu         sync.Mutex
	interval   time.Duration
	sampleRate float64
	gamma      float64

	last   time.Time
	frames uint64 // frames since the last report
	total  uint64
	now    func() time.Time
	logf   func(format string, v ...any)
	closed bool
}

// NewLoggingTransport creates a LoggingTransport for spectra produced at
// sampleRate with warp exponent gamma. A non-positive interval defaults to
// DefaultReportInterval.
func NewLoggingTransport(interval time.Duration, sampleRate, gamma float64) *LoggingTransport {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	applog.Infof("Transport: Using LoggingTransport (Interval: %s)", interval)
	return &LoggingTransport{
		interval:   interval,
		sampleRate: sampleRate,
		gamma:      gamma,
		now:        time.Now,
		logf:       applog.Infof,
	}
}

// WriteFrame records the frame and logs a summary if the report interval has
// elapsed.
func (lt *LoggingTransport) WriteFrame(f analysis.Frame) error {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if lt.closed {
		return fmt.Errorf("logging transport is closed")
	}
	lt.frames++
	lt.total++

	now := lt.now()
	if !lt.last.IsZero() && now.Sub(lt.last) < lt.interval {
		return nil
	}
	elapsed := now.Sub(lt.last)
	lt.last = now
	lt.logf("Spectrum: %s", lt.summary(f, elapsed))
	lt.frames = 0
	return nil
}

func (lt *LoggingTransport) summary(f analysis.Frame, elapsed time.Duration) string {
	rate := ""
	if elapsed > 0 && elapsed < time.Hour {
		rate = fmt.Sprintf(", %.1f fps", float64(lt.frames)/elapsed.Seconds())
	}

	if len(f.Levels) == 0 || floats.Max(f.Levels) <= 0 {
		return fmt.Sprintf("silent (window %v, block %d%s)", f.Window, f.BlockLen, rate)
	}

	bin := floats.MaxIdx(f.Levels)
	lo, hi := analysis.BinRange(bin, len(f.Levels), lt.sampleRate, lt.gamma)
	return fmt.Sprintf("peak bin %d/%d (%.0f-%.0f Hz) level %.2f, mean %.2f (window %v, block %d%s)",
		bin, len(f.Levels), lo, hi, f.Levels[bin], floats.Sum(f.Levels)/float64(len(f.Levels)),
		f.Window, f.BlockLen, rate)
}

// Frames returns the number of frames received since creation.
func (lt *LoggingTransport) Frames() uint64 {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return lt.total
}

// Close stops accepting frames.
func (lt *LoggingTransport) Close() error {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	if !lt.closed {
		lt.closed = true
		applog.Debugf("Transport: LoggingTransport closed after %d frames.", lt.total)
	}
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
