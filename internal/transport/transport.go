// SPDX-License-Identifier: MIT

// Package transport holds the frame consumers used when no terminal UI owns
// the output.
package transport

import (
	"audiolyzer/internal/analysis"
)

// Transport is an analysis.Sink that holds resources until closed.
// Implementations should be thread-safe.
type Transport interface {
	analysis.Sink
	Close() error
}
