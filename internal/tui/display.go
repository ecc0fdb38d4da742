// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects how levels are drawn.
type Mode int

const (
	Discrete Mode = iota // filled bars with eighth-cell tops
	Point                // one marker per column
	Line                 // markers joined column to column

	numModes
)

var modeNames = [numModes]string{"discrete", "point", "line"}

func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next cycles Discrete -> Point -> Line -> Discrete.
func (m Mode) Next() Mode {
	if m < 0 || m >= numModes {
		return Discrete
	}
	return (m + 1) % numModes
}

// ParseMode converts a mode name (case-insensitive) to a Mode.
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return Mode(i), nil
		}
	}
	return Discrete, fmt.Errorf("unknown display mode: '%s'", name)
}

var barChars = []rune(" ▁▂▃▄▅▆▇█")

const (
	pointChar    = '•'
	verticalChar = '│'
)

// Columns resamples levels onto width columns. With fewer levels than
// columns each level is repeated; with more, each column takes the maximum
// of the levels it covers. dst is reused when large enough.
func Columns(dst, levels []float64, width int) []float64 {
	if width < 0 {
		width = 0
	}
	if cap(dst) < width {
		dst = make([]float64, width)
	}
	dst = dst[:width]
	n := len(levels)
	for c := range dst {
		if n == 0 {
			dst[c] = 0
			continue
		}
		lo := c * n / width
		hi := (c + 1) * n / width
		if hi <= lo {
			hi = lo + 1
		}
		v := levels[lo]
		for _, l := range levels[lo+1 : hi] {
			v = math.Max(v, l)
		}
		dst[c] = clamp01(v)
	}
	return dst
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Render draws columns (values in [0,1]) into a height-row block of text.
func Render(columns []float64, height int, mode Mode) string {
	if height < 1 || len(columns) == 0 {
		return ""
	}
	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", len(columns)))
	}

	switch mode {
	case Point, Line:
		prev := -1
		for c, v := range columns {
			v = clamp01(v)
			// Row 0 is the top of the screen.
			row := height - 1 - int(math.Round(v*float64(height-1)))
			grid[row][c] = pointChar
			if mode == Line && prev >= 0 && prev != row {
				lo, hi := min(prev, row), max(prev, row)
				for r := lo + 1; r < hi; r++ {
					grid[r][c] = verticalChar
				}
			}
			prev = row
		}
	default:
		steps := len(barChars) - 1
		for c, v := range columns {
			cells := int(math.Round(clamp01(v) * float64(height*steps)))
			for r := height - 1; r >= 0 && cells > 0; r-- {
				n := min(cells, steps)
				grid[r][c] = barChars[n]
				cells -= n
			}
		}
	}

	var sb strings.Builder
	for r, line := range grid {
		if r > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(line))
	}
	return sb.String()
}
