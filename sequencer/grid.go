package sequencer

import (
	"math"

	"github.com/JeanRibes/sequencer/shared"
)

// Grid holds one row of steps per instrument. Every accessor wraps its
// indices, so out of range positions are never observable.
type Grid [shared.NumInstruments][shared.NumSteps]bool

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func (g *Grid) At(instrument, step int) bool {
	return g[wrap(instrument, shared.NumInstruments)][wrap(step, shared.NumSteps)]
}

// Toggle flips a cell and returns its new value.
func (g *Grid) Toggle(instrument, step int) bool {
	i, s := wrap(instrument, shared.NumInstruments), wrap(step, shared.NumSteps)
	g[i][s] = !g[i][s]
	return g[i][s]
}

func (g *Grid) Row(instrument int) [shared.NumSteps]bool {
	return g[wrap(instrument, shared.NumInstruments)]
}

// ClampStep maps a button argument onto a step index: clamped to
// [0, 15] then truncated.
func ClampStep(f float64) int {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > shared.NumSteps-1:
		return shared.NumSteps - 1
	}
	return int(f)
}

// truncate converts a host number to an int without relying on the
// platform behaviour for NaN or values outside the int range.
func truncate(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}
