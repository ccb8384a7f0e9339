package sequencer

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
)

type Kind int

const (
	StepToggled Kind = iota
	StepIndicator
	BeatIndicator
	InstrumentIndicator
	Trigger
	PassThrough
)

func (k Kind) String() string {
	switch k {
	case StepToggled:
		return "step-toggled"
	case StepIndicator:
		return "step"
	case BeatIndicator:
		return "beat"
	case InstrumentIndicator:
		return "instrument"
	case Trigger:
		return "trigger"
	case PassThrough:
		return "pass-through"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Channel int

const (
	IndicatorChannel Channel = iota
	TriggerChannel
)

const (
	BeatCodeOffset       = 100
	InstrumentCodeOffset = 200
	Bang                 = "bang"
)

// Event is one output of the engine. Index is the step, beat or instrument
// depending on Kind; Raw only carries the pass-through argument.
type Event struct {
	Kind  Kind
	Index int
	On    bool
	Raw   float64
}

func (e Event) Channel() Channel {
	if e.Kind == Trigger || e.Kind == PassThrough {
		return TriggerChannel
	}
	return IndicatorChannel
}

func (e Event) Code() int {
	switch e.Kind {
	case BeatIndicator:
		return BeatCodeOffset + e.Index
	case InstrumentIndicator:
		return InstrumentCodeOffset + e.Index
	}
	return e.Index
}

// Value is 0 or 1 for indicators, "bang" for triggers and the untouched
// argument for pass-through events.
func (e Event) Value() any {
	switch e.Kind {
	case Trigger:
		return Bang
	case PassThrough:
		return e.Raw
	}
	if e.On {
		return 1
	}
	return 0
}

// String renders the event the way a host list would print it.
func (e Event) String() string {
	if e.Kind == PassThrough {
		return strconv.FormatFloat(e.Raw, 'g', -1, 64)
	}
	return fmt.Sprintf("%d %v", e.Code(), e.Value())
}

type Sink interface {
	Emit(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

type tee []Sink

func (t tee) Emit(e Event) {
	for _, s := range t {
		s.Emit(e)
	}
}

// Tee sends every event to each sink in order. Nil sinks are skipped.
func Tee(sinks ...Sink) Sink {
	t := tee{}
	for _, s := range sinks {
		if s != nil {
			t = append(t, s)
		}
	}
	return t
}

// ChanSink forwards events to a buffered channel and drops them when the
// consumer falls behind.
type ChanSink struct {
	C       chan Event
	dropped atomic.Uint64
}

func NewChanSink(size int) *ChanSink {
	return &ChanSink{C: make(chan Event, size)}
}

func (s *ChanSink) Emit(e Event) {
	select {
	case s.C <- e:
	default:
		s.dropped.Add(1)
	}
}

func (s *ChanSink) Dropped() uint64 {
	return s.dropped.Load()
}

// Drain hands buffered events to to until ctx is done, so that a slow
// consumer never holds up the goroutine emitting them.
func (s *ChanSink) Drain(ctx context.Context, to Sink) {
	for {
		select {
		case e := <-s.C:
			to.Emit(e)
		case <-ctx.Done():
			return
		}
	}
}
