package sequencer

import (
	"errors"
	"fmt"
	"io"

	"github.com/JeanRibes/sequencer/shared"
	charmlog "github.com/charmbracelet/log"
)

var ErrClosed = errors.New("sequencer: closed")

// Variant selects one of the two command behaviours. They are never mixed
// within one engine.
type Variant int

const (
	// VariantGrid keeps a note grid per instrument, toggles it from button
	// presses and fires triggers on each beat.
	VariantGrid Variant = iota
	// VariantCycle only tracks beats: switch-instrument cycles through the
	// instruments and button values are passed through untouched.
	VariantCycle
)

func (v Variant) String() string {
	if v == VariantCycle {
		return "cycle"
	}
	return "grid"
}

func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "grid":
		return VariantGrid, nil
	case "cycle":
		return VariantCycle, nil
	}
	return VariantGrid, fmt.Errorf("unknown variant %q", s)
}

const DefaultTempo = 1000

type Options struct {
	Tempo      float64 // milliseconds per beat, DefaultTempo when zero
	Variant    Variant
	NoLoadbang bool // suppress the startup instrument indicator
	Logger     *charmlog.Logger
}

type Engine struct {
	variant    Variant
	noLoadbang bool
	sched      Scheduler
	sink       Sink
	logger     *charmlog.Logger

	tempo      float64
	beat       int
	instrument int
	grid       Grid

	loadbanged bool
	closed     bool
	err        error
}

// New builds an engine and arms its first tick one tempo from now.
func New(opts Options, sched Scheduler, sink Sink) (*Engine, error) {
	if opts.Tempo == 0 {
		opts.Tempo = DefaultTempo
	}
	if sink == nil {
		sink = SinkFunc(func(Event) {})
	}
	if opts.Logger == nil {
		opts.Logger = charmlog.New(io.Discard)
	}
	e := &Engine{
		variant:    opts.Variant,
		noLoadbang: opts.NoLoadbang,
		sched:      sched,
		sink:       sink,
		logger:     opts.Logger,
		tempo:      opts.Tempo,
	}
	if err := e.arm(); err != nil {
		return nil, fmt.Errorf("arm first tick: %w", err)
	}
	return e, nil
}

func (e *Engine) arm() error {
	return e.sched.Arm(TempoDelay(e.tempo), e.fire)
}

func (e *Engine) fire() {
	if err := e.Tick(); err != nil && e.err == nil {
		e.err = err
	}
}

// Err returns the first failure hit by a timer driven tick.
func (e *Engine) Err() error {
	return e.err
}

func (e *Engine) SetTempo(ms float64) error {
	if e.closed {
		return ErrClosed
	}
	e.tempo = ms
	e.logger.Debug("tempo", "ms", ms)
	return e.arm()
}

// Button toggles a step of the current instrument, or with VariantCycle
// passes f through to the trigger channel.
func (e *Engine) Button(f float64) {
	if e.closed {
		return
	}
	if e.variant == VariantCycle {
		e.sink.Emit(Event{Kind: PassThrough, Raw: f})
		return
	}
	step := ClampStep(f)
	active := e.grid.Toggle(e.instrument, step)
	e.logger.Debug("toggle", "instrument", shared.InstrumentName(e.instrument), "step", step, "active", active)
	e.sink.Emit(Event{Kind: StepToggled, Index: step, On: active})
}

// SwitchInstrument selects target modulo 4 and repaints the step indicators
// with the grid of the new instrument.
func (e *Engine) SwitchInstrument(target int) {
	if e.closed {
		return
	}
	e.switchTo(wrap(target, shared.NumInstruments))
	row := e.grid.Row(e.instrument)
	for step, active := range row {
		e.sink.Emit(Event{Kind: StepIndicator, Index: step, On: active})
	}
}

// CycleInstrument moves to the next instrument without repainting steps.
func (e *Engine) CycleInstrument() {
	if e.closed {
		return
	}
	e.switchTo(wrap(e.instrument+1, shared.NumInstruments))
}

func (e *Engine) switchTo(instrument int) {
	e.sink.Emit(Event{Kind: InstrumentIndicator, Index: e.instrument, On: false})
	e.instrument = instrument
	e.logger.Debug("instrument", "index", instrument, "name", shared.InstrumentName(instrument))
	e.sink.Emit(Event{Kind: InstrumentIndicator, Index: e.instrument, On: true})
}

// Loadbang lights the current instrument once, unless startup notifications
// are suppressed.
func (e *Engine) Loadbang() {
	if e.closed || e.loadbanged {
		return
	}
	e.loadbanged = true
	if e.noLoadbang {
		return
	}
	e.sink.Emit(Event{Kind: InstrumentIndicator, Index: e.instrument, On: true})
}

// Tick re-arms the timer then moves to the next beat.
func (e *Engine) Tick() error {
	if e.closed {
		return ErrClosed
	}
	if err := e.arm(); err != nil {
		return fmt.Errorf("rearm tick: %w", err)
	}
	e.sink.Emit(Event{Kind: BeatIndicator, Index: e.beat, On: false})
	e.beat = wrap(e.beat+1, shared.NumSteps)
	e.sink.Emit(Event{Kind: BeatIndicator, Index: e.beat, On: true})
	if e.variant == VariantCycle {
		return nil
	}
	for i := 0; i < shared.NumInstruments; i++ {
		if e.grid.At(i, e.beat) {
			e.sink.Emit(Event{Kind: Trigger, Index: i})
		}
	}
	return nil
}

// Close cancels the pending tick. It is safe to call more than once.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.sched.Cancel()
}

func (e *Engine) Tempo() float64 { return e.tempo }
func (e *Engine) Beat() int { return e.beat }
func (e *Engine) Instrument() int { return e.instrument }
func (e *Engine) Variant() Variant { return e.variant }
func (e *Engine) Grid() Grid { return e.grid }
