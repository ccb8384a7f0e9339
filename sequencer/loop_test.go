package sequencer

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/JeanRibes/sequencer/shared"
	charmlog "github.com/charmbracelet/log"
)

func TestDispatch(t *testing.T) {
	e, sched, rec := newEngine(t, Options{})
	msgs := []shared.Message{
		{Type: shared.Tempo, Number: 200, HasNumber: true},
		{Type: shared.Button, Number: 3, HasNumber: true},
		{Type: shared.SwitchInstrument, Number: 6.7, HasNumber: true},
		{Type: shared.SwitchInstrument},
		{Type: shared.Loadbang},
	}
	for _, msg := range msgs {
		if err := Dispatch(e, msg); err != nil {
			t.Fatalf("%v: %v", msg.Type, err)
		}
	}
	if sched.delay != 200*time.Millisecond {
		t.Errorf("delay %v", sched.delay)
	}
	if e.Instrument() != 0 {
		t.Errorf("missing argument selected %d", e.Instrument())
	}
	var row [16]bool
	row[3] = true
	want := []Event{{Kind: StepToggled, Index: 3, On: true}}
	want = append(want, Event{Kind: InstrumentIndicator, Index: 0}, Event{Kind: InstrumentIndicator, Index: 2, On: true})
	want = append(want, steps([16]bool{})...)
	want = append(want, Event{Kind: InstrumentIndicator, Index: 2}, Event{Kind: InstrumentIndicator, Index: 0, On: true})
	want = append(want, steps(row)...)
	want = append(want, Event{Kind: InstrumentIndicator, Index: 0, On: true})
	if got := rec.take(); !reflect.DeepEqual(got, want) {
		t.Errorf("got  %v\nwant %v", got, want)
	}
}

func TestDispatchCycle(t *testing.T) {
	e, _, _ := newEngine(t, Options{Variant: VariantCycle})
	for i := 0; i < 3; i++ {
		if err := Dispatch(e, shared.Message{Type: shared.SwitchInstrument, Number: 0, HasNumber: true}); err != nil {
			t.Fatal(err)
		}
	}
	if e.Instrument() != 3 {
		t.Errorf("instrument %d, want 3", e.Instrument())
	}
}

func TestRun(t *testing.T) {
	e, sched, rec := newEngine(t, Options{})
	fired := make(chan func())
	commands := make(chan shared.Message)
	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), e, fired, commands, charmlog.New(io.Discard))
	}()

	commands <- shared.Message{Type: shared.Button, Number: 1, HasNumber: true}
	// unbuffered sends keep the loop in step with the test
	fired <- sched.take()
	commands <- shared.Message{Type: shared.Quit}

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	want := []Event{
		{Kind: StepToggled, Index: 1, On: true},
		{Kind: BeatIndicator, Index: 0},
		{Kind: BeatIndicator, Index: 1, On: true},
		{Kind: Trigger, Index: 0},
	}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("got %v, want %v", rec.events, want)
	}
	if sched.cancels != 1 {
		t.Errorf("engine not closed, cancels=%d", sched.cancels)
	}
}

func TestRunTickFailure(t *testing.T) {
	e, sched, _ := newEngine(t, Options{})
	boom := errors.New("exhausted")
	fn := sched.take()
	sched.err = boom
	fired := make(chan func(), 1)
	fired <- fn
	err := Run(context.Background(), e, fired, nil, charmlog.New(io.Discard))
	if !errors.Is(err, boom) {
		t.Errorf("Run = %v, want %v", err, boom)
	}
}

func TestRunContext(t *testing.T) {
	e, _, _ := newEngine(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, e, nil, nil, charmlog.New(io.Discard)); err != nil {
		t.Fatal(err)
	}
}
