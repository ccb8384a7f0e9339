package sequencer

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestEventEncoding(t *testing.T) {
	tests := []struct {
		ev      Event
		channel Channel
		code    int
		value   any
		str     string
	}{
		{Event{Kind: InstrumentIndicator, Index: 3, On: true}, IndicatorChannel, 203, 1, "203 1"},
		{Event{Kind: InstrumentIndicator, Index: 0}, IndicatorChannel, 200, 0, "200 0"},
		{Event{Kind: BeatIndicator, Index: 15, On: true}, IndicatorChannel, 115, 1, "115 1"},
		{Event{Kind: StepIndicator, Index: 7}, IndicatorChannel, 7, 0, "7 0"},
		{Event{Kind: StepToggled, Index: 5, On: true}, IndicatorChannel, 5, 1, "5 1"},
		{Event{Kind: Trigger, Index: 2}, TriggerChannel, 2, "bang", "2 bang"},
		{Event{Kind: PassThrough, Raw: 4.25}, TriggerChannel, 0, 4.25, "4.25"},
	}
	for _, tt := range tests {
		if got := tt.ev.Channel(); got != tt.channel {
			t.Errorf("%v: channel %v, want %v", tt.ev, got, tt.channel)
		}
		if got := tt.ev.Code(); got != tt.code {
			t.Errorf("%v: code %d, want %d", tt.ev, got, tt.code)
		}
		if got := tt.ev.Value(); got != tt.value {
			t.Errorf("%v: value %v, want %v", tt.ev, got, tt.value)
		}
		if got := tt.ev.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
	}
}

func TestTee(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	sink := Tee(a, nil, b)
	ev := Event{Kind: Trigger, Index: 1}
	sink.Emit(ev)
	want := []Event{ev}
	if !reflect.DeepEqual(a.events, want) || !reflect.DeepEqual(b.events, want) {
		t.Errorf("a=%v b=%v", a.events, b.events)
	}
}

func TestChanSinkDrops(t *testing.T) {
	s := NewChanSink(2)
	for i := 0; i < 5; i++ {
		s.Emit(Event{Kind: StepIndicator, Index: i})
	}
	if s.Dropped() != 3 {
		t.Errorf("dropped %d, want 3", s.Dropped())
	}
	if ev := <-s.C; ev.Index != 0 {
		t.Errorf("first event %v", ev)
	}
}

func TestChanSinkDrain(t *testing.T) {
	s := NewChanSink(16)
	release := make(chan struct{})
	got := make(chan Event, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Drain(ctx, SinkFunc(func(e Event) {
		<-release
		got <- e
	}))

	// a stalled consumer must not block the emitting side
	emitted := make(chan struct{})
	go func() {
		for i := 0; i < 18; i++ {
			s.Emit(Event{Kind: StepIndicator, Index: i % 16})
		}
		close(emitted)
	}()
	select {
	case <-emitted:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a stalled consumer")
	}
	close(release)
	if e := <-got; e.Index != 0 {
		t.Errorf("first drained event %v", e)
	}
}
