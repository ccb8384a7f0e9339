package sequencer

import (
	"time"
)

type fakeScheduler struct {
	delay   time.Duration
	fn      func()
	arms    int
	cancels int
	err     error
}

func (s *fakeScheduler) Arm(delay time.Duration, fn func()) error {
	if s.err != nil {
		return s.err
	}
	s.delay = delay
	s.fn = fn
	s.arms++
	return nil
}

func (s *fakeScheduler) Cancel() {
	s.fn = nil
	s.cancels++
}

// take removes the pending callback, the way an expiring timer would.
func (s *fakeScheduler) take() func() {
	fn := s.fn
	s.fn = nil
	return fn
}

func (s *fakeScheduler) fire() {
	if fn := s.take(); fn != nil {
		fn()
	}
}

type recorder struct {
	events []Event
}

func (r *recorder) Emit(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) take() []Event {
	ev := r.events
	r.events = nil
	return ev
}

func steps(row [16]bool) []Event {
	ev := make([]Event, 0, len(row))
	for i, on := range row {
		ev = append(ev, Event{Kind: StepIndicator, Index: i, On: on})
	}
	return ev
}
