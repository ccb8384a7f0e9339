package music

import (
	"bytes"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/JeanRibes/sequencer/sequencer"
	. "github.com/JeanRibes/sequencer/shared"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"gitlab.com/gomidi/quantizer/lib/quantizer"
)

const TICKS = smf.MetricTicks(960)

const RECORD_PREALLOCATION = 128

type recEvent struct {
	tick uint32 // absolute
	msg  midi.Message
}

// Recorder is a sink that captures triggers as they are played, with their
// real timing, so a session can be written out as a MIDI file.
type Recorder struct {
	mapping Mapping
	bpm     float64
	start   time.Time
	now     func() time.Time
	events  []recEvent
	sync.Mutex
}

func NewRecorder(bpm float64, mapping Mapping) *Recorder {
	return &Recorder{
		mapping: mapping,
		bpm:     bpm,
		now:     time.Now,
		events:  make([]recEvent, 0, RECORD_PREALLOCATION),
	}
}

// BPMFromTempo converts milliseconds per beat to beats per minute.
func BPMFromTempo(ms float64) float64 {
	if ms <= 0 {
		return 120
	}
	return 60000 / ms
}

func (r *Recorder) Emit(ev sequencer.Event) {
	if ev.Kind != sequencer.Trigger {
		return
	}
	r.Lock()
	defer r.Unlock()
	now := r.now()
	if r.start.IsZero() {
		r.start = now
	}
	at := TICKS.Ticks(r.bpm, now.Sub(r.start))
	gate := TICKS.Ticks(r.bpm, r.mapping.Gate)
	note := r.mapping.Notes[ev.Index%NumInstruments]
	r.events = append(r.events,
		recEvent{tick: at, msg: midi.NoteOn(r.mapping.Channel, note, r.mapping.Velocity)},
		recEvent{tick: at + gate, msg: midi.NoteOff(r.mapping.Channel, note)},
	)
}

func (r *Recorder) Len() int {
	r.Lock()
	defer r.Unlock()
	return len(r.events) / 2
}

func (r *Recorder) Track() smf.Track {
	r.Lock()
	events := make([]recEvent, len(r.events))
	copy(events, r.events)
	r.Unlock()

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})
	tr := smf.Track{}
	tr.Add(0, smf.MetaTrackSequenceName("sequencer"))
	tr.Add(0, smf.MetaTempo(r.bpm))
	prev := uint32(0)
	for _, ev := range events {
		tr.Add(ev.tick-prev, ev.msg)
		prev = ev.tick
	}
	tr.Close(0)
	return tr
}

// WriteTo writes the recording as a single track SMF, optionally snapped to
// the grid by the quantizer.
func (r *Recorder) WriteTo(w io.Writer, quantize bool) error {
	f := smf.New()
	f.TimeFormat = TICKS
	if err := f.Add(r.Track()); err != nil {
		return err
	}
	if !quantize {
		_, err := f.WriteTo(w)
		return err
	}
	var raw, out bytes.Buffer
	if _, err := f.WriteTo(&raw); err != nil {
		return err
	}
	if err := quantizer.Quantize(&raw, &out); err != nil {
		return err
	}
	_, err := out.WriteTo(w)
	return err
}
